package view

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Composer turns page values into full HTML documents. Templates are
// embedded and parsed once at construction, so composing (the not-found
// fragment included) cannot fail on missing files at request time.
type Composer struct {
	tpl *template.Template
}

func NewComposer() (*Composer, error) {
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &Composer{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"nowYear": func() int {
			return time.Now().Year()
		},
		"postURL": func(id string) string {
			return "/post?id=" + url.QueryEscape(id)
		},
	}
}

func (c *Composer) Listing(ctx context.Context, page ListingPage) ([]byte, error) {
	return c.exec("listing.tmpl", page)
}

func (c *Composer) Post(ctx context.Context, page PostPage) ([]byte, error) {
	return c.exec("post.tmpl", page)
}

func (c *Composer) NotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return c.exec("notfound.tmpl", page)
}

func (c *Composer) exec(name string, data interface{}) ([]byte, error) {
	t := c.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
