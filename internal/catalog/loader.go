package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/pbarilla/blog/internal/domain/content"
	domainerr "github.com/pbarilla/blog/internal/domain/errors"
)

const (
	DefaultCatalog   = "posts.json"
	DefaultExtension = ".md"
)

type Loader struct {
	Source    Source
	Catalog   string // catalog document name, defaults to posts.json
	Extension string // content file extension, defaults to .md
}

// Load fetches and parses the full catalog. It never fails: a transport or
// parse problem is logged and degrades to an empty catalog, which callers
// must treat as a renderable state. No ordering is guaranteed; callers sort.
func (l Loader) Load(ctx context.Context) []content.PostRecord {
	name := l.Catalog
	if name == "" {
		name = DefaultCatalog
	}

	raw, err := l.Source.Fetch(ctx, name)
	if err != nil {
		log.Printf("[warn] catalog load: %v", err)
		return nil
	}

	var records []content.PostRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Printf("[warn] catalog parse: %v", err)
		return nil
	}
	for i := range records {
		records[i].Normalize()
	}
	return records
}

// FetchContent fetches the raw markdown body for id from <id><extension>.
func (l Loader) FetchContent(ctx context.Context, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("catalog: empty id: %w", domainerr.ErrNotFound)
	}
	ext := l.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return l.Source.Fetch(ctx, id+ext)
}

type PostDocument struct {
	Record content.PostRecord
	Body   []byte
}

// LoadPost resolves the catalog entry for id and fetches its body. The two
// run concurrently and both are always attempted; whichever finishes first
// is held until the other lands. Either failing surfaces as ErrNotFound.
func (l Loader) LoadPost(ctx context.Context, id string) (PostDocument, error) {
	type fetched struct {
		body []byte
		err  error
	}
	done := make(chan fetched, 1)
	go func() {
		body, err := l.FetchContent(ctx, id)
		done <- fetched{body: body, err: err}
	}()

	records := l.Load(ctx)
	rec, ok := Resolve(records, id)

	f := <-done
	if !ok {
		return PostDocument{}, fmt.Errorf("catalog: post %q: %w", id, domainerr.ErrNotFound)
	}
	if f.err != nil {
		return PostDocument{}, fmt.Errorf("catalog: post %q body: %w", id, f.err)
	}
	return PostDocument{Record: rec, Body: f.body}, nil
}
