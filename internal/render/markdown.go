package render

import (
	"bytes"
	"sync/atomic"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

type MarkdownRenderer struct {
	md goldmark.Markdown

	engineReady      atomic.Bool
	highlighterReady atomic.Bool
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					// CSS classes instead of inline styles: token spans carry
					// their lexical category, the stylesheet colorizes.
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Post bodies are untrusted fetched text, so no WithUnsafe here;
		// raw HTML in markdown gets dropped.
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	r := &MarkdownRenderer{md: md}
	go r.warmUp()
	return r
}

// warmUp primes the engine and the highlighter off the request path. The
// readiness probes flip once each first conversion has gone through.
func (r *MarkdownRenderer) warmUp() {
	var buf bytes.Buffer
	_ = r.md.Convert([]byte("# warm up\n"), &buf)
	r.engineReady.Store(true)

	buf.Reset()
	_ = r.md.Convert([]byte("```go\npackage main\n```\n"), &buf)
	r.highlighterReady.Store(true)
}

func (r *MarkdownRenderer) EngineReady() bool {
	return r.engineReady.Load()
}

func (r *MarkdownRenderer) HighlighterReady() bool {
	return r.highlighterReady.Load()
}

type MarkdownResult struct {
	HTML     []byte
	Headings []Heading
}

// Render converts markdown to HTML. Malformed input degrades, it does not
// fail; fenced blocks with an unknown language come out as plain escaped
// code. Output is a pure function of src.
func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	reader := text.NewReader(src)
	doc := r.md.Parser().Parse(reader, parser.WithContext(ctx))

	var heads []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			level := h.Level
			var idStr string
			if id, ok := h.AttributeString("id"); ok {
				switch v := id.(type) {
				case string:
					idStr = v
				case []byte:
					idStr = string(v)
				}
			}
			var textBuf bytes.Buffer
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if seg, ok := c.(*ast.Text); ok {
					textBuf.Write(seg.Segment.Value(src))
				}
			}
			heads = append(heads, Heading{
				Level: level,
				ID:    idStr,
				Text:  textBuf.String(),
			})
		}
		return ast.WalkContinue, nil
	})

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     buf.Bytes(),
		Headings: heads,
	}, nil
}
