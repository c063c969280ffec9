package view

import (
	"context"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/pbarilla/blog/internal/domain/config"
	"github.com/pbarilla/blog/internal/domain/content"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func testSite() config.SiteConfig {
	return config.SiteConfig{Title: "My Site", Author: "Paul"}
}

func TestListingOneCardPerRecord(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	page := ListingPage{
		Site: testSite(),
		Items: []content.PostRecord{
			{ID: "full", Title: "Full Post", Date: "2024-03-01", Tags: []string{"go", "web"}, Excerpt: "An excerpt", Image: "/images/full.png"},
			{ID: "bare", Title: "Bare Post", Date: "2024-01-01"},
		},
		Generated: time.Now(),
	}

	out, err := c.Listing(context.Background(), page)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	got := string(out)

	if n := strings.Count(got, "<article"); n != 2 {
		t.Errorf("card count = %d, want 2", n)
	}
	for _, want := range []string{
		"Full Post", "2024-03-01",
		"Bare Post", "2024-01-01",
		"go, web",
		"An excerpt",
		`src="/images/full.png"`,
		`href="/post?id=full"`,
		`href="/post?id=bare"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("listing missing %q", want)
		}
	}

	// the bare record renders no empty placeholders
	bare := got[strings.Index(got, "Bare Post"):]
	if strings.Contains(bare, "post-card-tags") {
		t.Error("bare card has a tags element")
	}
	if strings.Contains(bare, "post-card-image") {
		t.Error("bare card has an image element")
	}
	if strings.Contains(bare, "post-card-excerpt") {
		t.Error("bare card has an excerpt element")
	}
}

func TestListingEmptyCatalog(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	out, err := c.Listing(context.Background(), ListingPage{Site: testSite()})
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	got := string(out)
	if strings.Contains(got, "<article") {
		t.Error("empty catalog rendered cards")
	}
	if !strings.Contains(got, "My Site") {
		t.Error("listing shell missing site title")
	}
}

func TestListingEscapesRecordFields(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	page := ListingPage{
		Site: testSite(),
		Items: []content.PostRecord{
			{ID: "x", Title: `<script>alert(1)</script>`, Date: "2024-01-01"},
		},
	}
	out, err := c.Listing(context.Background(), page)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if strings.Contains(string(out), "<script>alert(1)</script>") {
		t.Error("record title not escaped")
	}
}

func TestPostPage(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	page := PostPage{
		Site: testSite(),
		Meta: content.PostRecord{
			ID:    "hello",
			Title: "Hello",
			Date:  "2024-01-01",
			Tags:  []string{"go"},
		},
		HTML: template.HTML("<p>rendered <strong>body</strong></p>"),
	}
	out, err := c.Post(context.Background(), page)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	got := string(out)

	if !strings.Contains(got, "<title>Hello - My Site</title>") {
		t.Errorf("page title wrong:\n%s", got)
	}
	// rendered body passes through unescaped
	if !strings.Contains(got, "<p>rendered <strong>body</strong></p>") {
		t.Error("body HTML was escaped or dropped")
	}
	for _, want := range []string{"2024-01-01", `class="post-tag"`, ">go<"} {
		if !strings.Contains(got, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestPostPageWithoutTags(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	page := PostPage{
		Site: testSite(),
		Meta: content.PostRecord{ID: "a", Title: "A", Date: "2024-01-01"},
		HTML: template.HTML("<p>x</p>"),
	}
	out, err := c.Post(context.Background(), page)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if strings.Contains(string(out), "post-tags") {
		t.Error("tagless post rendered a tag list")
	}
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()

	c := newTestComposer(t)
	out, err := c.NotFound(context.Background(), NotFoundPage{Site: testSite(), ID: "missing"})
	if err != nil {
		t.Fatalf("NotFound: %v", err)
	}
	got := string(out)

	for _, want := range []string{
		"Post Not Found",
		`href="/"`,
		"missing",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("not-found page missing %q", want)
		}
	}
}
