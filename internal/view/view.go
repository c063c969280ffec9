package view

import (
	"html/template"
	"time"

	"github.com/pbarilla/blog/internal/domain/config"
	"github.com/pbarilla/blog/internal/domain/content"
	"github.com/pbarilla/blog/internal/render"
)

type ListingPage struct {
	Site      config.SiteConfig
	Items     []content.PostRecord
	Generated time.Time
}

type PostPage struct {
	Site config.SiteConfig
	Meta content.PostRecord
	HTML template.HTML
	TOC  []render.Heading
}

type NotFoundPage struct {
	Site config.SiteConfig
	ID   string
}
