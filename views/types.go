package views

import "github.com/a-h/templ"

// Site holds the site-wide settings every page needs. Nothing in the
// templates is hardcoded.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	JSONLD      string // WebSite schema, rendered on the index
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// PostCard is one entry of the blog index.
type PostCard struct {
	Title    string
	Date     string
	Excerpt  string
	CoverURL string
	Link     string
}

// PostPage is a fully resolved post ready to render.
type PostPage struct {
	PostCard
	CanonicalURL string
	JSONLD       string
	Body         templ.Component
}
