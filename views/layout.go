package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout is the document shell shared by every server-rendered page.
func Layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		w.raw(`<title>`)
		w.text(title)
		w.raw(`</title><meta name="description" content="`)
		w.text(desc)
		w.raw(`"/><meta property="og:title" content="`)
		w.text(title)
		w.raw(`"/><meta property="og:type" content="`)
		w.text(ogType)
		w.raw(`"/>`)
		if meta.URL != "" {
			w.raw(`<link rel="canonical" href="`)
			w.text(meta.URL)
			w.raw(`"/><meta property="og:url" content="`)
			w.text(meta.URL)
			w.raw(`"/>`)
		}
		if meta.Image != "" {
			w.raw(`<meta property="og:image" content="`)
			w.text(meta.Image)
			w.raw(`"/>`)
		}
		w.raw(`<link rel="alternate" type="application/rss+xml" title="`)
		w.text(site.Name)
		w.raw(`" href="/feed.xml"/></head><body><header class="site-header"><a href="/">`)
		w.text(site.Name)
		w.raw(`</a><nav><a href="/blog/">Blog</a> <a href="/music/">Music</a></nav></header><main>`)
		w.component(ctx, body)
		w.raw(`</main></body></html>`)
		return w.err
	})
}
