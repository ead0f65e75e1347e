package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// BlogIndex lists every post, newest first.
func BlogIndex(site Site, posts []PostCard) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		if w.err == nil {
			w.err = jsonLD(out, site.JSONLD)
		}
		w.raw(`<section class="blog-index"><h1>Blog</h1>`)
		if len(posts) == 0 {
			w.raw(`<p class="empty">No posts yet.</p>`)
		}
		for _, p := range posts {
			w.raw(`<article class="post-card">`)
			if p.CoverURL != "" {
				w.raw(`<img src="`)
				w.text(p.CoverURL)
				w.raw(`" alt="" loading="lazy" decoding="async"/>`)
			}
			w.raw(`<h2><a href="`)
			w.text(p.Link)
			w.raw(`">`)
			w.text(p.Title)
			w.raw(`</a></h2><time datetime="`)
			w.text(p.Date)
			w.raw(`">`)
			w.text(FormatDate(p.Date))
			w.raw(`</time>`)
			if p.Excerpt != "" {
				w.raw(`<p>`)
				w.text(p.Excerpt)
				w.raw(`</p>`)
			}
			w.raw(`</article>`)
		}
		w.raw(`</section>`)
		return w.err
	})
	return Layout(site, PageMeta{Title: "Blog", URL: buildURL(site.URL, "blog")}, body)
}

// Post renders a single post page.
func Post(site Site, post PostPage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		if w.err == nil {
			w.err = jsonLD(out, post.JSONLD)
		}
		w.raw(`<article class="post"><a class="back" href="/blog/">Back to Blog</a><header><h1>`)
		w.text(post.Title)
		w.raw(`</h1><time datetime="`)
		w.text(post.Date)
		w.raw(`">`)
		w.text(FormatDate(post.Date))
		w.raw(`</time></header>`)
		if post.CoverURL != "" {
			w.raw(`<img class="cover" src="`)
			w.text(post.CoverURL)
			w.raw(`" alt="" fetchpriority="high" decoding="async"/>`)
		}
		w.raw(`<div class="prose">`)
		w.component(ctx, post.Body)
		w.raw(`</div></article>`)
		return w.err
	})
	return Layout(site, PageMeta{
		Title:       post.Title,
		Description: post.Excerpt,
		URL:         post.CanonicalURL,
		OGType:      "article",
		Image:       post.CoverURL,
	}, body)
}

// NotFound is the 404 page.
func NotFound(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Not Found"}, templ.Raw(
		`<section class="error"><h1>404</h1><p>This page does not exist.</p><a href="/blog/">Back to Blog</a></section>`))
}

// ServerError is the 500 page.
func ServerError(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Error"}, templ.Raw(
		`<section class="error"><h1>500</h1><p>Something went wrong. Please try again later.</p></section>`))
}
