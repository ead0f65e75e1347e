package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/views"
)

// ViewFuncs holds the components the server-rendered pages are built from.
// Fields left nil in WithViews fall back to the views package.
type ViewFuncs struct {
	BlogIndex   func(posts []Post) templ.Component
	Post        func(post Post) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		JSONLD:      WebsiteJsonLD(a.Config),
	}
}

func (a *App) defaultViews() ViewFuncs {
	return ViewFuncs{
		BlogIndex: func(posts []Post) templ.Component {
			cards := make([]views.PostCard, 0, len(posts))
			for _, p := range posts {
				cards = append(cards, postCard(p))
			}
			return views.BlogIndex(a.site(), cards)
		},
		Post: func(p Post) templ.Component {
			return views.Post(a.site(), views.PostPage{
				PostCard:     postCard(p),
				CanonicalURL: BuildURL(a.Config.URL, "blog", p.Slug),
				JSONLD:       BlogPostingJsonLD(p, a.Config),
				Body:         a.markdown.Component(p.Content),
			})
		},
		NotFound: func() templ.Component {
			return views.NotFound(a.site())
		},
		ServerError: func() templ.Component {
			return views.ServerError(a.site())
		},
	}
}

func (v *ViewFuncs) fill(d ViewFuncs) {
	if v.BlogIndex == nil {
		v.BlogIndex = d.BlogIndex
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

func postCard(p Post) views.PostCard {
	return views.PostCard{
		Title:    p.Title,
		Date:     p.Date,
		Excerpt:  p.Excerpt,
		CoverURL: StaticURL(p.CoverImage),
		Link:     p.Link(),
	}
}

func (a *App) handleBlogIndex(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogIndex(posts))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidIdentifier) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(post))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api\n\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func handleHomeRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/blog/")
}
