package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []Post) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: BuildURL(base, "blog"), ChangeFreq: "weekly", Priority: "0.9"},
		{Loc: BuildURL(base, "music"), ChangeFreq: "weekly", Priority: "0.7"},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    w3cDate(p.Date),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// w3cDate keeps the date part of an ISO-8601 timestamp, or drops values
// that are not dates at all.
func w3cDate(date string) string {
	t, ok := parsePostDate(date)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}
