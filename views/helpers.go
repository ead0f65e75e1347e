package views

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders an ISO-8601 date as "January 2, 2006". Anything that
// does not parse is shown as stored.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}

// jsonLD wraps a pre-marshalled JSON-LD document in a script tag. "</" is
// escaped so the payload cannot close the element.
func jsonLD(w io.Writer, doc string) error {
	if doc == "" {
		return nil
	}
	_, err := io.WriteString(w, `<script type="application/ld+json">`+strings.ReplaceAll(doc, "</", `<\/`)+`</script>`)
	return err
}

// writer collects the first error of a sequence of writes.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err == nil && c != nil {
		w.err = c.Render(ctx, w.w)
	}
}

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
