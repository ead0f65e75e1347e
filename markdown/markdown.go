// Package markdown renders the markdown used in posts to HTML, either as a
// string or as a templ.Component.
package markdown

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-h/templ"
)

var (
	reHeading     = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	reRule        = regexp.MustCompile(`^\s{0,3}(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	reBullet      = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	reOrdered     = regexp.MustCompile(`^\s*\d{1,9}[.)]\s+(.*)$`)
	reQuote       = regexp.MustCompile(`^\s{0,3}>\s?(.*)$`)
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reImage       = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+&#34;([^)]*?)&#34;)?\)`)
	reLink        = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnder   = regexp.MustCompile(`__(.+?)__`)
	reItalic      = regexp.MustCompile(`\*([^*\s][^*]*?)\*`)
	reItalicUnder = regexp.MustCompile(`(^|[^\w])_([^_]+)_([^\w]|$)`)
	reStrike      = regexp.MustCompile(`~~(.+?)~~`)
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithURLRewriter maps every link and image URL through fn before it is
// checked and emitted.
func WithURLRewriter(fn func(string) string) Option {
	return func(r *Renderer) {
		r.rewrite = fn
	}
}

// WithHeadingIDs adds slug ids to headings so they can be linked to.
func WithHeadingIDs() Option {
	return func(r *Renderer) {
		r.headingIDs = true
	}
}

// Renderer is safe for concurrent use.
type Renderer struct {
	rewrite    func(string) string
	headingIDs bool
}

// New returns a Renderer with opts applied.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Component returns a templ.Component that writes md as HTML.
func (r *Renderer) Component(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, r.Render(md))
		return err
	})
}

// Render converts md to HTML. Raw HTML in the source is escaped.
func (r *Renderer) Render(md string) string {
	d := &doc{r: r, ids: map[string]int{}}
	for _, raw := range strings.Split(md, "\n") {
		d.line(strings.TrimRight(raw, "\r"))
	}
	d.closeCode()
	d.close()
	return d.out.String()
}

// Markdown renders md with default options.
func Markdown(md string) templ.Component {
	return New().Component(md)
}

type blockKind int

const (
	blockNone blockKind = iota
	blockPara
	blockBullets
	blockOrdered
	blockQuote
	blockTable
)

type doc struct {
	r     *Renderer
	out   strings.Builder
	kind  blockKind
	tbody bool
	code  bool
	fence string
	ids   map[string]int
}

// open starts a block of kind k unless one is already open, and reports
// whether it did.
func (d *doc) open(k blockKind, tag string) bool {
	if d.kind == k {
		return false
	}
	d.close()
	d.kind = k
	d.out.WriteString(tag)
	return true
}

func (d *doc) close() {
	switch d.kind {
	case blockPara:
		d.out.WriteString("</p>")
	case blockBullets:
		d.out.WriteString("</ul>")
	case blockOrdered:
		d.out.WriteString("</ol>")
	case blockQuote:
		d.out.WriteString("</p></blockquote>")
	case blockTable:
		if d.tbody {
			d.out.WriteString("</tbody>")
		}
		d.out.WriteString("</table>")
		d.tbody = false
	}
	d.kind = blockNone
}

func (d *doc) closeCode() {
	if d.code {
		d.out.WriteString("</code></pre>")
		d.code = false
	}
}

func (d *doc) line(line string) {
	trimmed := strings.TrimSpace(line)

	if d.code {
		if strings.HasPrefix(trimmed, d.fence) && strings.Trim(trimmed, d.fence[:1]) == "" {
			d.closeCode()
			return
		}
		d.out.WriteString(html.EscapeString(line))
		d.out.WriteByte('\n')
		return
	}

	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		d.close()
		d.fence = trimmed[:3]
		lang := strings.TrimSpace(strings.TrimLeft(trimmed, d.fence[:1]))
		if lang != "" {
			d.out.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
		} else {
			d.out.WriteString("<pre><code>")
		}
		d.code = true
		return
	}

	if trimmed == "" {
		d.close()
		return
	}

	if m := reHeading.FindStringSubmatch(line); m != nil {
		d.close()
		level := strconv.Itoa(len(m[1]))
		d.out.WriteString("<h" + level)
		if d.r.headingIDs {
			if id := d.headingID(m[2]); id != "" {
				d.out.WriteString(` id="` + id + `"`)
			}
		}
		d.out.WriteString(">" + d.r.inline(m[2]) + "</h" + level + ">")
		return
	}

	if reRule.MatchString(line) {
		d.close()
		d.out.WriteString("<hr/>")
		return
	}

	if strings.HasPrefix(trimmed, "|") {
		d.tableRow(trimmed)
		return
	}

	if m := reBullet.FindStringSubmatch(line); m != nil {
		d.open(blockBullets, "<ul>")
		d.out.WriteString("<li>" + d.r.inline(m[1]) + "</li>")
		return
	}

	if m := reOrdered.FindStringSubmatch(line); m != nil {
		d.open(blockOrdered, "<ol>")
		d.out.WriteString("<li>" + d.r.inline(m[1]) + "</li>")
		return
	}

	if m := reQuote.FindStringSubmatch(line); m != nil {
		if !d.open(blockQuote, "<blockquote><p>") {
			d.out.WriteByte('\n')
		}
		d.out.WriteString(d.r.inline(m[1]))
		return
	}

	// Consecutive plain lines form one paragraph.
	if !d.open(blockPara, "<p>") {
		d.out.WriteByte('\n')
	}
	d.out.WriteString(d.r.inline(trimmed))
}

func (d *doc) tableRow(line string) {
	cells := splitCells(line)
	if d.open(blockTable, "<table><thead><tr>") {
		for _, c := range cells {
			d.out.WriteString("<th>" + d.r.inline(c) + "</th>")
		}
		d.out.WriteString("</tr></thead>")
		return
	}
	if isSeparatorRow(cells) {
		return
	}
	if !d.tbody {
		d.out.WriteString("<tbody>")
		d.tbody = true
	}
	d.out.WriteString("<tr>")
	for _, c := range cells {
		d.out.WriteString("<td>" + d.r.inline(c) + "</td>")
	}
	d.out.WriteString("</tr>")
}

func splitCells(line string) []string {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" || strings.Trim(c, "-:") != "" {
			return false
		}
	}
	return true
}

// headingID derives a document-unique anchor from heading text.
func (d *doc) headingID(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == ' ' || r == '-' || r == '_':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	id := strings.TrimRight(b.String(), "-")
	if id == "" {
		return ""
	}
	n := d.ids[id]
	d.ids[id] = n + 1
	if n > 0 {
		id += "-" + strconv.Itoa(n)
	}
	return id
}

// inline escapes s and applies code spans, images, links and emphasis.
func (r *Renderer) inline(s string) string {
	escaped := html.EscapeString(s)

	// Code spans are swapped out first so nothing inside them is formatted.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reImage.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := r.url(match[2])
		if src == "" {
			return match[1]
		}
		img := `<img src="` + src + `" alt="` + match[1] + `"`
		if match[3] != "" {
			img += ` title="` + match[3] + `"`
		}
		return img + ` loading="lazy" decoding="async"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := r.url(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if isExternal(href) {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnder.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnder.ReplaceAllString(seg, "$1<em>$2</em>$3")
		seg = reStrike.ReplaceAllString(seg, "<del>$1</del>")
		return seg
	})

	for i, span := range spans {
		escaped = strings.Replace(escaped, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return escaped
}

func (r *Renderer) url(escaped string) string {
	raw := html.UnescapeString(escaped)
	if r.rewrite != nil {
		raw = r.rewrite(raw)
	}
	return SafeURL(raw)
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// ApplyOutsideTags applies fn only to text between HTML tags, so formatting
// never touches attribute values such as URLs.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL returns raw escaped for an HTML attribute, or "" when it is not a
// relative reference or an http, https, mailto or tel URL.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		if strings.HasPrefix(val, "//") {
			return ""
		}
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	case "":
		if strings.Contains(val, ":") {
			return ""
		}
		return html.EscapeString(val)
	}
	return ""
}
