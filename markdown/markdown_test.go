package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInlineEmphasis(t *testing.T) {
	r := New()
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"~~gone~~", "<del>gone</del>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"snake_case_name", "snake_case_name"},
	}
	for _, tt := range tests {
		got := r.inline(tt.input)
		if got != tt.expected {
			t.Errorf("inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineEscapesHTML(t *testing.T) {
	got := New().inline(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw html leaked: %q", got)
	}
}

func TestInlineCodeIsNotFormatted(t *testing.T) {
	got := New().inline("use `**kwargs` here")
	want := "use <code>**kwargs</code> here"
	if got != want {
		t.Fatalf("inline = %q, want %q", got, want)
	}
}

func TestInlineLinks(t *testing.T) {
	r := New()
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"relative", "[home](/blog/)", `<a href="/blog/">home</a>`},
		{"external", "[gh](https://github.com)", `target="_blank" rel="noopener noreferrer"`},
		{"javascript dropped", "[x](javascript:alert(1))", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.inline(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("inline(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
			if strings.Contains(got, "javascript:") {
				t.Errorf("inline(%q) = %q kept a javascript URL", tt.input, got)
			}
		})
	}
}

func TestImageURLRewrite(t *testing.T) {
	r := New(WithURLRewriter(func(u string) string {
		if strings.HasPrefix(u, "/uploads/") {
			return "/api/static" + u
		}
		return u
	}))
	got := r.inline(`![cover](/uploads/a.png "Cover")`)
	if !strings.Contains(got, `src="/api/static/uploads/a.png"`) {
		t.Errorf("image src not rewritten: %q", got)
	}
	if !strings.Contains(got, `title="Cover"`) || !strings.Contains(got, `alt="cover"`) {
		t.Errorf("image attributes missing: %q", got)
	}

	got = r.inline("![x](https://cdn.example.com/a.png)")
	if !strings.Contains(got, `src="https://cdn.example.com/a.png"`) {
		t.Errorf("external image changed: %q", got)
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"paragraphs", "one\ntwo\n\nthree", "<p>one\ntwo</p><p>three</p>"},
		{"heading", "## Title ##", "<h2>Title</h2>"},
		{"rule", "para\n\n***", "<p>para</p><hr/>"},
		{"bullets", "- a\n* b\n+ c", "<ul><li>a</li><li>b</li><li>c</li></ul>"},
		{"ordered", "1. a\n2) b", "<ol><li>a</li><li>b</li></ol>"},
		{"quote", "> a\n> b", "<blockquote><p>a\nb</p></blockquote>"},
		{"list then para", "- a\ntext", "<ul><li>a</li></ul><p>text</p>"},
		{"code", "```go\nif a < b {}\n```", `<pre><code class="language-go">if a &lt; b {}` + "\n</code></pre>"},
		{"tilde code", "~~~\n**x**\n~~~", "<pre><code>**x**\n</code></pre>"},
		{"unterminated code", "```\nx", "<pre><code>x\n</code></pre>"},
		{"crlf", "a\r\nb", "<p>a\nb</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().Render(tt.input)
			if got != tt.expected {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	input := "| A | B |\n|---|:-:|\n| 1 | **2** |"
	got := New().Render(input)
	want := "<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td><strong>2</strong></td></tr></tbody></table>"
	if got != want {
		t.Errorf("Render table = %q, want %q", got, want)
	}
}

func TestHeadingIDs(t *testing.T) {
	got := New(WithHeadingIDs()).Render("# Hello World\n# Hello World\n# 你好")
	for _, want := range []string{`<h1 id="hello-world">`, `<h1 id="hello-world-1">`, `<h1 id="你好">`} {
		if !strings.Contains(got, want) {
			t.Errorf("Render = %q, missing %q", got, want)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("# Hi").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "<h1>Hi</h1>" {
		t.Fatalf("component output = %q", buf.String())
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/uploads/a.png", "/uploads/a.png"},
		{"#top", "#top"},
		{"https://example.com/?a=1&b=2", "https://example.com/?a=1&amp;b=2"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"page.html", "page.html"},
		{"javascript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"//evil.example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestApplyOutsideTags(t *testing.T) {
	got := ApplyOutsideTags(`a <a href="x_y_z">b</a> c`, strings.ToUpper)
	want := `A <a href="x_y_z">B</a> C`
	if got != want {
		t.Errorf("ApplyOutsideTags = %q, want %q", got, want)
	}
}
