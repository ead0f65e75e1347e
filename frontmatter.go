package folio

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// splitFrontMatter separates a leading "---" delimited metadata block from
// the markdown body. Documents without one are all body.
func splitFrontMatter(doc string) (meta, body string, ok bool) {
	doc = strings.TrimPrefix(doc, "\ufeff")
	first, rest, found := strings.Cut(doc, "\n")
	if !found || strings.TrimRight(first, "\r") != frontMatterDelim {
		return "", doc, false
	}
	offset := 0
	for {
		line, next, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r") == frontMatterDelim {
			if !more {
				next = ""
			}
			return rest[:offset], next, true
		}
		if !more {
			return "", doc, false
		}
		offset += len(line) + 1
	}
}

// parsePost decodes a markdown document. The slug is not part of the
// document and is left to the caller.
func parsePost(data []byte) (Post, error) {
	var p Post
	meta, body, ok := splitFrontMatter(string(data))
	if ok && strings.TrimSpace(meta) != "" {
		if err := yaml.Unmarshal([]byte(meta), &p); err != nil {
			return Post{}, fmt.Errorf("front matter: %w", err)
		}
	}
	p.Content = body
	return p, nil
}

// marshalPost renders p as YAML front matter followed by its markdown body.
func marshalPost(p Post) ([]byte, error) {
	meta, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	buf.Write(meta)
	buf.WriteString(frontMatterDelim + "\n")
	buf.WriteString(p.Content)
	return buf.Bytes(), nil
}
