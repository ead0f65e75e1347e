// Package safepath guards every filesystem path built from request input.
//
// Identifiers are checked against a whitelist rather than scrubbed for known
// traversal sequences, and resolved paths are checked for containment in
// their base directory as a second, independent layer.
package safepath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrInvalidIdentifier is returned when an identifier contains characters
	// outside its whitelist or is empty.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrPathTraversal is returned when a resolved path escapes its base directory.
	ErrPathTraversal = errors.New("path traversal")
)

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}

func isFilenameRune(r rune) bool {
	return isSlugRune(r) || r == '.'
}

func keep(s string, allowed func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug returns input unchanged when it consists only of [A-Za-z0-9_-].
// Anything else, including the empty string, fails with ErrInvalidIdentifier.
func Slug(input string) (string, error) {
	out := keep(input, isSlugRune)
	if out == "" || out != input {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	}
	return out, nil
}

// Filename is Slug for stored asset names: it additionally allows '.', but
// rejects names that start with one so "..", "." and dotfiles never pass.
func Filename(input string) (string, error) {
	out := keep(input, isFilenameRune)
	if out == "" || out != input || strings.HasPrefix(out, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	}
	return out, nil
}

// Clean turns a client-supplied filename into one that Filename accepts.
// Directory components are dropped, whitespace becomes '_' and other
// characters outside the whitelist are removed.
func Clean(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case isFilenameRune(r):
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// StoredName builds the on-disk name for an upload: prefix, the upload time
// in unix milliseconds, '_' and the cleaned original name.
func StoredName(prefix, original string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + Clean(original)
}

// EnsureWithin fails with ErrPathTraversal unless target, once made absolute
// and cleaned, is a strict descendant of base.
func EnsureWithin(target, base string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPathTraversal, err)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPathTraversal, err)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q is outside %q", ErrPathTraversal, target, base)
	}
	return nil
}

// Join sanitizes name with Filename, joins it onto base and verifies the
// result stays inside base.
func Join(base, name string) (string, error) {
	clean, err := Filename(name)
	if err != nil {
		return "", err
	}
	p := filepath.Join(base, clean)
	if err := EnsureWithin(p, base); err != nil {
		return "", err
	}
	return p, nil
}
