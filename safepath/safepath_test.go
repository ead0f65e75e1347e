package safepath

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"
	"time"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

func TestSlugAcceptsWhitelist(t *testing.T) {
	f := func(raw []byte) bool {
		if len(raw) == 0 {
			return true
		}
		var b strings.Builder
		for _, c := range raw {
			b.WriteByte(slugAlphabet[int(c)%len(slugAlphabet)])
		}
		s := b.String()
		got, err := Slug(s)
		return err == nil && got == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSlugRejectsOutsideWhitelist(t *testing.T) {
	f := func(s string) bool {
		got, err := Slug(s)
		if err != nil {
			return errors.Is(err, ErrInvalidIdentifier) && got == ""
		}
		return s != "" && strings.Trim(s, slugAlphabet) == "" && got == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSlugRejects(t *testing.T) {
	tests := []string{
		"",
		"../etc",
		"..%2fetc",
		"hello world",
		"hello.md",
		"post/one",
		`post\one`,
		"ｈｅｌｌｏ",
		"héllo",
		"slug\x00",
	}
	for _, in := range tests {
		if _, err := Slug(in); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("Slug(%q) err = %v, want ErrInvalidIdentifier", in, err)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"1700000000000_song.mp3", true},
		{"cover_1_a-b.png", true},
		{"a..b.mp3", true},
		{"", false},
		{".", false},
		{"..", false},
		{".env", false},
		{"../../etc/passwd", false},
		{"dir/file.mp3", false},
		{"my song.mp3", false},
	}
	for _, tt := range tests {
		got, err := Filename(tt.in)
		if tt.ok && (err != nil || got != tt.in) {
			t.Errorf("Filename(%q) = %q, %v; want accepted", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("Filename(%q) err = %v, want ErrInvalidIdentifier", tt.in, err)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my song.mp3", "my_song.mp3"},
		{"Live (2023) – Take 2.flac", "Live_2023__Take_2.flac"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\avatar.png`, "avatar.png"},
		{".hidden", "hidden"},
		{"歌.mp3", "mp3"},
		{"", "file"},
		{"...", "file"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if _, err := Filename(Clean(tt.in)); err != nil {
			t.Errorf("Filename(Clean(%q)) failed: %v", tt.in, err)
		}
	}
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	got := StoredName("cover_", "a b.png", now)
	if got != "cover_1700000000123_a_b.png" {
		t.Errorf("StoredName = %q", got)
	}
}

func TestEnsureWithin(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		target string
		ok     bool
	}{
		{filepath.Join(base, "a.md"), true},
		{filepath.Join(base, "sub", "a.md"), true},
		{filepath.Join(base, "sub", "..", "a.md"), true},
		{base, false},
		{filepath.Join(base, ".."), false},
		{filepath.Join(base, "..", "..", "etc", "passwd"), false},
		{base + "-evil/a.md", false},
		{"/etc/passwd", false},
	}
	for _, tt := range tests {
		err := EnsureWithin(tt.target, base)
		if tt.ok && err != nil {
			t.Errorf("EnsureWithin(%q) = %v, want nil", tt.target, err)
		}
		if !tt.ok && !errors.Is(err, ErrPathTraversal) {
			t.Errorf("EnsureWithin(%q) = %v, want ErrPathTraversal", tt.target, err)
		}
	}
}

func TestEnsureWithinRelativeBase(t *testing.T) {
	if err := EnsureWithin("content/posts/a.md", "content/posts"); err != nil {
		t.Errorf("relative descendant rejected: %v", err)
	}
	if err := EnsureWithin("content/posts/../../x", "content/posts"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("relative escape accepted: %v", err)
	}
}

func TestJoin(t *testing.T) {
	base := t.TempDir()
	p, err := Join(base, "track.mp3")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if p != filepath.Join(base, "track.mp3") {
		t.Errorf("Join = %q", p)
	}
	for _, name := range []string{"../../etc/passwd", "..", "", "a/b"} {
		if _, err := Join(base, name); err == nil {
			t.Errorf("Join(%q) should fail", name)
		}
	}
}
