package folio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func setupPostStore(t *testing.T) (*PostStore, func()) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "posts")
	s := NewPostStore(dir)
	return s, s.Close
}

func TestPostCreateAndGet(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()

	post := Post{
		Slug:       "hello-world",
		Title:      "Hello: a post",
		Date:       "2024-01-01T00:00:00.000Z",
		Excerpt:    "first line\nsecond: line",
		CoverImage: "/uploads/1700000000000_cover.png",
		Content:    "# Heading\n\n---\n\nbody with a rule above\n",
	}
	if err := s.Create(context.Background(), post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get("hello-world")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != post {
		t.Errorf("Get = %+v, want %+v", got, post)
	}
	if got.Link() != "/blog/hello-world/" {
		t.Errorf("Link = %q", got.Link())
	}
}

func TestPostCreateOverwrites(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Create(ctx, Post{Slug: "a", Title: "Original"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Create(ctx, Post{Slug: "a", Title: "Updated"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", got.Title)
	}
	posts, _ := s.List()
	if len(posts) != 1 {
		t.Errorf("List returned %d posts, want 1", len(posts))
	}
}

func TestPostListOrder(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, p := range []Post{
		{Slug: "old", Date: "2023-05-01T00:00:00.000Z"},
		{Slug: "new", Date: "2024-02-01T00:00:00.000Z"},
		{Slug: "tie-b", Date: "2023-12-01"},
		{Slug: "tie-a", Date: "2023-12-01"},
	} {
		if err := s.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) failed: %v", p.Slug, err)
		}
	}

	posts, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"new", "tie-a", "tie-b", "old"}
	if len(posts) != len(want) {
		t.Fatalf("List returned %d posts, want %d", len(posts), len(want))
	}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Errorf("posts[%d] = %q, want %q", i, posts[i].Slug, slug)
		}
	}
}

func TestPostListCreatesDirectory(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()

	posts, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("List = %v, want empty slice", posts)
	}
	if info, err := os.Stat(s.Dir()); err != nil || !info.IsDir() {
		t.Errorf("posts directory not created: %v", err)
	}
}

func TestPostListSkipsForeignFiles(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()

	if err := s.Create(context.Background(), Post{Slug: "real", Title: "Real"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, name := range []string{"notes.txt", "bad name.md", ".hidden.md"} {
		if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "dir.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	posts, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "real" {
		t.Errorf("List = %+v, want only the real post", posts)
	}
}

func TestPostDeleteIsIdempotent(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Create(ctx, Post{Slug: "gone", Title: "Gone"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, err := s.Get("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
}

func TestPostGetNotFound(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestPostRejectsUnsafeSlugs(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, slug := range []string{"", "../escape", "a/b", "..", "a.b", "%2e%2e", "héllo", "a b"} {
		t.Run(fmt.Sprintf("%q", slug), func(t *testing.T) {
			if err := s.Create(ctx, Post{Slug: slug}); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("Create err = %v, want ErrInvalidIdentifier", err)
			}
			if _, err := s.Get(slug); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("Get err = %v, want ErrInvalidIdentifier", err)
			}
			if err := s.Delete(ctx, slug); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("Delete err = %v, want ErrInvalidIdentifier", err)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.Dir()), "escape.md")); !os.IsNotExist(err) {
		t.Errorf("file written outside the posts directory")
	}
}

func TestPostConcurrentCreates(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := Post{Slug: fmt.Sprintf("post-%02d", i), Date: fmt.Sprintf("2024-01-%02d", i+1)}
			if err := s.Create(context.Background(), p); err != nil {
				t.Errorf("Create failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	posts, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 20 {
		t.Errorf("List returned %d posts, want 20", len(posts))
	}
}

func TestParsePost(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Post
	}{
		{
			name:  "front matter",
			input: "---\ntitle: Hi\ndate: 2024-01-01\nexcerpt: short\n---\nbody\n",
			want:  Post{Title: "Hi", Date: "2024-01-01", Excerpt: "short", Content: "body\n"},
		},
		{
			name:  "crlf and bom",
			input: "\ufeff---\r\ntitle: Hi\r\n---\r\nbody",
			want:  Post{Title: "Hi", Content: "body"},
		},
		{
			name:  "no front matter",
			input: "just markdown",
			want:  Post{Content: "just markdown"},
		},
		{
			name:  "unterminated front matter is body",
			input: "---\ntitle: Hi\nbody",
			want:  Post{Content: "---\ntitle: Hi\nbody"},
		},
		{
			name:  "empty body",
			input: "---\ntitle: Hi\n---",
			want:  Post{Title: "Hi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePost([]byte(tt.input))
			if err != nil {
				t.Fatalf("parsePost failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("parsePost = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePostInvalidYAML(t *testing.T) {
	if _, err := parsePost([]byte("---\ntitle: [unclosed\n---\nbody")); err == nil {
		t.Error("parsePost should fail on malformed front matter")
	}
}
