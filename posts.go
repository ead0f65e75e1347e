package folio

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/folio/safepath"
)

const postExt = ".md"

// PostStore keeps one markdown file per post in a single directory. The
// directory listing is the collection; there is no index.
type PostStore struct {
	dir    string
	writer *serialWriter
}

// NewPostStore returns a store over dir. The directory is created on first use.
func NewPostStore(dir string) *PostStore {
	return &PostStore{dir: dir, writer: newSerialWriter()}
}

// Dir returns the directory holding the markdown files.
func (s *PostStore) Dir() string {
	return s.dir
}

// Close stops the store's write queue.
func (s *PostStore) Close() {
	s.writer.Close()
}

func (s *PostStore) ensureDir() error {
	return persistErr("mkdir", s.dir, os.MkdirAll(s.dir, 0o755))
}

// path maps a slug to its file, rejecting anything that is not a valid slug
// or that would resolve outside the posts directory.
func (s *PostStore) path(slug string) (string, error) {
	clean, err := safepath.Slug(slug)
	if err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, clean+postExt)
	if err := safepath.EnsureWithin(p, s.dir); err != nil {
		return "", err
	}
	return p, nil
}

// List returns every post ordered by date descending. Dates are compared as
// strings, which orders ISO-8601 values correctly.
func (s *PostStore) List() ([]Post, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, persistErr("list", s.dir, err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, postExt) {
			continue
		}
		slug := strings.TrimSuffix(name, postExt)
		if _, err := safepath.Slug(slug); err != nil {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, name))
		if errors.Is(err, ErrNotFound) {
			continue // removed between ReadDir and read
		}
		if err != nil {
			return nil, err
		}
		p.Slug = slug
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// Get returns the post stored under slug.
func (s *PostStore) Get(slug string) (Post, error) {
	path, err := s.path(slug)
	if err != nil {
		return Post{}, err
	}
	p, err := s.read(path)
	if err != nil {
		return Post{}, err
	}
	p.Slug = slug
	return p, nil
}

func (s *PostStore) read(path string) (Post, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, persistErr("read", path, err)
	}
	p, err := parsePost(data)
	if err != nil {
		return Post{}, persistErr("parse", path, err)
	}
	return p, nil
}

// Create writes p to "<slug>.md", replacing any post with the same slug.
func (s *PostStore) Create(ctx context.Context, p Post) error {
	path, err := s.path(p.Slug)
	if err != nil {
		return err
	}
	data, err := marshalPost(p)
	if err != nil {
		return persistErr("encode", path, err)
	}
	return s.writer.Do(ctx, func() error {
		return writeFileAtomic(path, data, 0o644)
	})
}

// Delete removes the post stored under slug. A post that is already gone is
// not an error.
func (s *PostStore) Delete(ctx context.Context, slug string) error {
	path, err := s.path(slug)
	if err != nil {
		return err
	}
	return s.writer.Do(ctx, func() error {
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return persistErr("delete", path, err)
	})
}
