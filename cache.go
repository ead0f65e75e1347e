package folio

import (
	"sync"
	"time"

	"github.com/eringen/folio/safepath"
)

// PostCache is an in-memory copy of the post list with a TTL. Writers call
// Invalidate; the next read reloads from disk.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Post
	fetched time.Time
	ttl     time.Duration
	store   *PostStore
}

// NewPostCache creates a PostCache backed by the given PostStore.
func NewPostCache(s *PostStore, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ListPosts returns all posts, newest first. The returned slice is shared
// and must not be modified.
func (c *PostCache) ListPosts() ([]Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.List()
	if err != nil {
		return nil, err
	}
	c.posts = posts
	c.fetched = time.Now()
	return posts, nil
}

// GetPost returns a single post by slug from the cache.
func (c *PostCache) GetPost(slug string) (Post, error) {
	if _, err := safepath.Slug(slug); err != nil {
		return Post{}, err
	}
	posts, err := c.ListPosts()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}
