package folio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPostWatcherInvalidatesCache(t *testing.T) {
	s, cleanup := setupPostStore(t)
	defer cleanup()
	a := &App{Posts: s, Cache: NewPostCache(s, time.Hour)}

	w, err := a.newPostWatcher()
	if err != nil {
		t.Fatalf("newPostWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.runPostWatcher(ctx, w) }()

	if posts, err := a.Cache.ListPosts(); err != nil || len(posts) != 0 {
		t.Fatalf("ListPosts = %v, %v", posts, err)
	}

	doc := "---\ntitle: Edited\n---\nbody\n"
	if err := os.WriteFile(filepath.Join(s.Dir(), "edited.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		posts, _ := a.Cache.ListPosts()
		if len(posts) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache not invalidated after external edit")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runPostWatcher returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("runPostWatcher did not stop")
	}
}
