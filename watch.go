package folio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/folio/logger"
)

// newPostWatcher watches the posts directory, creating it if needed.
func (a *App) newPostWatcher() (*fsnotify.Watcher, error) {
	if err := a.Posts.ensureDir(); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(a.Posts.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", a.Posts.Dir(), err)
	}
	return w, nil
}

// runPostWatcher invalidates the post cache whenever a markdown file changes
// on disk, so edits made outside the API show up before the TTL expires.
// It closes w and returns when ctx is done.
func (a *App) runPostWatcher(ctx context.Context, w *fsnotify.Watcher) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// temp files from atomic writes end in .tmp and are skipped
			if filepath.Ext(ev.Name) != postExt || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("post changed on disk", logger.String("file", filepath.Base(ev.Name)), logger.String("op", ev.Op.String()))
			a.Cache.Invalidate()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("post watcher error", logger.ErrorField(err))
		}
	}
}
