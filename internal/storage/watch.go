package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"alera/internal/models"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidate drops the cached index of category; the next request reloads it
// from its sources.
func (c *Catalog) Invalidate(category models.Category) {
	c.mu.Lock()
	delete(c.entries, category)
	c.mu.Unlock()
}

// Watch invalidates a category whenever one of its source files is replaced,
// so indexes rebuilt out of band are picked up without a restart. It returns
// once the watcher is running; watching stops when ctx is done.
func (c *Catalog) Watch(ctx context.Context) error {
	owners := c.sourceFiles()
	if len(owners) == 0 {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dirs := map[string]struct{}{}
	for path := range owners {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				category, ok := owners[filepath.Clean(event.Name)]
				if !ok {
					continue
				}
				c.Invalidate(category)
				c.logger.Info("category index invalidated",
					zap.String("category", string(category)),
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()),
				)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.logger.Warn("index watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (c *Catalog) sourceFiles() map[string]models.Category {
	out := map[string]models.Category{}
	for name, src := range c.sources.Categories {
		paths := []string{src.Corpus, src.Index}
		if c.backend == BackendSQLite {
			paths = []string{src.SQLite}
		}
		for _, p := range paths {
			if p != "" {
				out[filepath.Clean(p)] = models.Category(name)
			}
		}
	}
	return out
}
