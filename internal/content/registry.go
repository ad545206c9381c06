package content

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after the catalog was swapped for a new version.
type ReloadCallback func(c *Catalog)

// Registry holds the current catalog and swaps it on reload.
type Registry struct {
	path    string
	current atomic.Pointer[Catalog]
}

// NewRegistry loads the catalog at path (embedded default when empty).
func NewRegistry(path string) (*Registry, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	r := &Registry{path: path}
	r.current.Store(c)
	return r, nil
}

// Catalog returns the current snapshot.
func (r *Registry) Catalog() *Catalog {
	return r.current.Load()
}

// Reload re-reads the content file. The previous catalog stays in place on
// error. It reports whether the version changed.
func (r *Registry) Reload() (bool, error) {
	c, err := Load(r.path)
	if err != nil {
		return false, err
	}
	prev := r.current.Swap(c)
	return prev == nil || prev.Version != c.Version, nil
}

// Watch reloads the catalog when the content file changes and returns when
// ctx is cancelled. Editors replace files by rename, so the parent directory
// is watched and events are filtered by name. Bursts are debounced.
func (r *Registry) Watch(ctx context.Context, logger *slog.Logger, cb ReloadCallback) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("content watcher: started", slog.String("path", abs))

	const debounce = 150 * time.Millisecond
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("content watcher: stopped")
			return nil

		case <-fire:
			changed, err := r.Reload()
			if err != nil {
				logger.Warn("content watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			if !changed {
				continue
			}
			c := r.Catalog()
			logger.Info("content watcher: reloaded", slog.String("version", c.Version[:12]))
			if cb != nil {
				cb(c)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("content watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
