package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store holds the catalog new sessions start from. Swapping it never
// affects sessions that already took a catalog.
type Store struct {
	p atomic.Pointer[Catalog]
}

// NewStore creates a store holding c
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.p.Store(c)
	return s
}

// Current returns the catalog for the next session
func (s *Store) Current() *Catalog {
	return s.p.Load()
}

// Swap replaces the catalog and returns the previous one
func (s *Store) Swap(c *Catalog) *Catalog {
	return s.p.Swap(c)
}

// reloadDebounce collapses the write bursts editors produce on save
const reloadDebounce = 200 * time.Millisecond

// Watch reloads path into store whenever the file changes, until ctx is
// done. A file that fails to parse leaves the store untouched.
func Watch(ctx context.Context, path string, store *Store, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory; editors often replace the file by rename.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching catalog", zap.String("path", abs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("catalog watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			c, err := LoadFile(abs, log)
			if err != nil {
				log.Warn("catalog reload failed, keeping previous", zap.Error(err))
				continue
			}
			store.Swap(c)
			log.Info("catalog reloaded",
				zap.Int("clips", len(c.variants)),
				zap.Int("rejected", len(c.rejected)))
		}
	}
}
