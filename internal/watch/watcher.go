// Package watch observes the corpus directories and reports debounced
// change batches so the engine can invalidate its graph and cache.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/logger"
)

// DefaultDebounce batches rapid successive writes (editors save in
// bursts) into one notification.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives corpus-relative paths of changed assets.
type Handler func(paths []string)

// Watcher wraps fsnotify over the configured type directories.
type Watcher struct {
	cfg      config.CorpusConfig
	log      *logger.Logger
	debounce time.Duration
	handler  Handler
}

// New creates a Watcher. A zero debounce uses DefaultDebounce.
func New(cfg config.CorpusConfig, log *logger.Logger, debounce time.Duration, handler Handler) *Watcher {
	if log == nil {
		log = logger.NewDefault()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{cfg: cfg, log: log, debounce: debounce, handler: handler}
}

// Run watches until the context is cancelled. Missing type directories
// are skipped, matching the scanner's behavior.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	watched := 0
	for t, dir := range w.cfg.Types {
		full := filepath.Join(w.cfg.Root, dir)
		if err := fsw.Add(full); err != nil {
			w.log.Debugw("not watching missing type directory", "type", t, "dir", full)
			continue
		}
		watched++
	}
	if watched == 0 {
		w.log.Warnw("no type directories found to watch", "root", w.cfg.Root)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.cfg.Root, event.Name)
			if err != nil {
				rel = event.Name
			}
			pending[filepath.ToSlash(rel)] = true
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := Flush(pending)
			pending = make(map[string]bool)
			w.log.Debugw("corpus change detected", "assets", len(batch))
			if w.handler != nil {
				w.handler(batch)
			}
		}
	}
}

// Flush drains a pending set into a sorted batch. Split out for testing.
func Flush(pending map[string]bool) []string {
	batch := make([]string, 0, len(pending))
	for p := range pending {
		batch = append(batch, p)
	}
	sort.Strings(batch)
	return batch
}
