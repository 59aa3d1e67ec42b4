// Package watcher turns file system rename events under a project root into
// RenameOperations.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
)

// RenameHandler is called once per detected rename, after the debounce
// window has passed without further renames.
type RenameHandler func(ctx context.Context, op models.RenameOperation) error

type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	exclude  []string
	debounce time.Duration
	pairer   *renamePairer
	onRename RenameHandler

	mutex         sync.Mutex
	queue         []models.RenameOperation
	debounceTimer *time.Timer
}

// New creates a watcher for root and registers every directory below it.
// Directories named in exclude (relative to root) are not watched.
func New(root string, exclude []string, debounce time.Duration, onRename RenameHandler) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	w := &Watcher{
		watcher:  fsw,
		root:     abs,
		exclude:  exclude,
		debounce: debounce,
		pairer:   newRenamePairer(debounce),
		onRename: onRename,
	}
	if err := w.addWatchersRecursively(abs); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add watchers: %w", err)
	}
	return w, nil
}

// Run watches until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Watching %s for renames", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if w.shouldExcludePath(event.Name) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					if err := w.addWatchersRecursively(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
				}
			}

			if op, ok := w.pairer.Observe(event, time.Now()); ok {
				logger.Debug("Detected rename %s", op)
				w.enqueue(ctx, op)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) enqueue(ctx context.Context, op models.RenameOperation) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.queue = append(w.queue, op)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
}

func (w *Watcher) flush(ctx context.Context) {
	w.mutex.Lock()
	queue := w.queue
	w.queue = nil
	w.mutex.Unlock()

	for _, op := range queue {
		if ctx.Err() != nil {
			return
		}
		if err := w.onRename(ctx, op); err != nil {
			logger.Error("Failed to handle rename %s: %v", op, err)
		}
	}
}

// Close stops pending work and releases the OS watches.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	return w.watcher.Close()
}

func (w *Watcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)
	segments := strings.Split(relPath, string(filepath.Separator))

	for _, excludePath := range w.exclude {
		excludePath = filepath.Clean(excludePath)
		if relPath == excludePath || strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
		// a bare directory name is excluded at any depth
		if !strings.ContainsRune(excludePath, filepath.Separator) && slices.Contains(segments, excludePath) {
			return true
		}
	}
	return false
}

func (w *Watcher) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}

type pendingRename struct {
	path string
	at   time.Time
}

// renamePairer matches a Rename event (the old name disappearing) with the
// next Create event (the new name appearing) inside a time window.
type renamePairer struct {
	window  time.Duration
	pending []pendingRename
}

func newRenamePairer(window time.Duration) *renamePairer {
	return &renamePairer{window: window}
}

// Observe feeds one event and returns a rename once both halves were seen.
func (p *renamePairer) Observe(event fsnotify.Event, now time.Time) (models.RenameOperation, bool) {
	p.expire(now)

	switch {
	case event.Has(fsnotify.Rename):
		p.pending = append(p.pending, pendingRename{path: event.Name, at: now})
	case event.Has(fsnotify.Create) && len(p.pending) > 0:
		oldest := p.pending[0]
		p.pending = p.pending[1:]
		if oldest.path == event.Name {
			// renamed back onto itself or recreated; nothing moved
			return models.RenameOperation{}, false
		}
		return models.RenameOperation{
			OldPath: paths.Normalize(filepath.ToSlash(oldest.path)),
			NewPath: paths.Normalize(filepath.ToSlash(event.Name)),
		}, true
	}
	return models.RenameOperation{}, false
}

func (p *renamePairer) expire(now time.Time) {
	kept := p.pending[:0]
	for _, r := range p.pending {
		if now.Sub(r.at) <= p.window {
			kept = append(kept, r)
		} else {
			logger.Debug("Rename of %s left the project or was not followed by a create", r.path)
		}
	}
	p.pending = kept
}
