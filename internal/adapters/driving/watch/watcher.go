// Package watch ingests documents from a directory as files appear
// and change, keeping the engine in sync with the filesystem.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// Watcher mirrors a directory into the retrieval engine. Created and
// modified files are (re)ingested; removed files are deleted. Hidden
// files and directories are skipped.
type Watcher struct {
	retriever driving.Retriever
	dir       string

	mu   sync.Mutex
	docs map[string]string // file path -> document id
}

// New creates a watcher over dir. The directory must exist.
func New(retriever driving.Retriever, dir string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Watcher{
		retriever: retriever,
		dir:       dir,
		docs:      make(map[string]string),
	}, nil
}

// Run ingests the directory's current files, then blocks processing
// filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := w.handleEvent(ctx, event); err != nil {
				logger.Warn("event %s: %v", event, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := w.ingest(ctx, path); err != nil {
			logger.Warn("ingest %s: %v", path, err)
		}
	}
	return nil
}

// handleEvent applies one filesystem event to the engine.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	if isHidden(event.Name) {
		return nil
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Transient: file may be gone already.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		return w.ingest(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return w.remove(ctx, event.Name)
	}
	// Chmod and friends carry no content change.
	return nil
}

// ingest (re)ingests a file, replacing any previous version.
func (w *Watcher) ingest(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	if err := w.remove(ctx, path); err != nil {
		return err
	}

	id, err := w.retriever.AddDocument(ctx, string(data), map[string]any{"path": path})
	if err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}

	w.mu.Lock()
	w.docs[path] = id
	w.mu.Unlock()

	logger.Debug("ingested %s as %s", path, id)
	return nil
}

// remove deletes the document previously ingested from path, if any.
func (w *Watcher) remove(ctx context.Context, path string) error {
	w.mu.Lock()
	id, ok := w.docs[path]
	if ok {
		delete(w.docs, path)
	}
	w.mu.Unlock()
	if !ok {
		return nil
	}

	if _, err := w.retriever.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	logger.Debug("removed %s (%s)", path, id)
	return nil
}

// tracked returns the document id currently associated with path.
func (w *Watcher) tracked(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.docs[path]
	return id, ok
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
