package ingest

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the index in sync with a docs folder: new or rewritten
// course scripts are re-ingested as they land on disk.
type Watcher struct {
	fs       *fsnotify.Watcher
	pipeline *Pipeline
}

// NewWatcher creates a docs folder watcher backed by the given pipeline.
func NewWatcher(pipeline *Pipeline) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fs: fs, pipeline: pipeline}, nil
}

// Run watches dir until the context is cancelled. Ingestion failures are
// logged and never stop the watch loop.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	log.Printf("[Watcher] Watching %s for course documents", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !courseExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			if _, _, err := w.pipeline.ReplaceCourseFile(ctx, event.Name); err != nil {
				log.Printf("[Watcher] Failed to ingest %s: %v", filepath.Base(event.Name), err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watcher] Watch error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
