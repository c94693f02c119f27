package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates a circuit's cache whenever a file in its directory
// changes. It blocks until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context) error {
	if err := os.MkdirAll(r.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dataDir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dataDir, err)
	}
	circuits, err := r.Circuits()
	if err != nil {
		return err
	}
	for _, c := range circuits {
		if err := watcher.Add(r.circuitDir(c)); err != nil {
			r.logger.Warn("failed to watch circuit", "circuit", c, "error", err)
		}
	}

	r.logger.Info("watching data dir", "path", r.dataDir, "circuits", len(circuits))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(watcher, ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", "error", err)
		}
	}
}

func (r *Registry) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	rel, err := filepath.Rel(r.dataDir, ev.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	circuit := parts[0]
	if ValidateCircuit(circuit) != nil {
		return
	}

	// A new circuit directory.
	if len(parts) == 1 {
		if ev.Has(fsnotify.Create) {
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				if err := watcher.Add(ev.Name); err != nil {
					r.logger.Warn("failed to watch circuit", "circuit", circuit, "error", err)
				}
			}
		}
		r.Invalidate(circuit)
		return
	}

	// Temp files of an in-progress atomic write.
	if strings.HasSuffix(ev.Name, ".tmp") {
		return
	}

	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		r.logger.Debug("data changed", "circuit", circuit, "file", parts[len(parts)-1], "op", ev.Op.String())
		r.Invalidate(circuit)
	}
}
