// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events one atomic save produces
// (create temp, write, rename) into a single notification.
const DefaultDebounce = 150 * time.Millisecond

// Watch reports changes to the history file at path. The parent directory
// is watched rather than the file itself, because every save replaces the
// file by rename and a file watch would stop at the first save.
//
// One value is sent on the returned channel per quiet period after a change.
// Sends never block: if the consumer is behind, the pending notification
// already covers the new change. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("history: watch %s: %w", path, err)
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("history: watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("history: create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("history: watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go runWatcher(ctx, w, absPath, debounce, out)
	return out, nil
}

func runWatcher(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration, out chan<- struct{}) {
	defer close(out)
	defer w.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&relevant == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("history watcher error", "path", target, "error", err)

		case <-timer.C:
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}
