// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/imagefile"
	"github.com/jeranaias/flashlens/internal/ui/components"
	"github.com/jeranaias/flashlens/internal/util"
)

// =============================================================================
// MODEL CALLS
// =============================================================================

// startClientCmd builds the client and, unless a model is pinned, probes
// for the newest flash model.
func startClientCmd(id, apiKey string, opts []gemini.Option, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		client, err := gemini.NewClient(apiKey, opts...)
		if err != nil {
			return clientReadyMsg{RequestID: id, Err: err}
		}
		if !client.Pinned() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			client.SelectModel(ctx)
		}
		slog.Info("client ready", "model", client.Model(), "key_fingerprint", client.KeyFingerprint())
		return clientReadyMsg{RequestID: id, Client: client, Model: client.Model()}
	}
}

// analyzeCmd opens a new session with the images.
func analyzeCmd(id string, client *gemini.Client, images []imagefile.Image, prompt string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		sess, reply, err := client.StartSession(ctx, images, prompt)
		if err != nil {
			slog.Error("analysis failed", "request_id", id, "images", len(images), "error", err)
		} else {
			slog.Info("analysis complete", "request_id", id, "images", len(images), "elapsed", time.Since(start))
		}
		return analysisDoneMsg{RequestID: id, Session: sess, Reply: reply, Err: err}
	}
}

// sendCmd sends one text turn on the session.
func sendCmd(id string, sess *gemini.Session, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := sess.Send(ctx, text)
		if err != nil {
			slog.Error("send failed", "request_id", id, "error", err)
		}
		return replyMsg{RequestID: id, Reply: reply, Err: err}
	}
}

// resumeCmd restarts a session for a restored conversation.
func resumeCmd(id string, client *gemini.Client, images []imagefile.Image, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sess, err := client.ResumeSession(ctx, images)
		if err != nil {
			slog.Warn("resume failed", "request_id", id, "images", len(images), "error", err)
		}
		return resumeDoneMsg{RequestID: id, Session: sess, Err: err}
	}
}

// =============================================================================
// LOCAL WORK
// =============================================================================

// loadHistoryCmd lists saved conversations.
func loadHistoryCmd(store *history.Store) tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{Entries: store.List()}
	}
}

// loadImagesCmd reads images and renders thumbnails bounded by the given
// cell size.
func loadImagesCmd(paths []string, cols, rows int, replace bool) tea.Cmd {
	return func() tea.Msg {
		imgs, failed := imagefile.LoadAll(paths)
		for _, err := range failed {
			slog.Warn("image load error", "error", err)
		}
		return imagesLoadedMsg{
			Images:  imgs,
			Thumbs:  thumbnails(imgs, cols, rows),
			Failed:  failed,
			Replace: replace,
		}
	}
}

// thumbnails scales each image to cols x rows*2 pixels.
func thumbnails(imgs []imagefile.Image, cols, rows int) []components.PreviewItem {
	items := make([]components.PreviewItem, len(imgs))
	for i, img := range imgs {
		items[i].Name = img.Name()
		thumb, err := imagefile.Thumbnail(img, cols, rows*2)
		if err != nil {
			slog.Debug("thumbnail failed", "path", img.Path, "error", err)
			continue
		}
		items[i].Image = thumb
	}
	return items
}

// existingPaths keeps the paths that still exist on disk.
func existingPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// exportCmd writes rec as Markdown to path.
func exportCmd(path, id string, rec history.Record) tea.Cmd {
	return func() tea.Msg {
		data := history.ExportMarkdown(id, rec)
		if err := util.AtomicWriteFile(path, []byte(data), 0o644); err != nil {
			return exportDoneMsg{Path: path, Err: err}
		}
		return exportDoneMsg{Path: path}
	}
}

// =============================================================================
// HISTORY WATCHER
// =============================================================================

// WatchHistory forwards changes of the history file to send, typically
// tea.Program.Send, until ctx is cancelled.
func WatchHistory(ctx context.Context, path string, send func(tea.Msg)) error {
	events, err := history.Watch(ctx, path, history.DefaultDebounce)
	if err != nil {
		return err
	}
	go func() {
		for range events {
			send(HistoryChangedMsg{})
		}
	}()
	return nil
}
