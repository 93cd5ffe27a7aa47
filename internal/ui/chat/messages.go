// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/imagefile"
	"github.com/jeranaias/flashlens/internal/ui/components"
)

// =============================================================================
// MODEL CALL RESULTS
// =============================================================================

// clientReadyMsg reports the outcome of client construction and the model
// probe.
type clientReadyMsg struct {
	RequestID string
	Client    *gemini.Client
	Model     string
	Err       error
}

// analysisDoneMsg carries the first reply of a new session.
type analysisDoneMsg struct {
	RequestID string
	Session   *gemini.Session
	Reply     string
	Err       error
}

// replyMsg carries the reply to a text turn.
type replyMsg struct {
	RequestID string
	Reply     string
	Err       error
}

// resumeDoneMsg reports a resumed session. Session is set even on error.
type resumeDoneMsg struct {
	RequestID string
	Session   *gemini.Session
	Err       error
}

// =============================================================================
// LOCAL WORK RESULTS
// =============================================================================

// imagesLoadedMsg carries freshly loaded images and their thumbnails.
type imagesLoadedMsg struct {
	Images []imagefile.Image
	Thumbs []components.PreviewItem
	Failed []error
	// Replace discards the current selection instead of appending.
	Replace bool
}

// historyLoadedMsg carries the history list for the sidebar.
type historyLoadedMsg struct {
	Entries []history.Entry
}

// HistoryChangedMsg is sent by the file watcher when the history file
// changed on disk.
type HistoryChangedMsg struct{}

// exportDoneMsg reports a Markdown export.
type exportDoneMsg struct {
	Path string
	Err  error
}
