// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model of the flashlens TUI.
//
// The model owns the Gemini client and session, the pending images and the
// open conversation. All network calls run as tea.Cmd goroutines and report
// back through result messages; at most one of them is in flight at a time.
//
// # Files
//
//   - model.go: Model, Options and construction
//   - update.go: message dispatch and key handling
//   - tasks.go: tea.Cmd builders for background work
//   - commands.go: slash command registry
//   - transcript.go: transcript lines and rendering
//   - inflight.go: the single-slot request guard
//   - view.go: layout
package chat
