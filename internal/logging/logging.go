// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sends log output to a file. The terminal belongs to the
// TUI, so nothing may be written to stdout or stderr while it runs.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup opens path for appending through tea.LogToFile, which also points
// the standard log package at it, and installs a text slog handler at
// level as the default logger. The caller closes the returned file.
func Setup(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	slog.SetDefault(New(f, level))
	return f, nil
}

// New returns a text logger writing to w at level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
