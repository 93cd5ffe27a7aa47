// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/ui/styles"
)

// LineKind selects how a transcript line is rendered.
type LineKind int

const (
	LineUser LineKind = iota
	LineModel
	LineSystem
	LineError
)

// Line is one transcript entry. Text excludes the "You: " and "Error: "
// prefixes, which are added when rendering.
type Line struct {
	Kind LineKind
	Text string
}

// Plain returns the line as shown, without styling.
func (l Line) Plain() string {
	switch l.Kind {
	case LineUser:
		return "You: " + l.Text
	case LineError:
		return "Error: " + l.Text
	default:
		return l.Text
	}
}

// linesFromMessages rebuilds a transcript from a stored conversation.
func linesFromMessages(msgs []history.Message) []Line {
	lines := make([]Line, 0, len(msgs))
	for _, m := range msgs {
		kind := LineModel
		if m.Role == history.RoleUser {
			kind = LineUser
		}
		lines = append(lines, Line{Kind: kind, Text: m.Text})
	}
	return lines
}

// transcriptRenderer renders lines for a given width. Model replies go
// through glamour; everything else is wrapped plain text.
type transcriptRenderer struct {
	theme    *styles.Theme
	width    int
	markdown *glamour.TermRenderer
}

func newTranscriptRenderer(theme *styles.Theme, width int) *transcriptRenderer {
	if width < 20 {
		width = 20
	}
	r := &transcriptRenderer{theme: theme, width: width}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(width-2),
		glamour.WithEmoji(),
	)
	if err != nil {
		slog.Warn("markdown renderer unavailable, showing plain text", "error", err)
	} else {
		r.markdown = md
	}
	return r
}

// Render joins all lines, separated by blank lines.
func (r *transcriptRenderer) Render(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, r.renderLine(l))
	}
	return strings.Join(parts, "\n\n")
}

func (r *transcriptRenderer) renderLine(l Line) string {
	wrap := lipgloss.NewStyle().Width(r.width)
	switch l.Kind {
	case LineUser:
		return r.theme.UserLine.Inherit(wrap).Render(l.Plain())
	case LineSystem:
		return r.theme.SystemLine.Inherit(wrap).Render(l.Plain())
	case LineError:
		return r.theme.ErrorLine.Inherit(wrap).Render(l.Plain())
	default:
		return r.renderMarkdown(l.Text)
	}
}

func (r *transcriptRenderer) renderMarkdown(text string) string {
	if r.markdown != nil {
		out, err := r.markdown.Render(text)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		slog.Debug("markdown render failed", "error", err)
	}
	return r.theme.ModelLine.Width(r.width).Render(text)
}
