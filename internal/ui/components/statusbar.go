// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/ui/styles"
	"github.com/jeranaias/flashlens/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusKind selects the colour and marker of the status text.
type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusBusy
	StatusError
)

// Icon returns the ASCII marker of the kind.
func (k StatusKind) Icon() string {
	switch k {
	case StatusBusy:
		return styles.StatusIndicators.Busy
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return styles.StatusIndicators.Ready
	}
}

// Shortcut is one key hint on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown on wide terminals.
var DefaultShortcuts = []Shortcut{
	{"tab", "focus"},
	{"ctrl+o", "add"},
	{"ctrl+g", "analyze"},
	{"/help", "commands"},
	{"ctrl+c", "quit"},
}

// StatusBar is the bottom line of the screen.
type StatusBar struct {
	Text    string
	Kind    StatusKind
	Model   string
	Spinner string // current spinner frame, shown while busy
	Width   int

	Shortcuts []Shortcut

	theme *styles.Theme
}

// NewStatusBar creates a status bar showing "Initializing...".
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Text:      "Initializing...",
		Kind:      StatusBusy,
		Width:     80,
		Shortcuts: DefaultShortcuts,
		theme:     theme,
	}
}

// Set changes the status text and kind.
func (s *StatusBar) Set(text string, kind StatusKind) {
	s.Text = text
	s.Kind = kind
}

// View renders the bar; shortcuts and the model name drop out as the
// terminal narrows.
func (s *StatusBar) View() string {
	left := s.renderStatus()
	leftW := lipgloss.Width(left)

	var rightParts []string
	if s.Model != "" && s.Width >= 60 {
		rightParts = append(rightParts, s.theme.StatusModel.Render(s.Model))
	}
	if s.Width >= 100 {
		rightParts = append(rightParts, s.renderShortcuts())
	}
	right := strings.Join(rightParts, s.theme.StatusBar.Render("  "))

	inner := s.Width - 2 // padding
	gap := inner - leftW - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - leftW
		if gap < 0 {
			gap = 0
		}
	}

	line := left + s.theme.StatusBar.Render(strings.Repeat(" ", gap)) + right
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}

func (s *StatusBar) renderStatus() string {
	style := s.theme.StatusReady
	switch s.Kind {
	case StatusBusy:
		style = s.theme.StatusBusy
	case StatusError:
		style = s.theme.StatusError
	}

	text := s.Kind.Icon() + " "
	if s.Kind == StatusBusy && s.Spinner != "" {
		text += s.Spinner + " "
	}
	text += s.Text

	max := s.Width / 2
	if max < 16 {
		max = s.Width - 2
	}
	return style.Render(util.FitWidth(text, max))
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+s.theme.ShortcutDesc.Render(" "+sc.Desc))
	}
	return strings.Join(parts, s.theme.ShortcutDesc.Render("  "))
}
