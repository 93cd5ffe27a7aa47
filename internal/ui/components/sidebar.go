// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/ui/styles"
	"github.com/jeranaias/flashlens/internal/util"
)

// Tab identifies a sidebar tab.
type Tab int

const (
	TabNewChat Tab = iota
	TabHistory
)

// String returns the tab caption.
func (t Tab) String() string {
	switch t {
	case TabNewChat:
		return "New Chat"
	case TabHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// Sidebar shows the pending images on the New Chat tab and saved
// conversations on the History tab.
type Sidebar struct {
	Tab     Tab
	Width   int
	Height  int
	Focused bool

	// Confirming shows the clear-all prompt in place of the hints.
	Confirming bool

	images  []string
	entries []history.Entry
	cursor  int
	offset  int
	current string // id of the open conversation

	theme *styles.Theme
}

// NewSidebar creates a sidebar on the New Chat tab.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Tab: TabNewChat, Width: 32, Height: 20, theme: theme}
}

// SetSize sets the outer size.
func (s *Sidebar) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	s.clamp()
}

// ToggleTab switches between the two tabs.
func (s *Sidebar) ToggleTab() {
	if s.Tab == TabNewChat {
		s.Tab = TabHistory
	} else {
		s.Tab = TabNewChat
	}
}

// SetImages replaces the image names shown on the New Chat tab.
func (s *Sidebar) SetImages(names []string) {
	s.images = append([]string(nil), names...)
}

// SetEntries replaces the history list, keeping the cursor on the same
// conversation when it still exists.
func (s *Sidebar) SetEntries(entries []history.Entry) {
	var selected string
	if e, ok := s.Selected(); ok {
		selected = e.ID
	}
	s.entries = entries
	s.cursor = 0
	for i, e := range entries {
		if e.ID == selected {
			s.cursor = i
			break
		}
	}
	s.clamp()
}

// Entries returns the history list.
func (s *Sidebar) Entries() []history.Entry { return s.entries }

// SetCurrent marks the open conversation.
func (s *Sidebar) SetCurrent(id string) { s.current = id }

// Selected returns the history entry under the cursor.
func (s *Sidebar) Selected() (history.Entry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return history.Entry{}, false
	}
	return s.entries[s.cursor], true
}

// CursorUp moves the selection up one entry.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
	s.clamp()
}

// CursorDown moves the selection down one entry.
func (s *Sidebar) CursorDown() {
	if s.cursor < len(s.entries)-1 {
		s.cursor++
	}
	s.clamp()
}

// listHeight is the number of rows available to the list body.
func (s *Sidebar) listHeight() int {
	// border, tabs, blank line, hints
	h := s.Height - 6
	if h < 1 {
		h = 1
	}
	return h
}

func (s *Sidebar) clamp() {
	if s.cursor >= len(s.entries) {
		s.cursor = len(s.entries) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	h := s.listHeight()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+h {
		s.offset = s.cursor - h + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	inner := s.Width - 4 // border and padding
	if inner < 8 {
		inner = 8
	}

	tabs := make([]string, 0, 2)
	for _, t := range []Tab{TabNewChat, TabHistory} {
		if t == s.Tab {
			tabs = append(tabs, s.theme.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, s.theme.TabInactive.Render(t.String()))
		}
	}

	var body, hints string
	switch s.Tab {
	case TabNewChat:
		body = s.viewImages(inner)
		hints = "ctrl+o add  ctrl+g analyze"
	case TabHistory:
		body = s.viewEntries(inner)
		hints = "enter load  d delete  X clear  r refresh"
	}
	if s.Confirming {
		hints = s.theme.Confirm.Render("Delete ALL history? (y/n)")
	} else {
		hints = s.theme.ListEmpty.Render(util.FitWidth(hints, inner))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		body,
		hints,
	)

	pane := s.theme.Pane
	if s.Focused {
		pane = s.theme.PaneFocused
	}
	return pane.Width(s.Width - 2).Height(s.Height - 2).Render(content)
}

func (s *Sidebar) viewImages(width int) string {
	if len(s.images) == 0 {
		return s.fill(s.theme.ListEmpty.Render("No images selected"))
	}
	lines := make([]string, 0, len(s.images)+1)
	lines = append(lines, s.theme.SectionTitle.Render(util.FitWidth(pluralImages(len(s.images)), width)))
	for _, name := range s.images {
		lines = append(lines, s.theme.ListItem.Render(util.FitWidth("  "+name, width)))
	}
	return s.fill(strings.Join(lines, "\n"))
}

func (s *Sidebar) viewEntries(width int) string {
	if len(s.entries) == 0 {
		return s.fill(s.theme.ListEmpty.Render("No saved chats"))
	}
	h := s.listHeight()
	end := s.offset + h
	if end > len(s.entries) {
		end = len(s.entries)
	}

	lines := make([]string, 0, h)
	for i := s.offset; i < end; i++ {
		e := s.entries[i]
		marker := "  "
		if e.ID == s.current {
			marker = "* "
		}
		text := util.PadWidth(util.FitWidth(marker+e.Label, width), width)
		if i == s.cursor && s.Focused {
			lines = append(lines, s.theme.ListCursor.Render(text))
		} else if i == s.cursor {
			lines = append(lines, s.theme.ListItem.Bold(true).Render(text))
		} else {
			lines = append(lines, s.theme.ListItem.Render(text))
		}
	}
	return s.fill(strings.Join(lines, "\n"))
}

// fill pads the list body to a fixed height so the hints stay put.
func (s *Sidebar) fill(body string) string {
	return lipgloss.NewStyle().Height(s.listHeight()).Render(body)
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return strconv.Itoa(n) + " images"
}
