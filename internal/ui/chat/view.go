// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/ui/components"
)

// Layout constants, in cells.
const (
	minSidebarWidth = 28
	maxSidebarWidth = 44
	titleHeight     = 1
	inputHeight     = 3 // bordered single line
	statusHeight    = 1
)

// sidebarWidth is about a quarter of the screen.
func (m *Model) sidebarWidth() int {
	w := m.width / 4
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	return w
}

// mainWidth is the width of the right-hand column.
func (m *Model) mainWidth() int {
	w := m.width - m.sidebarWidth()
	if w < 20 {
		w = 20
	}
	return w
}

// previewView renders the thumbnail strip for the main column.
func (m *Model) previewView() string {
	return components.Preview(m.theme, m.thumbs, m.mainWidth()-2, m.opts.ThumbWidth)
}

// layout recomputes component sizes after a resize or a selection change.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	bodyHeight := m.height - titleHeight - statusHeight
	m.sidebar.SetSize(m.sidebarWidth(), bodyHeight)
	m.status.Width = m.width

	mainW := m.mainWidth()
	m.input.Width = mainW - 6

	vpHeight := bodyHeight - inputHeight - lipgloss.Height(m.previewView()) - 2 // transcript border
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = mainW - 4
	m.viewport.Height = vpHeight
	m.picker.Height = bodyHeight - 4

	if m.renderer == nil || m.renderer.width != m.viewport.Width {
		m.renderer = newTranscriptRenderer(m.theme, m.viewport.Width)
	}
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the end.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderer.Render(m.transcript))
	m.viewport.GotoBottom()
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := m.theme.Title.Render("flashlens") +
		m.theme.ListEmpty.Render("  Gemini image analysis")

	var main string
	if m.focus == focusPicker {
		main = m.pickerView()
	} else {
		main = m.chatView()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.status.View())
}

func (m Model) chatView() string {
	mainW := m.mainWidth()

	pane := m.theme.Pane
	transcript := pane.Width(mainW - 2).Render(m.viewport.View())

	inputPane := m.theme.Pane
	if m.focus == focusInput {
		inputPane = m.theme.PaneFocused
	}
	inputLine := m.input.View()
	if m.busy() {
		inputLine = m.theme.InputDisabled.Render("> waiting for the model...")
	}
	input := inputPane.Width(mainW - 2).Render(inputLine)

	return lipgloss.JoinVertical(lipgloss.Left, m.previewView(), transcript, input)
}

func (m Model) pickerView() string {
	mainW := m.mainWidth()
	header := m.theme.SectionTitle.Render("Add images (enter to add, esc to close)")
	dir := m.theme.ListEmpty.Render(m.picker.CurrentDirectory)
	return m.theme.PaneFocused.Width(mainW - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, dir, "", m.picker.View()),
	)
}
