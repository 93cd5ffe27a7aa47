// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// openPicker shows the file browser. Every file picked is added to the
// selection; esc closes the browser.
func (m *Model) openPicker() tea.Cmd {
	m.focus = focusPicker
	m.input.Blur()
	m.sidebar.Focused = false
	return m.picker.Init()
}

// closePicker returns focus to the input.
func (m *Model) closePicker() {
	m.focus = focusInput
	m.input.Focus()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, tea.Batch(cmd, loadImagesCmd([]string{path}, m.opts.ThumbWidth, m.opts.ThumbHeight, false))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.append(Line{Kind: LineError, Text: fmt.Sprintf("%s is not a supported image", filepath.Base(path))})
	}
	return m, cmd
}
