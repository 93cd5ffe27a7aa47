// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/imagefile"
	"github.com/jeranaias/flashlens/internal/ui/components"
)

// Update handles every message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.Spinner = m.spinner.View()
		return m, cmd

	case startupMsg:
		id, ok := m.guard.acquire(requestStartup)
		if !ok {
			return m, nil
		}
		m.setStatus(statusInitializing, components.StatusBusy)
		return m, tea.Batch(
			startClientCmd(id, m.opts.APIKey, m.opts.ClientOptions, m.opts.RequestTimeout),
			m.spinner.Tick,
		)

	case clientReadyMsg:
		if !m.guard.release(msg.RequestID) {
			return m, nil
		}
		if msg.Err != nil {
			m.fail(fmt.Errorf("startup: %w", msg.Err))
			return m, nil
		}
		m.client = msg.Client
		m.status.Model = gemini.DisplayName(msg.Model)
		m.setStatus(fmt.Sprintf("Ready (Model: %s)", gemini.DisplayName(msg.Model)), components.StatusReady)
		return m, nil

	case analysisDoneMsg:
		if !m.guard.release(msg.RequestID) {
			slog.Debug("dropping stale analysis result", "request_id", msg.RequestID)
			return m, nil
		}
		m.session = msg.Session
		if msg.Err != nil {
			m.fail(msg.Err)
			return m, nil
		}
		m.append(Line{Kind: LineModel, Text: msg.Reply})
		cmds = append(cmds, m.saveMessage(history.RoleModel, msg.Reply))
		if m.status.Kind != components.StatusError {
			m.setStatus(statusChatActive, components.StatusReady)
		}
		return m, tea.Batch(cmds...)

	case replyMsg:
		if !m.guard.release(msg.RequestID) {
			slog.Debug("dropping stale reply", "request_id", msg.RequestID)
			return m, nil
		}
		if msg.Err != nil {
			m.fail(msg.Err)
			return m, nil
		}
		m.append(Line{Kind: LineModel, Text: msg.Reply})
		cmds = append(cmds, m.saveMessage(history.RoleModel, msg.Reply))
		if m.status.Kind != components.StatusError {
			m.setStatus(statusReady, components.StatusReady)
		}
		return m, tea.Batch(cmds...)

	case resumeDoneMsg:
		if !m.guard.release(msg.RequestID) {
			return m, nil
		}
		m.session = msg.Session
		if msg.Err != nil {
			m.fail(msg.Err)
			return m, nil
		}
		m.setStatus(statusLoaded, components.StatusReady)
		return m, nil

	case imagesLoadedMsg:
		m.applyImages(msg)
		return m, nil

	case historyLoadedMsg:
		m.sidebar.SetEntries(msg.Entries)
		return m, nil

	case HistoryChangedMsg:
		return m, loadHistoryCmd(m.store)

	case exportDoneMsg:
		if msg.Err != nil {
			m.append(Line{Kind: LineError, Text: fmt.Sprintf("export failed: %v", msg.Err)})
		} else {
			m.append(Line{Kind: LineSystem, Text: "Exported to " + msg.Path})
		}
		return m, nil
	}

	// Everything else (cursor blink, picker directory reads) goes to the
	// focused widgets.
	if m.focus == focusPicker {
		return m.updatePicker(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m, m.answerClearAll(true)
		case key.Matches(msg, m.keys.No):
			return m, m.answerClearAll(false)
		}
		return m, nil
	}

	if m.focus == focusPicker {
		if key.Matches(msg, m.keys.Cancel) {
			m.closePicker()
			return m, nil
		}
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		return m, m.openPicker()
	case key.Matches(msg, m.keys.Analyze):
		return m, m.startAnalysis()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m, m.handleSidebarKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.sidebar.ToggleTab()
	case m.sidebar.Tab != components.TabHistory:
		return nil
	case key.Matches(msg, m.keys.Up):
		m.sidebar.CursorUp()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.CursorDown()
	case key.Matches(msg, m.keys.Load):
		if e, ok := m.sidebar.Selected(); ok {
			return m.loadConversation(e.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.ClearAll):
		m.askClearAll()
	case key.Matches(msg, m.keys.Refresh):
		return loadHistoryCmd(m.store)
	}
	return nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusSidebar
		m.input.Blur()
	} else {
		m.focus = focusInput
		m.input.Focus()
	}
	m.sidebar.Focused = m.focus == focusSidebar
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit handles Enter in the input: slash commands or a chat turn.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if isCommand(text) {
		m.input.Reset()
		return m.runCommand(text)
	}
	if m.busy() {
		return nil
	}
	m.input.Reset()
	m.append(Line{Kind: LineUser, Text: text})
	saveCmd := m.saveMessage(history.RoleUser, text)

	if m.client == nil {
		m.fail(ErrClientNotReady)
		return saveCmd
	}
	if m.session == nil {
		m.fail(gemini.ErrNoSession)
		return saveCmd
	}

	id, _ := m.guard.acquire(requestSend)
	m.setStatus(statusThinking, components.StatusBusy)
	return tea.Batch(saveCmd, sendCmd(id, m.session, text, m.opts.RequestTimeout), m.spinner.Tick)
}

// startAnalysis opens a new conversation over the pending images.
func (m *Model) startAnalysis() tea.Cmd {
	if len(m.images) == 0 || m.busy() {
		return nil
	}
	if m.client == nil {
		m.fail(ErrClientNotReady)
		return nil
	}

	m.clearConversation()
	m.chatID = history.NewID(nowFunc())
	m.sidebar.SetCurrent(m.chatID)
	m.imagePaths = make([]string, len(m.images))
	for i, img := range m.images {
		m.imagePaths[i] = img.Path
	}

	id, _ := m.guard.acquire(requestAnalyze)
	m.setStatus(statusAnalyzing, components.StatusBusy)
	m.append(Line{Kind: LineSystem, Text: fmt.Sprintf("Uploading %d images...", len(m.images))})

	images := append([]imagefile.Image(nil), m.images...)
	return tea.Batch(analyzeCmd(id, m.client, images, m.opts.Prompt, m.opts.RequestTimeout), m.spinner.Tick)
}

// loadConversation restores a saved conversation and resumes a session
// over its images.
func (m *Model) loadConversation(id string) tea.Cmd {
	if m.busy() {
		return nil
	}
	rec, ok := m.store.Get(id)
	if !ok {
		return loadHistoryCmd(m.store)
	}

	m.session = nil
	m.chatID = id
	m.sidebar.SetCurrent(id)
	m.messages = append([]history.Message(nil), rec.Messages...)
	m.imagePaths = append([]string(nil), rec.Images...)
	m.transcript = linesFromMessages(rec.Messages)
	m.refreshViewport()

	imgs, failed := imagefile.LoadAll(existingPaths(rec.Images))
	for _, err := range failed {
		slog.Warn("history image load error", "id", id, "error", err)
	}
	m.applyImages(imagesLoadedMsg{
		Images:  imgs,
		Thumbs:  thumbnails(imgs, m.opts.ThumbWidth, m.opts.ThumbHeight),
		Replace: true,
	})
	m.setStatus(statusLoaded, components.StatusReady)

	if m.client == nil {
		return nil
	}
	reqID, _ := m.guard.acquire(requestResume)
	return tea.Batch(resumeCmd(reqID, m.client, imgs, m.opts.RequestTimeout), m.spinner.Tick)
}

// applyImages merges loaded images into the selection.
func (m *Model) applyImages(msg imagesLoadedMsg) {
	if msg.Replace {
		m.images = nil
		m.thumbs = nil
	}
	seen := make(map[string]bool, len(m.images))
	for _, img := range m.images {
		seen[img.Path] = true
	}
	for i, img := range msg.Images {
		if seen[img.Path] {
			continue
		}
		seen[img.Path] = true
		m.images = append(m.images, img)
		if i < len(msg.Thumbs) {
			m.thumbs = append(m.thumbs, msg.Thumbs[i])
		} else {
			m.thumbs = append(m.thumbs, components.PreviewItem{Name: img.Name()})
		}
	}
	for _, err := range msg.Failed {
		if errors.Is(err, imagefile.ErrUnsupported) || errors.Is(err, imagefile.ErrTooLarge) {
			m.append(Line{Kind: LineError, Text: err.Error()})
		} else {
			m.append(Line{Kind: LineError, Text: "load error: " + err.Error()})
		}
	}
	m.sidebar.SetImages(m.imageNames())
	m.layout()
}
