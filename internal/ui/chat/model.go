// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/imagefile"
	"github.com/jeranaias/flashlens/internal/ui/components"
	"github.com/jeranaias/flashlens/internal/ui/styles"
)

// ErrClientNotReady is returned for model actions before the client exists.
var ErrClientNotReady = errors.New("client not ready")

// nowFunc is replaced in tests.
var nowFunc = time.Now

// MissingKeyMessage is shown when no credential was found.
const MissingKeyMessage = "⚠️ Critical: No API Key found in environment."

// Status texts.
const (
	statusInitializing = "Initializing..."
	statusAnalyzing    = "Analyzing images..."
	statusChatActive   = "Chat Active"
	statusThinking     = "Thinking..."
	statusReady        = "Ready"
	statusError        = "Error occurred"
	statusLoaded       = "History Loaded"
	statusDeleted      = "Deleted"
)

// focusArea is the pane receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusPicker
)

// Options configures a Model.
type Options struct {
	Store *history.Store
	Theme *styles.Theme

	// APIKey empty means no credential; model actions are disabled.
	APIKey        string
	ClientOptions []gemini.Option

	Prompt         string
	TitleLength    int
	ThumbWidth     int // cells
	ThumbHeight    int // cells
	RequestTimeout time.Duration
	StartDir       string // initial file picker directory
}

// Model is the Bubble Tea model of the application.
type Model struct {
	opts  Options
	store *history.Store
	theme *styles.Theme
	keys  KeyMap

	client  *gemini.Client
	session *gemini.Session
	guard   inflight

	// Pending image selection.
	images []imagefile.Image
	thumbs []components.PreviewItem

	// Open conversation.
	chatID     string
	imagePaths []string
	messages   []history.Message
	transcript []Line

	focus      focusArea
	confirming bool

	sidebar  *components.Sidebar
	status   *components.StatusBar
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	picker   filepicker.Model
	renderer *transcriptRenderer

	width  int
	height int
	ready  bool
}

// New creates the model. No I/O happens until Init.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Store == nil {
		opts.Store = history.NewStore(history.DefaultPath)
	}
	if opts.Prompt == "" {
		opts.Prompt = gemini.DefaultPrompt
	}
	if opts.TitleLength <= 0 {
		opts.TitleLength = history.DefaultTitleLength
	}
	if opts.ThumbWidth <= 0 {
		opts.ThumbWidth = 20
	}
	if opts.ThumbHeight <= 0 {
		opts.ThumbHeight = 10
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = gemini.DefaultTimeout
	}

	in := textinput.New()
	in.Placeholder = "Ask about the images, or /help"
	in.Prompt = "> "
	in.PromptStyle = opts.Theme.InputPrompt
	in.CharLimit = 8000
	in.Focus()

	sp := spinner.New(
		spinner.WithSpinner(styles.LineSpinner.Bubble()),
		spinner.WithStyle(opts.Theme.Spinner),
	)

	fp := filepicker.New()
	fp.AllowedTypes = imagefile.Extensions
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	m := Model{
		opts:     opts,
		store:    opts.Store,
		theme:    opts.Theme,
		keys:     DefaultKeyMap(),
		sidebar:  components.NewSidebar(opts.Theme),
		status:   components.NewStatusBar(opts.Theme),
		viewport: viewport.New(80, 20),
		input:    in,
		spinner:  sp,
		picker:   fp,
		renderer: newTranscriptRenderer(opts.Theme, 80),
	}

	if opts.APIKey == "" {
		m.transcript = append(m.transcript, Line{Kind: LineError, Text: MissingKeyMessage})
		m.status.Set("No API key", components.StatusError)
	} else {
		m.status.Set(statusInitializing, components.StatusBusy)
	}
	return m
}

// Init starts the history listing and, with a credential, client startup.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, loadHistoryCmd(m.store)}
	if m.opts.APIKey != "" {
		cmds = append(cmds, func() tea.Msg { return startupMsg{} })
	}
	return tea.Batch(cmds...)
}

// startupMsg asks Update to take the guard and build the client; Init
// cannot change the model.
type startupMsg struct{}

// =============================================================================
// STATE HELPERS
// =============================================================================

// busy reports whether a model call is outstanding.
func (m *Model) busy() bool { return m.guard.busy() }

// append adds transcript lines and scrolls to the bottom.
func (m *Model) append(lines ...Line) {
	m.transcript = append(m.transcript, lines...)
	m.refreshViewport()
}

// clearConversation forgets the open conversation and the transcript. A call
// still in flight for it is abandoned; its result will be dropped as stale.
func (m *Model) clearConversation() {
	if m.guard.busy() {
		slog.Debug("abandoning in-flight request", "kind", m.guard.kind.String(), "id", m.chatID)
		m.guard.reset()
		m.setStatus(statusReady, components.StatusReady)
	}
	m.chatID = ""
	m.messages = nil
	m.transcript = nil
	m.session = nil
	m.sidebar.SetCurrent("")
	m.refreshViewport()
}

// setStatus updates the status bar.
func (m *Model) setStatus(text string, kind components.StatusKind) {
	m.status.Set(text, kind)
}

// fail shows err as a transcript line and flips the status.
func (m *Model) fail(err error) {
	m.append(Line{Kind: LineError, Text: err.Error()})
	m.setStatus(statusError, components.StatusError)
}

// imageNames lists the pending images for the sidebar.
func (m *Model) imageNames() []string {
	names := make([]string, len(m.images))
	for i, img := range m.images {
		names[i] = img.Name()
	}
	return names
}

// saveMessage appends one message to the open conversation and rewrites
// the whole record. The write is synchronous so records land in order.
func (m *Model) saveMessage(role, text string) tea.Cmd {
	if m.chatID == "" {
		m.chatID = history.NewID(nowFunc())
		m.sidebar.SetCurrent(m.chatID)
	}
	m.messages = append(m.messages, history.Message{Role: role, Text: text})
	rec := history.Record{
		Title:    history.TitleFor(m.messages, m.opts.TitleLength),
		Images:   append([]string(nil), m.imagePaths...),
		Messages: append([]history.Message(nil), m.messages...),
	}
	if _, err := m.store.Save(m.chatID, rec); err != nil {
		slog.Error("history save failed", "id", m.chatID, "error", err)
		m.setStatus("Save failed: "+err.Error(), components.StatusError)
		return nil
	}
	return loadHistoryCmd(m.store)
}

// currentRecord returns the open conversation as a record.
func (m *Model) currentRecord() (history.Record, bool) {
	if m.chatID == "" {
		return history.Record{}, false
	}
	if rec, ok := m.store.Get(m.chatID); ok {
		return rec, true
	}
	return history.Record{
		Title:    history.TitleFor(m.messages, m.opts.TitleLength),
		Images:   m.imagePaths,
		Messages: m.messages,
	}, true
}
