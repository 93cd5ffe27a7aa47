// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/ui/components"
	"github.com/jeranaias/flashlens/internal/ui/styles"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fakeGemini answers model listing and generateContent calls.
type fakeGemini struct {
	mu      sync.Mutex
	replies []string
	fail    bool
	lists   int
	bodies  []string // raw generateContent bodies
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet {
		f.lists++
		_, _ = io.WriteString(w, `{"models":[`+
			`{"name":"models/gemini-1.5-flash","supportedGenerationMethods":["generateContent"]},`+
			`{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["generateContent"]}]}`)
		return
	}

	body, _ := io.ReadAll(r.Body)
	f.bodies = append(f.bodies, string(body))
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`)
		return
	}
	reply := "ok"
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	out, _ := json.Marshal(reply)
	_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":`+string(out)+`}]}}]}`)
}

func (f *fakeGemini) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeGemini) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

type harness struct {
	api   *fakeGemini
	store *history.Store
	dir   string
}

func newHarness(t *testing.T, apiKey string) (*harness, Model) {
	t.Helper()
	h := &harness{api: &fakeGemini{}, dir: t.TempDir()}
	srv := httptest.NewServer(h.api)
	t.Cleanup(srv.Close)

	h.store = history.NewStore(filepath.Join(h.dir, "chat_history.json"))
	m := New(Options{
		Store:          h.store,
		Theme:          styles.NewTheme("dark"),
		APIKey:         apiKey,
		ClientOptions:  []gemini.Option{gemini.WithBaseURL(srv.URL)},
		RequestTimeout: 5 * time.Second,
		ThumbWidth:     8,
		ThumbHeight:    4,
		StartDir:       h.dir,
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 140, Height: 50})
	return h, m
}

// writePNG creates a small image file.
func (h *harness) writePNG(t *testing.T, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	path := filepath.Join(h.dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

// =============================================================================
// DRIVING HELPERS
// =============================================================================

// send feeds one message to Update and runs the resulting commands.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

// dispatch feeds one message without running the resulting commands.
func dispatch(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs cmd and feeds back the messages this package produces.
// Timer-driven messages (spinner, cursor blink) are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case startupMsg, clientReadyMsg, analysisDoneMsg, replyMsg, resumeDoneMsg,
			imagesLoadedMsg, historyLoadedMsg, exportDoneMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeAndSubmit sets the input and presses enter.
func typeAndSubmit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	return send(t, m, keyMsg("enter"))
}

func lastLine(m Model) Line {
	if len(m.transcript) == 0 {
		return Line{}
	}
	return m.transcript[len(m.transcript)-1]
}

// ready returns a model whose client has started.
func ready(t *testing.T) (*harness, Model) {
	t.Helper()
	h, m := newHarness(t, "test-key")
	m = drain(t, m, m.Init())
	require.NotNil(t, m.client)
	return h, m
}

// analyzed returns a model with an open conversation over one image.
func analyzed(t *testing.T) (*harness, Model) {
	t.Helper()
	h, m := ready(t)
	h.api.replies = []string{"A gradient square in shades of blue and pink, nicely lit."}
	m = typeAndSubmit(t, m, "/add "+h.writePNG(t, "square.png"))
	require.Len(t, m.images, 1)
	m = send(t, m, keyMsg("ctrl+g"))
	require.NotNil(t, m.session)
	return h, m
}

// =============================================================================
// STARTUP
// =============================================================================

func TestNew_MissingKey(t *testing.T) {
	_, m := newHarness(t, "")
	require.NotEmpty(t, m.transcript)
	assert.Equal(t, MissingKeyMessage, m.transcript[0].Text)

	m = drain(t, m, m.Init())
	assert.Nil(t, m.client)
	assert.False(t, m.busy())

	m = typeAndSubmit(t, m, "hello")
	assert.Equal(t, ErrClientNotReady.Error(), lastLine(m).Text)
	assert.Equal(t, statusError, m.status.Text)

	// the user turn is saved before the failure is reported
	require.NotEmpty(t, m.chatID)
	rec, ok := m.store.Get(m.chatID)
	require.True(t, ok)
	assert.Equal(t, []history.Message{{Role: history.RoleUser, Text: "hello"}}, rec.Messages)
}

func TestStartup_SelectsNewestFlash(t *testing.T) {
	_, m := newHarness(t, "test-key")
	assert.Equal(t, statusInitializing, m.status.Text)

	m = drain(t, m, m.Init())
	require.NotNil(t, m.client)
	assert.Equal(t, "Ready (Model: gemini-2.0-flash)", m.status.Text)
	assert.Equal(t, "gemini-2.0-flash", m.status.Model)
	assert.False(t, m.busy())
}

func TestStartup_PinnedModelSkipsProbe(t *testing.T) {
	h, m := newHarness(t, "test-key")
	m.opts.ClientOptions = append(m.opts.ClientOptions, gemini.WithModel("gemini-custom"))
	m = drain(t, m, m.Init())
	assert.Equal(t, "Ready (Model: gemini-custom)", m.status.Text)
	h.api.mu.Lock()
	defer h.api.mu.Unlock()
	assert.Zero(t, h.api.lists)
}

// =============================================================================
// ANALYZE AND SEND
// =============================================================================

func TestAnalyze_Flow(t *testing.T) {
	h, m := ready(t)
	h.api.replies = []string{"A gradient square in shades of blue and pink, nicely lit."}
	path := h.writePNG(t, "square.png")

	m = typeAndSubmit(t, m, "/add "+path)
	require.Len(t, m.images, 1)
	require.Len(t, m.thumbs, 1)
	assert.NotNil(t, m.thumbs[0].Image)

	m, cmd := dispatch(t, m, keyMsg("ctrl+g"))
	assert.True(t, m.busy())
	assert.Equal(t, statusAnalyzing, m.status.Text)
	assert.Equal(t, "Uploading 1 images...", lastLine(m).Text)
	assert.NotEmpty(t, m.chatID)

	m = drain(t, m, cmd)
	assert.False(t, m.busy())
	assert.Equal(t, statusChatActive, m.status.Text)
	assert.Equal(t, LineModel, lastLine(m).Kind)

	rec, ok := h.store.Get(m.chatID)
	require.True(t, ok)
	assert.Equal(t, "A gradient square in shades of...", rec.Title)
	assert.Equal(t, []string{path}, rec.Images)
	require.Len(t, rec.Messages, 1)
	assert.Equal(t, history.RoleModel, rec.Messages[0].Role)

	calls := h.api.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], gemini.DefaultPrompt)
	assert.Contains(t, calls[0], `"mimeType":"image/png"`)
}

func TestAnalyze_NoImagesIsNoop(t *testing.T) {
	h, m := ready(t)
	m, cmd := dispatch(t, m, keyMsg("ctrl+g"))
	assert.Nil(t, cmd)
	assert.False(t, m.busy())
	assert.Empty(t, h.api.calls())
}

func TestSend_Flow(t *testing.T) {
	h, m := analyzed(t)
	h.api.replies = []string{"It is mostly blue."}

	m.input.SetValue("What colour is it?")
	m, cmd := dispatch(t, m, keyMsg("enter"))
	assert.Equal(t, Line{Kind: LineUser, Text: "What colour is it?"}, lastLine(m))
	assert.Equal(t, statusThinking, m.status.Text)
	assert.True(t, m.busy())
	assert.Empty(t, m.input.Value())

	// the user turn is on disk before the reply arrives
	rec, _ := h.store.Get(m.chatID)
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, history.RoleUser, rec.Messages[1].Role)

	m = drain(t, m, cmd)
	assert.Equal(t, "It is mostly blue.", lastLine(m).Text)
	assert.Equal(t, statusReady, m.status.Text)

	rec, _ = h.store.Get(m.chatID)
	require.Len(t, rec.Messages, 3)
	assert.Equal(t, "It is mostly blue.", rec.Messages[2].Text)
}

func TestSend_ErrorKeepsUserTurn(t *testing.T) {
	h, m := analyzed(t)
	h.api.setFail(true)

	m = typeAndSubmit(t, m, "still there?")
	assert.False(t, m.busy())
	assert.Equal(t, statusError, m.status.Text)
	assert.Equal(t, LineError, lastLine(m).Kind)
	assert.Contains(t, lastLine(m).Plain(), "Error: ")
	assert.Contains(t, lastLine(m).Text, "backend exploded")

	rec, _ := h.store.Get(m.chatID)
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, "still there?", rec.Messages[1].Text)
}

func TestAnalyze_FailureThenTextTurnReachesModel(t *testing.T) {
	h, m := ready(t)
	m = typeAndSubmit(t, m, "/add "+h.writePNG(t, "a.png"))

	h.api.setFail(true)
	m = send(t, m, keyMsg("ctrl+g"))
	assert.Equal(t, statusError, m.status.Text)
	require.NotNil(t, m.session)

	h.api.setFail(false)
	h.api.replies = []string{"It is a gradient."}
	m = typeAndSubmit(t, m, "what is it?")
	assert.Equal(t, "It is a gradient.", lastLine(m).Text)
	assert.Len(t, h.api.calls(), 2)

	rec, ok := h.store.Get(m.chatID)
	require.True(t, ok)
	assert.Len(t, rec.Messages, 2)
}

func TestSend_WithoutSession(t *testing.T) {
	h, m := ready(t)
	m = typeAndSubmit(t, m, "hello?")
	assert.Equal(t, gemini.ErrNoSession.Error(), lastLine(m).Text)
	assert.Equal(t, statusError, m.status.Text)
	assert.False(t, m.busy())
	assert.Len(t, h.store.List(), 1)
}

func TestInflight_RefusesSecondCall(t *testing.T) {
	h, m := analyzed(t)

	m.input.SetValue("first")
	m, cmd := dispatch(t, m, keyMsg("enter"))
	require.True(t, m.busy())
	lines := len(m.transcript)

	m.input.SetValue("second")
	m, cmd2 := dispatch(t, m, keyMsg("enter"))
	assert.Nil(t, cmd2)
	assert.Len(t, m.transcript, lines)
	assert.Equal(t, "second", m.input.Value())

	m, cmd3 := dispatch(t, m, keyMsg("ctrl+g"))
	assert.Nil(t, cmd3)

	m = drain(t, m, cmd)
	assert.False(t, m.busy())
	assert.Len(t, h.api.calls(), 2)
}

func TestStaleResultIsDropped(t *testing.T) {
	_, m := analyzed(t)
	lines := len(m.transcript)

	m = send(t, m, replyMsg{RequestID: "not-current", Reply: "ghost"})
	assert.Len(t, m.transcript, lines)

	m.input.SetValue("real")
	m, cmd := dispatch(t, m, keyMsg("enter"))
	m = send(t, m, replyMsg{RequestID: "also-not-current", Reply: "ghost"})
	assert.True(t, m.busy())
	m = drain(t, m, cmd)
	assert.NotEqual(t, "ghost", lastLine(m).Text)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestLoadConversation(t *testing.T) {
	h, m := ready(t)
	img := h.writePNG(t, "kept.png")
	gone := filepath.Join(h.dir, "gone.png")
	_, err := h.store.Save("2024-05-01T10:00:00.000000", history.Record{
		Title:  "Old chat...",
		Images: []string{img, gone},
		Messages: []history.Message{
			{Role: history.RoleModel, Text: "first answer"},
			{Role: history.RoleUser, Text: "a question"},
		},
	})
	require.NoError(t, err)
	m = typeAndSubmit(t, m, "/refresh")
	require.Len(t, m.sidebar.Entries(), 1)

	m = send(t, m, keyMsg("tab"))
	m = send(t, m, keyMsg("right"))
	require.Equal(t, components.TabHistory, m.sidebar.Tab)

	m, cmd := dispatch(t, m, keyMsg("enter"))
	assert.Equal(t, statusLoaded, m.status.Text)
	assert.Equal(t, "2024-05-01T10:00:00.000000", m.chatID)
	require.Len(t, m.transcript, 2)
	assert.Equal(t, "first answer", m.transcript[0].Plain())
	assert.Equal(t, "You: a question", m.transcript[1].Plain())
	require.Len(t, m.images, 1)
	assert.Equal(t, img, m.images[0].Path)
	assert.True(t, m.busy())

	m = drain(t, m, cmd)
	assert.False(t, m.busy())
	require.NotNil(t, m.session)
	assert.Equal(t, statusLoaded, m.status.Text)

	calls := h.api.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], gemini.ContextRestorationPrompt)
	assert.NotContains(t, calls[0], "a question")

	h.api.replies = []string{"continuing"}
	m = send(t, m, keyMsg("tab"))
	m = typeAndSubmit(t, m, "go on")
	assert.Equal(t, "continuing", lastLine(m).Text)
	rec, _ := h.store.Get(m.chatID)
	assert.Len(t, rec.Messages, 4)
}

func TestLoadConversation_WithoutClient(t *testing.T) {
	h, m := newHarness(t, "")
	_, err := h.store.Save("2024-05-01T10:00:00.000000", history.Record{
		Messages: []history.Message{{Role: history.RoleModel, Text: "answer"}},
	})
	require.NoError(t, err)
	m = drain(t, m, m.Init())

	m = send(t, m, keyMsg("tab"))
	m = send(t, m, keyMsg("right"))
	m, cmd := dispatch(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.False(t, m.busy())
	assert.Equal(t, statusLoaded, m.status.Text)
	assert.Equal(t, "answer", lastLine(m).Text)
}

func TestDeleteCurrentConversation(t *testing.T) {
	h, m := analyzed(t)
	id := m.chatID

	m = send(t, m, keyMsg("tab"))
	m = send(t, m, keyMsg("right"))
	m = send(t, m, keyMsg("d"))

	_, ok := h.store.Get(id)
	assert.False(t, ok)
	assert.Empty(t, m.transcript)
	assert.Empty(t, m.chatID)
	assert.Equal(t, statusDeleted, m.status.Text)
	assert.Empty(t, m.sidebar.Entries())
}

func TestDeleteDuringPendingSend(t *testing.T) {
	h, m := analyzed(t)
	h.api.replies = []string{"late reply"}

	m.input.SetValue("still there?")
	m, cmd := dispatch(t, m, keyMsg("enter"))
	require.True(t, m.busy())

	m = send(t, m, keyMsg("tab"))
	m = send(t, m, keyMsg("right"))
	m = send(t, m, keyMsg("d"))
	assert.False(t, m.busy())
	assert.Equal(t, statusDeleted, m.status.Text)

	m = drain(t, m, cmd)
	assert.Empty(t, h.store.Load())
	assert.Empty(t, m.transcript)
	assert.Empty(t, m.chatID)
}

func TestClearAllDuringPendingSend(t *testing.T) {
	h, m := analyzed(t)
	h.api.replies = []string{"late reply"}

	m.input.SetValue("still there?")
	m, cmd := dispatch(t, m, keyMsg("enter"))
	require.True(t, m.busy())

	m.input.SetValue("/clear-all")
	m = send(t, m, keyMsg("enter"))
	m = send(t, m, keyMsg("y"))
	assert.False(t, m.busy())
	assert.Equal(t, statusReady, m.status.Text)

	m = drain(t, m, cmd)
	assert.Empty(t, h.store.Load())
	assert.Empty(t, m.chatID)
}

func TestClearAll_Confirm(t *testing.T) {
	h, m := analyzed(t)

	m = typeAndSubmit(t, m, "/clear-all")
	assert.True(t, m.confirming)
	assert.Contains(t, m.View(), "(y/n)")

	m = send(t, m, keyMsg("n"))
	assert.False(t, m.confirming)
	assert.Len(t, h.store.List(), 1)

	m = typeAndSubmit(t, m, "/clear-all")
	m = send(t, m, keyMsg("y"))
	assert.Empty(t, h.store.List())
	assert.Empty(t, m.transcript)
	assert.Empty(t, m.sidebar.Entries())

	data, err := os.ReadFile(h.store.Path)
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(string(data)))
}

func TestHistoryChangedRefreshesSidebar(t *testing.T) {
	h, m := ready(t)
	assert.Empty(t, m.sidebar.Entries())

	_, err := h.store.Save("2024-01-01T00:00:00.000000", history.Record{Title: "external"})
	require.NoError(t, err)

	m = send(t, m, HistoryChangedMsg{})
	require.Len(t, m.sidebar.Entries(), 1)
	assert.Equal(t, "2024-01-01 00:00 | external", m.sidebar.Entries()[0].Label)
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestCommand_Export(t *testing.T) {
	h, m := analyzed(t)
	out := filepath.Join(h.dir, "out.md")

	m = typeAndSubmit(t, m, "/export "+out)
	assert.Equal(t, "Exported to "+out, lastLine(m).Text)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Model**")
}

func TestCommand_ExportWithoutChat(t *testing.T) {
	_, m := ready(t)
	m = typeAndSubmit(t, m, "/export")
	assert.Equal(t, LineError, lastLine(m).Kind)
}

func TestCommand_ClearImages(t *testing.T) {
	h, m := ready(t)
	m = typeAndSubmit(t, m, "/add "+h.writePNG(t, "a.png")+" "+h.writePNG(t, "b.png"))
	require.Len(t, m.images, 2)

	// adding the same file again does not duplicate it
	m = typeAndSubmit(t, m, "/add "+filepath.Join(h.dir, "a.png"))
	assert.Len(t, m.images, 2)

	m = typeAndSubmit(t, m, "/clear-images")
	assert.Empty(t, m.images)
	assert.Empty(t, m.thumbs)
}

func TestCommand_AddUnsupported(t *testing.T) {
	h, m := ready(t)
	txt := filepath.Join(h.dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o644))

	m = typeAndSubmit(t, m, "/add "+txt)
	assert.Empty(t, m.images)
	assert.Equal(t, LineError, lastLine(m).Kind)
}

func TestCommand_HelpAndUnknown(t *testing.T) {
	_, m := ready(t)
	m = typeAndSubmit(t, m, "/help")
	assert.Contains(t, lastLine(m).Text, "/analyze")
	assert.Contains(t, lastLine(m).Text, "ctrl+g")
	assert.Len(t, m.keys.ShortHelp(), 4)

	m = typeAndSubmit(t, m, "/bogus")
	assert.Contains(t, lastLine(m).Text, "Unknown command")
}

func TestQuit(t *testing.T) {
	_, m := ready(t)
	_, cmd := dispatch(t, m, keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m.input.SetValue("/quit")
	_, cmd = dispatch(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// =============================================================================
// VIEW
// =============================================================================

func TestView(t *testing.T) {
	_, m := analyzed(t)
	out := m.View()
	assert.Contains(t, out, "flashlens")
	assert.Contains(t, out, "square.png")
	assert.Contains(t, out, statusChatActive)
}

func TestPicker_OpenClose(t *testing.T) {
	_, m := ready(t)
	m, cmd := dispatch(t, m, keyMsg("ctrl+o"))
	assert.NotNil(t, cmd)
	assert.Equal(t, focusPicker, m.focus)
	assert.Contains(t, m.View(), "Add images")

	m = send(t, m, keyMsg("esc"))
	assert.Equal(t, focusInput, m.focus)
}
