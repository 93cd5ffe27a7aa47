// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/ui/styles"
)

func testTheme() *styles.Theme { return styles.NewTheme("dark") }

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// =============================================================================
// THUMBNAIL TESTS
// =============================================================================

func TestThumbnail_Dimensions(t *testing.T) {
	out := Thumbnail(solid(6, 5, color.NRGBA{R: 255, A: 255}))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3) // ceil(5/2)
	for _, l := range lines {
		assert.Equal(t, 6, lipgloss.Width(l))
	}
}

func TestThumbnail_Nil(t *testing.T) {
	assert.Empty(t, Thumbnail(nil))
}

func TestHexColor(t *testing.T) {
	c, ok := hexColor(color.NRGBA{R: 0x12, G: 0xAB, B: 0xEF, A: 0xFF})
	require.True(t, ok)
	assert.Equal(t, lipgloss.Color("#12ABEF"), c)

	_, ok = hexColor(color.NRGBA{R: 0xFF, A: 0x10})
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	th := testTheme()
	assert.Contains(t, Preview(th, nil, 80, 10), "No images selected")

	items := []PreviewItem{
		{Name: "cat.png", Image: solid(4, 4, color.White)},
		{Name: "broken.webp"},
	}
	out := Preview(th, items, 80, 12)
	assert.Contains(t, out, "cat.png")
	assert.Contains(t, out, "broken.webp")
	assert.Contains(t, out, "(no preview)")
}

func TestPreview_Wraps(t *testing.T) {
	th := testTheme()
	var items []PreviewItem
	for i := 0; i < 6; i++ {
		items = append(items, PreviewItem{Name: "img.png", Image: solid(8, 4, color.White)})
	}
	narrow := Preview(th, items, 20, 8)
	wide := Preview(th, items, 200, 8)
	assert.Greater(t, lipgloss.Height(narrow), lipgloss.Height(wide))
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func entries(ids ...string) []history.Entry {
	out := make([]history.Entry, len(ids))
	for i, id := range ids {
		out[i] = history.Entry{ID: id, Label: id + " | chat"}
	}
	return out
}

func TestSidebar_Tabs(t *testing.T) {
	s := NewSidebar(testTheme())
	assert.Equal(t, TabNewChat, s.Tab)
	s.ToggleTab()
	assert.Equal(t, TabHistory, s.Tab)
	s.ToggleTab()
	assert.Equal(t, TabNewChat, s.Tab)
	assert.Equal(t, "History", TabHistory.String())
}

func TestSidebar_Cursor(t *testing.T) {
	s := NewSidebar(testTheme())
	_, ok := s.Selected()
	assert.False(t, ok)

	s.SetEntries(entries("c", "b", "a"))
	e, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", e.ID)

	s.CursorDown()
	s.CursorDown()
	s.CursorDown()
	e, _ = s.Selected()
	assert.Equal(t, "a", e.ID)

	s.CursorUp()
	e, _ = s.Selected()
	assert.Equal(t, "b", e.ID)
}

func TestSidebar_SetEntriesKeepsSelection(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetEntries(entries("c", "b", "a"))
	s.CursorDown() // b

	s.SetEntries(entries("d", "c", "b", "a"))
	e, _ := s.Selected()
	assert.Equal(t, "b", e.ID)

	s.SetEntries(entries("d"))
	e, _ = s.Selected()
	assert.Equal(t, "d", e.ID)

	s.SetEntries(nil)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSidebar_View(t *testing.T) {
	s := NewSidebar(testTheme())
	s.SetSize(40, 16)

	out := s.View()
	assert.Contains(t, out, "New Chat")
	assert.Contains(t, out, "No images selected")

	s.SetImages([]string{"a.png", "b.jpg"})
	out = s.View()
	assert.Contains(t, out, "2 images")
	assert.Contains(t, out, "b.jpg")

	s.ToggleTab()
	assert.Contains(t, s.View(), "No saved chats")

	s.SetEntries(entries("2024-01-02 10:00"))
	s.SetCurrent("2024-01-02 10:00")
	out = s.View()
	assert.Contains(t, out, "* 2024-01-02 10:00")

	s.Confirming = true
	assert.Contains(t, s.View(), "(y/n)")
	assert.Equal(t, 16, lipgloss.Height(s.View()))
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_View(t *testing.T) {
	sb := NewStatusBar(testTheme())
	assert.Contains(t, sb.View(), "Initializing...")

	sb.Width = 140
	sb.Model = "gemini-2.0-flash"
	sb.Set("Ready (Model: gemini-2.0-flash)", StatusReady)
	out := sb.View()
	assert.Contains(t, out, "[*] Ready")
	assert.Contains(t, out, "ctrl+g")
	assert.Equal(t, 140, lipgloss.Width(out))

	sb.Set("Thinking...", StatusBusy)
	sb.Spinner = "/"
	assert.Contains(t, sb.View(), "[~] / Thinking...")

	sb.Set("Error occurred", StatusError)
	assert.Contains(t, sb.View(), "[X] Error occurred")
}

func TestStatusBar_Narrow(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Width = 40
	sb.Model = "gemini-2.0-flash"
	out := sb.View()
	assert.NotContains(t, out, "gemini-2.0-flash")
	assert.NotContains(t, out, "ctrl+c")
	assert.LessOrEqual(t, lipgloss.Width(out), 40)
}
