// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds every style the UI renders with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	App          lipgloss.Style
	Title        lipgloss.Style
	Pane         lipgloss.Style
	PaneFocused  lipgloss.Style
	SectionTitle lipgloss.Style

	// Sidebar
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	ListItem    lipgloss.Style
	ListCursor  lipgloss.Style
	ListEmpty   lipgloss.Style

	// Transcript
	UserLine   lipgloss.Style
	ModelLine  lipgloss.Style
	SystemLine lipgloss.Style
	ErrorLine  lipgloss.Style

	// Input
	InputPrompt   lipgloss.Style
	InputDisabled lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusReady  lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusError  lipgloss.Style
	StatusModel  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	Spinner lipgloss.Style
	Confirm lipgloss.Style
}

// NewTheme builds the theme for mode "dark", "light" or "auto". Auto asks the
// terminal for its background colour.
func NewTheme(mode string) *Theme {
	var isDark bool
	switch strings.ToLower(mode) {
	case "light":
		isDark = false
	case "dark":
		isDark = true
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: lipgloss.ColorProfile(),
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Brand).
		Padding(0, 1)

	t.Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.PaneFocused = t.Pane.BorderForeground(Brand)

	t.SectionTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Surface).
		Background(Brand).
		Padding(0, 1)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceBright).
		Padding(0, 1)

	t.ListItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ListCursor = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(BrandDeep)
	t.ListEmpty = lipgloss.NewStyle().
		Italic(true).
		Foreground(TextMuted)

	t.UserLine = lipgloss.NewStyle().Bold(true).Foreground(UserFg)
	t.ModelLine = lipgloss.NewStyle().Foreground(ModelFg)
	t.SystemLine = lipgloss.NewStyle().Italic(true).Foreground(SystemFg)
	t.ErrorLine = lipgloss.NewStyle().Bold(true).Foreground(ErrorFg)

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Brand)
	t.InputDisabled = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceBright).
		Padding(0, 1)
	t.StatusReady = lipgloss.NewStyle().Foreground(Emerald).Background(SurfaceBright)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber).Background(SurfaceBright)
	t.StatusError = lipgloss.NewStyle().Bold(true).Foreground(Rose).Background(SurfaceBright)
	t.StatusModel = lipgloss.NewStyle().Foreground(TextMuted).Background(SurfaceBright)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Brand).Background(SurfaceBright)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted).Background(SurfaceBright)

	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.Confirm = lipgloss.NewStyle().Bold(true).Foreground(Rose)
}
