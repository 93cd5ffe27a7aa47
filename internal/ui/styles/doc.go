// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colours and lipgloss styles of the flashlens TUI.

All colours are lipgloss.AdaptiveColor values, so one palette serves light and
dark terminals. NewTheme pins the background choice ("dark", "light") or asks
the terminal through termenv ("auto").

# Semantic Colors

	Brand       - title, focused borders, the active sidebar tab
	UserFg      - "You:" lines
	ModelFg     - model replies
	SystemFg    - progress and informational lines
	ErrorFg     - "Error:" lines and the error status

# Usage

	theme := styles.NewTheme("auto")
	line := theme.UserLine.Render("You: hello")
*/
package styles
