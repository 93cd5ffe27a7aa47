// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// HeadRunes returns at most the first n runes of s. Unlike byte slicing it
// never splits a multi-byte character.
func HeadRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FitWidth truncates s to at most width terminal columns, ending with "…"
// when something was cut. Wide (CJK) characters count as two columns.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// PadWidth right-pads s with spaces to exactly width columns, truncating
// first if needed.
func PadWidth(s string, width int) string {
	s = FitWidth(s, width)
	return runewidth.FillRight(s, width)
}

// SingleLine collapses CR/LF into single spaces.
func SingleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
