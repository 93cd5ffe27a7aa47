// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/ui/styles"
	"github.com/jeranaias/flashlens/internal/util"
)

// upperHalf paints the top pixel as foreground and the bottom as background.
const upperHalf = "▀"

// Thumbnail renders img with one cell per column and two pixel rows per
// line. Callers scale the image first; see imagefile.Thumbnail.
func Thumbnail(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle()
			if c, ok := hexColor(img.At(x, y)); ok {
				style = style.Foreground(c)
			}
			if y+1 < b.Max.Y {
				if c, ok := hexColor(img.At(x, y+1)); ok {
					style = style.Background(c)
				}
			}
			sb.WriteString(style.Render(upperHalf))
		}
	}
	return sb.String()
}

// hexColor converts a pixel to a lipgloss colour. Mostly transparent pixels
// are left to the terminal background.
func hexColor(c color.Color) (lipgloss.Color, bool) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	if nc.A < 0x40 {
		return "", false
	}
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", nc.R, nc.G, nc.B)), true
}

// PreviewItem is one entry of the preview strip. Image is nil when the
// thumbnail could not be produced.
type PreviewItem struct {
	Name  string
	Image image.Image
}

// Preview lays captioned thumbnails out left to right, wrapping at width.
// cellWidth is the caption width of each tile.
func Preview(theme *styles.Theme, items []PreviewItem, width, cellWidth int) string {
	if len(items) == 0 {
		return theme.ListEmpty.Render("No images selected")
	}
	if cellWidth < 4 {
		cellWidth = 4
	}

	tiles := make([]string, len(items))
	for i, it := range items {
		body := Thumbnail(it.Image)
		if body == "" {
			body = theme.ListEmpty.Render(util.PadWidth("(no preview)", cellWidth))
		}
		caption := theme.SectionTitle.Render(util.FitWidth(it.Name, cellWidth))
		tiles[i] = lipgloss.NewStyle().
			MarginRight(1).
			Render(lipgloss.JoinVertical(lipgloss.Left, body, caption))
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, tile := range tiles {
		w := lipgloss.Width(tile)
		if len(row) > 0 && width > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, tile)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
