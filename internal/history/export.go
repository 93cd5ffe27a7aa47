// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"path/filepath"
	"strings"
)

// ExportMarkdown renders a record as a Markdown transcript: title, update
// time, the image list and every message under a role heading.
func ExportMarkdown(id string, rec Record) string {
	var sb strings.Builder

	sb.WriteString("# " + rec.Title + "\n\n")
	sb.WriteString("Conversation: " + id + "\n\n")
	if rec.UpdatedAt != "" {
		sb.WriteString("Updated: " + rec.UpdatedAt + "\n\n")
	}

	if len(rec.Images) > 0 {
		sb.WriteString("## Images\n\n")
		for _, p := range rec.Images {
			sb.WriteString("- `" + p + "`\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	for _, msg := range rec.Messages {
		role := "**Model**"
		if msg.Role == RoleUser {
			role = "**You**"
		}
		sb.WriteString(role + ":\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportFileName returns a file name for an exported conversation that is
// valid on every platform: the identifier with ':' and '.' replaced.
func ExportFileName(id string) string {
	name := strings.NewReplacer(":", "-", ".", "-", string(filepath.Separator), "-").Replace(id)
	return name + ".md"
}
