// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown("2025-03-04T05:06:07.000000", sampleRecord())

	assert.True(t, strings.HasPrefix(md, "# A tabby cat asleep on a sof...\n"))
	assert.Contains(t, md, "Conversation: 2025-03-04T05:06:07.000000")
	assert.Contains(t, md, "- `/tmp/cat.png`")
	assert.Contains(t, md, "**You**:\n\nWhat colour is the sofa?")
	assert.Equal(t, 2, strings.Count(md, "**Model**:"))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "2025-03-04T05-06-07-000000.md", ExportFileName("2025-03-04T05:06:07.000000"))
}
