// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"time"

	"github.com/jeranaias/flashlens/internal/util"
)

// Message roles as stored on disk.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// TimestampLayout is the identifier and updated_at format: local time with
// microseconds and no zone, so that lexical order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000000"

const (
	// DefaultTitle is used until the conversation has a model reply.
	DefaultTitle = "Chat"

	// DefaultTitleLength is how many runes of the first reply form the title.
	DefaultTitleLength = 30
)

// Message is one line of a conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Record is one persisted conversation.
type Record struct {
	Title     string    `json:"title"`
	Images    []string  `json:"images"`
	Messages  []Message `json:"messages"`
	UpdatedAt string    `json:"updated_at"`
}

// Document is the whole history file: identifier to record.
type Document map[string]Record

// Entry is a record with its identifier and display label.
type Entry struct {
	ID     string
	Label  string
	Record Record
}

// NewID returns the identifier for a conversation started at t.
func NewID(t time.Time) string {
	return t.Format(TimestampLayout)
}

// TitleFor derives a conversation title from its messages: the first
// maxRunes runes of the first model reply followed by "...", or
// DefaultTitle when nothing has been answered yet.
func TitleFor(messages []Message, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultTitleLength
	}
	for _, m := range messages {
		if m.Role == RoleModel {
			return util.HeadRunes(m.Text, maxRunes) + "..."
		}
	}
	return DefaultTitle
}

// Label formats the sidebar line for a record: "YYYY-MM-DD HH:MM | title".
func Label(id string, rec Record) string {
	stamp := util.HeadRunes(id, 16)
	stamp = strings.Replace(stamp, "T", " ", 1)
	return stamp + " | " + util.SingleLine(rec.Title)
}
