// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists flashlens conversations in a single JSON document.
//
// The document maps a timestamp identifier to a conversation record. It is
// loaded whole and rewritten whole on every change; a missing or corrupt file
// reads as an empty history.
//
// # Key Types
//
//   - Store: load/save/delete/clear against one file
//   - Record: title, image paths, messages and update time of one conversation
//   - Entry: a record plus its identifier and sidebar label, for listing
//
// # Usage
//
//	store := history.NewStore("chat_history.json")
//	id := history.NewID(time.Now())
//	rec, err := store.Save(id, history.Record{Title: "Chat", Images: paths})
//
//	for _, e := range store.List() {
//	    fmt.Println(e.Label)
//	}
//
// # File Format
//
//	{
//	    "2025-01-02T15:04:05.000000": {
//	        "title": "A cat on a sofa...",
//	        "images": ["/home/me/cat.png"],
//	        "messages": [{"role": "model", "text": "A cat on a sofa"}],
//	        "updated_at": "2025-01-02T15:04:09.123456"
//	    }
//	}
package history
