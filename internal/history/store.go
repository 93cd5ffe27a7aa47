// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/flashlens/internal/util"
)

// DefaultPath is the history file name, relative to the working directory.
const DefaultPath = "chat_history.json"

// fileIndent matches the layout of history files written by earlier versions.
const fileIndent = "    "

// Store reads and writes the history document at Path.
//
// The mutex only orders callers inside this process. Another process
// writing the same file can still race; the last rename wins.
type Store struct {
	Path string

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a store for the given file. An empty path selects
// DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path, now: time.Now}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Load returns the full document. A missing, unreadable or corrupt file
// yields an empty document; the cause is only logged.
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Document {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("history unreadable, treating as empty", "path", s.Path, "error", err)
		}
		return Document{}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Debug("history corrupt, treating as empty", "path", s.Path, "error", err)
		return Document{}
	}
	if doc == nil {
		// The file held a JSON null.
		return Document{}
	}
	return doc
}

// Get returns one record.
func (s *Store) Get(id string) (Record, bool) {
	rec, ok := s.Load()[id]
	return rec, ok
}

// List returns every record, newest identifier first.
func (s *Store) List() []Entry {
	doc := s.Load()

	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		rec := doc[id]
		entries = append(entries, Entry{ID: id, Label: Label(id, rec), Record: rec})
	}
	return entries
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save stamps rec.UpdatedAt, upserts it under id and rewrites the file.
// The stored record is returned.
func (s *Store) Save(id string, rec Record) (Record, error) {
	if id == "" {
		return Record{}, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = s.now().Format(TimestampLayout)
	if rec.Images == nil {
		rec.Images = []string{}
	}
	if rec.Messages == nil {
		rec.Messages = []Message{}
	}

	doc := s.load()
	doc[id] = rec
	if err := s.write(doc); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete removes id and rewrites the file. Deleting an unknown id does
// nothing and leaves the file untouched.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if _, ok := doc[id]; !ok {
		return nil
	}
	delete(doc, id)
	return s.write(doc)
}

// Clear replaces an existing file with an empty document. When there is no
// file there is nothing to clear.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("history: stat %s: %w", s.Path, err)
	}
	return s.write(Document{})
}

func (s *Store) write(doc Document) error {
	if err := util.WriteJSONAtomic(s.Path, doc, fileIndent, 0644); err != nil {
		return fmt.Errorf("history: write %s: %w", s.Path, err)
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrEmptyID is returned by Save when no identifier is given.
var ErrEmptyID = errors.New("history: empty conversation id")
