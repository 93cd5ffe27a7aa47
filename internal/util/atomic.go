// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile replaces path with data so that readers only ever observe
// the old file or the complete new one:
//  1. write to a temp file in the same directory
//  2. fsync and close it
//  3. rename it over the target
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("atomic write %s: mkdir: %w", path, err)
	}

	// Same directory keeps the rename on one filesystem.
	f, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("atomic write %s: temp file: %w", path, err)
	}
	tmp := f.Name()

	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("atomic write %s: fsync: %w", path, err)
	}
	// Windows refuses to rename an open file.
	if err := f.Close(); err != nil {
		return fmt.Errorf("atomic write %s: close: %w", path, err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("atomic write %s: chmod: %w", path, err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		return fmt.Errorf("atomic write %s: rename: %w", path, err)
	}

	committed = true
	return nil
}

// WriteJSONAtomic encodes v with the given indent and writes it with
// AtomicWriteFile. HTML escaping is disabled so paths and model text are
// stored verbatim.
func WriteJSONAtomic(path string, v any, indent string, perm os.FileMode) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return AtomicWriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), perm)
}
