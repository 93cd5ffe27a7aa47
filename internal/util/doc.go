// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the flashlens packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file replacement (temp file, fsync, rename)
//   - WriteJSONAtomic: indent-encode a value and write it atomically
//
// String Utilities:
//   - HeadRunes: first n runes of a string, UTF-8 safe
//   - FitWidth: display-width truncation for terminal columns
//   - SingleLine: collapse newlines for one-line labels
package util
