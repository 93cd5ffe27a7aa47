// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/google/uuid"
)

// requestKind names the operation holding the guard.
type requestKind int

const (
	requestNone requestKind = iota
	requestStartup
	requestAnalyze
	requestSend
	requestResume
)

func (k requestKind) String() string {
	switch k {
	case requestStartup:
		return "startup"
	case requestAnalyze:
		return "analyze"
	case requestSend:
		return "send"
	case requestResume:
		return "resume"
	default:
		return "none"
	}
}

// inflight is a single-slot guard over model calls. Each acquisition gets a
// fresh request id; results carrying any other id are stale.
type inflight struct {
	id   string
	kind requestKind
}

// busy reports whether a call is outstanding.
func (f *inflight) busy() bool { return f.id != "" }

// acquire takes the slot and returns the request id, or false when a call
// is already outstanding.
func (f *inflight) acquire(kind requestKind) (string, bool) {
	if f.busy() {
		return "", false
	}
	f.id = uuid.NewString()
	f.kind = kind
	return f.id, true
}

// release frees the slot if id is the current request. It reports whether
// the result should be applied.
func (f *inflight) release(id string) bool {
	if id == "" || id != f.id {
		return false
	}
	f.id = ""
	f.kind = requestNone
	return true
}

// reset drops any outstanding request so its result is ignored.
func (f *inflight) reset() {
	f.id = ""
	f.kind = requestNone
}
