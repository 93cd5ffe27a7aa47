// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured indicates that no API key was supplied.
	ErrNotConfigured = errors.New("gemini API key not configured")

	// ErrNoSession indicates a turn was sent before a session was started.
	ErrNoSession = errors.New("chat session not initialized")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the quota or request rate was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the selected model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse indicates the model returned no usable text,
	// usually because the prompt or the answer was blocked.
	ErrEmptyResponse = errors.New("empty response")
)

// APIError is an error answer from the Gemini API.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // API status, e.g. "INVALID_ARGUMENT"
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gemini error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to the package sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrModelNotFound
	}
	// The API answers 400 API_KEY_INVALID for a malformed key.
	if e.Status == http.StatusBadRequest && e.Code == "INVALID_ARGUMENT" && containsFold(e.Message, "api key") {
		return ErrAuthFailed
	}
	return nil
}

// apiErrorBody is the JSON error envelope returned by Google APIs.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// newAPIError builds an APIError from a status code, the decoded envelope
// (may be empty) and the raw body as a fallback message.
func newAPIError(status int, body *apiErrorBody, raw []byte) *APIError {
	e := &APIError{Status: status}
	if body != nil && body.Error.Message != "" {
		e.Code = body.Error.Status
		e.Message = body.Error.Message
		return e
	}
	e.Message = string(raw)
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
