// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini is a thin client for the Google Gemini REST API.
//
// It covers what flashlens needs: listing models to pick the newest "flash"
// model, opening a multi-turn session seeded with images, sending text
// turns, and resuming a session from stored image paths.
//
// # Key Types
//
//   - Client: HTTP transport, API key and selected model
//   - Session: one conversation's turn history; owned by the caller
//   - ModelInfo: an entry of the model listing
//   - APIError: a non-2xx answer from the API
//
// # Usage
//
//	client, err := gemini.NewClient(apiKey)
//	model := client.SelectModel(ctx) // never fails, falls back to FallbackModel
//
//	sess, reply, err := client.StartSession(ctx, images, gemini.DefaultPrompt)
//	reply, err = sess.Send(ctx, "What is in the second picture?")
//
// # Errors
//
// There is no retry policy. Transport errors and API errors are returned to
// the caller wrapped with %w; use errors.Is with the sentinel errors or
// errors.As with *APIError.
package gemini
