// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/flashlens/internal/imagefile"
)

// Roles used in Content.Role.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one conversation turn on the wire.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is either text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64 image bytes.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// TextPart builds a text part.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart builds an inline image part.
func ImagePart(img imagefile.Image) Part {
	return Part{InlineData: &InlineData{
		MimeType: img.MIME,
		Data:     base64.StdEncoding.EncodeToString(img.Data),
	}}
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Session is a multi-turn conversation bound to one model. The whole
// history is resent with every turn.
type Session struct {
	client *Client
	model  string

	mu      sync.Mutex
	history []Content
}

// NewSession starts an empty session on the client's current model.
func (c *Client) NewSession() *Session {
	return &Session{client: c, model: c.Model()}
}

// Model returns the model the session is bound to.
func (s *Session) Model() string {
	if s == nil {
		return ""
	}
	return s.model
}

// History returns a copy of the turns exchanged so far.
func (s *Session) History() []Content {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Content, len(s.history))
	copy(out, s.history)
	return out
}

// StartSession opens a new session and sends prompt followed by the images
// as its first user turn. An empty prompt uses DefaultPrompt. The session is
// returned even if the first turn fails, so later turns can still be sent.
func (c *Client) StartSession(ctx context.Context, images []imagefile.Image, prompt string) (*Session, string, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	s := c.NewSession()
	reply, err := s.sendParts(ctx, imageTurn(prompt, images))
	if err != nil {
		return s, "", err
	}
	return s, reply, nil
}

// ResumeSession opens a new session for a restored chat. When images are
// given they are replayed as one context message. Earlier text turns are not
// replayed. The session is returned even if the replay fails.
func (c *Client) ResumeSession(ctx context.Context, images []imagefile.Image) (*Session, error) {
	s := c.NewSession()
	if len(images) == 0 {
		return s, nil
	}
	if _, err := s.sendParts(ctx, imageTurn(ContextRestorationPrompt, images)); err != nil {
		return s, fmt.Errorf("restore image context: %w", err)
	}
	return s, nil
}

// Send sends a text turn and returns the model's reply. The history only
// grows when the call succeeds.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrNoSession
	}
	return s.sendParts(ctx, []Part{TextPart(text)})
}

func imageTurn(prompt string, images []imagefile.Image) []Part {
	parts := make([]Part, 0, len(images)+1)
	parts = append(parts, TextPart(prompt))
	for _, img := range images {
		parts = append(parts, ImagePart(img))
	}
	return parts
}

func (s *Session) sendParts(ctx context.Context, parts []Part) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Content{Role: RoleUser, Parts: parts}
	contents := make([]Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	contents = append(contents, turn)

	reply, err := s.client.generate(ctx, s.model, contents)
	if err != nil {
		return "", err
	}

	s.history = append(s.history, turn, Content{Role: RoleModel, Parts: []Part{TextPart(reply)}})
	return reply, nil
}

// generate performs one generateContent call.
func (c *Client) generate(ctx context.Context, model string, contents []Content) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	var result generateResponse
	var apiErr apiErrorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Contents: contents}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/" + ModelPath(model) + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini: generate: %w", newAPIError(resp.StatusCode(), &apiErr, resp.Body()))
	}

	text, err := result.text()
	if err != nil {
		return "", err
	}
	slog.Debug("generate complete",
		"model", model, "turns", len(contents), "reply_len", len(text), "elapsed", time.Since(start))
	return text, nil
}

// text concatenates the text parts of the first candidate.
func (r *generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, r.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	cand := r.Candidates[0]
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		reason := cand.FinishReason
		if reason == "" {
			reason = "no text"
		}
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, reason)
	}
	return b.String(), nil
}
