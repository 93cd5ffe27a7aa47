// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// listPageSize is the largest page the models endpoint accepts.
const listPageSize = 1000

// ModelInfo describes one model available to the API key.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description,omitempty"`
	InputTokenLimit            int      `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int      `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// Supports reports whether the model lists the given generation method.
func (m ModelInfo) Supports(method string) bool {
	for _, s := range m.SupportedGenerationMethods {
		if s == method {
			return true
		}
	}
	return false
}

type listModelsResponse struct {
	Models        []ModelInfo `json:"models"`
	NextPageToken string      `json:"nextPageToken"`
}

// ListModels returns every model visible to the API key, following
// pagination to the end.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var (
		all   []ModelInfo
		token string
	)
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		var page listModelsResponse
		var apiErr apiErrorBody
		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("pageSize", strconv.Itoa(listPageSize)).
			SetResult(&page).
			SetError(&apiErr)
		if token != "" {
			req.SetQueryParam("pageToken", token)
		}

		resp, err := req.Get("/models")
		if err != nil {
			return nil, fmt.Errorf("gemini: list models: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("gemini: list models: %w", newAPIError(resp.StatusCode(), &apiErr, resp.Body()))
		}

		all = append(all, page.Models...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// SelectFlashModel picks the model to use from a listing: among models that
// support generateContent and whose lowercased name contains filter, the
// one whose name sorts last. Plain string order ranks "gemini-2.0-flash"
// above "gemini-1.5-flash"; it is a heuristic, not version parsing.
func SelectFlashModel(models []ModelInfo, filter string) (string, bool) {
	if filter == "" {
		filter = DefaultModelFilter
	}
	filter = strings.ToLower(filter)

	var names []string
	for _, m := range models {
		if m.Supports("generateContent") && strings.Contains(strings.ToLower(m.Name), filter) {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return "", false
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names[0], true
}

// SelectModel probes the API for the newest matching model and makes it the
// client's model. Any failure, or an empty match, selects the fallback
// model (FallbackModel unless WithFallbackModel changed it).
// It never returns an error.
func (c *Client) SelectModel(ctx context.Context) string {
	models, err := c.ListModels(ctx)
	if err != nil {
		slog.Warn("could not auto-detect model, using fallback", "fallback", c.fallback, "error", err)
		c.SetModel(c.fallback)
		return c.Model()
	}

	name, ok := SelectFlashModel(models, c.modelFilter)
	if !ok {
		slog.Warn("no matching model in listing, using fallback",
			"filter", c.modelFilter, "listed", len(models), "fallback", c.fallback)
		c.SetModel(c.fallback)
		return c.Model()
	}

	c.SetModel(name)
	slog.Info("model selected", "model", name, "listed", len(models))
	return c.Model()
}
