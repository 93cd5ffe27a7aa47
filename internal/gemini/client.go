// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Configuration defaults.
const (
	// DefaultBaseURL is the Generative Language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single request. Image analysis of several
	// large pictures can take well over ten seconds.
	DefaultTimeout = 120 * time.Second

	// FallbackModel is used whenever the model probe fails or finds nothing.
	FallbackModel = "gemini-1.5-flash-latest"

	// DefaultModelFilter is the substring a probed model name must contain.
	DefaultModelFilter = "flash"

	// DefaultPrompt accompanies the first image batch of a session.
	DefaultPrompt = "Analyze these images."

	// ContextRestorationPrompt prefixes the images replayed on resume.
	ContextRestorationPrompt = "System: Context restoration."

	userAgent = "flashlens/0.1"
)

// Client talks to the Gemini API. It holds no conversation state; turns
// live in Session values created from it.
type Client struct {
	apiKey      string
	http        *resty.Client
	limiter     *rate.Limiter
	modelFilter string
	fallback    string
	pinned      bool

	mu    sync.RWMutex
	model string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.http.SetBaseURL(strings.TrimSuffix(url, "/"))
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRequestsPerMinute throttles outgoing calls. Zero disables throttling.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		}
	}
}

// WithModel sets the initial model, e.g. from configuration.
func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = ModelPath(name)
			c.pinned = true
		}
	}
}

// WithModelFilter changes the substring used by SelectModel.
func WithModelFilter(substr string) Option {
	return func(c *Client) {
		if substr != "" {
			c.modelFilter = strings.ToLower(substr)
		}
	}
}

// WithFallbackModel changes the model used when the probe finds nothing.
func WithFallbackModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.fallback = ModelPath(name)
			if !c.pinned {
				c.model = c.fallback
			}
		}
	}
}

// NewClient creates a client for the given API key. It performs no network
// I/O; call SelectModel to probe for the newest flash model.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{
		apiKey:      apiKey,
		modelFilter: DefaultModelFilter,
		fallback:    ModelPath(FallbackModel),
		model:       ModelPath(FallbackModel),
	}
	c.http = resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("x-goog-api-key", apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent).
		SetLogger(slogAdapter{}).
		SetRetryCount(0)

	for _, opt := range opts {
		opt(c)
	}

	slog.Debug("gemini client created", "key_fingerprint", c.KeyFingerprint(), "base_url", c.http.BaseURL)
	return c, nil
}

// Pinned reports whether the model was fixed with WithModel, in which case
// callers usually skip SelectModel.
func (c *Client) Pinned() bool { return c.pinned }

// Model returns the full model resource name, e.g. "models/gemini-2.0-flash".
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the model used by sessions started afterwards.
func (c *Client) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = ModelPath(name)
}

// KeyFingerprint identifies the API key in logs without exposing it.
func (c *Client) KeyFingerprint() string {
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// wait blocks until the rate limiter admits one request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gemini: rate limiter: %w", err)
	}
	return nil
}

// ModelPath normalises a model name to its resource path.
func ModelPath(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name
}

// DisplayName strips the resource prefix for status lines.
func DisplayName(name string) string {
	return strings.TrimPrefix(name, "models/")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// slogAdapter routes resty's internal logging into slog; resty's default
// logger writes to stderr, which would corrupt the terminal UI.
type slogAdapter struct{}

func (slogAdapter) Errorf(format string, v ...interface{}) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (slogAdapter) Warnf(format string, v ...interface{}) {
	slog.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (slogAdapter) Debugf(format string, v ...interface{}) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
