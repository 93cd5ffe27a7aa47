// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jeranaias/flashlens/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete flashlens configuration.
type Config struct {
	// APIKey is only consulted when neither credential variable is set.
	APIKey string `toml:"api_key,omitempty"`

	Gemini  GeminiConfig  `toml:"gemini"`
	History HistoryConfig `toml:"history"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// GeminiConfig controls the model client.
type GeminiConfig struct {
	BaseURL string `toml:"base_url"`
	// Model pins a model and skips the startup probe when set.
	Model             string `toml:"model,omitempty"`
	FallbackModel     string `toml:"fallback_model"`
	ModelFilter       string `toml:"model_filter"`
	Prompt            string `toml:"prompt"`
	TimeoutSecs       int    `toml:"timeout_secs"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// HistoryConfig controls the conversation store.
type HistoryConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// UIConfig controls the terminal interface.
type UIConfig struct {
	// Thumbnail size in terminal cells; each cell shows two pixel rows.
	ThumbnailWidth  int    `toml:"thumbnail_width"`
	ThumbnailHeight int    `toml:"thumbnail_height"`
	TitleLength     int    `toml:"title_length"`
	Theme           string `toml:"theme"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// envOverrides are the FLASHLENS_* variables. Unset variables leave the
// loaded value alone.
type envOverrides struct {
	HistoryPath string `env:"FLASHLENS_HISTORY_PATH"`
	Model       string `env:"FLASHLENS_MODEL"`
	LogLevel    string `env:"FLASHLENS_LOG_LEVEL"`
	BaseURL     string `env:"FLASHLENS_BASE_URL"`
}

// credentials are the variables the API key may come from, in order.
type credentials struct {
	Gemini string `env:"GEMINI_API_KEY"`
	Google string `env:"GOOGLE_API_KEY"`
}

// Credential variable names.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	SourceConfig    = "config file"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			FallbackModel:     "gemini-1.5-flash-latest",
			ModelFilter:       "flash",
			Prompt:            "Analyze these images.",
			TimeoutSecs:       120,
			RequestsPerMinute: 0, // unlimited
		},
		History: HistoryConfig{
			Path:  "chat_history.json",
			Watch: true,
		},
		UI: UIConfig{
			ThumbnailWidth:  20,
			ThumbnailHeight: 10,
			TitleLength:     30,
			Theme:           "dark",
		},
		Log: LogConfig{
			Path:  "", // resolved to ~/.flashlens/flashlens.log
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the flashlens configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".flashlens"), nil
}

// ConfigPath returns the path of the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the configured log file, or the default one under
// ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flashlens.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.flashlens/config.toml if it exists, then .env from the
// working directory, then applies environment overrides and validates.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit config file. A missing file yields
// the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if err := LoadTOML(cfg, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current value.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads variables from a .env file. Variables already present in
// the environment are not overwritten, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// ApplyEnvOverrides applies the FLASHLENS_* variables:
//   - FLASHLENS_HISTORY_PATH: history.path
//   - FLASHLENS_MODEL: gemini.model
//   - FLASHLENS_LOG_LEVEL: log.level
//   - FLASHLENS_BASE_URL: gemini.base_url
func (c *Config) ApplyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.HistoryPath != "" {
		c.History.Path = o.HistoryPath
	}
	if o.Model != "" {
		c.Gemini.Model = o.Model
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.BaseURL != "" {
		c.Gemini.BaseURL = o.BaseURL
	}
	return nil
}

// ResolveAPIKey returns the Gemini API key and where it came from:
// GEMINI_API_KEY, then GOOGLE_API_KEY, then api_key from the config file.
// Both results are empty when no key is available.
func ResolveAPIKey(cfg *Config) (key, source string) {
	var creds credentials
	if err := env.Parse(&creds); err == nil {
		if k := strings.TrimSpace(creds.Gemini); k != "" {
			return k, EnvGeminiAPIKey
		}
		if k := strings.TrimSpace(creds.Google); k != "" {
			return k, EnvGoogleAPIKey
		}
	}
	if cfg != nil {
		if k := strings.TrimSpace(cfg.APIKey); k != "" {
			return k, SourceConfig
		}
	}
	return "", ""
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero values left by a sparse config file.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = d.Gemini.BaseURL
	}
	if c.Gemini.FallbackModel == "" {
		c.Gemini.FallbackModel = d.Gemini.FallbackModel
	}
	if c.Gemini.ModelFilter == "" {
		c.Gemini.ModelFilter = d.Gemini.ModelFilter
	}
	if strings.TrimSpace(c.Gemini.Prompt) == "" {
		c.Gemini.Prompt = d.Gemini.Prompt
	}
	if c.Gemini.TimeoutSecs == 0 {
		c.Gemini.TimeoutSecs = d.Gemini.TimeoutSecs
	}
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}
	if c.UI.ThumbnailWidth == 0 {
		c.UI.ThumbnailWidth = d.UI.ThumbnailWidth
	}
	if c.UI.ThumbnailHeight == 0 {
		c.UI.ThumbnailHeight = d.UI.ThumbnailHeight
	}
	if c.UI.TitleLength == 0 {
		c.UI.TitleLength = d.UI.TitleLength
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting found by Validate.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks ranges and enumerations. It returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Gemini.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("gemini.base_url", "invalid URL %q", c.Gemini.BaseURL)
	} else if u.Scheme != "https" && u.Scheme != "http" {
		add("gemini.base_url", "unsupported scheme %q", u.Scheme)
	}
	if c.Gemini.TimeoutSecs < 1 || c.Gemini.TimeoutSecs > 600 {
		add("gemini.timeout_secs", "must be between 1 and 600, got %d", c.Gemini.TimeoutSecs)
	}
	if c.Gemini.RequestsPerMinute < 0 {
		add("gemini.requests_per_minute", "cannot be negative")
	}
	if strings.TrimSpace(c.History.Path) == "" {
		add("history.path", "cannot be empty")
	}
	if c.UI.ThumbnailWidth < 4 || c.UI.ThumbnailWidth > 80 {
		add("ui.thumbnail_width", "must be between 4 and 80, got %d", c.UI.ThumbnailWidth)
	}
	if c.UI.ThumbnailHeight < 2 || c.UI.ThumbnailHeight > 40 {
		add("ui.thumbnail_height", "must be between 2 and 40, got %d", c.UI.ThumbnailHeight)
	}
	if c.UI.TitleLength < 1 {
		add("ui.title_length", "must be positive, got %d", c.UI.TitleLength)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme %q, must be one of: dark, light, auto", c.UI.Theme)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg as TOML with a header comment. The file is created 0600
// since it may hold an API key.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# flashlens configuration file\n")
	buf.WriteString("# Generated by flashlens - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
