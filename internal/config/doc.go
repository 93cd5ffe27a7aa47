// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads flashlens settings.
//
// Settings are resolved in this order, later sources winning:
//   - Built-in defaults
//   - ~/.flashlens/config.toml
//   - A .env file in the working directory
//   - Environment variables (FLASHLENS_*)
//
// The Gemini credential is read from GEMINI_API_KEY, then GOOGLE_API_KEY,
// and only then from api_key in the config file.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	key, source := config.ResolveAPIKey(cfg)
package config
