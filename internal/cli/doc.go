// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the flashlens command line and checks the terminal
// before the TUI starts.
//
// The command line is deliberately small:
//
//	flashlens                       start the TUI
//	flashlens --config PATH         use another config file
//	flashlens --history PATH        use another history file
//	flashlens --model NAME          pin a model, skipping the probe
//	flashlens history [list]        print saved chats
//	flashlens history export ID     write one chat as Markdown
//	flashlens version | --version
//	flashlens help | --help
package cli
