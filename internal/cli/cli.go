// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the action selected on the command line.
type Command int

const (
	CmdTUI Command = iota
	CmdHistoryList
	CmdHistoryExport
	CmdVersion
	CmdHelp
)

// Args holds parsed arguments.
type Args struct {
	ConfigPath  string
	HistoryPath string
	Model       string
	LogLevel    string

	// ExportID and ExportPath are set for CmdHistoryExport. An empty
	// ExportPath means the default file name.
	ExportID   string
	ExportPath string
}

// ErrUsage is wrapped by every parse error.
var ErrUsage = errors.New("usage error")

const usageText = `flashlens - chat with Gemini about your images

Usage:
  flashlens [flags]                      Start the TUI (default)
  flashlens history [list]               List saved chats
  flashlens history export ID [PATH]     Write a chat as Markdown
  flashlens version                      Show version
  flashlens help                         Show this help

Flags:
  --config PATH      Config file (default ~/.flashlens/config.toml)
  --history PATH     History file (overrides [history] path)
  --model NAME       Use this model and skip the model probe
  --log-level LEVEL  debug, info, warn or error

Environment:
  GEMINI_API_KEY, GOOGLE_API_KEY   API key (a .env file is read too)

Version: %s
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "flashlens version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses the arguments after the program name.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}
	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, args, nil
	case "history", "h":
		return parseHistoryArgs(&args, remaining)
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	}
	return CmdHelp, args, fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

// parseGlobalFlags extracts flags and returns the positional arguments.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		name, value, hasValue := strings.Cut(arg, "=")
		var target *string
		switch name {
		case "--config", "-c":
			target = &args.ConfigPath
		case "--history":
			target = &args.HistoryPath
		case "--model", "-m":
			target = &args.Model
		case "--log-level":
			target = &args.LogLevel
		case "--version", "-V":
			return []string{"version"}, args, nil
		case "--help", "-h":
			return []string{"help"}, args, nil
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, args, fmt.Errorf("%w: unknown flag %q", ErrUsage, name)
			}
			remaining = append(remaining, arg)
			continue
		}

		if !hasValue {
			if i+1 >= len(argv) {
				return nil, args, fmt.Errorf("%w: %s needs a value", ErrUsage, name)
			}
			i++
			value = argv[i]
		}
		*target = value
	}
	return remaining, args, nil
}

func parseHistoryArgs(args *Args, remaining []string) (Command, Args, error) {
	if len(remaining) == 0 {
		return CmdHistoryList, *args, nil
	}
	switch strings.ToLower(remaining[0]) {
	case "list", "ls":
		return CmdHistoryList, *args, nil
	case "export":
		if len(remaining) < 2 {
			return CmdHelp, *args, fmt.Errorf("%w: history export needs a chat id", ErrUsage)
		}
		args.ExportID = remaining[1]
		if len(remaining) > 2 {
			args.ExportPath = remaining[2]
		}
		return CmdHistoryExport, *args, nil
	}
	return CmdHelp, *args, fmt.Errorf("%w: unknown history subcommand %q", ErrUsage, remaining[0])
}
