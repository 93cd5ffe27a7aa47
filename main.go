// flashlens - chat with Gemini about your images, in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/flashlens/internal/cli"
	"github.com/jeranaias/flashlens/internal/config"
	"github.com/jeranaias/flashlens/internal/gemini"
	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/logging"
	"github.com/jeranaias/flashlens/internal/ui/chat"
	"github.com/jeranaias/flashlens/internal/ui/styles"
	"github.com/jeranaias/flashlens/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the exit code.
func run(argv []string, stdout, stderr io.Writer) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		cli.PrintUsage(stderr)
		return 2
	}

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(stdout)
		return 0
	case cli.CmdHelp:
		cli.PrintUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	store := history.NewStore(cfg.History.Path)

	switch cmd {
	case cli.CmdHistoryList:
		listHistory(store, stdout)
		return 0
	case cli.CmdHistoryExport:
		if err := exportHistory(store, args, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runTUI(cfg, store); err != nil {
		fmt.Fprintf(stderr, "Error running flashlens: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads the config file and applies command line overrides.
func loadConfig(args cli.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.HistoryPath != "" {
		cfg.History.Path = args.HistoryPath
	}
	if args.Model != "" {
		cfg.Gemini.Model = args.Model
	}
	if args.LogLevel != "" {
		cfg.Log.Level = args.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return cfg, nil
}

// clientOptions maps the [gemini] section onto client options.
func clientOptions(cfg *config.Config) []gemini.Option {
	return []gemini.Option{
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutSecs) * time.Second),
		gemini.WithRequestsPerMinute(cfg.Gemini.RequestsPerMinute),
		gemini.WithModelFilter(cfg.Gemini.ModelFilter),
		gemini.WithFallbackModel(cfg.Gemini.FallbackModel),
		gemini.WithModel(cfg.Gemini.Model),
	}
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(cfg *config.Config, store *history.Store) error {
	if err := cli.RequiresTTY("start the TUI"); err != nil {
		return err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	apiKey, source := config.ResolveAPIKey(cfg)
	if apiKey == "" {
		slog.Warn("no API key found", "checked", []string{config.EnvGeminiAPIKey, config.EnvGoogleAPIKey, config.SourceConfig})
	} else {
		slog.Info("API key found", "source", source)
	}

	lipgloss.SetColorProfile(cli.ColorProfile())
	theme := styles.NewTheme(cfg.UI.Theme)

	wd, _ := os.Getwd()
	m := chat.New(chat.Options{
		Store:          store,
		Theme:          theme,
		APIKey:         apiKey,
		ClientOptions:  clientOptions(cfg),
		Prompt:         cfg.Gemini.Prompt,
		TitleLength:    cfg.UI.TitleLength,
		ThumbWidth:     cfg.UI.ThumbnailWidth,
		ThumbHeight:    cfg.UI.ThumbnailHeight,
		RequestTimeout: time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
		StartDir:       wd,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.History.Watch {
		if err := chat.WatchHistory(ctx, store.Path, p.Send); err != nil {
			slog.Warn("history watcher disabled", "path", store.Path, "error", err)
		}
	}

	slog.Info("starting flashlens", "version", Version, "history", store.Path, "log_level", cfg.Log.Level)
	if _, err := p.Run(); err != nil {
		slog.Error("program exited with error", "error", err)
		return err
	}
	slog.Info("flashlens stopped")
	return nil
}

// =============================================================================
// HISTORY SUBCOMMANDS
// =============================================================================

func listHistory(store *history.Store, w io.Writer) {
	entries := store.List()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved chats")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  (%d images, %d messages)\n",
			e.ID, e.Label, len(e.Record.Images), len(e.Record.Messages))
	}
}

var errUnknownChat = errors.New("no saved chat with that id")

func exportHistory(store *history.Store, args cli.Args, w io.Writer) error {
	rec, ok := store.Get(args.ExportID)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownChat, args.ExportID)
	}
	path := args.ExportPath
	if path == "" {
		path = history.ExportFileName(args.ExportID)
	}
	if err := util.AtomicWriteFile(path, []byte(history.ExportMarkdown(args.ExportID, rec)), 0o644); err != nil {
		return fmt.Errorf("export %s: %w", args.ExportID, err)
	}
	fmt.Fprintf(w, "Exported to %s\n", path)
	return nil
}
