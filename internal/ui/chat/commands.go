// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/flashlens/internal/history"
	"github.com/jeranaias/flashlens/internal/ui/components"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command.
type CommandHandler func(m *Model, args []string) tea.Cmd

// commandSpec is a registry entry.
type commandSpec struct {
	handler CommandHandler
	usage   string
	desc    string
}

// commands maps command names, without the slash, to handlers.
var commands map[string]commandSpec

// aliases maps short names to command names.
var aliases = map[string]string{
	"o": "open",
	"a": "add",
	"h": "help",
	"?": "help",
	"q": "quit",
	"exit": "quit",
}

func init() {
	commands = map[string]commandSpec{
		"open":         {handleOpenCommand, "/open", "browse for images"},
		"add":          {handleAddCommand, "/add <path...>", "add image files by path"},
		"analyze":      {handleAnalyzeCommand, "/analyze", "start a new chat with the selected images"},
		"clear-images": {handleClearImagesCommand, "/clear-images", "empty the image selection"},
		"delete":       {handleDeleteCommand, "/delete", "delete the selected history entry"},
		"clear-all":    {handleClearAllCommand, "/clear-all", "delete ALL history (asks first)"},
		"refresh":      {handleRefreshCommand, "/refresh", "reload the history list"},
		"export":       {handleExportCommand, "/export [path]", "write the open chat as Markdown"},
		"help":         {handleHelpCommand, "/help", "show commands and keys"},
		"quit":         {handleQuitCommand, "/quit", "exit"},
	}
}

// isCommand reports whether input is a slash command.
func isCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// runCommand dispatches a slash command.
func (m *Model) runCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	spec, ok := commands[name]
	if !ok {
		m.append(Line{Kind: LineError, Text: fmt.Sprintf("Unknown command '%s'. Type /help for available commands", parts[0])})
		return nil
	}
	return spec.handler(m, parts[1:])
}

// =============================================================================
// IMAGE COMMANDS
// =============================================================================

func handleOpenCommand(m *Model, _ []string) tea.Cmd {
	return m.openPicker()
}

func handleAddCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.append(Line{Kind: LineError, Text: "usage: /add <path...>"})
		return nil
	}
	paths := make([]string, len(args))
	for i, a := range args {
		paths[i] = expandHome(a)
	}
	return loadImagesCmd(paths, m.opts.ThumbWidth, m.opts.ThumbHeight, false)
}

func handleAnalyzeCommand(m *Model, _ []string) tea.Cmd {
	return m.startAnalysis()
}

func handleClearImagesCommand(m *Model, _ []string) tea.Cmd {
	m.images = nil
	m.thumbs = nil
	m.sidebar.SetImages(nil)
	m.layout()
	return nil
}

// =============================================================================
// HISTORY COMMANDS
// =============================================================================

func handleDeleteCommand(m *Model, _ []string) tea.Cmd {
	return m.deleteSelected()
}

func handleClearAllCommand(m *Model, _ []string) tea.Cmd {
	m.askClearAll()
	return nil
}

func handleRefreshCommand(m *Model, _ []string) tea.Cmd {
	return loadHistoryCmd(m.store)
}

func handleExportCommand(m *Model, args []string) tea.Cmd {
	rec, ok := m.currentRecord()
	if !ok {
		m.append(Line{Kind: LineError, Text: "no open chat to export"})
		return nil
	}
	path := history.ExportFileName(m.chatID)
	if len(args) > 0 {
		path = expandHome(strings.Join(args, " "))
	}
	return exportCmd(path, m.chatID, rec)
}

// =============================================================================
// HELP AND META COMMANDS
// =============================================================================

func handleHelpCommand(m *Model, _ []string) tea.Cmd {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		spec := commands[name]
		fmt.Fprintf(&b, "  %-16s %s\n", spec.usage, spec.desc)
	}
	b.WriteString("\nKeys:\n")
	for _, group := range m.keys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			fmt.Fprintf(&b, "  %-16s %s\n", h.Key, h.Desc)
		}
	}
	m.append(Line{Kind: LineSystem, Text: strings.TrimRight(b.String(), "\n")})
	return nil
}

func handleQuitCommand(_ *Model, _ []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// SHARED ACTIONS
// =============================================================================

// deleteSelected removes the history entry under the sidebar cursor.
func (m *Model) deleteSelected() tea.Cmd {
	entry, ok := m.sidebar.Selected()
	if !ok {
		return nil
	}
	if err := m.store.Delete(entry.ID); err != nil {
		m.setStatus("Delete failed: "+err.Error(), components.StatusError)
		return nil
	}
	if entry.ID == m.chatID {
		m.clearConversation()
		m.setStatus(statusDeleted, components.StatusReady)
	}
	return loadHistoryCmd(m.store)
}

// askClearAll shows the y/n prompt.
func (m *Model) askClearAll() {
	m.confirming = true
	m.sidebar.Confirming = true
}

// answerClearAll handles the y/n answer.
func (m *Model) answerClearAll(yes bool) tea.Cmd {
	m.confirming = false
	m.sidebar.Confirming = false
	if !yes {
		return nil
	}
	if err := m.store.Clear(); err != nil {
		m.setStatus("Clear failed: "+err.Error(), components.StatusError)
		return nil
	}
	m.clearConversation()
	return loadHistoryCmd(m.store)
}

var userHomeDir = os.UserHomeDir

// expandHome resolves a leading "~/".
func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := userHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
