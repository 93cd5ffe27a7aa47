// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable view pieces of the flashlens TUI.

# Components

  - Sidebar: "New Chat" and "History" tabs with a selectable list
  - StatusBar: state text, spinner, model name and key hints
  - Thumbnail: half-block rendering of an image in terminal cells
  - Preview: a strip of captioned thumbnails

Components hold no Bubble Tea state of their own; the app model owns them,
feeds them data and calls View.
*/
package components
