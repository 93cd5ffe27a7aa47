// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Brand is the primary accent.
var Brand = lipgloss.AdaptiveColor{Light: "#1A73E8", Dark: "#8AB4F8"}

// BrandDeep is the darker accent used for selected rows.
var BrandDeep = lipgloss.AdaptiveColor{Light: "#174EA6", Dark: "#1E3A5F"}

var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#F1F3F4", Dark: "#313244"}
var Border = lipgloss.AdaptiveColor{Light: "#DADCE0", Dark: "#45475A"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// TRANSCRIPT ROLES
// =============================================================================

var UserFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#93C5FD"}
var ModelFg = TextPrimary
var SystemFg = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#FCD34D"}
var ErrorFg = lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#FCA5A5"}

// StatusIndicators pairs each state with an ASCII marker so state is not
// conveyed by colour alone.
var StatusIndicators = struct {
	Ready, Busy, Error string
}{
	Ready: "[*]",
	Busy:  "[~]",
	Error: "[X]",
}
