// Package styles provides centralized style and color definitions for
// pantry's terminal output, using lipgloss.AdaptiveColor so output reads
// well on both light and dark terminal themes.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// ColorError is used for error messages and failed installs.
	ColorError = lipgloss.AdaptiveColor{Light: "#D73737", Dark: "#FF5555"}
	// ColorWarning is used for warnings, e.g. a missing local dep target.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#E67E22", Dark: "#FFB86C"}
	// ColorSuccess is used for successful installs and confirmations.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#27AE60", Dark: "#50FA7B"}
	// ColorInfo is used for informational messages.
	ColorInfo = lipgloss.AdaptiveColor{Light: "#2980B9", Dark: "#8BE9FD"}
	// ColorMuted is used for secondary/comment-like text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#7F8C8D", Dark: "#6272A4"}
	// ColorPath is used for file paths and directory locations.
	ColorPath = lipgloss.AdaptiveColor{Light: "#8E44AD", Dark: "#BD93F9"}
)

var (
	// Error styles error-type messages.
	Error = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	// Warning styles warning-type messages.
	Warning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	// Success styles success-type messages.
	Success = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	// Info styles informational messages.
	Info = lipgloss.NewStyle().Foreground(ColorInfo)
	// Muted styles secondary text.
	Muted = lipgloss.NewStyle().Foreground(ColorMuted)
	// Path styles file/directory locations.
	Path = lipgloss.NewStyle().Foreground(ColorPath)
	// PackageName styles a package name in progress output.
	PackageName = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
)
