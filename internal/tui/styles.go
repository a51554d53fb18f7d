package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for keysim terminal output
var (
	// Header style for titles and section headers
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Label style for form field labels
	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	// Success style for positive feedback
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// Error style for error messages
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// Warning style for warnings
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Muted style for secondary text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Subtle style for hints and descriptions
	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)

	// Highlight style for selected/focused items
	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	StyleCountdown = lipgloss.NewStyle().
			Foreground(ColorCountdown).
			Bold(true)

	// Box style for bordered containers
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)
)

const logoASCII = `
 _                  _
| | _____ _   _ ___(_)_ __ ___
| |/ / _ \ | | / __| | '_ ` + "`" + ` _ \
|   <  __/ |_| \__ \ | | | | | |
|_|\_\___|\__, |___/_|_| |_| |_|
          |___/                 `

// Logo returns the keysim ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}

func LogoLines() []string {
	return strings.Split(strings.Trim(logoASCII, "\n"), "\n")
}
