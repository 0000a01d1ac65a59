// ABOUTME: Shared styles and helpers for CLI commands
// ABOUTME: Lipgloss styles for listings plus small formatting utilities
package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	tableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// yesNo renders a flag for tabular output
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// exportFormat maps the global --format value onto an export encoding
func exportFormat(format string) (string, error) {
	switch format {
	case "", "auto", "yaml", "yml":
		return "yaml", nil
	case "json":
		return "json", nil
	}
	return "", fmt.Errorf("unsupported format %q (use yaml or json)", format)
}
