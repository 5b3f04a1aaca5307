package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ASCIIArt = `  __  __            ___      ___           _
 |  \/  |___ __ _  | \ \    / / |_  ___ ___| |
 | |\/| / -_) _' | | |\ \/\/ /| ' \/ -_) -_) |
 |_|  |_\___\__,_| |_| \_/\_/ |_||_\___\___|_|`

var Commands = [][2]string{
	{"mealwheel [user-name]", "Pick tonight's main dish for a MealWheel user"},
	{"mealwheel history [n]", "Show the last n runs (default 20)"},
	{"mealwheel history export <run-id> [path]", "Write a run and its transcript as JSON"},
	{"mealwheel mcp", "Serve the MealWheel functions as an MCP server on stdio"},
	{"mealwheel version", "Print version and license"},
}

// Usage renders the help text printed for -h/--help.
func Usage(version, license string) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(ASCIIArt))
	sb.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	for _, c := range Commands {
		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%-42s", c[0])))
		sb.WriteString(DimStyle.Render(c[1]))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("Settings: ~/.config/mealwheel/settings.toml  ·  MEALWHEEL_PLAIN=1 for plain output  ·  MEALWHEEL_DEBUG=1 for debug.log"))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Version: "))
	sb.WriteString(version)
	sb.WriteString("  ")
	sb.WriteString(labelStyle.Render("License: "))
	sb.WriteString(license)
	sb.WriteString("\n")

	return sb.String()
}
