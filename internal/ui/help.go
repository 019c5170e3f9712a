package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.palette.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	full := m.help
	full.ShowAll = true
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.Tile.Render(b.String())
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
