package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette defines colors for one appearance.
type Palette struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header, footer and tile
	Border     string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Chart colors
	Line string // Sparkline stroke
	Grid string // Range caption and baseline
}

// Styles returns Lipgloss styles for this palette.
func (p Palette) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Surface)).
			Foreground(lipgloss.Color(p.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Danger)).
			Bold(true),

		Reading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)).
			Bold(true),

		Chart: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Line)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Surface)).
			Foreground(lipgloss.Color(p.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Surface)).
			Foreground(lipgloss.Color(p.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Accent)).
			Bold(true),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
	}
}

// Styles contains pre-built Lipgloss styles for a palette.
type Styles struct {
	// Base
	Background lipgloss.Style
	Surface    lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	Reading     lipgloss.Style
	Chart       lipgloss.Style

	// Components
	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
	Tile   lipgloss.Style
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	out := s
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.Logo = s.Logo.Background(bg)
	return out
}

// PaletteFor returns the palette for the effective appearance.
func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette()
	}
	return lightPalette()
}

func lightPalette() Palette {
	// Tailwind gray scale on white, sparkline in gray-600
	return Palette{
		Name: "Light",

		Background: "#ffffff",
		Surface:    "#f3f4f6", // gray-100
		Border:     "#d1d5db", // gray-300

		Text:    "#111827", // gray-900
		Muted:   "#6b7280", // gray-500
		Faint:   "#9ca3af", // gray-400
		Accent:  "#0369a1", // sky-700
		Success: "#15803d", // green-700
		Warning: "#b45309", // amber-700
		Danger:  "#b91c1c", // red-700

		Line: "#4b5563", // gray-600
		Grid: "#e5e7eb", // gray-200
	}
}

func darkPalette() Palette {
	// Tailwind gray-900 surfaces, white titles
	return Palette{
		Name: "Dark",

		Background: "#030712", // gray-950
		Surface:    "#111827", // gray-900
		Border:     "#374151", // gray-700

		Text:    "#ffffff",
		Muted:   "#9ca3af", // gray-400
		Faint:   "#6b7280", // gray-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500

		Line: "#d1d5db", // gray-300
		Grid: "#1f2937", // gray-800
	}
}
