package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the dashboard.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Refresh    key.Binding
	CycleTheme key.Binding
	Light      key.Binding
	Dark       key.Binding
	System     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Light: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Light"),
		),
		Dark: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Dark"),
		),
		System: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "System"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh},
		{k.CycleTheme, k.Light, k.Dark, k.System},
		{k.Help, k.Quit},
	}
}
