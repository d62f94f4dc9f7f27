package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Views
	Diagnostics key.Binding
	ClearFeed   key.Binding

	// Side-channels
	ToggleSound key.Binding
	Allow       key.Binding
	Deny        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to dashboard"),
		),
		Diagnostics: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Diagnostics"),
		),
		ClearFeed: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Clear activity"),
		),
		ToggleSound: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle sound"),
		),
		Allow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Allow notifications"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Block notifications"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Diagnostics, k.ToggleSound, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Diagnostics, k.Escape, k.ClearFeed},
		{k.ToggleSound, k.Allow, k.Deny},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
