package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/deltacrown/crownwatch/internal/notify"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{"Views", []key.Binding{k.Diagnostics, k.Escape, k.ClearFeed}},
		{"Alerts", []key.Binding{k.ToggleSound, k.Allow, k.Deny}},
		{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}

// renderHelp renders the help overlay from the active key bindings.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n")

	for _, section := range m.helpSections() {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(m.alertSummary()))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// alertSummary describes the current notification permission and sound cue.
func (m Model) alertSummary() string {
	perm := "off"
	if m.center != nil {
		switch m.center.Permission() {
		case notify.PermissionGranted:
			perm = "allowed"
		case notify.PermissionDenied:
			perm = "blocked"
		default:
			perm = "not asked"
		}
	}
	sound := "off"
	if m.bell != nil && m.bell.Enabled() {
		sound = "on"
	}
	return "Notifications " + perm + " · sound " + sound
}
