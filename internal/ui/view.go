package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deltacrown/crownwatch/internal/dispatch"
	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
)

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var content string
	switch m.currentView {
	case ViewDiagnostics:
		content = m.renderDiagnostics()
	default:
		content = m.renderDashboard()
	}

	if m.prompt {
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderPrompt(), content)
	}

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 0 {
		bodyHeight = 0
	}
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	left := styles.Logo.Render("crownwatch")
	if m.title != "" {
		left += styles.MutedText.Render("  " + m.title)
	}

	var parts []string
	names := make([]string, 0, len(m.snapshot.Syncs))
	for name := range m.snapshot.Syncs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, m.renderSyncStatus(m.snapshot.Syncs[name]))
	}
	if m.suspended {
		parts = append(parts, styles.ClassStyle("mode-suspended").Render("paused"))
	}
	if m.bell != nil && !m.bell.Enabled() {
		parts = append(parts, styles.FaintText.Render("muted"))
	}
	right := strings.Join(parts, " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderSyncStatus(st state.SyncStatus) string {
	styles := m.theme.Styles()
	mode := st.Mode
	if mode == "" {
		mode = "starting"
	}
	if st.Phase == "suspended" {
		mode = "suspended"
	}
	label := fmt.Sprintf("%s %s", st.Name, mode)
	if st.RetryCount > 0 && st.Phase == "push-pending" {
		label += fmt.Sprintf(" retry %d", st.RetryCount)
	}
	class := "mode-" + mode
	if st.IsOffline() {
		// Content stays on screen; only the badge reports the failing cycles.
		class = "sync-failing"
		label += fmt.Sprintf(" ✗%d", st.ConsecutiveFailures)
	}
	out := styles.ClassStyle(class).Render(label)
	if !st.LastApplied.IsZero() {
		out += styles.FaintText.Render(" " + st.LastApplied.Format("15:04:05"))
	}
	return out
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderPrompt() string {
	styles := m.theme.Styles()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Warning)).
		Padding(0, 1)
	text := styles.WarningText.Render("Show desktop notifications when registration is almost full?") +
		styles.MutedText.Render("  [y] allow  [n] block")
	return box.Render(text)
}

func (m Model) renderDashboard() string {
	var cards []string
	if card := m.renderTournament(); card != "" {
		cards = append(cards, card)
	}
	if card := m.renderNotifications(); card != "" {
		cards = append(cards, card)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	sections := []string{top}
	if toasts := m.renderToasts(); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.renderFeed())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) card(title, body string, width int) string {
	styles := m.theme.Styles()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(width).
		Render(styles.AccentText.Bold(true).Render(title) + "\n" + body)
}

func (m Model) cardWidth(n int) int {
	w := m.width/n - 4
	if w < 24 {
		w = 24
	}
	return w
}

func (m Model) renderTournament() string {
	el := m.snapshot.Elements
	if _, ok := el[dispatch.SelectorSlots]; !ok {
		return ""
	}
	styles := m.theme.Styles()

	var lines []string
	if reg, ok := m.element(dispatch.SelectorRegState); ok && reg.Text != "" {
		line := m.badge(reg)
		if status, ok := m.element(dispatch.SelectorStatusBadge); ok && status.Text != "" && status.Text != reg.Text {
			line += " " + m.badge(status)
		}
		lines = append(lines, line)
	}
	if phase, ok := m.element(dispatch.SelectorPhase); ok && phase.Text != "" {
		lines = append(lines, styles.MutedText.Render("Phase  ")+m.badge(phase))
	}
	if remaining, ok := m.element(dispatch.SelectorTimeRemaining); ok && remaining.Text != "" {
		lines = append(lines, styles.MutedText.Render("Starts ")+styles.Text.Render(remaining.Text))
	}
	if slots, ok := m.element(dispatch.SelectorSlots); ok && slots.Text != "" {
		lines = append(lines, styles.MutedText.Render("Slots  ")+m.badge(slots))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.FaintText.Render("Waiting for tournament state..."))
	}

	title := "Tournament"
	if slug, ok := m.element(dispatch.SelectorSlug); ok && slug.Text != "" {
		title += " · " + slug.Text
	}
	return m.card(title, strings.Join(lines, "\n"), m.cardWidth(2))
}

func (m Model) renderNotifications() string {
	if _, ok := m.snapshot.Elements[dispatch.SelectorBellBadge]; !ok {
		return ""
	}
	styles := m.theme.Styles()

	unread := styles.FaintText.Render("none")
	if bell, ok := m.element(dispatch.SelectorBellBadge); ok && !bell.Hidden && bell.Text != "" {
		unread = styles.ClassStyle().Background(lipgloss.Color(m.theme.Danger)).Render(bell.Text)
	}
	pending := styles.FaintText.Render("none")
	if badge, ok := m.element(dispatch.SelectorPendingBadge); ok && !badge.Hidden && badge.Text != "" {
		pending = styles.ClassStyle().Background(lipgloss.Color(m.theme.Info)).Render(badge.Text)
	}
	count := "0"
	if c, ok := m.element(dispatch.SelectorCountPending); ok && c.Text != "" {
		count = c.Text
	}

	body := styles.MutedText.Render("Unread            ") + unread + "\n" +
		styles.MutedText.Render("Follow requests   ") + pending + "\n" +
		styles.FaintText.Render(count+" pending in total")
	return m.card("Notifications", body, m.cardWidth(2))
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	var lines []string
	for i := len(m.toasts) - 1; i >= 0; i-- {
		t := m.toasts[i]
		lines = append(lines, styles.WarningText.Bold(true).Render(t.Title)+"  "+styles.Text.Render(t.Body))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Warning)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderFeed() string {
	styles := m.theme.Styles()
	if len(m.feed) == 0 {
		return m.card("Activity", styles.FaintText.Render("No changes yet."), m.width-4)
	}

	limit := m.height - 16
	if limit < 3 {
		limit = 3
	}
	var lines []string
	for i := len(m.feed) - 1; i >= 0 && len(lines) < limit; i-- {
		e := m.feed[i]
		lines = append(lines,
			styles.FaintText.Render(e.at.Format("15:04:05"))+" "+
				styles.InfoText.Render(e.name)+" "+
				styles.Text.Render(truncate(e.text, m.width-len(e.name)-20)))
	}
	return m.card("Activity", strings.Join(lines, "\n"), m.width-4)
}

func (m Model) renderDiagnostics() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return m.card("Diagnostics", styles.FaintText.Render("Logging is disabled (log_file is empty)."), m.width-4)
	}
	if m.logErr != nil {
		return m.card("Diagnostics", styles.DangerText.Render(m.logErr.Error()), m.width-4)
	}

	limit := m.height - 6
	if limit < 1 {
		limit = 1
	}
	lines := m.logLines
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	body := styles.FaintText.Render(m.logPath)
	for _, l := range lines {
		body += "\n" + m.colorizeLog(truncate(l, m.width-8))
	}
	return m.card("Diagnostics", body, m.width-4)
}

func (m Model) colorizeLog(line string) string {
	styles := m.theme.Styles()
	padded := " " + line + " "
	switch {
	case strings.Contains(padded, " ERROR "):
		return styles.DangerText.Render(line)
	case strings.Contains(padded, " WARN "):
		return styles.WarningText.Render(line)
	case strings.Contains(padded, " DEBUG "):
		return styles.FaintText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

func (m Model) element(selector string) (state.Element, bool) {
	el, ok := m.snapshot.Element(selector)
	if !ok || el.Hidden {
		return state.Element{}, false
	}
	return el, true
}

// badge renders an element with the color of its classes. Elements without
// a known class render as plain text.
func (m Model) badge(el state.Element) string {
	styles := m.theme.Styles()
	if len(el.Classes) == 0 {
		return styles.Text.Render(el.Text)
	}
	return styles.ClassStyle(el.Classes...).Render(el.Text)
}

// describeEvent summarizes an event's snapshot for the activity feed.
func describeEvent(ev events.Event) string {
	d := ev.Detail
	switch ev.Name {
	case events.TournamentStateChanged:
		var parts []string
		if raw, ok := d.Text("registration_state"); ok {
			parts = append(parts, dispatch.RegistrationLabel(raw).Text)
		}
		if raw, ok := d.Text("phase"); ok {
			parts = append(parts, dispatch.PhaseLabel(raw).Text)
		}
		reg, okR := d.Int("registered_count")
		maxTeams, okM := d.Int("max_teams")
		if okR && okM {
			parts = append(parts, fmt.Sprintf("%d/%d teams (%s)", reg, maxTeams, reconcile.TierFor(d)))
		}
		return strings.Join(parts, " · ")
	case events.NotificationsUpdated:
		unread, _ := d.Int("unread_notifications")
		pending, _ := d.Int("pending_follow_requests")
		return fmt.Sprintf("%d unread · %d follow requests", unread, pending)
	default:
		return d.Canonical()
	}
}

// truncate trims value to limit runes, marking the cut with an ellipsis.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return string(runes[:1])
	}
	return string(runes[:limit-1]) + "…"
}
