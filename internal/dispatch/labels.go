package dispatch

import (
	"fmt"
	"strings"
)

// Label is display text plus the class applied with it.
type Label struct {
	Text  string
	Class string
}

var registrationLabels = map[string]Label{
	"not_open":  {Text: "Registration not open", Class: "reg-not-open"},
	"open":      {Text: "Registration open", Class: "reg-open"},
	"closed":    {Text: "Registration closed", Class: "reg-closed"},
	"full":      {Text: "Registration full", Class: "reg-full"},
	"started":   {Text: "Tournament started", Class: "reg-started"},
	"completed": {Text: "Tournament completed", Class: "reg-completed"},
}

var phaseLabels = map[string]Label{
	"registration": {Text: "Registration", Class: "phase-registration"},
	"check_in":     {Text: "Check-in", Class: "phase-check-in"},
	"group_stage":  {Text: "Group stage", Class: "phase-group-stage"},
	"playoffs":     {Text: "Playoffs", Class: "phase-playoffs"},
	"finals":       {Text: "Finals", Class: "phase-finals"},
	"completed":    {Text: "Completed", Class: "phase-completed"},
}

// RegistrationLabel maps a registration_state value. Unknown values come
// back verbatim with no class.
func RegistrationLabel(state string) Label {
	return lookup(registrationLabels, state)
}

// PhaseLabel maps a phase value. Unknown values come back verbatim with no
// class.
func PhaseLabel(phase string) Label {
	return lookup(phaseLabels, phase)
}

func lookup(table map[string]Label, key string) Label {
	if l, ok := table[strings.TrimSpace(key)]; ok {
		return l
	}
	return Label{Text: key}
}

// SlotsLabel renders the capacity line.
func SlotsLabel(full bool, available, registered, maxTeams int) string {
	if full {
		return fmt.Sprintf("Full (%d/%d)", registered, maxTeams)
	}
	return fmt.Sprintf("%d slots available (%d/%d)", available, registered, maxTeams)
}

// BadgeCount renders a counter badge, capped at 99+.
func BadgeCount(n int) string {
	if n > 99 {
		return "99+"
	}
	return fmt.Sprintf("%d", n)
}
