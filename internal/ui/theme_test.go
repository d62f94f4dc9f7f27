package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme_FallsBack(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestClassStyle(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, class := range []string{"reg-open", "phase-finals", "tier-critical", "mode-push", "sync-failing"} {
			if th.ClassColors[class] == "" {
				t.Fatalf("%s: no color for %s", name, class)
			}
		}

		styles := th.Styles()
		got := styles.ClassStyle("unknown", "tier-full").GetBackground()
		if got != lipgloss.Color(th.ClassColors["tier-full"]) {
			t.Fatalf("%s: ClassStyle background = %v, want tier-full color", name, got)
		}
		if got := styles.ClassStyle("nope").GetBackground(); got != lipgloss.Color(th.Muted) {
			t.Fatalf("%s: unknown class background = %v, want muted", name, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  hello  ", 10); got != "hello" {
		t.Fatalf("truncate = %q, want hello", got)
	}
	if got := truncate("abcdefghij", 6); got != "abcde…" {
		t.Fatalf("truncate = %q, want abcde…", got)
	}
	if got := truncate("abcdef", 1); got != "a" {
		t.Fatalf("truncate = %q, want a", got)
	}
}
