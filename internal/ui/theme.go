package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background string // Outermost background, also badge text
	Surface    string // Header and footer bars
	Border     string // Card borders

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Warning string
	Danger  string
	Info    string

	// ClassColors maps render classes (reg-*, phase-*, tier-*, mode-*) to
	// badge colors.
	ClassColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Warning).Bold(true),

		classColors: t.ClassColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	classColors map[string]string
	background  string
	muted       string
}

// ClassStyle returns a badge style for the first class with a known color.
// Unknown classes get the muted color.
func (s Styles) ClassStyle(classes ...string) lipgloss.Style {
	color := s.muted
	for _, c := range classes {
		if known := s.classColors[c]; known != "" {
			color = known
			break
		}
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		Border:     "#39506d", // bg4
		Text:       "#cdcecf", // fg1 (cool gray)
		Muted:      "#738091", // comment (3.3:1 contrast)
		Faint:      "#71839b", // fg3 (3.1:1 contrast)
		Accent:     "#719cd6", // blue
		Warning:    "#dbc074", // yellow
		Danger:     "#c94f6d", // red
		Info:       "#63cdcf", // cyan

		ClassColors: classColors(palette{
			good:    "#81b29a", // green
			warn:    "#dbc074", // yellow
			hot:     "#f4a261", // orange
			bad:     "#c94f6d", // red
			active:  "#719cd6", // blue
			info:    "#63cdcf", // cyan
			special: "#9d79d6", // magenta
			idle:    "#738091", // comment
		}),
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		Border:     "#54546D", // sumiInk6
		Text:       "#DCD7BA", // fujiWhite (warm parchment)
		Muted:      "#C8C093", // oldWhite (7.6:1 contrast)
		Faint:      "#727169", // fujiGray (2.8:1 contrast)
		Accent:     "#7E9CD8", // crystalBlue
		Warning:    "#E6C384", // carpYellow
		Danger:     "#E46876", // waveRed
		Info:       "#7FB4CA", // springBlue

		ClassColors: classColors(palette{
			good:    "#98BB6C", // springGreen
			warn:    "#E6C384", // carpYellow
			hot:     "#FFA066", // surimiOrange
			bad:     "#E46876", // waveRed
			active:  "#7E9CD8", // crystalBlue
			info:    "#7FB4CA", // springBlue
			special: "#957FB8", // oniViolet
			idle:    "#727169", // fujiGray
		}),
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	// UI hierarchy from shadcn/ui theming
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		Border:     "#334155", // slate-700
		Text:       "#f1f5f9", // slate-100
		Muted:      "#94a3b8", // slate-400
		Faint:      "#64748b", // slate-500
		Accent:     "#38bdf8", // sky-400
		Warning:    "#f59e0b", // amber-500
		Danger:     "#ef4444", // red-500
		Info:       "#06b6d4", // cyan-500

		ClassColors: classColors(palette{
			good:    "#22c55e", // green-500
			warn:    "#f59e0b", // amber-500
			hot:     "#f97316", // orange-500
			bad:     "#dc2626", // red-600
			active:  "#0ea5e9", // sky-500
			info:    "#06b6d4", // cyan-500
			special: "#a855f7", // purple-500
			idle:    "#64748b", // slate-500
		}),
	}
}

// palette names the semantic badge colors a theme assigns to classes.
type palette struct {
	good, warn, hot, bad, active, info, special, idle string
}

func classColors(p palette) map[string]string {
	return map[string]string{
		"reg-not-open":  p.idle,
		"reg-open":      p.good,
		"reg-closed":    p.idle,
		"reg-full":      p.bad,
		"reg-started":   p.active,
		"reg-completed": p.special,

		"phase-registration": p.info,
		"phase-check-in":     p.warn,
		"phase-group-stage":  p.active,
		"phase-playoffs":     p.active,
		"phase-finals":       p.special,
		"phase-completed":    p.idle,

		"tier-plenty":   p.good,
		"tier-low":      p.warn,
		"tier-critical": p.hot,
		"tier-full":     p.bad,

		"mode-push":         p.good,
		"mode-pull":         p.warn,
		"mode-suspended":    p.idle,
		"mode-disconnected": p.bad,

		"sync-failing": p.hot,
	}
}
