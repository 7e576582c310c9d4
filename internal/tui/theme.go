package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// Theme defines all colors used by the terminal UI.
type Theme struct {
	Primary   lipgloss.Color // title, selected mode
	Secondary lipgloss.Color // section headings
	Accent    lipgloss.Color // spinner, technical advice border
	Error     lipgloss.Color // error state
	Warning   lipgloss.Color // improvements
	Success   lipgloss.Color // strengths
	Text      lipgloss.Color // primary text
	TextMuted lipgloss.Color // hints, taglines
	Border    lipgloss.Color // separators

	// Score badge colors by tier.
	TierExcellent lipgloss.Color
	TierGreat     lipgloss.Color
	TierGood      lipgloss.Color
	TierFair      lipgloss.Color
	TierPoor      lipgloss.Color
}

// DarkTheme returns the default theme for dark terminals.
func DarkTheme() Theme {
	return Theme{
		Primary:       lipgloss.Color("#c084fc"),
		Secondary:     lipgloss.Color("#5c9cf5"),
		Accent:        lipgloss.Color("#f472b6"),
		Error:         lipgloss.Color("#e06c75"),
		Warning:       lipgloss.Color("#f5a742"),
		Success:       lipgloss.Color("#7fd88f"),
		Text:          lipgloss.Color("#eeeeee"),
		TextMuted:     lipgloss.Color("#808080"),
		Border:        lipgloss.Color("#484848"),
		TierExcellent: lipgloss.Color("#facc15"),
		TierGreat:     lipgloss.Color("#a78bfa"),
		TierGood:      lipgloss.Color("#60a5fa"),
		TierFair:      lipgloss.Color("#34d399"),
		TierPoor:      lipgloss.Color("#9ca3af"),
	}
}

// LightTheme returns a theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:       lipgloss.Color("#6639ba"),
		Secondary:     lipgloss.Color("#0550ae"),
		Accent:        lipgloss.Color("#bf3989"),
		Error:         lipgloss.Color("#cf222e"),
		Warning:       lipgloss.Color("#bf8700"),
		Success:       lipgloss.Color("#116329"),
		Text:          lipgloss.Color("#1f2328"),
		TextMuted:     lipgloss.Color("#656d76"),
		Border:        lipgloss.Color("#d0d7de"),
		TierExcellent: lipgloss.Color("#9a6700"),
		TierGreat:     lipgloss.Color("#6639ba"),
		TierGood:      lipgloss.Color("#0969da"),
		TierFair:      lipgloss.Color("#1a7f37"),
		TierPoor:      lipgloss.Color("#656d76"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	heading  lipgloss.Style
	selected lipgloss.Style
	mode     lipgloss.Style
	err      lipgloss.Style
	dim      lipgloss.Style
	text     lipgloss.Style
	strength lipgloss.Style
	improve  lipgloss.Style
	tip      lipgloss.Style
	spinner  lipgloss.Style
	rule     lipgloss.Style

	tiers map[model.Tier]lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Underline(true),
		mode:     lipgloss.NewStyle().Foreground(t.Text),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		strength: lipgloss.NewStyle().Foreground(t.Success),
		improve:  lipgloss.NewStyle().Foreground(t.Warning),
		tip:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1),
		spinner:  lipgloss.NewStyle().Foreground(t.Accent),
		rule:     lipgloss.NewStyle().Foreground(t.Border),
		tiers: map[model.Tier]lipgloss.Style{
			model.TierExcellent: lipgloss.NewStyle().Bold(true).Foreground(t.TierExcellent),
			model.TierGreat:     lipgloss.NewStyle().Bold(true).Foreground(t.TierGreat),
			model.TierGood:      lipgloss.NewStyle().Bold(true).Foreground(t.TierGood),
			model.TierFair:      lipgloss.NewStyle().Bold(true).Foreground(t.TierFair),
			model.TierPoor:      lipgloss.NewStyle().Bold(true).Foreground(t.TierPoor),
		},
	}
}

// score renders a score in the color of its tier.
func (s styles) score(score int) string {
	return s.tiers[model.TierFor(score)].Render(itoa(score))
}
