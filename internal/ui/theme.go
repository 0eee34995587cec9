package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is drawn with.
type Palette struct {
	Name    string
	Text    lipgloss.Color
	Card    lipgloss.Color
	Primary lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
}

// Accent colors shared by both themes.
var (
	colorActive    = lipgloss.Color("#f59e0b")
	colorCompleted = lipgloss.Color("#10b981")
	colorProgress  = lipgloss.Color("#8b5cf6")
	colorDanger    = lipgloss.Color("#ef4444")
	colorOnPrimary = lipgloss.Color("#ffffff")
)

var (
	LightPalette = Palette{
		Name:    "light",
		Text:    lipgloss.Color("#333333"),
		Card:    lipgloss.Color("#f8f9fa"),
		Primary: lipgloss.Color("#007bff"),
		Border:  lipgloss.Color("#dee2e6"),
		Muted:   lipgloss.Color("#6c757d"),
	}

	DarkPalette = Palette{
		Name:    "dark",
		Text:    lipgloss.Color("#ffffff"),
		Card:    lipgloss.Color("#2d2d2d"),
		Primary: lipgloss.Color("#0d6efd"),
		Border:  lipgloss.Color("#495057"),
		Muted:   lipgloss.Color("#adb5bd"),
	}
)

// PaletteFor returns the dark or light palette.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// styles holds the lipgloss styles derived from a palette.
type styles struct {
	palette Palette

	title     lipgloss.Style
	subtitle  lipgloss.Style
	card      lipgloss.Style
	cardValue lipgloss.Style
	cardLabel lipgloss.Style
	tab       lipgloss.Style
	tabActive lipgloss.Style
	input     lipgloss.Style
	task      lipgloss.Style
	taskDone  lipgloss.Style
	cursor    lipgloss.Style
	checkOn   lipgloss.Style
	checkOff  lipgloss.Style
	empty     lipgloss.Style
	emptyHint lipgloss.Style
	status    lipgloss.Style
	errorText lipgloss.Style
	help      lipgloss.Style
}

func newStyles(p Palette) styles {
	return styles{
		palette: p,

		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		subtitle: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),

		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Background(p.Card).
			Padding(0, 2).
			Align(lipgloss.Center),
		cardValue: lipgloss.NewStyle().Bold(true),
		cardLabel: lipgloss.NewStyle().Foreground(p.Muted),

		tab:       lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1),
		tabActive: lipgloss.NewStyle().Foreground(colorOnPrimary).Background(p.Primary).Bold(true).Padding(0, 1),

		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 1),

		task:      lipgloss.NewStyle().Foreground(p.Text),
		taskDone:  lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
		cursor:    lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		checkOn:   lipgloss.NewStyle().Foreground(colorCompleted).Bold(true),
		checkOff:  lipgloss.NewStyle().Foreground(p.Border),
		empty:     lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		emptyHint: lipgloss.NewStyle().Foreground(p.Muted),

		status:    lipgloss.NewStyle().Foreground(p.Muted),
		errorText: lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		help:      lipgloss.NewStyle().Foreground(p.Muted),
	}
}
