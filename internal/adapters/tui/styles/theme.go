package styles

import (
	"github.com/charmbracelet/lipgloss"

	"mealweek/pkg/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#C2410C") // Paprika
	Secondary = lipgloss.Color("#15803D") // Parsley
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Meal type colors
	Breakfast = lipgloss.Color("#EAB308") // Yolk
	Main      = lipgloss.Color("#DC2626") // Tomato
	Snack     = lipgloss.Color("#7C3AED") // Plum

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Board
	DayColumn = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	DayFocused = DayColumn.
			BorderForeground(Primary)

	DayToday = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	DayHeader = lipgloss.NewStyle().
			Bold(true)

	Item = lipgloss.NewStyle()

	ItemSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	ItemCarried = lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true)

	Favorite = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("★")

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1).
			MarginRight(1)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// TypeColor returns the accent color for a meal type.
func TypeColor(t domain.MealType) lipgloss.Color {
	switch t {
	case domain.MealTypeBreakfast:
		return Breakfast
	case domain.MealTypeMain:
		return Main
	case domain.MealTypeSnack:
		return Snack
	default:
		return Muted
	}
}

// TypeBadge renders the one-letter marker of a meal type.
func TypeBadge(t domain.MealType) string {
	label := []rune(t.Label())
	if len(label) == 0 {
		return " "
	}
	return lipgloss.NewStyle().Foreground(TypeColor(t)).Bold(true).Render(string(label[0]))
}
