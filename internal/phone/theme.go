package phone

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorBackground = lipgloss.Color("#141d2b")
	colorForeground = lipgloss.Color("#f2f2f2")
	colorAccent     = lipgloss.Color("#8BC34A")
	colorDim        = lipgloss.Color("#6b7280")
	colorMarker     = lipgloss.Color("#0a84ff")
	colorError      = lipgloss.Color("#ff453a")
)

// Theme holds every style the phone renders with.
type Theme struct {
	Frame      lipgloss.Style
	StatusBar  lipgloss.Style
	Widget     lipgloss.Style
	WidgetDim  lipgloss.Style
	Icon       lipgloss.Style
	IconActive lipgloss.Style
	Header     lipgloss.Style
	Title      lipgloss.Style
	Meta       lipgloss.Style
	Body       lipgloss.Style
	Link       lipgloss.Style
	LinkActive lipgloss.Style
	Marker     lipgloss.Style
	Dot        lipgloss.Style
	DotActive  lipgloss.Style
	Hint       lipgloss.Style
	Error      lipgloss.Style
}

// DefaultTheme returns the dark theme.
func DefaultTheme() Theme {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	return Theme{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorForeground).
			Background(colorBackground).
			Padding(0, 1),
		StatusBar:  lipgloss.NewStyle().Foreground(colorDim),
		Widget:     box.Padding(0, 1),
		WidgetDim:  lipgloss.NewStyle().Foreground(colorDim),
		Icon:       box.Align(lipgloss.Center),
		IconActive: box.Align(lipgloss.Center).BorderForeground(colorAccent).Foreground(colorAccent).Bold(true),
		Header:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Title:      lipgloss.NewStyle().Bold(true).Foreground(colorForeground),
		Meta:       lipgloss.NewStyle().Foreground(colorDim),
		Body:       lipgloss.NewStyle().Foreground(colorForeground),
		Link:       lipgloss.NewStyle().Underline(true).Foreground(colorAccent),
		LinkActive: lipgloss.NewStyle().Underline(true).Reverse(true).Foreground(colorAccent),
		Marker:     lipgloss.NewStyle().Foreground(colorMarker).Bold(true),
		Dot:        lipgloss.NewStyle().Foreground(colorDim),
		DotActive:  lipgloss.NewStyle().Foreground(colorForeground),
		Hint:       lipgloss.NewStyle().Italic(true).Foreground(colorDim),
		Error:      lipgloss.NewStyle().Foreground(colorError),
	}
}
