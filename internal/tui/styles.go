package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// DimStyle is used for secondary text such as hints and counts.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for non-fatal notices.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")) // Yellow
)

// Lifecycle phase colors, keyed by the LeanIX phase names.
var phaseColors = map[string]lipgloss.Color{
	"plan":      lipgloss.Color("39"),  // Blue
	"phaseIn":   lipgloss.Color("45"),  // Cyan
	"active":    lipgloss.Color("42"),  // Green
	"phaseOut":  lipgloss.Color("214"), // Orange
	"endOfLife": lipgloss.Color("196"), // Red
}

// PhaseStyle returns the style for a lifecycle phase. Unknown phases are dim.
func PhaseStyle(phase string) lipgloss.Style {
	if c, ok := phaseColors[phase]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return DimStyle
}
