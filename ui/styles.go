package ui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	BulletStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1)
	TextStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	DimTextStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	SpinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	RecordingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	PausedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	TranscriptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).PaddingLeft(2).Width(72)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true).PaddingLeft(2)
	ErrorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	WarningStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	SuccessStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	InfoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)
