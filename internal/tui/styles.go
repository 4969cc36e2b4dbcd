package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)
	statusBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	warnStyle      = lipgloss.NewStyle().Foreground(colorYellow).Background(colorSurface0).Padding(0, 2)
	footerStyle    = lipgloss.NewStyle().Foreground(colorSubtext0).Background(colorMantle).Padding(0, 2)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorLavender).Padding(0, 1)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	paneFocusStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMauve).Padding(0, 1)
	metaStyle      = lipgloss.NewStyle().Foreground(colorTeal)
	failStyle      = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle       = lipgloss.NewStyle().Foreground(colorOverlay0)
)
