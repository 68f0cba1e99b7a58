package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#6A1B9A")
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#8A8F98")
	colorError   = lipgloss.Color("#E53935")
)

// Styles 终端界面样式
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Checked  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Box      lipgloss.Style
}

// DefaultStyles 默认样式
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Header:   lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Selected: lipgloss.NewStyle().Reverse(true),
		Checked:  lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(colorError),
		Success:  lipgloss.NewStyle().Foreground(colorAccent),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
	}
}
