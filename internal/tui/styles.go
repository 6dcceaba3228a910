package tui

import "github.com/charmbracelet/lipgloss"

var (
	success = lipgloss.Color("#8BC34A")
	failure = lipgloss.Color("#e53935")
	muted   = lipgloss.Color("#6b7280")
	accent  = lipgloss.Color("#2196F3")
)

// Styles holds the editor's lipgloss styles.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Selection lipgloss.Style
	Pane      lipgloss.Style
	OK        lipgloss.Style
	Failed    lipgloss.Style
	Pending   lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the editor's styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent).PaddingRight(1),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1),
		Selection: lipgloss.NewStyle().Foreground(accent).PaddingLeft(2),
		Pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted),
		OK:        lipgloss.NewStyle().Foreground(success),
		Failed:    lipgloss.NewStyle().Foreground(failure),
		Pending:   lipgloss.NewStyle().Foreground(muted),
		Help:      lipgloss.NewStyle().Foreground(muted),
	}
}
