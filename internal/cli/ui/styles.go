package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the CLI and the chat TUI
var (
	colorAccent  = lipgloss.Color("86")  // Cyan
	colorUser    = lipgloss.Color("39")  // Blue
	colorMuted   = lipgloss.Color("245") // Gray
	colorValue   = lipgloss.Color("229") // Yellow
	colorHighlit = lipgloss.Color("212") // Pink
	colorOK      = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorWarn    = lipgloss.Color("214")
)

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Key        lipgloss.Style
	Value      lipgloss.Style
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	Title      lipgloss.Style
	VenueName  lipgloss.Style
	Badge      lipgloss.Style
	Card       lipgloss.Style
	Overlay    lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(colorMuted),
	Key:       lipgloss.NewStyle().Foreground(colorMuted),
	Value:     lipgloss.NewStyle().Foreground(colorValue),
	UserLabel: lipgloss.NewStyle().Foreground(colorUser).Bold(true),
	BotLabel:  lipgloss.NewStyle().Foreground(colorOK).Bold(true),
	Title:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
	VenueName: lipgloss.NewStyle().Foreground(colorHighlit).Bold(true),
	Badge:     lipgloss.NewStyle().Foreground(colorWarn).Bold(true),

	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),

	Overlay: lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorHighlit).
		Padding(0, 1),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorOK).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Padding(0, 1).
		Width(60),
}
