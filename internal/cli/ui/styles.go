package ui

import "github.com/charmbracelet/lipgloss"

const boxWidth = 60

// Styles is the CLI palette. Cyan marks threads, blue marks assistant output.
var Styles = struct {
	Bold      lipgloss.Style
	Header    lipgloss.Style
	Thread    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Key       lipgloss.Style
	Image     lipgloss.Style

	Banner     lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:      lipgloss.NewStyle().Bold(true),
	Header:    lipgloss.NewStyle().Bold(true).Underline(true),
	Thread:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	User:      lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
	Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	Key:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Image:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 2).
		Width(boxWidth),

	SuccessBox: box("42"),
	ErrorBox:   box("196"),
}

func box(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(boxWidth)
}
