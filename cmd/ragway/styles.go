package main

import "github.com/charmbracelet/lipgloss"

// ANSI colors so the help reads on light and dark terminals alike.
var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	usageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
