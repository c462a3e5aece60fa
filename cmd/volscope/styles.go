package main

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true)
	HVStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	HelpStyle   = lipgloss.NewStyle().Faint(true)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)
