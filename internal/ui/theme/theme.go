// Package theme holds the Q-Path colour palette and shared styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette. The track colours match the web app's quantum, cyber and
// software accents.
var (
	Quantum  = lipgloss.Color("#7C3AED")
	Cyber    = lipgloss.Color("#06B6D4")
	Software = lipgloss.Color("#10B981")
	Accent   = lipgloss.Color("#F59E0B")
	Success  = lipgloss.Color("#22C55E")
	Error    = lipgloss.Color("#EF4444")
	Text     = lipgloss.Color("#E2E8F0")
	TextDim  = lipgloss.Color("#94A3B8")
	BgCard   = lipgloss.Color("#111827")
	Border   = lipgloss.Color("#374151")
)

// Primary is the brand colour.
var Primary = Quantum

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)
)

var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Done = lipgloss.NewStyle().
		Foreground(TextDim).
		Strikethrough(true)
)

// TrackColor maps a backend track colour name to a palette colour.
func TrackColor(name string) lipgloss.Style {
	c := Primary
	switch name {
	case "quantum":
		c = Quantum
	case "cyber":
		c = Cyber
	case "software":
		c = Software
	}
	return lipgloss.NewStyle().Foreground(c)
}
