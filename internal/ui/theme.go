// Package ui holds the terminal styles of the wolfsim CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wolfbot/internal/domain"
)

const (
	IconMoon   = "🌙"
	IconSun    = "☀️"
	IconWolf   = "🐺"
	IconSkull  = "💀"
	IconCrown  = "👑"
	IconError  = "🧨"
	IconScroll = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return Key.Render(label+":") + " " + fmt.Sprint(value)
}

// Faction renders a winning faction in its team colour.
func Faction(f domain.Faction) string {
	switch f {
	case domain.FactionVillage:
		return Good.Render(string(f))
	case domain.FactionWolf:
		return Bad.Render(string(f))
	case domain.FactionNeutral:
		return Warn.Render(string(f))
	}
	return Muted.Render(string(f))
}
