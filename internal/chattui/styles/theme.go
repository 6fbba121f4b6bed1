// Package styles holds the chat TUI theme tokens and message renderers.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// MessageColors defines colors for kinds of senders.
type MessageColors struct {
	Own   string
	Other string
	Bot   string
}

// StatusColors defines colors for the status line.
type StatusColors struct {
	OK    string
	Warn  string
	Error string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Title        string
	Instructions string
	Footer       string
	FocusedInput string
	BlurredInput string
}

// Theme defines the chat TUI style tokens.
type Theme struct {
	Name          string
	SenderPalette []string // optional override for sender identity colors (ANSI-256 codes)

	Base    BaseColors
	Message MessageColors
	Status  StatusColors
	Chrome  ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ThemeByName resolves a theme, falling back to the default palette.
func ThemeByName(name string) Theme {
	if t, ok := Themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return DefaultTheme
}

// Title renders the header title.
func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Title)).Bold(true)
}

// Instructions renders the usage hints under the title.
func (t Theme) Instructions() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Instructions))
}

// Muted renders secondary text.
func (t Theme) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

// InputBox frames a text input; focused inputs use the accent border.
func (t Theme) InputBox(focused bool) lipgloss.Style {
	border := t.Chrome.BlurredInput
	if focused {
		border = t.Chrome.FocusedInput
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1)
}

// FeedBox frames the message list.
func (t Theme) FeedBox() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Base.Border))
}

// StatusStyle picks the status line color for a severity.
func (t Theme) StatusStyle(level StatusLevel) lipgloss.Style {
	color := t.Status.OK
	switch level {
	case StatusWarn:
		color = t.Status.Warn
	case StatusError:
		color = t.Status.Error
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// StatusLevel is the severity shown on the status line.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarn
	StatusError
)
