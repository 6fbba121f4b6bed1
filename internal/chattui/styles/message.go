package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/markup"
)

// BotSenders are the service's own senders, shown in the bot color.
var BotSenders = []string{"AIBot", "System"}

// IsBotSender reports whether sender is one of the service's own senders.
func IsBotSender(sender string) bool {
	for _, bot := range BotSenders {
		if sender == bot {
			return true
		}
	}
	return false
}

// MessageStyles contains pre-built styles for message rendering.
type MessageStyles struct {
	Theme   Theme
	Senders *SenderColorMapper

	Own       lipgloss.Style
	Bot       lipgloss.Style
	BotBody   lipgloss.Style
	Body      lipgloss.Style
	Timestamp lipgloss.Style
}

// NewMessageStyles builds a reusable style set for messages.
func NewMessageStyles(theme Theme) MessageStyles {
	return MessageStyles{
		Theme:     theme,
		Senders:   NewSenderColorMapper(theme.SenderPalette),
		Own:       lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Own)).Bold(true),
		Bot:       lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Bot)).Bold(true),
		BotBody:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Bot)),
		Body:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Foreground)),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted)),
	}
}

// RenderMarkup renders **bold** and *italic* runs with base as the plain
// style. The stored content is untouched.
func (s MessageStyles) RenderMarkup(text string, base lipgloss.Style) string {
	var b strings.Builder
	for _, span := range markup.Parse(text) {
		switch span.Style {
		case markup.Bold:
			b.WriteString(base.Bold(true).Render(span.Text))
		case markup.Italic:
			b.WriteString(base.Italic(true).Render(span.Text))
		default:
			b.WriteString(base.Render(span.Text))
		}
	}
	return b.String()
}

// RenderSender renders "name:" in the color for that sender.
func (s MessageStyles) RenderSender(sender, self string) string {
	label := sender + ":"
	switch {
	case IsBotSender(sender):
		return s.Bot.Render(label)
	case self != "" && sender == self:
		return s.Own.Render(label)
	default:
		return s.Senders.Style(sender).Render(label)
	}
}

// RenderMessage renders one feed entry as "sender: content", wrapped to width.
func (s MessageStyles) RenderMessage(msg feed.Message, self string, width int, showTime bool) string {
	base := s.Body
	if IsBotSender(msg.Sender) {
		base = s.BotBody
	}

	line := s.RenderSender(msg.Sender, self) + " " + s.RenderMarkup(msg.Content, base)
	if showTime {
		if ts := msg.Time(); !ts.IsZero() {
			line = s.Timestamp.Render(ts.Local().Format("15:04:05")) + " " + line
		}
	}
	return wrapMessage(line, width)
}

func wrapMessage(body string, width int) string {
	if width <= 0 {
		return body
	}

	parts := strings.Split(body, "\n")
	for i := range parts {
		parts[i] = wordwrap.String(parts[i], width)
	}
	return strings.Join(parts, "\n")
}
