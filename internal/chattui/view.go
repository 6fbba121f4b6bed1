package chattui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/chatfeed/internal/chattui/styles"
	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/search"
)

const (
	appTitle       = "AI & Tech Chat"
	minFeedHeight  = 3
	headerLines    = 5
	inputBoxHeight = 3
	statusLines    = 1
	feedBoxChrome  = 2
)

var instructions = []string{
	"Use the search bar to find messages. Type a message and press Enter to join the discussion.",
	"Use **word** for bold, *word* for italics.",
	fmt.Sprintf("The message window holds the last %d messages.", feed.WindowSize),
	"tab: switch field  pgup/pgdn: scroll  esc: quit",
}

// layout sizes the viewport and inputs from the terminal size.
func (m *Model) layout() {
	innerWidth := maxInt(1, m.width-2)
	m.feed.Width = innerWidth
	m.feed.Height = maxInt(minFeedHeight, m.height-headerLines-2*inputBoxHeight-statusLines-feedBoxChrome)

	half := maxInt(1, m.width/2-4)
	m.inputs[fieldUsername].Width = half
	m.inputs[fieldSearch].Width = half
	m.inputs[fieldCompose].Width = maxInt(1, m.width-5)
}

// renderFeed refills the viewport from the filtered feed, following the tail
// only when the user was already there.
func (m *Model) renderFeed() {
	atBottom := m.feed.AtBottom()
	offset := m.feed.YOffset

	query := m.session.Query()
	visible := search.Filter(m.messages, query)
	self := m.session.Username()

	var lines []string
	switch {
	case len(m.messages) == 0:
		lines = append(lines, m.theme.Muted().Render("No messages yet."))
	case len(visible) == 0:
		lines = append(lines, m.theme.Muted().Render(fmt.Sprintf("No messages match %q.", query)))
	default:
		for _, msg := range visible {
			lines = append(lines, m.styles.RenderMessage(msg, self, m.feed.Width, m.cfg.ShowTimestamps))
		}
	}

	m.feed.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.feed.GotoBottom()
	} else {
		m.feed.SetYOffset(offset)
	}
}

// View renders the screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderControls(),
		m.theme.FeedBox().Width(maxInt(1, m.width-2)).Render(m.feed.View()),
		m.renderInput(fieldCompose, m.width-2),
		m.renderStatus(time.Now()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	title := m.theme.Title().Render(appTitle)
	if m.cfg.BaseURL != "" {
		title += " " + m.theme.Muted().Render(m.cfg.BaseURL)
	}
	lines := []string{title}
	for _, line := range instructions {
		lines = append(lines, m.theme.Instructions().Render(truncate(line, m.width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderControls() string {
	half := maxInt(1, m.width/2-1)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderInput(fieldUsername, half),
		m.renderInput(fieldSearch, half),
	)
}

func (m *Model) renderInput(f field, width int) string {
	return m.theme.InputBox(m.focus == f).Width(maxInt(1, width-2)).Render(m.inputs[f].View())
}

func (m *Model) renderStatus(now time.Time) string {
	if m.status != "" && (m.statusUntil.IsZero() || now.Before(m.statusUntil)) {
		return m.theme.StatusStyle(m.statusLevel).Render(truncate(m.status, m.width))
	}

	parts := make([]string, 0, 3)
	if m.lastSync.IsZero() {
		parts = append(parts, "Waiting for first sync")
	} else {
		parts = append(parts, "Synced "+m.lastSync.Local().Format("15:04:05"))
	}
	total := len(m.messages)
	if query := m.session.Query(); query != "" {
		parts = append(parts, fmt.Sprintf("%d of %d messages", search.Count(m.messages, query), total))
	} else {
		parts = append(parts, fmt.Sprintf("%d messages", total))
	}
	if m.inFlight > 0 {
		parts = append(parts, "Sending...")
	}
	return m.theme.StatusStyle(styles.StatusInfo).Render(truncate(strings.Join(parts, " · "), m.width))
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return string(runes[:minInt(len(runes), width)])
	}
	return string(runes[:width-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
