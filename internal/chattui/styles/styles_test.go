package styles

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/chatfeed/internal/feed"
)

func withANSI(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

// styledWith matches text wrapped in an SGR sequence that includes attr.
func styledWith(attr, text string) *regexp.Regexp {
	return regexp.MustCompile(`\x1b\[(?:[0-9;]*;)?` + attr + `(?:;[0-9;]*)?m` + regexp.QuoteMeta(text))
}

func TestThemeByName(t *testing.T) {
	require.Equal(t, "high-contrast", ThemeByName(" High-Contrast ").Name)
	require.Equal(t, "default", ThemeByName("unknown").Name)
}

func TestSenderColorsAreStable(t *testing.T) {
	m := NewSenderColorMapper(nil)
	require.Equal(t, m.ColorCode("alice"), m.ColorCode(" Alice "))
	require.Contains(t, SenderColorPalette, m.ColorCode("bob"))

	single := NewSenderColorMapper([]string{"99"})
	require.Equal(t, "99", single.ColorCode(""))
}

func TestRenderMarkupStylesRuns(t *testing.T) {
	withANSI(t)
	s := NewMessageStyles(DefaultTheme)

	out := s.RenderMarkup("hi **team** and *you*", s.Body)
	require.Regexp(t, styledWith("1", "team"), out)
	require.Regexp(t, styledWith("3", "you"), out)
	require.NotContains(t, out, "**")
	require.Equal(t, "hi team and you", stripANSI(out))
}

func TestRenderMarkupKeepsUnmatchedDelimiters(t *testing.T) {
	s := NewMessageStyles(DefaultTheme)
	require.Equal(t, "**unterminated", stripANSI(s.RenderMarkup("**unterminated", s.Body)))
}

func TestRenderMessage(t *testing.T) {
	s := NewMessageStyles(DefaultTheme)

	line := stripANSI(s.RenderMessage(feed.Message{Sender: "bob", Content: "hi **team**"}, "", 0, false))
	require.Equal(t, "bob: hi team", line)

	stamped := stripANSI(s.RenderMessage(feed.Message{
		Sender:    "bob",
		Content:   "x",
		Timestamp: "2026-01-01T10:11:12.000Z",
	}, "", 0, true))
	require.Regexp(t, `^\d{2}:\d{2}:\d{2} bob: x$`, stamped)

	wrapped := stripANSI(s.RenderMessage(feed.Message{Sender: "a", Content: strings.Repeat("word ", 10)}, "", 12, false))
	require.Greater(t, len(strings.Split(wrapped, "\n")), 1)
}

func TestBotSendersUseBotStyle(t *testing.T) {
	withANSI(t)
	s := NewMessageStyles(DefaultTheme)
	require.True(t, IsBotSender("AIBot"))
	require.True(t, IsBotSender("System"))
	require.False(t, IsBotSender("aibot"))

	out := s.RenderSender("AIBot", "")
	require.Regexp(t, styledWith("38;5;"+DefaultTheme.Message.Bot, "AIBot:"), out)

	own := s.RenderSender("carol", "carol")
	require.Regexp(t, styledWith("38;5;"+DefaultTheme.Message.Own, "carol:"), own)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
