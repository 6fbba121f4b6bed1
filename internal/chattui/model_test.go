package chattui

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/chatfeed/internal/compose"
	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/feedsync"
	"github.com/tOgg1/chatfeed/internal/session"
	"github.com/tOgg1/chatfeed/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type sentMessage struct {
	text     string
	username string
}

type stubSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *stubSender) Send(_ context.Context, text, username string) (feed.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := compose.Validate(text, username); err != nil {
		return feed.Message{}, err
	}
	s.sent = append(s.sent, sentMessage{text: text, username: username})
	if s.err != nil {
		return feed.Message{}, s.err
	}
	return feed.Message{Sender: username, Content: text}, nil
}

func newTestModel(t *testing.T, kv session.KV, store feedsync.Reader, sender Sender) *Model {
	t.Helper()
	sess, err := session.Load(context.Background(), kv)
	require.NoError(t, err)
	m := NewModel(context.Background(), Config{}, Deps{Store: store, Sender: sender, Session: sess})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// submit presses Enter and feeds the send result back into the model.
func submit(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, sendResultMsg{}, msg)
	m.Update(msg)
}

func TestNewModelFocus(t *testing.T) {
	m := newTestModel(t, session.NewMemoryKV(), feedsync.NewStore(), &stubSender{})
	require.Equal(t, fieldUsername, m.focus)

	kv := session.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), session.UsernameKey, "alice"))
	m = newTestModel(t, kv, feedsync.NewStore(), &stubSender{})
	require.Equal(t, fieldCompose, m.focus)
	require.Equal(t, "alice", m.inputs[fieldUsername].Value())
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, session.NewMemoryKV(), feedsync.NewStore(), &stubSender{})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, fieldSearch, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, fieldCompose, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, fieldUsername, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, fieldCompose, m.focus)
}

func TestUsernamePersistsOnEveryEdit(t *testing.T) {
	kv := session.NewMemoryKV()
	m := newTestModel(t, kv, feedsync.NewStore(), &stubSender{})

	typeText(m, "b")
	got, ok, err := kv.Get(context.Background(), session.UsernameKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", got)

	typeText(m, "ob ")
	got, _, _ = kv.Get(context.Background(), session.UsernameKey)
	require.Equal(t, "bob ", got)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, fieldCompose, m.focus)
}

func TestSearchFiltersFeed(t *testing.T) {
	store := feedsync.NewStore()
	store.Reconcile([]feed.Message{
		{Sender: "alice", Content: "Morning all"},
		{Sender: "bob", Content: "hi **team**"},
		{Sender: "AIBot", Content: "Team sync at noon"},
	})
	m := newTestModel(t, session.NewMemoryKV(), store, &stubSender{})

	view := stripANSI(m.View())
	require.Contains(t, view, "alice: Morning all")
	require.Contains(t, view, "3 messages")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "TEAM")

	view = stripANSI(m.View())
	require.NotContains(t, view, "Morning all")
	require.Contains(t, view, "bob: hi team")
	require.Contains(t, view, "AIBot: Team sync at noon")
	require.Contains(t, view, "2 of 3 messages")
	require.Len(t, store.Snapshot(), 3)

	typeText(m, "zzz")
	require.Contains(t, stripANSI(m.View()), `No messages match "TEAMzzz".`)
}

func TestSendSuccessClearsCompose(t *testing.T) {
	kv := session.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), session.UsernameKey, "bob"))
	sender := &stubSender{}
	m := newTestModel(t, kv, feedsync.NewStore(), sender)

	typeText(m, "  hello  ")
	submit(t, m)

	require.Equal(t, []sentMessage{{text: "  hello  ", username: "bob"}}, sender.sent)
	require.Empty(t, m.inputs[fieldCompose].Value())
	require.Contains(t, m.View(), "Sent ✓")
}

func TestSendLongPasteIsNotTruncated(t *testing.T) {
	kv := session.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), session.UsernameKey, "bob"))
	sender := &stubSender{}
	m := newTestModel(t, kv, feedsync.NewStore(), sender)

	long := strings.Repeat("é", 5000)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(long), Paste: true})
	require.Equal(t, long, m.inputs[fieldCompose].Value())
	submit(t, m)

	require.Len(t, sender.sent, 1)
	require.Equal(t, long, sender.sent[0].text)
}

func TestSendRejectedKeepsCompose(t *testing.T) {
	kv := session.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), session.UsernameKey, "bob"))
	sender := &stubSender{err: &compose.RejectedSendError{StatusCode: 500, Body: "boom"}}
	m := newTestModel(t, kv, feedsync.NewStore(), sender)

	typeText(m, "hello")
	submit(t, m)

	require.Equal(t, "hello", m.inputs[fieldCompose].Value())
	require.Contains(t, stripANSI(m.View()), "Failed to send message. Server responded with: 500")

	sender.err = &feed.SendError{Err: errors.New("connection refused")}
	submit(t, m)
	require.Equal(t, "hello", m.inputs[fieldCompose].Value())
	require.Contains(t, stripANSI(m.View()), "network error")
}

func TestSendValidationErrors(t *testing.T) {
	sender := &stubSender{}
	m := newTestModel(t, session.NewMemoryKV(), feedsync.NewStore(), sender)

	m.setFocus(fieldCompose)
	typeText(m, "hello")
	submit(t, m)
	require.Contains(t, stripANSI(m.View()), "Please enter a username before sending a message.")
	require.Equal(t, fieldUsername, m.focus)
	require.Equal(t, "hello", m.inputs[fieldCompose].Value())

	typeText(m, "bob")
	m.setFocus(fieldCompose)
	m.inputs[fieldCompose].SetValue("   ")
	submit(t, m)
	require.Contains(t, stripANSI(m.View()), "Cannot send an empty message.")
	require.Empty(t, sender.sent)
}

func TestSyncWarningClearsOnNextUpdate(t *testing.T) {
	store := feedsync.NewStore()
	m := newTestModel(t, session.NewMemoryKV(), store, &stubSender{})

	_, cmd := m.Update(syncWarningMsg{err: &feed.FetchError{StatusCode: 502, Err: errors.New("bad gateway")}})
	require.NotNil(t, cmd)
	require.Contains(t, stripANSI(m.View()), "Failed to load messages (HTTP 502).")

	m.Update(syncWarningMsg{err: feed.ErrListDecode})
	require.Contains(t, stripANSI(m.View()), "unreadable response")

	store.Reconcile([]feed.Message{{Sender: "alice", Content: "back"}})
	m.Update(feedUpdatedMsg{update: feedsync.Update{Revision: store.Revision(), Size: 1}})
	view := stripANSI(m.View())
	require.NotContains(t, view, "Failed to load messages")
	require.Contains(t, view, "alice: back")
	require.Contains(t, view, "Synced ")
}

func TestEventsCoalesceUpdates(t *testing.T) {
	events := NewEvents()
	for rev := uint64(1); rev <= 3; rev++ {
		events.Updated(feedsync.Update{Revision: rev})
	}

	msg := events.wait()()
	require.Equal(t, feedUpdatedMsg{update: feedsync.Update{Revision: 3}}, msg)

	events.Warning(errors.New("offline"))
	require.IsType(t, syncWarningMsg{}, events.wait()())

	events.Close()
	events.Close()
	require.Nil(t, events.wait()())
}

func TestQuitClosesEvents(t *testing.T) {
	m := newTestModel(t, session.NewMemoryKV(), feedsync.NewStore(), &stubSender{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
	require.Nil(t, m.events.wait()())
}

// nextFeedUpdate blocks until the bridge delivers an update carrying size
// messages.
func nextFeedUpdate(t *testing.T, events *Events, size int) feedUpdatedMsg {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		got := make(chan tea.Msg, 1)
		go func() { got <- events.wait()() }()
		select {
		case msg := <-got:
			if u, ok := msg.(feedUpdatedMsg); ok && u.update.Size == size {
				return u
			}
		case <-deadline:
			t.Fatalf("no feed update with %d messages", size)
		}
	}
}

func TestSendShowsMessageAfterResync(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	server := testutil.NewFeedServer(t)
	client, err := feed.NewClient(feed.ClientConfig{BaseURL: server.URL, AuthKey: testutil.DefaultAuthKey})
	require.NoError(t, err)

	events := NewEvents()
	store := feedsync.NewStore()
	require.NoError(t, store.Subscribe("tui", events.Updated))
	scheduler := feedsync.NewScheduler(feedsync.SchedulerConfig{Interval: time.Hour}, client, store,
		feedsync.WithWarningHandler(events.Warning),
		feedsync.WithSyncHandler(events.Synced),
	)
	require.NoError(t, scheduler.Start(context.Background()))
	t.Cleanup(func() {
		_ = scheduler.Stop()
		scheduler.Wait()
		events.Close()
	})

	kv := session.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), session.UsernameKey, "bob"))
	sess, err := session.Load(context.Background(), kv)
	require.NoError(t, err)

	m := NewModel(context.Background(), Config{}, Deps{
		Store:   store,
		Sender:  compose.NewPipeline(client, scheduler),
		Session: sess,
		Events:  events,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	typeText(m, "hi **team**")
	submit(t, m)
	require.Empty(t, m.inputs[fieldCompose].Value())

	m.Update(nextFeedUpdate(t, events, 1))

	view := m.View()
	require.Contains(t, stripANSI(view), "bob: hi team")
	require.NotContains(t, stripANSI(view), "**team**")
	require.Regexp(t, regexp.MustCompile(`\x1b\[(?:[0-9;]*;)?1(?:;[0-9;]*)?mteam`), view)
	require.Equal(t, "hi **team**", server.Messages()[0].Content)
}
