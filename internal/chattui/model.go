// Package chattui is the interactive terminal view of the chat feed.
package chattui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/chattui/styles"
	"github.com/tOgg1/chatfeed/internal/compose"
	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/feedsync"
	"github.com/tOgg1/chatfeed/internal/logging"
	"github.com/tOgg1/chatfeed/internal/session"
)

const toastDuration = 2 * time.Second

// Config holds presentation settings.
type Config struct {
	Theme          string
	ShowTimestamps bool
	BaseURL        string
}

// Sender sends one compose submission.
type Sender interface {
	Send(ctx context.Context, text, username string) (feed.Message, error)
}

// Deps are the collaborators the view reads from and writes through.
type Deps struct {
	Store   feedsync.Reader
	Sender  Sender
	Session *session.Session
	Events  *Events
}

type field int

const (
	fieldUsername field = iota
	fieldSearch
	fieldCompose
	fieldCount
)

type sendResultMsg struct {
	text string
	msg  feed.Message
	err  error
}

// Model is the bubbletea model for the chat view.
type Model struct {
	ctx     context.Context
	cfg     Config
	store   feedsync.Reader
	sender  Sender
	session *session.Session
	events  *Events
	theme   styles.Theme
	styles  styles.MessageStyles
	logger  zerolog.Logger

	inputs [fieldCount]textinput.Model
	focus  field
	feed   viewport.Model

	width    int
	height   int
	messages []feed.Message
	lastSync time.Time
	inFlight int

	status      string
	statusLevel styles.StatusLevel
	statusUntil time.Time
}

// NewModel builds the chat view. ctx bounds outbound sends.
func NewModel(ctx context.Context, cfg Config, deps Deps) *Model {
	theme := styles.ThemeByName(cfg.Theme)
	m := &Model{
		ctx:     ctx,
		cfg:     cfg,
		store:   deps.Store,
		sender:  deps.Sender,
		session: deps.Session,
		events:  deps.Events,
		theme:   theme,
		styles:  styles.NewMessageStyles(theme),
		logger:  logging.Component("chattui"),
		feed:    viewport.New(0, 0),
	}
	if m.events == nil {
		m.events = NewEvents()
	}

	m.inputs[fieldUsername] = newInput("Username", 64)
	m.inputs[fieldSearch] = newInput("Search messages...", 256)
	// Messages go out as typed, however long.
	m.inputs[fieldCompose] = newInput("Type a message...", 0)

	m.inputs[fieldUsername].SetValue(m.session.Username())
	m.inputs[fieldSearch].SetValue(m.session.Query())

	// Start where the user can act: name first if there is none yet.
	if m.session.Username() == "" {
		m.setFocus(fieldUsername)
	} else {
		m.setFocus(fieldCompose)
	}

	m.feed.MouseWheelEnabled = true
	m.feed.MouseWheelDelta = 3
	m.loadSnapshot()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Init starts the cursor blink and the event wait.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.events.wait())
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.layout()
		m.renderFeed()
		return m, nil

	case feedUpdatedMsg:
		m.loadSnapshot()
		if m.statusLevel == styles.StatusWarn {
			m.clearStatus()
		}
		m.renderFeed()
		return m, m.events.wait()

	case syncWarningMsg:
		m.setStatus(describeFetchError(typed.err), styles.StatusWarn, 0)
		return m, m.events.wait()

	case syncDoneMsg:
		if typed.result.OK() {
			m.lastSync = typed.result.Started.Add(typed.result.Duration)
		}
		return m, m.events.wait()

	case sendResultMsg:
		return m, m.handleSendResult(typed)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(typed); handled {
			return m, cmd
		}
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.events.Close()
		return tea.Quit, true
	case "tab":
		m.setFocus((m.focus + 1) % fieldCount)
		return nil, true
	case "shift+tab":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return nil, true
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return cmd, true
	case "enter":
		switch m.focus {
		case fieldCompose:
			return m.sendCmd(), true
		case fieldUsername:
			m.setFocus(fieldCompose)
			return nil, true
		default:
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	after := m.inputs[m.focus].Value()
	if before == after {
		return cmd
	}

	switch m.focus {
	case fieldUsername:
		if err := m.session.SetUsername(m.ctx, after); err != nil {
			m.setStatus("Could not save username: "+err.Error(), styles.StatusWarn, toastDuration)
		}
		m.renderFeed()
	case fieldSearch:
		m.session.SetQuery(after)
		m.feed.GotoBottom()
		m.renderFeed()
	}
	return cmd
}

func (m *Model) setFocus(f field) {
	m.focus = f
	for i := range m.inputs {
		if field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// sendCmd submits the compose text as typed. The input is cleared only once
// the send is accepted.
func (m *Model) sendCmd() tea.Cmd {
	text := m.inputs[fieldCompose].Value()
	username := m.session.Username()
	sender := m.sender
	ctx := m.ctx
	m.inFlight++
	return func() tea.Msg {
		msg, err := sender.Send(ctx, text, username)
		return sendResultMsg{text: text, msg: msg, err: err}
	}
}

func (m *Model) handleSendResult(res sendResultMsg) tea.Cmd {
	if m.inFlight > 0 {
		m.inFlight--
	}
	if res.err != nil {
		m.logger.Debug().Err(res.err).Msg("send did not complete")
		m.setStatus(describeSendError(res.err), styles.StatusError, 0)
		if errors.Is(res.err, compose.ErrEmptyUsername) {
			m.setFocus(fieldUsername)
		}
		return nil
	}

	m.inputs[fieldCompose].SetValue("")
	m.setStatus("Sent ✓", styles.StatusInfo, toastDuration)
	return nil
}

func (m *Model) loadSnapshot() {
	if m.store == nil {
		return
	}
	m.messages = m.store.Snapshot()
	if at := m.store.UpdatedAt(); !at.IsZero() {
		m.lastSync = at
	}
}

func (m *Model) setStatus(text string, level styles.StatusLevel, ttl time.Duration) {
	m.status = text
	m.statusLevel = level
	m.statusUntil = time.Time{}
	if ttl > 0 {
		m.statusUntil = time.Now().Add(ttl)
	}
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusLevel = styles.StatusInfo
	m.statusUntil = time.Time{}
}

func describeSendError(err error) string {
	var rejected *compose.RejectedSendError
	var sendErr *feed.SendError
	switch {
	case errors.Is(err, compose.ErrEmptyUsername):
		return "Please enter a username before sending a message."
	case errors.Is(err, compose.ErrEmptyMessage):
		return "Cannot send an empty message."
	case errors.As(err, &rejected):
		return fmt.Sprintf("Failed to send message. Server responded with: %d", rejected.StatusCode)
	case errors.As(err, &sendErr):
		return "Failed to send message due to a network error."
	default:
		return "Failed to send message: " + err.Error()
	}
}

func describeFetchError(err error) string {
	var fetchErr *feed.FetchError
	switch {
	case feed.IsDecodeError(err):
		return "Failed to load messages (unreadable response)."
	case errors.As(err, &fetchErr) && fetchErr.StatusCode != 0:
		return fmt.Sprintf("Failed to load messages (HTTP %d).", fetchErr.StatusCode)
	default:
		return "Failed to load messages (network error)."
	}
}
