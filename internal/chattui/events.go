package chattui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/chatfeed/internal/feedsync"
)

const eventBuffer = 32

// feedUpdatedMsg tells the model the store holds a new snapshot.
type feedUpdatedMsg struct {
	update feedsync.Update
}

// syncWarningMsg carries a failed tick's error.
type syncWarningMsg struct {
	err error
}

// syncDoneMsg reports a completed tick.
type syncDoneMsg struct {
	result feedsync.SyncResult
}

// Events bridges scheduler and store callbacks, which run on tick goroutines,
// into the bubbletea loop. Callbacks never block; store updates coalesce
// because the view always re-reads the latest snapshot.
type Events struct {
	updates chan feedsync.Update
	msgs    chan tea.Msg
	done    chan struct{}
}

// NewEvents creates an event bridge.
func NewEvents() *Events {
	return &Events{
		updates: make(chan feedsync.Update, 1),
		msgs:    make(chan tea.Msg, eventBuffer),
		done:    make(chan struct{}),
	}
}

// Updated is a feedsync.UpdateHandler.
func (e *Events) Updated(u feedsync.Update) {
	for {
		select {
		case e.updates <- u:
			return
		default:
		}
		// Drop the stale pending update and retry with the newer one.
		select {
		case <-e.updates:
		default:
		}
	}
}

// Warning is a scheduler warning handler.
func (e *Events) Warning(err error) {
	e.push(syncWarningMsg{err: err})
}

// Synced is a scheduler sync handler.
func (e *Events) Synced(r feedsync.SyncResult) {
	e.push(syncDoneMsg{result: r})
}

func (e *Events) push(msg tea.Msg) {
	select {
	case e.msgs <- msg:
	default:
	}
}

// Close stops any pending wait.
func (e *Events) Close() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// wait blocks for the next event.
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-e.updates:
			return feedUpdatedMsg{update: u}
		case msg := <-e.msgs:
			return msg
		case <-e.done:
			return nil
		}
	}
}
