// Package feedsync keeps the canonical copy of the remote feed and the
// scheduler that refreshes it.
package feedsync

import (
	"errors"
	"sync"
	"time"

	"github.com/tOgg1/chatfeed/internal/feed"
)

// Subscription errors.
var (
	ErrInvalidSubscriptionID = errors.New("subscription ID is required")
	ErrNilHandler            = errors.New("handler cannot be nil")
	ErrSubscriptionExists    = errors.New("subscription with this ID already exists")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// Reconciler accepts a freshly fetched snapshot.
type Reconciler interface {
	Reconcile(snapshot []feed.Message)
}

// Reader is the read-only view of the canonical feed handed to views.
type Reader interface {
	Snapshot() []feed.Message
	Revision() uint64
	UpdatedAt() time.Time
	Len() int
}

// Update describes one reconciliation.
type Update struct {
	Revision uint64
	Size     int
	At       time.Time
}

// UpdateHandler is invoked after every reconciliation.
type UpdateHandler func(Update)

// Store holds the canonical feed. The only writer is Reconcile, which replaces
// the whole sequence. The mutex makes the replacement memory safe; it does not
// order concurrent reconciliations, so whichever finishes last wins.
type Store struct {
	mu        sync.RWMutex
	messages  []feed.Message
	revision  uint64
	updatedAt time.Time
	handlers  map[string]UpdateHandler
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		messages: []feed.Message{},
		handlers: make(map[string]UpdateHandler),
		now:      time.Now,
	}
}

// Reconcile replaces the canonical feed with a copy of snapshot.
func (s *Store) Reconcile(snapshot []feed.Message) {
	next := feed.CloneMessages(snapshot)
	if next == nil {
		next = []feed.Message{}
	}

	s.mu.Lock()
	s.messages = next
	s.revision++
	s.updatedAt = s.now()
	update := Update{Revision: s.revision, Size: len(next), At: s.updatedAt}
	handlers := make([]UpdateHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	// Handlers run outside the lock so they may read the store.
	for _, h := range handlers {
		h(update)
	}
}

// Snapshot returns a copy of the canonical feed in server order.
func (s *Store) Snapshot() []feed.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return feed.CloneMessages(s.messages)
}

// Len reports the number of messages currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Revision counts reconciliations since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// UpdatedAt is the time of the last reconciliation, zero before the first.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Subscribe registers handler to be called after every reconciliation.
func (s *Store) Subscribe(id string, handler UpdateHandler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handlers[id]; exists {
		return ErrSubscriptionExists
	}
	s.handlers[id] = handler
	return nil
}

// Unsubscribe removes a handler by ID.
func (s *Store) Unsubscribe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.handlers[id]; !exists {
		return ErrSubscriptionNotFound
	}
	delete(s.handlers, id)
	return nil
}

// SubscriberCount returns the number of registered handlers.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}
