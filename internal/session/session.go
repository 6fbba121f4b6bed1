package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/logging"
)

// UsernameKey is the key the display name is persisted under.
const UsernameKey = "username"

// Session is the per-user state shared by the views.
type Session struct {
	kv     KV
	logger zerolog.Logger

	mu       sync.RWMutex
	username string
	query    string
}

// Load reads the persisted display name from kv.
func Load(ctx context.Context, kv KV) (*Session, error) {
	s := &Session{kv: kv, logger: logging.Component("session")}
	name, ok, err := kv.Get(ctx, UsernameKey)
	if err != nil {
		return nil, fmt.Errorf("load username: %w", err)
	}
	if ok {
		s.username = name
	}
	return s, nil
}

// Username returns the display name as typed.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// SetUsername updates the display name and persists it immediately. The
// in-memory value changes even if persisting fails.
func (s *Session) SetUsername(ctx context.Context, name string) error {
	s.mu.Lock()
	if s.username == name {
		s.mu.Unlock()
		return nil
	}
	s.username = name
	s.mu.Unlock()

	if err := s.kv.Set(ctx, UsernameKey, name); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist username")
		return fmt.Errorf("persist username: %w", err)
	}
	return nil
}

// Query returns the current search query.
func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the current search query. It is never persisted.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}
