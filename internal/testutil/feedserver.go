package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tOgg1/chatfeed/internal/feed"
)

// DefaultAuthKey matches the credential the channel service ships with.
const DefaultAuthKey = "authkey 0987654321"

// FeedWindow is how many messages the fake channel keeps, like the real one.
const FeedWindow = feed.WindowSize

// FeedServer is an in-process stand-in for the channel service. It keeps an
// append-only window and answers GET /messages and POST /send.
type FeedServer struct {
	*httptest.Server

	mu          sync.Mutex
	authKey     string
	messages    []feed.Message
	listCalls   int
	appendCalls int
	sendStatus  int
	listStatus  int
	listBody    string
}

// NewFeedServer starts a fake channel and registers cleanup on t.
func NewFeedServer(t *testing.T, seed ...feed.Message) *FeedServer {
	t.Helper()
	SkipIfNoNetwork(t)

	s := &FeedServer{
		authKey:  DefaultAuthKey,
		messages: append([]feed.Message(nil), seed...),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/send", s.handleSend)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// FailSends makes every subsequent append answer with status.
func (s *FeedServer) FailSends(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendStatus = status
}

// FailLists makes every subsequent list answer with status.
func (s *FeedServer) FailLists(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = status
}

// ServeRawList makes list answer 200 with body verbatim.
func (s *FeedServer) ServeRawList(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listBody = body
}

// Messages returns a copy of the stored window.
func (s *FeedServer) Messages() []feed.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return feed.CloneMessages(s.messages)
}

// ListCalls reports how many list requests were served.
func (s *FeedServer) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// AppendCalls reports how many append requests arrived, accepted or not.
func (s *FeedServer) AppendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendCalls
}

func (s *FeedServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.listCalls++
	status := s.listStatus
	raw := s.listBody
	messages := feed.CloneMessages(s.messages)
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if raw != "" {
		_, _ = w.Write([]byte(raw))
		return
	}
	if messages == nil {
		messages = []feed.Message{}
	}
	_ = json.NewEncoder(w).Encode(messages)
}

func (s *FeedServer) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendCalls++

	if s.sendStatus != 0 {
		http.Error(w, http.StatusText(s.sendStatus), s.sendStatus)
		return
	}
	if r.Header.Get("Authorization") != s.authKey {
		http.Error(w, "Invalid authorization", http.StatusBadRequest)
		return
	}
	var msg feed.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Content == "" || msg.Sender == "" {
		http.Error(w, "Invalid message format", http.StatusBadRequest)
		return
	}
	s.messages = append(s.messages, msg)
	if len(s.messages) > FeedWindow {
		s.messages = append([]feed.Message(nil), s.messages[len(s.messages)-FeedWindow:]...)
	}
	_, _ = w.Write([]byte("OK"))
}
