// Package search narrows the feed to messages matching a free-text query.
package search

import (
	"strings"

	"github.com/tOgg1/chatfeed/internal/feed"
)

// Filter returns the messages whose content contains query, ignoring case,
// in their original order. An empty query returns messages unchanged. The
// query is used as typed, so surrounding spaces are significant.
func Filter(messages []feed.Message, query string) []feed.Message {
	if query == "" {
		return messages
	}
	needle := strings.ToLower(query)
	out := make([]feed.Message, 0, len(messages))
	for _, msg := range messages {
		if Matches(msg, needle) {
			out = append(out, msg)
		}
	}
	return out
}

// Matches reports whether msg content contains the already lowercased needle.
func Matches(msg feed.Message, needle string) bool {
	return strings.Contains(strings.ToLower(msg.Content), needle)
}

// Count reports how many messages Filter would keep.
func Count(messages []feed.Message, query string) int {
	if query == "" {
		return len(messages)
	}
	needle := strings.ToLower(query)
	n := 0
	for _, msg := range messages {
		if Matches(msg, needle) {
			n++
		}
	}
	return n
}
