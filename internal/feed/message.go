// Package feed talks to the remote channel service that owns the message feed.
package feed

import (
	"encoding/json"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form the client stamps on outbound messages.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// WindowSize is how many recent messages the channel service keeps.
const WindowSize = 50

var inboundLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Message is one entry in the channel feed.
type Message struct {
	Content   string          `json:"content"`
	Sender    string          `json:"sender"`
	Timestamp string          `json:"timestamp"`
	Extra     json.RawMessage `json:"extra"`
}

// NewMessage builds an outbound message stamped at now.
func NewMessage(content, sender string, now time.Time) Message {
	return Message{
		Content:   content,
		Sender:    sender,
		Timestamp: FormatTimestamp(now),
	}
}

// FormatTimestamp renders t the way outbound messages carry it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Time parses the message timestamp. Servers are not consistent about zone
// suffixes or fractional seconds; unparsable values yield the zero time.
func (m Message) Time() time.Time {
	raw := strings.TrimSpace(m.Timestamp)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range inboundLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// HasExtra reports whether the server attached a non-null extra payload.
func (m Message) HasExtra() bool {
	trimmed := strings.TrimSpace(string(m.Extra))
	return trimmed != "" && trimmed != "null"
}

// CloneMessages copies a feed so callers can't alias each other's slices.
func CloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	cloned := make([]Message, len(messages))
	for i := range messages {
		cloned[i] = messages[i]
		if len(messages[i].Extra) > 0 {
			cloned[i].Extra = append(json.RawMessage(nil), messages[i].Extra...)
		}
	}
	return cloned
}
