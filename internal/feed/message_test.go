package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageTimeParsesServerFormats(t *testing.T) {
	want := time.Date(2026, 2, 9, 10, 11, 12, 0, time.UTC)
	cases := []string{
		"2026-02-09T10:11:12Z",
		"2026-02-09T10:11:12.000Z",
		"2026-02-09T10:11:12",
		"2026-02-09T12:11:12+02:00",
	}
	for _, raw := range cases {
		got := Message{Timestamp: raw}.Time()
		require.True(t, want.Equal(got), "timestamp %q parsed as %s", raw, got)
	}

	fractional := Message{Timestamp: "2026-02-09T10:11:12.345678"}.Time()
	require.Equal(t, 345678000, fractional.Nanosecond())

	require.True(t, Message{Timestamp: "yesterday"}.Time().IsZero())
	require.True(t, Message{}.Time().IsZero())
}

func TestMessageExtraRoundTripsAsNull(t *testing.T) {
	msg := NewMessage("hello", "alice", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"content":"hello","sender":"alice","timestamp":"2026-01-01T00:00:00.000Z","extra":null}`, string(payload))
	require.False(t, msg.HasExtra())

	var inbound Message
	require.NoError(t, json.Unmarshal([]byte(`{"content":"x","sender":"y","timestamp":"t","extra":{"k":1}}`), &inbound))
	require.True(t, inbound.HasExtra())
	require.JSONEq(t, `{"k":1}`, string(inbound.Extra))
}

func TestCloneMessagesDoesNotAlias(t *testing.T) {
	original := []Message{{Content: "a", Extra: json.RawMessage(`{"k":1}`)}}
	cloned := CloneMessages(original)
	cloned[0].Content = "b"
	cloned[0].Extra[2] = 'z'

	require.Equal(t, "a", original[0].Content)
	require.JSONEq(t, `{"k":1}`, string(original[0].Extra))
	require.Nil(t, CloneMessages(nil))
}
