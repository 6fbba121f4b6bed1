package feed_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/testutil"
)

func newClient(t *testing.T, baseURL string) *feed.Client {
	t.Helper()
	client, err := feed.NewClient(feed.ClientConfig{
		BaseURL: baseURL,
		AuthKey: testutil.DefaultAuthKey,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := feed.NewClient(feed.ClientConfig{})
	require.Error(t, err)

	_, err = feed.NewClient(feed.ClientConfig{BaseURL: "ftp://example.com"})
	require.ErrorContains(t, err, "scheme")

	client, err := feed.NewClient(feed.ClientConfig{BaseURL: " http://127.0.0.1:5001/ "})
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:5001", client.BaseURL())
}

func TestListMessagesPreservesServerOrder(t *testing.T) {
	server := testutil.NewFeedServer(t,
		feed.Message{Content: "second", Sender: "b", Timestamp: "2026-01-02T00:00:00"},
		feed.Message{Content: "first", Sender: "a", Timestamp: "2026-01-01T00:00:00"},
	)
	client := newClient(t, server.URL)

	messages, err := client.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "second", messages[0].Content)
	require.Equal(t, "first", messages[1].Content)
	require.Equal(t, 1, server.ListCalls())
}

func TestListMessagesEmptyAndNull(t *testing.T) {
	server := testutil.NewFeedServer(t)
	client := newClient(t, server.URL)

	messages, err := client.ListMessages(context.Background())
	require.NoError(t, err)
	require.Empty(t, messages)

	server.ServeRawList("null")
	messages, err = client.ListMessages(context.Background())
	require.NoError(t, err)
	require.NotNil(t, messages)
	require.Empty(t, messages)
}

func TestListMessagesStatusFailure(t *testing.T) {
	server := testutil.NewFeedServer(t)
	server.FailLists(http.StatusBadGateway)
	client := newClient(t, server.URL)

	_, err := client.ListMessages(context.Background())
	var fetchErr *feed.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	require.False(t, feed.IsDecodeError(err))
}

func TestListMessagesDecodeFailure(t *testing.T) {
	server := testutil.NewFeedServer(t)
	server.ServeRawList("<html>oops</html>")
	client := newClient(t, server.URL)

	_, err := client.ListMessages(context.Background())
	var fetchErr *feed.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.True(t, feed.IsDecodeError(err))
	require.ErrorIs(t, err, feed.ErrListDecode)
}

func TestListMessagesTransportFailure(t *testing.T) {
	testutil.SkipIfNoNetwork(t)
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newClient(t, url)
	_, err := client.ListMessages(context.Background())
	var fetchErr *feed.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Zero(t, fetchErr.StatusCode)
}

func TestAppendMessageSendsContract(t *testing.T) {
	testutil.SkipIfNoNetwork(t)
	var gotHeaders http.Header
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/send", r.URL.Path)
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL+"/")
	msg := feed.NewMessage("hi **team**", "bob", time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.UTC))
	result, err := client.AppendMessage(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, "OK", result.Body)

	require.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	require.Equal(t, testutil.DefaultAuthKey, gotHeaders.Get("Authorization"))
	require.Equal(t, "hi **team**", gotBody["content"])
	require.Equal(t, "bob", gotBody["sender"])
	require.Equal(t, "2026-03-04T05:06:07.008Z", gotBody["timestamp"])
	require.Contains(t, gotBody, "extra")
	require.Nil(t, gotBody["extra"])
}

func TestAppendMessageRejectedIsResultNotError(t *testing.T) {
	server := testutil.NewFeedServer(t)
	server.FailSends(http.StatusInternalServerError)
	client := newClient(t, server.URL)

	result, err := client.AppendMessage(context.Background(), feed.NewMessage("hello", "alice", time.Now()))
	require.NoError(t, err)
	require.False(t, result.OK())
	require.Equal(t, http.StatusInternalServerError, result.StatusCode)
}

func TestAppendMessageWrongCredentialRejected(t *testing.T) {
	server := testutil.NewFeedServer(t)
	client, err := feed.NewClient(feed.ClientConfig{BaseURL: server.URL, AuthKey: "authkey nope"})
	require.NoError(t, err)

	result, err := client.AppendMessage(context.Background(), feed.NewMessage("hello", "alice", time.Now()))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, result.StatusCode)
	require.Contains(t, result.Body, "Invalid authorization")
	require.Empty(t, server.Messages())
}

func TestAppendMessageTransportFailure(t *testing.T) {
	testutil.SkipIfNoNetwork(t)
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newClient(t, url)
	_, err := client.AppendMessage(context.Background(), feed.NewMessage("hello", "alice", time.Now()))
	var sendErr *feed.SendError
	require.ErrorAs(t, err, &sendErr)
	require.False(t, errors.Is(err, feed.ErrListDecode))
}
