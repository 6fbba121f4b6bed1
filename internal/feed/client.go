package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/logging"
)

const (
	messagesPath = "/messages"
	sendPath     = "/send"

	// maxListBody bounds how much of a list response is read. The server keeps
	// a short window, so anything near this size is already suspicious.
	maxListBody = 8 << 20
	maxSendBody = 64 << 10
)

// ClientConfig configures a feed Client.
type ClientConfig struct {
	// BaseURL is the channel endpoint, e.g. http://127.0.0.1:5001.
	BaseURL string

	// AuthKey is sent verbatim as the Authorization header on appends.
	AuthKey string

	// Timeout bounds each request. Zero leaves the transport default (none).
	Timeout time.Duration

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// AppendResult is the raw outcome of an append request that reached the server.
type AppendResult struct {
	StatusCode int
	Body       string
}

// OK reports whether the server accepted the message.
func (r AppendResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client wraps the two operations the channel service exposes. It holds no
// feed state.
type Client struct {
	baseURL string
	authKey string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		clone := *httpClient
		clone.Timeout = cfg.Timeout
		httpClient = &clone
	}

	return &Client{
		baseURL: base,
		authKey: cfg.AuthKey,
		http:    httpClient,
		logger:  logging.Component("feed-client"),
	}, nil
}

// BaseURL returns the normalized channel endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListMessages fetches the current feed window in server order.
func (c *Client) ListMessages(ctx context.Context) ([]Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+messagesPath, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSendBody))
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListBody))
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: err}
	}

	messages, err := decodeMessageList(body)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("count", len(messages)).
		Msg("listed messages")
	return messages, nil
}

// AppendMessage posts msg to the channel. Any HTTP response, including a
// rejection, is returned as an AppendResult; only transport failures error.
func (c *Client) AppendMessage(ctx context.Context, msg Message) (AppendResult, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return AppendResult{}, &SendError{Err: fmt.Errorf("encode message: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return AppendResult{}, &SendError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authKey)

	c.logger.Debug().
		Interface("headers", logging.RedactHeaders(req.Header)).
		Str("sender", msg.Sender).
		Msg("appending message")

	resp, err := c.http.Do(req)
	if err != nil {
		return AppendResult{}, &SendError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSendBody))
	if err != nil {
		return AppendResult{}, &SendError{Err: fmt.Errorf("read response: %w", err)}
	}

	result := AppendResult{StatusCode: resp.StatusCode, Body: string(body)}
	c.logger.Debug().
		Int("status", result.StatusCode).
		Str("body", logging.Redact(strings.TrimSpace(result.Body))).
		Msg("append response")
	return result, nil
}

func decodeMessageList(body []byte) ([]Message, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrListDecode)
	}
	var messages []Message
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListDecode, err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("base url required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base url %q: scheme must be http or https", trimmed)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("base url %q: missing host", trimmed)
	}
	return strings.TrimRight(trimmed, "/"), nil
}
