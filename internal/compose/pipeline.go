// Package compose validates and sends outbound messages.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/logging"
	"github.com/tOgg1/chatfeed/internal/metrics"
)

// Validation errors. Neither reaches the network.
var (
	ErrEmptyUsername = errors.New("username is empty")
	ErrEmptyMessage  = errors.New("message is empty")
)

// RejectedSendError is returned when the channel answered with a non-2xx status.
type RejectedSendError struct {
	StatusCode int
	Body       string
}

func (e *RejectedSendError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("send rejected: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("send rejected: HTTP %d: %s", e.StatusCode, body)
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyUsername) || errors.Is(err, ErrEmptyMessage)
}

// Appender posts one message to the channel.
type Appender interface {
	AppendMessage(ctx context.Context, msg feed.Message) (feed.AppendResult, error)
}

// Syncer triggers an out-of-cycle refresh.
type Syncer interface {
	SyncNow() error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics counts send outcomes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) {
		p.metrics = c
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline turns compose input into an appended message followed by one
// resync. It never inserts the message locally; the next fetch shows it.
type Pipeline struct {
	appender Appender
	syncer   Syncer
	metrics  *metrics.Collector
	now      func() time.Time
	logger   zerolog.Logger
}

// NewPipeline creates a send pipeline. syncer may be nil for one-shot sends.
func NewPipeline(appender Appender, syncer Syncer, opts ...Option) *Pipeline {
	p := &Pipeline{
		appender: appender,
		syncer:   syncer,
		now:      time.Now,
		logger:   logging.Component("compose"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the username first, then the message text.
func Validate(text, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Send validates text and username, appends the message, and on acceptance
// triggers exactly one resync. Content and sender go out as typed.
func (p *Pipeline) Send(ctx context.Context, text, username string) (feed.Message, error) {
	if err := Validate(text, username); err != nil {
		p.metrics.ObserveSend(metrics.SendInvalid)
		return feed.Message{}, err
	}

	msg := feed.NewMessage(text, username, p.now())
	logger := logging.WithSender(username)

	result, err := p.appender.AppendMessage(ctx, msg)
	if err != nil {
		p.metrics.ObserveSend(metrics.SendFailed)
		logger.Warn().Err(err).Msg("send failed")
		return feed.Message{}, err
	}
	if !result.OK() {
		p.metrics.ObserveSend(metrics.SendRejected)
		logger.Warn().Int("status", result.StatusCode).Str("body", logging.Redact(result.Body)).Msg("send rejected")
		return feed.Message{}, &RejectedSendError{StatusCode: result.StatusCode, Body: result.Body}
	}

	p.metrics.ObserveSend(metrics.SendAccepted)
	logger.Info().Int("bytes", len(text)).Msg("message sent")

	if p.syncer != nil {
		if err := p.syncer.SyncNow(); err != nil {
			p.logger.Debug().Err(err).Msg("resync after send skipped")
		}
	}
	return msg, nil
}
