package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// busyPolicy retries statements that fail because another connection holds
// the sqlite write lock.
type busyPolicy struct {
	attempts int
	backoff  time.Duration
}

var defaultBusyPolicy = busyPolicy{attempts: 3, backoff: 50 * time.Millisecond}

// do runs fn until it succeeds, fails for another reason, or the attempts are
// used up. The backoff doubles after every busy failure.
func (p busyPolicy) do(ctx context.Context, fn func() error) error {
	delay := p.backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil || !isBusy(err) || attempt >= p.attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

var busyMarkers = []string{"database is locked", "database is busy", "sqlite_busy"}

func isBusy(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range busyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
