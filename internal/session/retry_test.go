package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) busyPolicy {
	return busyPolicy{attempts: attempts, backoff: time.Millisecond}
}

func TestBusyPolicyRetriesLockedDatabase(t *testing.T) {
	calls := 0
	err := fastPolicy(3).do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestBusyPolicyReturnsOtherErrorsImmediately(t *testing.T) {
	calls := 0
	err := fastPolicy(3).do(context.Background(), func() error {
		calls++
		return errors.New("no such table: kv")
	})
	require.EqualError(t, err, "no such table: kv")
	require.Equal(t, 1, calls)
}

func TestBusyPolicyGivesUp(t *testing.T) {
	calls := 0
	err := fastPolicy(2).do(context.Background(), func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	require.EqualError(t, err, "SQLITE_BUSY")
	require.Equal(t, 2, calls)

	calls = 0
	_ = busyPolicy{}.do(context.Background(), func() error {
		calls++
		return errors.New("database is busy")
	})
	require.Equal(t, 1, calls)
}

func TestBusyPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := fastPolicy(3).do(ctx, func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
	require.False(t, isBusy(context.DeadlineExceeded))
}
