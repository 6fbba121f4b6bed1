package feed

import (
	"errors"
	"fmt"
)

// ErrListDecode marks a list response whose body was not a JSON message array.
var ErrListDecode = errors.New("malformed message list")

// FetchError is returned when the feed could not be listed.
type FetchError struct {
	// StatusCode is the HTTP status when the server answered, zero otherwise.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch messages: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch messages: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SendError is returned when an append request never got a response.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send message: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err came from a malformed list body.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrListDecode)
}
