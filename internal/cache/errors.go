package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is returned when the cache cannot be reached:
	// DNS failure, refused connection, transport timeout or cancellation.
	ErrUnreachable = errors.New("cache unreachable")

	// ErrInvalidResponse is returned when a 200 body is not valid JSON or
	// does not match the expected result shape.
	ErrInvalidResponse = errors.New("invalid cache response")
)

// UnexpectedStatusError is returned when the cache answers with a status other than 200.
type UnexpectedStatusError struct {
	Code int
	URL  string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// ErrorKind classifies errors returned by Client.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnreachable
	KindUnexpectedStatus
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindUnexpectedStatus:
		return "unexpected_status"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// KindOf reports which kind of failure err is.
func KindOf(err error) ErrorKind {
	var statusErr *UnexpectedStatusError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &statusErr):
		return KindUnexpectedStatus
	case errors.Is(err, ErrUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrInvalidResponse):
		return KindInvalidResponse
	default:
		return KindUnknown
	}
}
