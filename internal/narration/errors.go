package narration

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies narration failures.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindTransport   ErrorKind = "transport"
	KindStatus      ErrorKind = "status"
	KindDecode      ErrorKind = "decode"
	KindEmpty       ErrorKind = "empty"
)

// ErrNoGenerator is returned when no text generator has credentials.
var ErrNoGenerator = errors.New("no narration provider available")

// Error is a classified failure from a single narration provider.
type Error struct {
	Provider string
	Kind     ErrorKind
	// Status is the HTTP status code for KindStatus errors.
	Status int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("narration %s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// retryable reports whether another attempt against the same provider may help.
// Client errors other than 429 will fail the same way again.
func retryable(err error) bool {
	var ne *Error
	if !errors.As(err, &ne) {
		return true
	}
	switch ne.Kind {
	case KindTransport, KindEmpty:
		return true
	case KindStatus:
		return ne.Status == 0 || ne.Status == http.StatusTooManyRequests || ne.Status >= 500
	default:
		return false
	}
}
