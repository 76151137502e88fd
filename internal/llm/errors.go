package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failed generation.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx answers.
	KindUnavailable Kind = iota
	KindRateLimited
	// KindInvalidOutput means the reply was not JSON valid for the schema.
	KindInvalidOutput
	// KindTruncated means the reply hit the token limit before it was complete.
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalidOutput:
		return "invalid output"
	case KindTruncated:
		return "truncated"
	default:
		return "unavailable"
	}
}

// Error is returned by every vendor client.
type Error struct {
	Kind       Kind
	Vendor     string
	RetryAfter time.Duration
	// Content holds the raw reply for output errors.
	Content json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Vendor, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// statusError classifies an SDK error by the HTTP status it carried.
// Status 0 means no answer was received.
func statusError(vendor string, status int, err error) *Error {
	kind := KindUnavailable
	if status == http.StatusTooManyRequests {
		kind = KindRateLimited
	}
	return &Error{Kind: kind, Vendor: vendor, Err: err}
}
