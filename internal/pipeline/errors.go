package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/groundcheck/internal/model"
)

// FailureKind classifies why a check did not produce a result
type FailureKind int

const (
	// Internal covers anything unexpected, including recovered panics
	Internal FailureKind = iota
	// EmptyInput: the claim was blank; nothing was sent or logged
	EmptyInput
	// RateLimitExhausted: every attempt was answered with 429
	RateLimitExhausted
	// TransportError: a non-429 HTTP error, timeout or connection failure
	TransportError
	// MalformedResponse: the API answered without any candidate
	MalformedResponse
	// PersistenceError: the history row could not be written
	PersistenceError
)

func (k FailureKind) String() string {
	switch k {
	case EmptyInput:
		return "empty_input"
	case RateLimitExhausted:
		return "rate_limit_exhausted"
	case TransportError:
		return "transport_error"
	case MalformedResponse:
		return "malformed_response"
	case PersistenceError:
		return "persistence_error"
	default:
		return "internal"
	}
}

// RateLimitMessage is shown once retries are exhausted
const RateLimitMessage = "Failed to get a response from the API after multiple retries due to rate limiting."

// ErrEmptyClaim is the cause carried by EmptyInput failures
var ErrEmptyClaim = errors.New("claim is empty")

// CheckError is the typed failure returned by Pipeline.Check
type CheckError struct {
	Kind FailureKind
	Err  error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in place of a result
func (e *CheckError) UserMessage() string {
	switch e.Kind {
	case EmptyInput:
		return model.EmptyClaimMessage
	case RateLimitExhausted:
		return RateLimitMessage
	default:
		return fmt.Sprintf("An error occurred: %v", e.Err)
	}
}

// KindOf returns the failure kind of err, or Internal if err is not a *CheckError
func KindOf(err error) FailureKind {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Internal
}

// UserMessage maps any error from Check to user-facing text
func UserMessage(err error) string {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return fmt.Sprintf("An error occurred: %v", err)
}

func fail(kind FailureKind, err error) *CheckError {
	return &CheckError{Kind: kind, Err: err}
}
