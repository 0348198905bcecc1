package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimitExhausted is returned once every attempt was answered with 429
var ErrRateLimitExhausted = errors.New("rate limit retries exhausted")

// StatusError is a non-2xx answer from the API
type StatusError struct {
	StatusCode int
	Message    string
	Err        error // Underlying client error, if any
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err carries an HTTP 429
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}
