package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError reports a failed page retrieval. StatusCode is zero when the
// failure happened below the HTTP layer (timeout, connection refused).
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transient reports whether a retry could plausibly succeed. Transport-level
// failures, rate limiting and server errors are transient; other 4xx
// responses are not.
func (e *RequestError) Transient() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err is a transient RequestError.
func IsTransient(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Transient()
}
