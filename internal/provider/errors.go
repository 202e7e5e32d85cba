package provider

import (
	"errors"
	"fmt"
)

// FetchError is the typed failure returned by providers. Transient marks
// errors worth retrying (network faults, timeouts, 429/5xx responses);
// permanent errors (bad request, malformed payload) are not retried.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a FetchError marked retryable.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	return code == 429 || code >= 500
}
