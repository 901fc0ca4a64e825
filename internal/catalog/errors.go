package catalog

import (
	"errors"
	"fmt"
)

// ErrBreakerOpen is wrapped into a NetworkError when the fetch circuit is open.
var ErrBreakerOpen = errors.New("catalog fetch circuit open")

// NetworkError reports a failed catalog fetch. It is recovered at the
// boundary by rendering an error state; the store stays as it was.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch catalog %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch catalog %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is, or wraps, a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
