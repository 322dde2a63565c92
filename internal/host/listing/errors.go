package listing

import (
	"errors"
	"fmt"
	"net"
)

// NetworkError reports a failed listing fetch: connection failure, timeout, or
// a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because a timeout elapsed.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, errBodyTimeout) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}
