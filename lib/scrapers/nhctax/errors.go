package nhctax

import "fmt"

// HTTPError is a request failure surfaced after retry exhaustion. The
// status code is zero when the failure happened below HTTP (DNS
// lookups, timeouts, connection resets).
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }
