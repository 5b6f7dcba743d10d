package provider

import "fmt"

// HTTPError carries a non-2xx provider response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider: status %d", e.Status)
	}
	return fmt.Sprintf("provider: status %d: %s", e.Status, e.Message)
}

// Retryable reports whether the caller may simply try again: server-side
// failures are, client-side rejections are not.
func (e *HTTPError) Retryable() bool {
	return e.Status >= 500
}

// RateGone reports the "selected rate no longer available" family. The user
// must be sent back to recommendation selection, not retried with the same
// allocation.
func (e *HTTPError) RateGone() bool {
	return e.Status == 409 || e.Status == 410
}
