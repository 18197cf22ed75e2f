package proxy

import (
	"errors"
	"fmt"
)

// ErrInvalidQuestion is returned before any upstream call when the question is empty
var ErrInvalidQuestion = errors.New("question is required")

// UpstreamError reports that the upstream service, and the fallback if one was tried, failed
type UpstreamError struct {
	Tried  []string
	Status int
	Body   interface{}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d after trying %d endpoint(s)", e.Status, len(e.Tried))
}
