// Package apperr holds the sentinel errors shared across layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
)

// UpstreamError reports a non-2xx answer from a third-party provider.
// Status is passed through to the HTTP caller unchanged.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d", e.Status)
}
