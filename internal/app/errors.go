package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConversation indicates a message was sent with no conversation
	// selected. Rejected locally, no request is issued.
	ErrNoConversation = errors.New("no conversation selected")
	// ErrProcessingInProgress indicates a document mutation was attempted
	// while the backend is processing. Rejected locally.
	ErrProcessingInProgress = errors.New("documents are being processed")
	// ErrNotAuthenticated indicates an operation that requires a confirmed
	// identity was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnauthorized is returned when the backend rejects the session
	// token. The gateway's unauthorized hook has already torn the session
	// down by the time callers see it.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}
