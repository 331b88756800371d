package hub

import (
	"errors"
	"fmt"
)

var (
	// ErrRepoNotFound is returned when the hub has no repository (or revision)
	// matching the request.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrInvalidRepoID is returned for repository IDs not shaped "owner/name".
	ErrInvalidRepoID = errors.New("invalid repository id")

	// ErrUnsafePath is returned when a listed file would land outside the
	// target directory.
	ErrUnsafePath = errors.New("unsafe file path")
)

// StatusError is a non-2xx response from the hub.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}
