package provision

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDirectory is returned when the artifact path exists but is a file.
	ErrNotDirectory = errors.New("artifact path is not a directory")

	// ErrEmptySnapshot is returned when a fetch completes without writing any
	// files.
	ErrEmptySnapshot = errors.New("snapshot is empty")
)

// DownloadError reports a snapshot that could not be fetched after every
// attempt. Err is the last fetch error.
type DownloadError struct {
	RepoID   string
	Dir      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s into %s failed after %d attempt(s): %v", e.RepoID, e.Dir, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
