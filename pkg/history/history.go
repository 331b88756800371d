// Package history records completed translations so they can be listed later.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNilEntry is returned when a driver is asked to store a nil entry.
var ErrNilEntry = errors.New("cannot store nil entry")

// Entry is one completed translation.
type Entry struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Output    string        `json:"output"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Driver persists and lists entries.
type Driver interface {
	// Append stores e, assigning an ID and timestamp when they are unset.
	Append(ctx context.Context, e *Entry) error

	// List returns up to limit entries, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// Clear deletes every entry.
	Clear(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}

// Stamp assigns a UUIDv7 ID and a UTC creation time to e when unset.
func Stamp(e *Entry) error {
	if e == nil {
		return ErrNilEntry
	}

	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate entry ID: %w", err)
		}
		e.ID = id.String()
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	return nil
}
