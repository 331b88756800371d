// Package inmemory provides a history driver backed by a slice, used when
// history is disabled and in tests.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/nihongo/pkg/history"
)

// Driver implements history.Driver in memory.
type Driver struct {
	mu      sync.RWMutex
	entries []*history.Entry
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

func (d *Driver) Append(_ context.Context, e *history.Entry) error {
	if err := history.Stamp(e); err != nil {
		return err
	}

	cp := *e

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, &cp)

	return nil
}

func (d *Driver) List(_ context.Context, limit int) ([]*history.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*history.Entry, 0, len(d.entries))
	for _, e := range slices.Backward(d.entries) {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *e
		out = append(out, &cp)
	}

	return out, nil
}

func (d *Driver) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = nil
	return nil
}

func (d *Driver) Close() error {
	return nil
}
