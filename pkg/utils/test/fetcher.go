package testutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrMockFetch is returned by MockFetcher for scripted failures.
var ErrMockFetch = errors.New("mock fetch failure")

// MockFetcher is a test fetcher that writes a fixed set of files and records
// every call.
type MockFetcher struct {
	// Files are written into the target dir on success, keyed by relative path.
	Files map[string]string

	// FailTimes makes the first N calls fail with ErrMockFetch.
	FailTimes int

	// PartialOnFailure writes one file before failing, simulating an
	// interrupted download.
	PartialOnFailure bool

	// Delay is slept before each fetch (or until ctx is done).
	Delay time.Duration

	mu    sync.Mutex
	calls []FetchCall
}

// FetchCall records one Fetch invocation.
type FetchCall struct {
	RepoID string
	Dir    string
}

// NewMockFetcher creates a fetcher that writes a single config.json.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Files: map[string]string{"config.json": "{}"},
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, repoID, dir string) error {
	m.mu.Lock()
	m.calls = append(m.calls, FetchCall{RepoID: repoID, Dir: dir})
	n := len(m.calls)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if n <= m.FailTimes {
		if m.PartialOnFailure {
			_ = os.WriteFile(filepath.Join(dir, "partial.bin"), []byte("partial"), 0o644)
		}
		return ErrMockFetch
	}

	for name, body := range m.Files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockFetcher) Calls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.calls...)
}

// CallCount returns the number of Fetch calls.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
