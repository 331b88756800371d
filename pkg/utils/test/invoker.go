package testutils

import (
	"context"
	"errors"
	"sync"
)

// ErrMockInvoke is a ready-made error for MockInvoker.Err.
var ErrMockInvoke = errors.New("mock inference failure")

// MockInvoker is a test invoker that returns a canned completion and records
// the prompts it receives.
type MockInvoker struct {
	// Response is returned for every prompt.
	Response string

	// Err, when set, is returned instead of Response.
	Err error

	mu      sync.Mutex
	prompts []string
}

// NewMockInvoker creates an invoker that answers every prompt with response.
func NewMockInvoker(response string) *MockInvoker {
	return &MockInvoker{Response: response}
}

func (m *MockInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Prompts returns a copy of every prompt received.
func (m *MockInvoker) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
