package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is wrapped by ConfigError when a provider requires a key
	// and none could be resolved.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnknownProvider is wrapped by ConfigError for unsupported provider names.
	ErrUnknownProvider = errors.New("unsupported provider")
)

// ConfigError reports an invoker that cannot be built from its configuration.
// It is not recoverable at runtime.
type ConfigError struct {
	Provider string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Provider, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InferenceError reports a failed completion request: transport failure,
// rejected credentials, or an error from the remote model.
type InferenceError struct {
	Provider string

	// StatusCode is the HTTP status returned by the provider, zero when the
	// request never got a response.
	StatusCode int

	Err error
}

func (e *InferenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s inference failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s inference failed: %v", e.Provider, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the provider rejected the credentials.
func (e *InferenceError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
