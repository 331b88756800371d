// Package api provides an HTTP API server for translating phrases and
// inspecting local state.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8085")
	ListenAddr string
}
