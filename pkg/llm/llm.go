// Package llm sends assembled prompts to a hosted chat model and returns the
// completion text.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/papercomputeco/nihongo/pkg/credentials"
	"github.com/papercomputeco/nihongo/pkg/logger"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Invoker performs a single, synchronous completion request.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type callFunc func(ctx context.Context, prompt string) (string, error)

// Config holds configuration for creating a Client.
type Config struct {
	Provider string               // "groq", "openai", "anthropic", or "ollama"
	Model    string               // e.g. "llama-3.3-70b-versatile"
	APIKey   string               // explicit API key (highest priority)
	BaseURL  string               // override base URL
	CredMgr  *credentials.Manager // credentials from nihongo auth

	// Timeout bounds each Invoke call. Zero disables it.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

type providerDefaults struct {
	model   string
	baseURL string
	keyless bool
}

var providers = map[string]providerDefaults{
	ProviderGroq:      {model: "llama-3.3-70b-versatile", baseURL: "https://api.groq.com/openai"},
	ProviderOpenAI:    {model: "gpt-4o-mini", baseURL: "https://api.openai.com"},
	ProviderAnthropic: {model: "claude-haiku-4-5-20251001", baseURL: "https://api.anthropic.com"},
	ProviderOllama:    {model: "llama3.2", baseURL: "http://localhost:11434", keyless: true},
}

// SupportedProviders returns the provider names New accepts.
func SupportedProviders() []string {
	return []string{ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}

// Client is an Invoker bound to one provider and model.
type Client struct {
	provider string
	model    string
	timeout  time.Duration
	call     callFunc
	logger   *slog.Logger
}

// New creates a Client for cfg.Provider. An empty provider selects groq.
// Resolution order for the API key:
//  1. Explicit APIKey in config
//  2. credentials.Manager (from nihongo auth)
//  3. The provider's environment variable (GROQ_API_KEY etc.)
//
// A provider that needs a key and has none yields a *ConfigError wrapping
// ErrMissingAPIKey, so callers fail before any request is attempted.
func New(cfg Config) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderGroq
	}

	defaults, ok := providers[provider]
	if !ok {
		return nil, &ConfigError{Provider: provider, Err: ErrUnknownProvider}
	}

	apiKey, err := resolveAPIKey(cfg, provider)
	if err != nil {
		return nil, &ConfigError{Provider: provider, Err: err}
	}
	if apiKey == "" && !defaults.keyless {
		return nil, &ConfigError{Provider: provider, Err: missingKey(provider)}
	}

	model := cfg.Model
	if model == "" {
		model = defaults.model
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaults.baseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		provider: provider,
		model:    model,
		timeout:  cfg.Timeout,
		logger:   log,
	}

	switch provider {
	case ProviderGroq, ProviderOpenAI:
		c.call = newChatCompletionsCaller(httpClient, provider, apiKey, model, baseURL)
	case ProviderAnthropic:
		c.call = newAnthropicCaller(httpClient, apiKey, model, baseURL)
	case ProviderOllama:
		c.call = newOllamaCaller(httpClient, model, baseURL)
	}

	return c, nil
}

func resolveAPIKey(cfg Config, provider string) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}

	if cfg.CredMgr != nil {
		return cfg.CredMgr.Resolve(provider)
	}

	if env := credentials.EnvVarForProvider(provider); env != "" {
		return os.Getenv(env), nil
	}

	return "", nil
}

func missingKey(provider string) error {
	env := credentials.EnvVarForProvider(provider)
	return fmt.Errorf("%w: run \"nihongo auth %s\" or set %s", ErrMissingAPIKey, provider, env)
}

// Provider returns the resolved provider name.
func (c *Client) Provider() string { return c.provider }

// Model returns the resolved model name.
func (c *Client) Model() string { return c.model }

// Invoke sends prompt as a single user message and returns the completion.
// Failures are returned as *InferenceError and are never retried.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.call(ctx, prompt)
	if err != nil {
		c.logger.Debug("inference failed",
			"provider", c.provider,
			"model", c.model,
			"error", err,
		)
		return "", err
	}

	c.logger.Debug("inference complete",
		"provider", c.provider,
		"model", c.model,
		"prompt_bytes", len(prompt),
		"duration", time.Since(start),
	)

	return out, nil
}
