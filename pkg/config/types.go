package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent nihongo configuration stored as config.toml
// in the .nihongo/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	LLM       LLMConfig       `toml:"llm"`
	Hub       HubConfig       `toml:"hub"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Storage   StorageConfig   `toml:"storage"`
	History   HistoryConfig   `toml:"history"`
	API       APIConfig       `toml:"api"`
}

// LLMConfig selects the hosted model used for translation.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url,omitempty"`

	// Timeout is a Go duration string. "0" disables the per-request timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// HubConfig holds model hub settings used when pulling artifacts.
type HubConfig struct {
	Endpoint    string `toml:"endpoint,omitempty"`
	Revision    string `toml:"revision,omitempty"`
	Concurrency uint   `toml:"concurrency,omitempty"`
}

// ArtifactsConfig controls where pulled model snapshots land.
type ArtifactsConfig struct {
	Root     string `toml:"root,omitempty"`
	Attempts uint   `toml:"attempts,omitempty"`
}

// StorageConfig holds history storage settings. PostgresDSN wins over
// SQLitePath when both are set.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// HistoryConfig toggles translation history recording.
type HistoryConfig struct {
	Disabled bool `toml:"disabled,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.base_url": {
		get: func(c *Config) string { return c.LLM.BaseURL },
		set: func(c *Config, v string) error { c.LLM.BaseURL = v; return nil },
	},
	"llm.timeout": {
		get: func(c *Config) string { return c.LLM.Timeout },
		set: func(c *Config, v string) error {
			if _, err := ParseTimeout(v); err != nil {
				return fmt.Errorf("invalid value for llm.timeout: %w", err)
			}
			c.LLM.Timeout = v
			return nil
		},
	},
	"hub.endpoint": {
		get: func(c *Config) string { return c.Hub.Endpoint },
		set: func(c *Config, v string) error { c.Hub.Endpoint = v; return nil },
	},
	"hub.revision": {
		get: func(c *Config) string { return c.Hub.Revision },
		set: func(c *Config, v string) error { c.Hub.Revision = v; return nil },
	},
	"hub.concurrency": {
		get: func(c *Config) string { return formatUint(c.Hub.Concurrency) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for hub.concurrency: %w", err)
			}
			c.Hub.Concurrency = uint(n)
			return nil
		},
	},
	"artifacts.root": {
		get: func(c *Config) string { return c.Artifacts.Root },
		set: func(c *Config, v string) error { c.Artifacts.Root = v; return nil },
	},
	"artifacts.attempts": {
		get: func(c *Config) string { return formatUint(c.Artifacts.Attempts) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for artifacts.attempts: %w", err)
			}
			c.Artifacts.Attempts = uint(n)
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"history.disabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.History.Disabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for history.disabled: %w", err)
			}
			c.History.Disabled = b
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}
