package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. The same logical flag
// (e.g. --provider on both "nihongo translate" and "nihongo serve") then
// cannot drift between commands.
type Flag struct {
	// Name is the long flag name (e.g. "provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "llm.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider     = "provider"
	FlagModel        = "model"
	FlagBaseURL      = "base-url"
	FlagTimeout      = "timeout"
	FlagHubEndpoint  = "hub-endpoint"
	FlagRevision     = "revision"
	FlagConcurrency  = "concurrency"
	FlagArtifactRoot = "artifacts-root"
	FlagAttempts     = "attempts"
	FlagSQLite       = "sqlite"
	FlagPostgres     = "postgres"
	FlagAPIListen    = "listen"
)

// DefaultFlags is the registry shared by every nihongo subcommand.
var DefaultFlags = FlagSet{
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "llm.provider",
		Description: "LLM provider (groq, openai, anthropic, ollama)",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "llm.model",
		Description: "Model name passed to the provider",
	},
	FlagBaseURL: {
		Name:        "base-url",
		ViperKey:    "llm.base_url",
		Description: "Override the provider endpoint",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "llm.timeout",
		Description: "Per-request inference timeout (Go duration, 0 disables)",
	},
	FlagHubEndpoint: {
		Name:        "hub-endpoint",
		ViperKey:    "hub.endpoint",
		Description: "Model hub base URL",
	},
	FlagRevision: {
		Name:        "revision",
		ViperKey:    "hub.revision",
		Description: "Hub revision to snapshot",
	},
	FlagConcurrency: {
		Name:        "concurrency",
		Shorthand:   "c",
		ViperKey:    "hub.concurrency",
		Description: "Parallel file downloads per artifact",
	},
	FlagArtifactRoot: {
		Name:        "artifacts-root",
		ViperKey:    "artifacts.root",
		Description: "Directory artifact paths are resolved against",
	},
	FlagAttempts: {
		Name:        "attempts",
		ViperKey:    "artifacts.attempts",
		Description: "Download attempts per artifact before giving up",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite history database",
	},
	FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string for history",
	},
	FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
