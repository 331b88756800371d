// Package wiring builds the collaborators shared by nihongo subcommands from
// the resolved configuration: the logger, the inference client, the history
// driver and the artifact provisioner.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/cmd/nihongo/sqlitepath"
	"github.com/papercomputeco/nihongo/pkg/config"
	"github.com/papercomputeco/nihongo/pkg/credentials"
	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/history/inmemory"
	"github.com/papercomputeco/nihongo/pkg/history/postgres"
	"github.com/papercomputeco/nihongo/pkg/history/sqlite"
	"github.com/papercomputeco/nihongo/pkg/hub"
	"github.com/papercomputeco/nihongo/pkg/llm"
	"github.com/papercomputeco/nihongo/pkg/logger"
	"github.com/papercomputeco/nihongo/pkg/provision"
)

// ConfigDir returns the --config-dir override, empty when unset.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}

// Logger builds the CLI logger: pretty output on the command's stderr, debug
// level when --debug is set.
func Logger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

// LoadConfig resolves the configuration for cmd, binding the given registry
// flags so they take precedence over env and file values.
func LoadConfig(cmd *cobra.Command, flagKeys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.DefaultFlags, flagKeys)

	return config.FromViper(v), nil
}

// NewInvoker builds the inference client. A missing API key is reported here
// as a *llm.ConfigError, before any request is attempted.
func NewInvoker(cfg *config.Config, configDir string, log *slog.Logger) (*llm.Client, error) {
	timeout, err := config.ParseTimeout(cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}

	credMgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	return llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		CredMgr:  credMgr,
		Timeout:  timeout,
		Logger:   log,
	})
}

// NewHistory opens the history backend. PostgreSQL wins when a DSN is set,
// then SQLite. Disabled history keeps entries in memory for the life of the
// process only.
func NewHistory(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (history.Driver, error) {
	if cfg.History.Disabled {
		log.Debug("history disabled, using in-memory storage")
		return inmemory.NewDriver(), nil
	}

	if cfg.Storage.PostgresDSN != "" {
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL history driver: %w", err)
		}
		log.Debug("using PostgreSQL history")
		return driver, nil
	}

	path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath, configDir)
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.NewDriver(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite history driver: %w", err)
	}
	log.Debug("using SQLite history", "path", path)

	return driver, nil
}

// NewProvisioner builds a provisioner backed by the model hub. A stored or
// exported Hugging Face token is sent when present.
func NewProvisioner(cfg *config.Config, configDir string, log *slog.Logger) (*provision.Provisioner, error) {
	credMgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	token, err := credMgr.Resolve("huggingface")
	if err != nil {
		return nil, fmt.Errorf("loading hub token: %w", err)
	}

	client := hub.NewClient(hub.Config{
		Endpoint:    cfg.Hub.Endpoint,
		Token:       token,
		Revision:    cfg.Hub.Revision,
		Concurrency: cfg.Hub.Concurrency,
		Logger:      log,
	})

	return provision.New(client,
		provision.WithRoot(cfg.Artifacts.Root),
		provision.WithAttempts(cfg.Artifacts.Attempts),
		provision.WithLogger(log),
	), nil
}

// SelectArtifacts maps names to default artifacts. No names selects all.
func SelectArtifacts(names []string) ([]provision.Artifact, error) {
	if len(names) == 0 {
		return provision.DefaultArtifacts(), nil
	}

	out := make([]provision.Artifact, 0, len(names))
	for _, name := range names {
		a, ok := provision.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown artifact: %q (available: %v)", name, provision.Names())
		}
		out = append(out, a)
	}
	return out, nil
}
