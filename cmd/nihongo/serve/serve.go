// Package servecmder provides the serve command for running the HTTP API and
// MCP server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/api"
	"github.com/papercomputeco/nihongo/api/mcp"
	"github.com/papercomputeco/nihongo/cmd/nihongo/wiring"
	"github.com/papercomputeco/nihongo/pkg/config"
	"github.com/papercomputeco/nihongo/pkg/logger"
	"github.com/papercomputeco/nihongo/pkg/provision"
	"github.com/papercomputeco/nihongo/pkg/translate"
	"github.com/papercomputeco/nihongo/pkg/worker"
)

type serveCommander struct {
	flags config.FlagSet

	listen       string
	provider     string
	model        string
	baseURL      string
	timeout      string
	sqlitePath   string
	postgres     string
	hubEndpoint  string
	revision     string
	concurrency  uint
	artifactRoot string
	attempts     uint
	noMCP        bool
	pull         bool
	logFile      string
	debug        bool

	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagProvider,
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagTimeout,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagHubEndpoint,
	config.FlagRevision,
	config.FlagConcurrency,
	config.FlagArtifactRoot,
	config.FlagAttempts,
}

const serveLongDesc string = `Run the nihongo HTTP API and MCP server.

Endpoints:
  GET    /ping                   Health check
  POST   /v1/translate           Translate {"query": "..."}
  GET    /v1/prompt?query=...    Show the prompt for a phrase
  GET    /v1/history?limit=N     List recent translations
  DELETE /v1/history             Clear translation history
  GET    /v1/artifacts           Show artifact status
  POST   /v1/artifacts/{name}    Pull an artifact
  *      /mcp                    MCP streamable HTTP endpoint

Examples:
  nihongo serve
  nihongo serve --listen :9000 --provider openai
  nihongo serve --pull --log-file serve.log
  nihongo serve --postgres "postgres://nihongo@localhost/nihongo"`

const serveShortDesc string = "Run the HTTP API and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{
		flags: config.DefaultFlags,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.LoadConfig(cmd, serveFlags...)
			if err != nil {
				return err
			}

			cmder.logger = wiring.Logger(cmd)
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), cfg, wiring.ConfigDir(cmd))
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, cmder.flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, cmder.flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, cmder.flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, cmder.flags, config.FlagPostgres, &cmder.postgres)
	config.AddStringFlag(cmd, cmder.flags, config.FlagHubEndpoint, &cmder.hubEndpoint)
	config.AddStringFlag(cmd, cmder.flags, config.FlagRevision, &cmder.revision)
	config.AddUintFlag(cmd, cmder.flags, config.FlagConcurrency, &cmder.concurrency)
	config.AddStringFlag(cmd, cmder.flags, config.FlagArtifactRoot, &cmder.artifactRoot)
	config.AddUintFlag(cmd, cmder.flags, config.FlagAttempts, &cmder.attempts)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Serve the MCP endpoint without tools")
	cmd.Flags().BoolVar(&cmder.pull, "pull", false, "Pull missing artifacts before serving")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cfg *config.Config, configDir string) error {
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithJSON(true),
			logger.WithDebug(c.debug),
			logger.WithSource(c.debug),
			logger.WithWriter(f),
		))
	}

	invoker, err := wiring.NewInvoker(cfg, configDir, c.logger)
	if err != nil {
		return err
	}

	driver, err := wiring.NewHistory(ctx, cfg, configDir, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	pool, err := worker.NewPool(&worker.Config{
		Driver: driver,
		Logger: c.logger,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	translator := translate.New(nil, invoker,
		translate.WithRecorder(pool),
		translate.WithLogger(c.logger),
	)

	provisioner, err := wiring.NewProvisioner(cfg, configDir, c.logger)
	if err != nil {
		return err
	}

	artifacts := provision.DefaultArtifacts()
	if c.pull {
		if err := provisioner.EnsureAll(ctx, artifacts); err != nil {
			return err
		}
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Translator: translator,
		History:    driver,
		Noop:       c.noMCP,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server, err := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, translator, c.logger,
		api.WithHistory(driver),
		api.WithProvisioner(provisioner, artifacts),
		api.WithMCP(mcpServer.Handler()),
	)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("serving",
		"listen", cfg.API.Listen,
		"provider", invoker.Provider(),
		"model", invoker.Model(),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}
