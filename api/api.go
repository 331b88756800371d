package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/provision"
	"github.com/papercomputeco/nihongo/pkg/translate"
)

// Server is the API server for translating phrases and inspecting history
// and provisioned artifacts.
type Server struct {
	config      Config
	translator  *translate.Translator
	history     history.Driver
	provisioner *provision.Provisioner
	artifacts   []provision.Artifact
	mcpHandler  http.Handler
	logger      *slog.Logger
	app         *fiber.App
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithHistory enables the history endpoints.
func WithHistory(d history.Driver) Option {
	return func(s *Server) {
		s.history = d
	}
}

// WithProvisioner enables the artifact endpoints for the given artifacts.
func WithProvisioner(p *provision.Provisioner, artifacts []provision.Artifact) Option {
	return func(s *Server) {
		s.provisioner = p
		s.artifacts = artifacts
	}
}

// WithMCP mounts an MCP handler at /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcpHandler = h
	}
}

// NewServer creates a new API server.
func NewServer(config Config, translator *translate.Translator, logger *slog.Logger, opts ...Option) (*Server, error) {
	if translator == nil {
		return nil, errors.New("translator is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:     config,
		translator: translator,
		logger:     logger,
		app:        app,
	}

	for _, opt := range opts {
		opt(s)
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/translate", s.handleTranslate)
	app.Get("/v1/prompt", s.handlePrompt)

	if s.history != nil {
		app.Get("/v1/history", s.handleListHistory)
		app.Delete("/v1/history", s.handleClearHistory)
	}

	if s.provisioner != nil {
		app.Get("/v1/artifacts", s.handleListArtifacts)
		app.Post("/v1/artifacts/:name", s.handlePullArtifact)
	}

	if s.mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(s.mcpHandler))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
