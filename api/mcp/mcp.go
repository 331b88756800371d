// Package mcp provides an MCP (Model Context Protocol) server exposing the
// translator as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/translate"
	"github.com/papercomputeco/nihongo/pkg/utils"
)

type Config struct {
	// Translator serves the translate and build_prompt tools
	Translator *translate.Translator

	// History enables the recent_translations tool (optional)
	History history.Driver

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the translation tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "nihongo",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Translator == nil {
			return nil, errors.New("translator is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        translateToolName,
			Description: translateDescription,
		}, s.handleTranslate)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        buildPromptToolName,
			Description: buildPromptDescription,
		}, s.handleBuildPrompt)

		if c.History != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        recentToolName,
				Description: recentDescription,
			}, s.handleRecent)
		}
	}

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
