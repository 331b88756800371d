package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/llm"
	"github.com/papercomputeco/nihongo/pkg/provision"
	"github.com/papercomputeco/nihongo/pkg/translate"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranslateRequest is the body of POST /v1/translate.
type TranslateRequest struct {
	Query string `json:"query"`
}

// TranslateResponse is a completed translation.
type TranslateResponse struct {
	Query    string `json:"query"`
	Output   string `json:"output"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// PromptResponse holds the prompt that would be sent for a query.
type PromptResponse struct {
	Query  string `json:"query"`
	Prompt string `json:"prompt"`
}

// HistoryResponse lists recent translations, newest first.
type HistoryResponse struct {
	Entries []*history.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleTranslate translates the posted query.
func (s *Server) handleTranslate(c *fiber.Ctx) error {
	var req TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	res, err := s.translator.Translate(c.UserContext(), req.Query)
	if err != nil {
		if errors.Is(err, translate.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
		}

		var ie *llm.InferenceError
		if errors.As(err, &ie) {
			s.logger.Error("inference failed", "provider", ie.Provider, "status", ie.StatusCode, "error", ie.Err)
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "upstream inference failed"})
		}

		s.logger.Error("translation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	return c.JSON(TranslateResponse{
		Query:    res.Query,
		Output:   res.Output,
		Model:    res.Model,
		Provider: res.Provider,
	})
}

// handlePrompt returns the assembled prompt without calling the model.
func (s *Server) handlePrompt(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter is required"})
	}

	return c.JSON(PromptResponse{
		Query:  query,
		Prompt: s.translator.Prompt(query),
	})
}

// handleListHistory lists recent translations.
func (s *Server) handleListHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be between 1 and 500"})
	}

	entries, err := s.history.List(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list history"})
	}

	return c.JSON(HistoryResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// handleClearHistory deletes every recorded translation.
func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	if err := s.history.Clear(c.UserContext()); err != nil {
		s.logger.Error("failed to clear history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to clear history"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleListArtifacts reports whether each artifact is present locally.
func (s *Server) handleListArtifacts(c *fiber.Ctx) error {
	statuses, err := s.provisioner.StatusAll(s.artifacts)
	if err != nil {
		s.logger.Error("failed to stat artifacts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to read artifact status"})
	}
	return c.JSON(statuses)
}

// handlePullArtifact provisions a single artifact, a no-op when it is
// already present.
func (s *Server) handlePullArtifact(c *fiber.Ctx) error {
	name := c.Params("name")

	var artifact *provision.Artifact
	for i := range s.artifacts {
		if s.artifacts[i].Name == name {
			artifact = &s.artifacts[i]
			break
		}
	}
	if artifact == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "unknown artifact: " + name})
	}

	if err := s.provisioner.EnsureArtifact(c.UserContext(), *artifact); err != nil {
		var de *provision.DownloadError
		if errors.As(err, &de) {
			s.logger.Error("artifact download failed", "artifact", name, "attempts", de.Attempts, "error", de.Err)
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "artifact download failed"})
		}
		s.logger.Error("failed to provision artifact", "artifact", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to provision artifact"})
	}

	path := s.provisioner.Path(*artifact)
	return c.JSON(provision.ArtifactStatus{Artifact: *artifact, Path: path, Populated: true})
}
