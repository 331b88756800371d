package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/translate"
)

var (
	translateToolName    = "translate"
	translateDescription = "Translate an English phrase into Japanese. Returns the translation followed by a breakdown of each component with its reading and meaning."

	buildPromptToolName    = "build_prompt"
	buildPromptDescription = "Build the few-shot prompt that would be sent to the model for an English phrase, without calling the model."

	recentToolName    = "recent_translations"
	recentDescription = "List recent translations, newest first."

	defaultRecentLimit = 10
)

// TranslateInput represents the input arguments for the translate tool.
type TranslateInput struct {
	Query string `json:"query" jsonschema:"the English phrase to translate"`
}

// TranslateOutput represents the output of the translate tool.
type TranslateOutput struct {
	Query    string `json:"query"`
	Output   string `json:"output"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// BuildPromptInput represents the input arguments for the build_prompt tool.
type BuildPromptInput struct {
	Query string `json:"query" jsonschema:"the English phrase to build a prompt for"`
}

// BuildPromptOutput represents the output of the build_prompt tool.
type BuildPromptOutput struct {
	Prompt string `json:"prompt"`
}

// RecentInput represents the input arguments for the recent_translations tool.
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of translations to return (default: 10)"`
}

// RecentTranslation is a single recorded translation.
type RecentTranslation struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	Output     string `json:"output"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// RecentOutput represents the output of the recent_translations tool.
type RecentOutput struct {
	Translations []RecentTranslation `json:"translations"`
	Count        int                 `json:"count"`
}

func recentTranslation(e *history.Entry) RecentTranslation {
	return RecentTranslation{
		ID:         e.ID,
		Query:      e.Query,
		Output:     e.Output,
		Provider:   e.Provider,
		Model:      e.Model,
		DurationMs: e.Duration.Milliseconds(),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleTranslate(ctx context.Context, _ *mcp.CallToolRequest, input TranslateInput) (*mcp.CallToolResult, TranslateOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP translate request", "query", input.Query)

	res, err := s.config.Translator.Translate(ctx, input.Query)
	if err != nil {
		if errors.Is(err, translate.ErrEmptyQuery) {
			return errorResult("Query must not be empty"), TranslateOutput{}, nil
		}
		logger.Error("translation failed", "error", err)
		return errorResult("Translation failed: %v", err), TranslateOutput{}, nil
	}

	output := TranslateOutput{
		Query:    res.Query,
		Output:   res.Output,
		Provider: res.Provider,
		Model:    res.Model,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: res.Output},
		},
	}, output, nil
}

func (s *Server) handleBuildPrompt(_ context.Context, _ *mcp.CallToolRequest, input BuildPromptInput) (*mcp.CallToolResult, BuildPromptOutput, error) {
	output := BuildPromptOutput{Prompt: s.config.Translator.Prompt(input.Query)}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Prompt},
		},
	}, output, nil
}

func (s *Server) handleRecent(ctx context.Context, _ *mcp.CallToolRequest, input RecentInput) (*mcp.CallToolResult, RecentOutput, error) {
	logger := s.config.Logger

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	entries, err := s.config.History.List(ctx, limit)
	if err != nil {
		logger.Error("failed to list history", "error", err)
		return errorResult("Failed to list translations: %v", err), RecentOutput{}, nil
	}

	output := RecentOutput{
		Translations: make([]RecentTranslation, 0, len(entries)),
	}
	for _, e := range entries {
		output.Translations = append(output.Translations, recentTranslation(e))
	}
	output.Count = len(output.Translations)

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), RecentOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
