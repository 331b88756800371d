package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/nihongo/pkg/utils"
)

const maxErrorBody = 512

// postJSON sends body to url and decodes a 200 response into out. Every
// failure is returned as an *InferenceError for provider.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &InferenceError{Provider: provider, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &InferenceError{Provider: provider, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &InferenceError{Provider: provider, Err: fmt.Errorf("%s request: %w", provider, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &InferenceError{Provider: provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &InferenceError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(respBody)),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &InferenceError{Provider: provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return nil
}

// errorMessage pulls {"error":{"message":...}} or {"error":"..."} out of a
// provider error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return utils.Truncate(msg, maxErrorBody)
}

// --- OpenAI-compatible chat completions (OpenAI, Groq) ---

type chatCompletionsRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newChatCompletionsCaller(client *http.Client, provider, apiKey, model, baseURL string) callFunc {
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := chatCompletionsRequest{
			Model: model,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
		}

		var result chatCompletionsResponse
		if err := postJSON(ctx, client, provider, baseURL+"/v1/chat/completions", headers, reqBody, &result); err != nil {
			return "", err
		}

		if result.Error != nil {
			return "", &InferenceError{Provider: provider, StatusCode: http.StatusOK, Err: errors.New(result.Error.Message)}
		}

		if len(result.Choices) == 0 {
			return "", &InferenceError{Provider: provider, StatusCode: http.StatusOK, Err: errors.New("no choices returned")}
		}

		return result.Choices[0].Message.Content, nil
	}
}

// --- Anthropic messages ---

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(client *http.Client, apiKey, model, baseURL string) callFunc {
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}

	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := anthropicRequest{
			Model:     model,
			MaxTokens: 1024,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
		}

		var result anthropicResponse
		if err := postJSON(ctx, client, ProviderAnthropic, baseURL+"/v1/messages", headers, reqBody, &result); err != nil {
			return "", err
		}

		if result.Error != nil {
			return "", &InferenceError{Provider: ProviderAnthropic, StatusCode: http.StatusOK, Err: errors.New(result.Error.Message)}
		}

		var b strings.Builder
		for _, block := range result.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		if b.Len() == 0 {
			return "", &InferenceError{Provider: ProviderAnthropic, StatusCode: http.StatusOK, Err: errors.New("no content returned")}
		}

		return b.String(), nil
	}
}

// --- Ollama chat ---

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func newOllamaCaller(client *http.Client, model, baseURL string) callFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := ollamaChatRequest{
			Model: model,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
			Stream: false,
		}

		var result ollamaChatResponse
		if err := postJSON(ctx, client, ProviderOllama, baseURL+"/api/chat", nil, reqBody, &result); err != nil {
			return "", err
		}

		if result.Error != "" {
			return "", &InferenceError{Provider: ProviderOllama, StatusCode: http.StatusOK, Err: errors.New(result.Error)}
		}
		if result.Message.Content == "" {
			return "", &InferenceError{Provider: ProviderOllama, StatusCode: http.StatusOK, Err: errors.New("no content returned")}
		}

		return result.Message.Content, nil
	}
}
