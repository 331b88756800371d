// Package translate turns an English phrase into a Japanese translation with a
// per-component breakdown by prompting a hosted model.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/llm"
	"github.com/papercomputeco/nihongo/pkg/logger"
	"github.com/papercomputeco/nihongo/pkg/prompt"
)

// ErrEmptyQuery is returned for blank input. No request is made.
var ErrEmptyQuery = errors.New("query is empty")

// Recorder receives completed translations. Implementations must not block.
type Recorder interface {
	Record(e *history.Entry)
}

// Result is a completed translation.
type Result struct {
	Query    string        `json:"query"`
	Output   string        `json:"output"`
	Provider string        `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Translator is stateless apart from its collaborators and is safe for
// concurrent use.
type Translator struct {
	template *prompt.FewShotTemplate
	invoker  llm.Invoker
	recorder Recorder
	provider string
	model    string
	logger   *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithRecorder records every successful translation.
func WithRecorder(r Recorder) Option {
	return func(t *Translator) {
		t.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// WithModelInfo overrides the provider and model reported in results.
func WithModelInfo(provider, model string) Option {
	return func(t *Translator) {
		t.provider = provider
		t.model = model
	}
}

type describer interface {
	Provider() string
	Model() string
}

// New creates a Translator. A nil template selects prompt.Default().
func New(template *prompt.FewShotTemplate, invoker llm.Invoker, opts ...Option) *Translator {
	if template == nil {
		template = prompt.Default()
	}

	t := &Translator{
		template: template,
		invoker:  invoker,
		logger:   logger.Nop(),
	}

	if d, ok := invoker.(describer); ok {
		t.provider = d.Provider()
		t.model = d.Model()
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Prompt returns the prompt Translate would send for query.
func (t *Translator) Prompt(query string) string {
	return t.template.Format(strings.TrimSpace(query))
}

// Translate sends exactly one inference request for query.
func (t *Translator) Translate(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	out, err := t.invoker.Invoke(ctx, t.template.Format(query))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	res := &Result{
		Query:    query,
		Output:   strings.TrimSpace(out),
		Provider: t.provider,
		Model:    t.model,
		Duration: elapsed,
	}

	t.logger.Debug("translated",
		"query", query,
		"provider", res.Provider,
		"duration", elapsed,
	)

	if t.recorder != nil {
		t.recorder.Record(&history.Entry{
			Query:    res.Query,
			Output:   res.Output,
			Provider: res.Provider,
			Model:    res.Model,
			Duration: res.Duration,
		})
	}

	return res, nil
}
