// Package prompt assembles the few-shot translation prompt sent to the model.
package prompt

import "strings"

const (
	// DefaultPrefix is the instruction block placed ahead of the examples.
	DefaultPrefix = `The following are translations of English phrases to Japanese, along with their meanings. Each response must follow this structure:
1. Provide the Japanese phrase.
2. Make sure to break down the Japanese sentence into its each components and explain their meanings only.

Here are some examples:`

	// DefaultSeparator sits between the prefix and every rendered example.
	DefaultSeparator = "\n\n"

	userLabel   = "User : "
	outputLabel = "Output : "
)

// FewShotTemplate renders a prefix, a list of worked examples and the user's
// query into a single completion prompt. A FewShotTemplate is immutable once
// built and safe for concurrent use.
type FewShotTemplate struct {
	Prefix    string
	Separator string
	Examples  []Example
}

// NewFewShotTemplate returns a template with its own copy of examples.
func NewFewShotTemplate(prefix string, examples []Example) *FewShotTemplate {
	return &FewShotTemplate{
		Prefix:    prefix,
		Separator: DefaultSeparator,
		Examples:  append([]Example(nil), examples...),
	}
}

// Default returns the template used by the CLI and API.
func Default() *FewShotTemplate {
	return NewFewShotTemplate(DefaultPrefix, DefaultExamples)
}

// Format renders the prompt for query. Query text is copied verbatim; no
// placeholder expansion happens after insertion.
func (t *FewShotTemplate) Format(query string) string {
	var b strings.Builder

	b.WriteString(t.Prefix)
	b.WriteString(t.Separator)

	for _, ex := range t.Examples {
		writeTurn(&b, ex.Query)
		b.WriteString(ex.Output)
		b.WriteString(t.Separator)
	}

	writeTurn(&b, query)

	return b.String()
}

func writeTurn(b *strings.Builder, query string) {
	b.WriteString(userLabel)
	b.WriteString(query)
	b.WriteString("\n")
	b.WriteString(outputLabel)
}

// Build renders query with the default template.
func Build(query string) string {
	return Default().Format(query)
}
