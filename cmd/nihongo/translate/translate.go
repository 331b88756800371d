// Package translatecmder provides the translate command for turning English
// phrases into Japanese with a word by word breakdown.
package translatecmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/cmd/nihongo/wiring"
	"github.com/papercomputeco/nihongo/pkg/cliui"
	"github.com/papercomputeco/nihongo/pkg/config"
	"github.com/papercomputeco/nihongo/pkg/llm"
	"github.com/papercomputeco/nihongo/pkg/translate"
	"github.com/papercomputeco/nihongo/pkg/worker"
)

type translateCommander struct {
	flags config.FlagSet

	provider   string
	model      string
	baseURL    string
	timeout    string
	sqlitePath string
	postgres   string
	raw        bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	translator *translate.Translator
	logger     *slog.Logger
}

var translateFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagTimeout,
	config.FlagSQLite,
	config.FlagPostgres,
}

const translateLongDesc string = `Translate an English phrase into Japanese.

The reply starts with the Japanese translation, followed by each component
of the translation with its reading and meaning.

With a phrase as arguments the translation is printed once. Without
arguments an interactive session starts; enter one phrase per line and
"exit" or Ctrl-D to quit.

Completed translations are recorded in the history database unless
history.disabled is set.

Examples:
  nihongo translate Good Morning
  nihongo translate --provider openai "Where is the station?"
  nihongo translate --raw "Thank you" > out.txt
  nihongo translate`

const translateShortDesc string = "Translate English phrases into Japanese"

func NewTranslateCmd() *cobra.Command {
	cmder := &translateCommander{
		flags: config.DefaultFlags,
	}

	cmd := &cobra.Command{
		Use:   "translate [phrase...]",
		Short: translateShortDesc,
		Long:  translateLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := wiring.LoadConfig(cmd, translateFlags...)
			if err != nil {
				return err
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.logger = wiring.Logger(cmd)

			return cmder.run(cmd.Context(), cfg, wiring.ConfigDir(cmd), args)
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, cmder.flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, cmder.flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, cmder.flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, cmder.flags, config.FlagPostgres, &cmder.postgres)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the model output without markdown rendering")

	return cmd
}

func (c *translateCommander) run(ctx context.Context, cfg *config.Config, configDir string, args []string) error {
	// Fail on missing credentials before touching history or the network.
	invoker, err := wiring.NewInvoker(cfg, configDir, c.logger)
	if err != nil {
		var ce *llm.ConfigError
		if errors.As(err, &ce) && errors.Is(err, llm.ErrMissingAPIKey) {
			return fmt.Errorf("%w\n\nRun 'nihongo auth %s' or export the provider's API key", err, ce.Provider)
		}
		return err
	}

	opts := []translate.Option{translate.WithLogger(c.logger)}

	driver, err := wiring.NewHistory(ctx, cfg, configDir, c.logger)
	if err != nil {
		c.logger.Warn("history unavailable, translations will not be recorded", "error", err)
	} else {
		defer driver.Close()

		pool, err := worker.NewPool(&worker.Config{
			Driver: driver,
			Logger: c.logger,
		})
		if err != nil {
			return err
		}
		defer pool.Close()

		opts = append(opts, translate.WithRecorder(pool))
	}

	c.translator = translate.New(nil, invoker, opts...)

	if len(args) > 0 {
		return c.translateOnce(ctx, strings.Join(args, " "))
	}
	return c.interactive(ctx)
}

// translateOnce translates a single phrase. Any failure is returned so the
// process exits non-zero.
func (c *translateCommander) translateOnce(ctx context.Context, query string) error {
	res, err := c.translator.Translate(ctx, query)
	if err != nil {
		return err
	}
	return c.print(res)
}

// interactive reads one phrase per line until EOF, "exit" or cancellation.
// Inference failures are reported and the session continues.
func (c *translateCommander) interactive(ctx context.Context) error {
	lines, readErr := readLines(ctx, c.in)

	fmt.Fprintf(c.errOut, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("nihongo"),
		cliui.DimStyle.Render("Enter an English phrase. Type exit or press Ctrl-D to quit."),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(c.errOut, cliui.PromptStyle.Render("english> "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.errOut)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.errOut)
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			line = l
		}

		query := strings.TrimSpace(line)
		switch query {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		var res *translate.Result
		err := cliui.Step(c.errOut, "Translating", func() error {
			var err error
			res, err = c.translator.Translate(ctx, query)
			return err
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(c.errOut, "  %s %v\n\n", cliui.FailMark, describe(err))
			continue
		}

		if err := c.print(res); err != nil {
			return err
		}
	}
}

// readLines scans r on its own goroutine so a blocked read never holds up
// cancellation. readErr receives the scanner error once lines is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

func (c *translateCommander) print(res *translate.Result) error {
	if c.raw {
		_, err := fmt.Fprintln(c.out, res.Output)
		return err
	}

	rendered, err := cliui.RenderMarkdown(res.Output)
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
	}
	_, err = fmt.Fprint(c.out, rendered)
	return err
}

// describe shortens inference errors for the interactive prompt.
func describe(err error) string {
	var ie *llm.InferenceError
	if errors.As(err, &ie) && ie.IsAuth() {
		return fmt.Sprintf("%s rejected the API key (status %d)", ie.Provider, ie.StatusCode)
	}
	return err.Error()
}
