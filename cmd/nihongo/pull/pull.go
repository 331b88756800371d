// Package pullcmder provides the pull command for downloading the pretrained
// OCR and text-to-speech models.
package pullcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/nihongo/cmd/nihongo/wiring"
	"github.com/papercomputeco/nihongo/pkg/cliui"
	"github.com/papercomputeco/nihongo/pkg/config"
	"github.com/papercomputeco/nihongo/pkg/provision"
)

type pullCommander struct {
	flags config.FlagSet

	hubEndpoint  string
	revision     string
	concurrency  uint
	artifactRoot string
	attempts     uint
	list         bool

	out         io.Writer
	provisioner *provision.Provisioner
}

var pullFlags = []string{
	config.FlagHubEndpoint,
	config.FlagRevision,
	config.FlagConcurrency,
	config.FlagArtifactRoot,
	config.FlagAttempts,
}

const pullLongDesc string = `Download pretrained model snapshots from the model hub.

Each artifact is downloaded only when its local directory is missing or
empty; a populated directory is left untouched. Concurrent pulls of the
same artifact download it once.

Artifacts:
  manga-ocr   kha-white/manga-ocr-base  -> models/manga-ocr
  kokoro      hexgrad/Kokoro-82M        -> kokoro

A Hugging Face token is sent when stored with "nihongo auth huggingface"
or exported as HF_TOKEN.

Examples:
  nihongo pull                 Pull every artifact
  nihongo pull kokoro          Pull a single artifact
  nihongo pull --list          Show which artifacts are present`

const pullShortDesc string = "Download the OCR and speech models"

func NewPullCmd() *cobra.Command {
	cmder := &pullCommander{
		flags: config.DefaultFlags,
	}

	cmd := &cobra.Command{
		Use:   "pull [artifact...]",
		Short: pullShortDesc,
		Long:  pullLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := wiring.LoadConfig(cmd, pullFlags...)
			if err != nil {
				return err
			}

			artifacts, err := wiring.SelectArtifacts(args)
			if err != nil {
				return err
			}

			cmder.out = cmd.OutOrStdout()
			cmder.provisioner, err = wiring.NewProvisioner(cfg, wiring.ConfigDir(cmd), wiring.Logger(cmd))
			if err != nil {
				return err
			}

			if cmder.list {
				return cmder.runList(artifacts)
			}
			return cmder.run(cmd.Context(), artifacts)
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return provision.Names(), cobra.ShellCompDirectiveNoFileComp
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagHubEndpoint, &cmder.hubEndpoint)
	config.AddStringFlag(cmd, cmder.flags, config.FlagRevision, &cmder.revision)
	config.AddUintFlag(cmd, cmder.flags, config.FlagConcurrency, &cmder.concurrency)
	config.AddStringFlag(cmd, cmder.flags, config.FlagArtifactRoot, &cmder.artifactRoot)
	config.AddUintFlag(cmd, cmder.flags, config.FlagAttempts, &cmder.attempts)
	cmd.Flags().BoolVar(&cmder.list, "list", false, "Show artifact status without downloading")

	return cmd
}

func (c *pullCommander) run(ctx context.Context, artifacts []provision.Artifact) error {
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Pulling artifacts"))

	var failed []string
	for _, a := range artifacts {
		path := c.provisioner.Path(a)

		present, err := c.provisioner.Status(path)
		if err != nil {
			return err
		}
		if present {
			fmt.Fprintf(c.out, "  %s %s %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(a.Name),
				cliui.DimStyle.Render("already present at "+path),
			)
			continue
		}

		msg := fmt.Sprintf("%s %s", cliui.NameStyle.Render(a.Name), cliui.DimStyle.Render(a.RepoID+" -> "+path))
		err = cliui.Step(c.out, msg, func() error {
			return c.provisioner.EnsureArtifact(ctx, a)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			var de *provision.DownloadError
			if errors.As(err, &de) {
				fmt.Fprintf(c.out, "    %s\n", cliui.WarnStyle.Render(de.Err.Error()))
			} else {
				fmt.Fprintf(c.out, "    %s\n", cliui.WarnStyle.Render(err.Error()))
			}
			failed = append(failed, a.Name)
		}
	}

	var pullErr error
	if len(failed) > 0 {
		pullErr = fmt.Errorf("failed to pull: %s", strings.Join(failed, ", "))
	}

	fmt.Fprintf(c.out, "\n  %s %d of %d artifacts ready\n\n",
		cliui.Mark(pullErr),
		len(artifacts)-len(failed),
		len(artifacts),
	)

	return pullErr
}

func (c *pullCommander) runList(artifacts []provision.Artifact) error {
	statuses, err := c.provisioner.StatusAll(artifacts)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Artifacts"))
	for _, s := range statuses {
		mark := cliui.DimStyle.Render("○")
		state := "missing"
		if s.Populated {
			mark = cliui.SuccessMark
			state = "present"
		}
		fmt.Fprintf(c.out, "  %s  %-10s %s  %s\n",
			mark,
			s.Name,
			cliui.DimStyle.Render(s.RepoID),
			cliui.ValueStyle.Render(state+" "+s.Path),
		)
	}
	fmt.Fprintln(c.out)

	return nil
}
