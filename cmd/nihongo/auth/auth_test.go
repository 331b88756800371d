package authcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/nihongo/cmd/nihongo/auth"
	"github.com/papercomputeco/nihongo/pkg/credentials"
)

var _ = Describe("Auth Command", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	newCmd := func(out *bytes.Buffer, args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .nihongo/ config directory")
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd
	}

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [provider]"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("has --list and --remove flags", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing a key", func() {
		It("reads a piped key and stores it", func() {
			out := &bytes.Buffer{}
			cmd := newCmd(out, "groq", "--config-dir", tmpDir)
			cmd.SetIn(bytes.NewBufferString("gsk-test\n"))

			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("GROQ_API_KEY"))

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			key, err := mgr.GetKey("groq")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("gsk-test"))
		})

		It("stores a hub token", func() {
			cmd := newCmd(&bytes.Buffer{}, "huggingface", "--config-dir", tmpDir)
			cmd.SetIn(bytes.NewBufferString("hf_test\n"))
			Expect(cmd.Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.Resolve("huggingface")).To(Equal("hf_test"))
		})

		It("rejects an empty key", func() {
			cmd := newCmd(&bytes.Buffer{}, "groq", "--config-dir", tmpDir)
			cmd.SetIn(bytes.NewBufferString("   \n"))

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("API key cannot be empty")))
		})

		It("rejects missing input", func() {
			cmd := newCmd(&bytes.Buffer{}, "groq", "--config-dir", tmpDir)
			cmd.SetIn(bytes.NewBufferString(""))

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("no input received")))
		})
	})

	Describe("--list flag", func() {
		It("shows no credentials when none stored", func() {
			out := &bytes.Buffer{}
			Expect(newCmd(out, "--list", "--config-dir", tmpDir).Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No stored credentials"))
		})

		It("lists stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			out := &bytes.Buffer{}
			Expect(newCmd(out, "--list", "--config-dir", tmpDir).Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("openai"))
			Expect(out.String()).To(ContainSubstring("OPENAI_API_KEY"))
			Expect(out.String()).NotTo(ContainSubstring("sk-test"))
		})
	})

	Describe("--remove flag", func() {
		It("removes stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("groq", "gsk-test")).To(Succeed())

			Expect(newCmd(&bytes.Buffer{}, "--remove", "groq", "--config-dir", tmpDir).Execute()).To(Succeed())

			key, err := mgr.GetKey("groq")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("provider argument validation", func() {
		It("returns error when no provider given", func() {
			err := newCmd(&bytes.Buffer{}).Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("provider argument required"))
		})

		It("returns error for unsupported provider", func() {
			cmd := newCmd(&bytes.Buffer{}, "ollama", "--config-dir", tmpDir)
			cmd.SetIn(bytes.NewBufferString("sk-test\n"))

			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported provider"))
		})
	})

	Describe("shell completion", func() {
		It("provides provider name completions", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{}, "")
			Expect(completions).To(ConsistOf("groq", "openai", "anthropic", "huggingface"))
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})

		It("provides no completions after first arg", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{"groq"}, "")
			Expect(completions).To(BeNil())
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})
	})
})
