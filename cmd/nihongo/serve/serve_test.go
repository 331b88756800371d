package servecmder_test

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/papercomputeco/nihongo/cmd/nihongo/serve"
	"github.com/papercomputeco/nihongo/pkg/llm"
)

func freeAddr() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	addr := l.Addr().String()
	Expect(l.Close()).To(Succeed())
	return addr
}

var _ = Describe("NewServeCmd", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		GinkgoT().Setenv("GROQ_API_KEY", "")
		GinkgoT().Setenv("NIHONGO_SQLITE", "")
	})

	newCmd := func(ctx context.Context, args ...string) func() error {
		cmd := servecmder.NewServeCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .nihongo/ config directory")
		cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
		return func() error { return cmd.ExecuteContext(ctx) }
	}

	It("registers the shared flags", func() {
		cmd := servecmder.NewServeCmd()
		for _, name := range []string{"listen", "provider", "model", "sqlite", "postgres", "artifacts-root", "pull", "log-file"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("refuses to start without an API key", func() {
		err := newCmd(context.Background())()
		Expect(err).To(MatchError(llm.ErrMissingAPIKey))
	})

	It("fails to pull from an unreachable hub before serving", func() {
		err := newCmd(context.Background(),
			"--provider", "ollama",
			"--pull",
			"--hub-endpoint", "http://127.0.0.1:1",
			"--attempts", "1",
			"--artifacts-root", configDir,
		)()
		Expect(err).To(MatchError(ContainSubstring("provisioning manga-ocr")))
	})

	It("serves until the context is cancelled", func() {
		addr := freeAddr()
		logFile := filepath.Join(configDir, "serve.log")
		ctx, cancel := context.WithCancel(context.Background())
		DeferCleanup(cancel)

		done := make(chan error, 1)
		run := newCmd(ctx, "--provider", "ollama", "--listen", addr, "--log-file", logFile)
		go func() {
			defer GinkgoRecover()
			done <- run()
		}()

		Eventually(func() (int, error) {
			resp, err := http.Get("http://" + addr + "/ping")
			if err != nil {
				return 0, err
			}
			defer resp.Body.Close()
			return resp.StatusCode, nil
		}).WithTimeout(5 * time.Second).Should(Equal(http.StatusOK))

		cancel()
		Eventually(done).WithTimeout(5 * time.Second).Should(Receive(Not(HaveOccurred())))

		data, err := os.ReadFile(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"serving"`))
	})
})
