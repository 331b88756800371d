package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/nihongo/api/mcp"
	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/history/inmemory"
	"github.com/papercomputeco/nihongo/pkg/llm"
	nihongologger "github.com/papercomputeco/nihongo/pkg/logger"
	"github.com/papercomputeco/nihongo/pkg/prompt"
	"github.com/papercomputeco/nihongo/pkg/provision"
	"github.com/papercomputeco/nihongo/pkg/translate"
	testutils "github.com/papercomputeco/nihongo/pkg/utils/test"
)

func decode[T any](resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(body, &out)).To(Succeed())
	return out
}

var _ = Describe("Server", func() {
	var (
		server     *Server
		invoker    *testutils.MockInvoker
		driver     *inmemory.Driver
		fetcher    *testutils.MockFetcher
		root       string
		translator *translate.Translator
	)

	BeforeEach(func() {
		invoker = testutils.NewMockInvoker("おはようございます")
		driver = inmemory.NewDriver()
		fetcher = testutils.NewMockFetcher()
		root = GinkgoT().TempDir()
		translator = translate.New(nil, invoker, translate.WithModelInfo("groq", "test-model"))

		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, translator, nihongologger.Nop(),
			WithHistory(driver),
			WithProvisioner(provision.New(fetcher, provision.WithRoot(root)), provision.DefaultArtifacts()),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("requires a translator", func() {
			_, err := NewServer(Config{}, nil, nihongologger.Nop())
			Expect(err).To(MatchError(ContainSubstring("translator is required")))
		})

		It("requires a logger", func() {
			_, err := NewServer(Config{}, translator, nil)
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("does not register optional routes without collaborators", func() {
			bare, err := NewServer(Config{}, translator, nihongologger.Nop())
			Expect(err).NotTo(HaveOccurred())

			resp, err := bare.app.Test(httptest.NewRequest(http.MethodGet, "/v1/history", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			resp, err = bare.app.Test(httptest.NewRequest(http.MethodGet, "/v1/artifacts", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decode[string](resp)).To(Equal("pong"))
		})
	})

	Describe("POST /v1/translate", func() {
		post := func(body string) *http.Response {
			req := httptest.NewRequest(http.MethodPost, "/v1/translate", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		It("returns the translation with model info", func() {
			resp := post(`{"query":"Good Morning"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			out := decode[TranslateResponse](resp)
			Expect(out.Query).To(Equal("Good Morning"))
			Expect(out.Output).To(Equal("おはようございます"))
			Expect(out.Provider).To(Equal("groq"))
			Expect(out.Model).To(Equal("test-model"))
		})

		It("sends exactly one prompt built from the query", func() {
			post(`{"query":"Good Morning"}`)
			Expect(invoker.Prompts()).To(Equal([]string{prompt.Build("Good Morning")}))
		})

		It("rejects an empty query without calling the model", func() {
			resp := post(`{"query":"  "}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(decode[ErrorResponse](resp).Error).To(Equal("query is required"))
			Expect(invoker.Prompts()).To(BeEmpty())
		})

		It("rejects a malformed body", func() {
			resp := post(`{"query":`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("maps inference failures to 502", func() {
			invoker.Err = &llm.InferenceError{Provider: "groq", StatusCode: 401, Err: testutils.ErrMockInvoke}

			resp := post(`{"query":"Hello"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(decode[ErrorResponse](resp).Error).To(Equal("upstream inference failed"))
		})

		It("maps other failures to 500", func() {
			invoker.Err = testutils.ErrMockInvoke

			resp := post(`{"query":"Hello"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GET /v1/prompt", func() {
		It("returns the assembled prompt", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/prompt?query=Thank+you", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			out := decode[PromptResponse](resp)
			Expect(out.Prompt).To(Equal(prompt.Build("Thank you")))
			Expect(invoker.Prompts()).To(BeEmpty())
		})

		It("requires a query", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/prompt", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("history", func() {
		BeforeEach(func() {
			ctx := context.Background()
			for _, q := range []string{"one", "two", "three"} {
				Expect(driver.Append(ctx, &history.Entry{Query: q, Output: q})).To(Succeed())
			}
		})

		It("lists entries newest first", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/history?limit=2", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			out := decode[HistoryResponse](resp)
			Expect(out.Count).To(Equal(2))
			Expect(out.Entries[0].Query).To(Equal("three"))
			Expect(out.Entries[1].Query).To(Equal("two"))
		})

		It("rejects an out of range limit", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/history?limit=0", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("clears entries", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodDelete, "/v1/history", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			entries, err := driver.List(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("artifacts", func() {
		It("reports missing artifacts as unpopulated", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/artifacts", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			out := decode[[]provision.ArtifactStatus](resp)
			Expect(out).To(HaveLen(2))
			Expect(out[0].Name).To(Equal(provision.ArtifactMangaOCR))
			Expect(out[0].Populated).To(BeFalse())
			Expect(out[0].Path).To(Equal(filepath.Join(root, "models", "manga-ocr")))
		})

		It("pulls an artifact once", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/artifacts/kokoro", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decode[provision.ArtifactStatus](resp).Populated).To(BeTrue())
			Expect(filepath.Join(root, "kokoro", "config.json")).To(BeAnExistingFile())

			resp, err = server.app.Test(httptest.NewRequest(http.MethodPost, "/v1/artifacts/kokoro", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(fetcher.CallCount()).To(Equal(1))
		})

		It("returns 404 for unknown artifacts", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/v1/artifacts/whisper", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(fetcher.CallCount()).To(BeZero())
		})

		It("maps exhausted downloads to 502", func() {
			fetcher.FailTimes = 10

			resp, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/v1/artifacts/kokoro", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			_, statErr := os.Stat(filepath.Join(root, "kokoro"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Describe("/mcp", func() {
		It("mounts the MCP handler", func() {
			mcpServer, err := mcp.NewServer(mcp.Config{Translator: translator, Logger: nihongologger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			withMCP, err := NewServer(Config{}, translator, nihongologger.Nop(), WithMCP(mcpServer.Handler()))
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
				`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`,
			))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json, text/event-stream")

			resp, err := withMCP.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).NotTo(Equal(http.StatusNotFound))
		})
	})
})
