package hub_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/nihongo/pkg/hub"
)

// fakeHub serves a single repository with the given files.
func fakeHub(repoID string, files map[string]string, hits *atomic.Int32) *httptest.Server {
	listPath := "/api/models/" + repoID + "/revision/main"
	resolvePrefix := "/" + repoID + "/resolve/main/"

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		switch {
		case r.URL.Path == listPath:
			names := make([]string, 0, len(files))
			for name := range files {
				names = append(names, `{"rfilename":"`+name+`"}`)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"siblings":[` + strings.Join(names, ",") + `]}`))

		case strings.HasPrefix(r.URL.Path, resolvePrefix):
			body, ok := files[strings.TrimPrefix(r.URL.Path, resolvePrefix)]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(body))

		default:
			http.Error(w, `{"error":"Repository not found"}`, http.StatusNotFound)
		}
	}))
}

var _ = Describe("Client", func() {
	var (
		tmpDir string
		hits   atomic.Int32
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "hub-test-*")
		Expect(err).NotTo(HaveOccurred())
		hits.Store(0)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("lists repository files", func() {
		server := fakeHub("kha-white/manga-ocr-base", map[string]string{"config.json": "{}"}, &hits)
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL})
		files, err := c.ListFiles(context.Background(), "kha-white/manga-ocr-base")
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(ConsistOf("config.json"))
	})

	It("downloads every file including nested paths", func() {
		server := fakeHub("hexgrad/Kokoro-82M", map[string]string{
			"config.json":        `{"dim":512}`,
			"voices/af_bella.pt": "voice",
		}, &hits)
		defer server.Close()

		dir := filepath.Join(tmpDir, "kokoro")
		c := hub.NewClient(hub.Config{Endpoint: server.URL, Concurrency: 2})
		Expect(c.Fetch(context.Background(), "hexgrad/Kokoro-82M", dir)).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "config.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"dim":512}`))

		data, err = os.ReadFile(filepath.Join(dir, "voices", "af_bella.pt"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("voice"))

		partials, err := filepath.Glob(filepath.Join(dir, "*.partial"))
		Expect(err).NotTo(HaveOccurred())
		Expect(partials).To(BeEmpty())
	})

	It("sends the token as a bearer header", func() {
		var auth atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"siblings":[]}`))
		}))
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL, Token: "hf_secret"})
		_, err := c.ListFiles(context.Background(), "a/b")
		Expect(err).NotTo(HaveOccurred())
		Expect(auth.Load()).To(Equal("Bearer hf_secret"))
	})

	It("maps a missing repository to ErrRepoNotFound", func() {
		server := fakeHub("kha-white/manga-ocr-base", nil, &hits)
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL})
		err := c.Fetch(context.Background(), "nobody/nothing", filepath.Join(tmpDir, "x"))
		Expect(errors.Is(err, hub.ErrRepoNotFound)).To(BeTrue())

		var se *hub.StatusError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.StatusCode).To(Equal(http.StatusNotFound))

		_, statErr := os.Stat(filepath.Join(tmpDir, "x"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("returns a StatusError when a file download fails", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/models/a/b/revision/main" {
				_, _ = w.Write([]byte(`{"siblings":[{"rfilename":"weights.bin"}]}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL})
		err := c.Fetch(context.Background(), "a/b", tmpDir)

		var se *hub.StatusError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.StatusCode).To(Equal(http.StatusInternalServerError))
	})

	It("rejects listed files that escape the target directory", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"siblings":[{"rfilename":"../evil"}]}`))
		}))
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL})
		err := c.Fetch(context.Background(), "a/b", tmpDir)
		Expect(errors.Is(err, hub.ErrUnsafePath)).To(BeTrue())
	})

	It("rejects malformed repository ids without a request", func() {
		server := fakeHub("a/b", nil, &hits)
		defer server.Close()

		c := hub.NewClient(hub.Config{Endpoint: server.URL})
		for _, id := range []string{"", "noslash", "a/b/c", "/b", "a/", "../x"} {
			_, err := c.ListFiles(context.Background(), id)
			Expect(errors.Is(err, hub.ErrInvalidRepoID)).To(BeTrue(), id)
		}
		Expect(hits.Load()).To(BeZero())
	})
})
