// Package hub downloads model repository snapshots from a Hugging Face
// compatible hub.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/nihongo/pkg/logger"
	"github.com/papercomputeco/nihongo/pkg/utils"
)

const (
	DefaultEndpoint = "https://huggingface.co"
	DefaultRevision = "main"

	defaultConcurrency = 4
	maxErrorBody       = 256
)

// Config configures a Client.
type Config struct {
	// Endpoint is the hub base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Token is sent as a bearer token when set.
	Token string

	// Revision is the branch, tag or commit to snapshot. Defaults to "main".
	Revision string

	// Concurrency bounds parallel file downloads within one snapshot.
	Concurrency uint

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client lists and downloads repository files. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	endpoint    string
	token       string
	revision    string
	concurrency int
	http        *http.Client
	logger      *slog.Logger
}

// NewClient creates a Client, filling unset Config fields with defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		token:       cfg.Token,
		revision:    cfg.Revision,
		concurrency: int(cfg.Concurrency),
		http:        cfg.HTTPClient,
		logger:      cfg.Logger,
	}

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.revision == "" {
		c.revision = DefaultRevision
	}
	if c.concurrency <= 0 {
		c.concurrency = defaultConcurrency
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return c
}

type modelInfo struct {
	Siblings []struct {
		RFilename string `json:"rfilename"`
	} `json:"siblings"`
}

// ListFiles returns every file path in the repository at the configured revision.
func (c *Client) ListFiles(ctx context.Context, repoID string) ([]string, error) {
	if err := ValidateRepoID(repoID); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/models/%s/revision/%s", c.endpoint, repoID, url.PathEscape(c.revision))

	resp, err := c.get(ctx, u)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s@%s: %w", ErrRepoNotFound, repoID, c.revision, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	var info modelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding model info: %w", err)
	}

	files := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		files = append(files, s.RFilename)
	}

	return files, nil
}

// Fetch downloads every file of repoID into dir, creating dir and any
// subdirectories as needed. Each file is streamed to "<name>.partial" and
// renamed once complete.
func (c *Client) Fetch(ctx context.Context, repoID, dir string) error {
	files, err := c.ListFiles(ctx, repoID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if !isSafePath(f) {
			return fmt.Errorf("%w: %q in %s", ErrUnsafePath, f, repoID)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	c.logger.Info("fetching snapshot",
		"repo", repoID,
		"revision", c.revision,
		"files", len(files),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, f := range files {
		g.Go(func() error {
			return c.downloadFile(gctx, repoID, f, dir)
		})
	}

	return g.Wait()
}

func (c *Client) downloadFile(ctx context.Context, repoID, file, dir string) error {
	u := fmt.Sprintf("%s/%s/resolve/%s/%s", c.endpoint, repoID, url.PathEscape(c.revision), escapePath(file))

	resp, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dest := filepath.Join(dir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", file, err)
	}

	partial := dest + ".partial"
	f, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partial)
		return fmt.Errorf("writing %s: %w", file, err)
	}

	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	c.logger.Debug("downloaded file",
		"repo", repoID,
		"file", file,
		"bytes", n,
	)

	return nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*4))
		return nil, &StatusError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	return resp, nil
}

// ValidateRepoID checks that id has the "owner/name" shape.
func ValidateRepoID(id string) error {
	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") ||
		owner == "." || owner == ".." || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidRepoID, id)
	}
	return nil
}

func isSafePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return false
	}
	clean := path.Clean(p)
	return clean == p && clean != ".." && !strings.HasPrefix(clean, "../")
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
