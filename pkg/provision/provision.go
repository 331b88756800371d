// Package provision makes sure model snapshots are present on local disk,
// fetching them from the hub only when their directory is missing or empty.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/papercomputeco/nihongo/pkg/logger"
)

const (
	defaultAttempts = 2
	lockRetryDelay  = 250 * time.Millisecond
	stagingPattern  = ".%s.partial-"
)

// Fetcher downloads the full snapshot of repoID into dir.
type Fetcher interface {
	Fetch(ctx context.Context, repoID, dir string) error
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, repoID, dir string) error

func (f FetcherFunc) Fetch(ctx context.Context, repoID, dir string) error {
	return f(ctx, repoID, dir)
}

// Provisioner performs check-then-fetch for artifact directories.
type Provisioner struct {
	fetcher  Fetcher
	root     string
	attempts int
	logger   *slog.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithRoot sets the directory relative artifact paths resolve against.
func WithRoot(root string) Option {
	return func(p *Provisioner) {
		p.root = root
	}
}

// WithAttempts sets how many times a fetch is tried before giving up.
func WithAttempts(n uint) Option {
	return func(p *Provisioner) {
		if n > 0 {
			p.attempts = int(n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = l
	}
}

// New creates a Provisioner that downloads through fetcher.
func New(fetcher Fetcher, opts ...Option) *Provisioner {
	p := &Provisioner{
		fetcher:  fetcher,
		root:     ".",
		attempts: defaultAttempts,
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Path returns the local directory for a.
func (p *Provisioner) Path(a Artifact) string {
	if filepath.IsAbs(a.Dir) {
		return a.Dir
	}
	return filepath.Join(p.root, a.Dir)
}

// Status reports whether localDir exists and holds at least one entry.
func (p *Provisioner) Status(localDir string) (bool, error) {
	info, err := os.Stat(localDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", localDir, err)
	}

	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s", ErrNotDirectory, localDir)
	}

	f, err := os.Open(localDir)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", localDir, err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", localDir, err)
	}

	return true, nil
}

// Ensure fetches remoteID into localDir unless localDir already holds files.
// Callers racing on the same localDir are serialized by "<localDir>.lock";
// whoever loses the race sees the populated directory and does nothing.
// The snapshot is assembled in a sibling staging directory and renamed into
// place, so localDir is never left partially filled.
func (p *Provisioner) Ensure(ctx context.Context, localDir, remoteID string) error {
	localDir = filepath.Clean(localDir)

	populated, err := p.Status(localDir)
	if err != nil {
		return err
	}
	if populated {
		p.logger.Info("model already present, skipping download", "dir", localDir)
		return nil
	}

	parent, base := filepath.Dir(localDir), filepath.Base(localDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", parent, err)
	}

	lock := flock.New(localDir + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking %s: %w", localDir, err)
	}
	if !locked {
		return fmt.Errorf("locking %s: lock not acquired", localDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("releasing lock", "dir", localDir, "error", err)
		}
	}()

	// Another process may have finished while we waited.
	populated, err = p.Status(localDir)
	if err != nil {
		return err
	}
	if populated {
		p.logger.Info("model provisioned by another process", "dir", localDir)
		return nil
	}

	p.removeStaleStaging(parent, base)

	p.logger.Info("downloading model", "repo", remoteID, "dir", localDir)

	var lastErr error
	attempt := 0
	for attempt < p.attempts {
		attempt++

		lastErr = p.fetchInto(ctx, parent, base, localDir, remoteID)
		if lastErr == nil {
			p.logger.Info("model downloaded", "repo", remoteID, "dir", localDir, "attempt", attempt)
			return nil
		}

		p.logger.Warn("download attempt failed",
			"repo", remoteID,
			"attempt", attempt,
			"of", p.attempts,
			"error", lastErr,
		)

		if ctx.Err() != nil {
			break
		}
	}

	return &DownloadError{
		RepoID:   remoteID,
		Dir:      localDir,
		Attempts: attempt,
		Err:      lastErr,
	}
}

func (p *Provisioner) fetchInto(ctx context.Context, parent, base, localDir, remoteID string) error {
	staging, err := os.MkdirTemp(parent, fmt.Sprintf(stagingPattern, base))
	if err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}

	if err := p.fetcher.Fetch(ctx, remoteID, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	populated, err := p.Status(staging)
	if err != nil {
		os.RemoveAll(staging)
		return err
	}
	if !populated {
		os.RemoveAll(staging)
		return fmt.Errorf("%w: %s", ErrEmptySnapshot, remoteID)
	}

	// An empty localDir left by an earlier run would block the rename.
	if err := os.Remove(localDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.RemoveAll(staging)
		return fmt.Errorf("clearing %s: %w", localDir, err)
	}

	if err := os.Rename(staging, localDir); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("installing snapshot: %w", err)
	}

	return nil
}

func (p *Provisioner) removeStaleStaging(parent, base string) {
	matches, err := filepath.Glob(filepath.Join(parent, fmt.Sprintf(stagingPattern, base)+"*"))
	if err != nil {
		return
	}

	for _, m := range matches {
		p.logger.Debug("removing stale staging dir", "path", m)
		if err := os.RemoveAll(m); err != nil {
			p.logger.Warn("removing stale staging dir", "path", m, "error", err)
		}
	}
}

// EnsureArtifact runs Ensure for a resolved against the provisioner root.
func (p *Provisioner) EnsureArtifact(ctx context.Context, a Artifact) error {
	return p.Ensure(ctx, p.Path(a), a.RepoID)
}

// EnsureAll provisions each artifact in order and stops at the first error.
func (p *Provisioner) EnsureAll(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := p.EnsureArtifact(ctx, a); err != nil {
			return fmt.Errorf("provisioning %s: %w", a.Name, err)
		}
	}
	return nil
}

// ArtifactStatus pairs an artifact with its on-disk state.
type ArtifactStatus struct {
	Artifact
	Path      string `json:"path"`
	Populated bool   `json:"populated"`
}

// StatusAll reports the state of each artifact.
func (p *Provisioner) StatusAll(artifacts []Artifact) ([]ArtifactStatus, error) {
	out := make([]ArtifactStatus, 0, len(artifacts))
	for _, a := range artifacts {
		path := p.Path(a)
		populated, err := p.Status(path)
		if err != nil {
			return nil, err
		}
		out = append(out, ArtifactStatus{Artifact: a, Path: path, Populated: populated})
	}
	return out, nil
}
