// Package gitsync implements the sync bridge by shelling out to git.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/inkflow/internal/checksum"
	"github.com/starford/inkflow/internal/persist"
)

const lockRetry = 10 * time.Millisecond

var _ persist.SyncBridge = (*Bridge)(nil)

// Bridge runs git commands in a repository. Invocations on the same
// repository are serialised across processes by a lock file.
type Bridge struct {
	repo   string
	logger *slog.Logger
	now    func() time.Time
}

// New returns a bridge whose default repository is repo.
func New(repo string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{repo: repo, logger: logger, now: time.Now}
}

// Repo returns the default repository path.
func (b *Bridge) Repo() string { return b.repo }

func (b *Bridge) resolve(repo string) (string, error) {
	if repo == "" {
		repo = b.repo
	}
	if repo == "" {
		return "", errors.New("gitsync: no repository configured")
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return "", fmt.Errorf("gitsync: resolve repo: %w", err)
	}
	return abs, nil
}

// Lock acquires the lock for repo, blocking until it is free or ctx ends.
func (b *Bridge) Lock(ctx context.Context, repo string) (func(), error) {
	path := lockPath(repo)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0o666)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("gitsync: acquire lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gitsync: acquire lock: %w", ctx.Err())
		case <-time.After(lockRetry):
		}
	}
}

// lockPath keeps the lock outside the work tree so add-all never stages it.
func lockPath(repo string) string {
	return filepath.Join(os.TempDir(), "inkflow-"+checksum.Sum([]byte(repo))[:16]+".lock")
}

// Run executes git with args in repo under the repository lock and returns
// the trimmed combined output.
func (b *Bridge) Run(ctx context.Context, repo string, args ...string) (string, error) {
	dir, err := b.resolve(repo)
	if err != nil {
		return "", err
	}
	unlock, err := b.Lock(ctx, dir)
	if err != nil {
		return "", err
	}
	defer unlock()
	return b.exec(ctx, dir, args...)
}

func (b *Bridge) exec(ctx context.Context, dir string, args ...string) (string, error) {
	b.logger.Debug("executing git", slog.Any("args", args), slog.String("dir", dir))

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return output, nil
}

// Init creates the repository directory and runs git init. Re-running is safe.
func (b *Bridge) Init(ctx context.Context, repo string) (string, error) {
	dir, err := b.resolve(repo)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("gitsync: create repo dir: %w", err)
	}
	return b.Run(ctx, dir, "init")
}

// Status returns the porcelain status of the repository.
func (b *Bridge) Status(ctx context.Context, repo string) (string, error) {
	return b.Run(ctx, repo, "status", "--porcelain")
}

// AddAll stages every change in the work tree.
func (b *Bridge) AddAll(ctx context.Context, repo string) (string, error) {
	return b.Run(ctx, repo, "add", "-A")
}

// Commit records staged changes. A blank message gets a timestamped default.
func (b *Bridge) Commit(ctx context.Context, repo, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Update notes " + b.now().UTC().Format(time.RFC3339)
	}
	return b.Run(ctx, repo, "commit", "-m", message)
}

// Push publishes local commits to the configured upstream.
func (b *Bridge) Push(ctx context.Context, repo string) (string, error) {
	return b.Run(ctx, repo, "push")
}

// Pull integrates upstream commits.
func (b *Bridge) Pull(ctx context.Context, repo string) (string, error) {
	return b.Run(ctx, repo, "pull")
}
