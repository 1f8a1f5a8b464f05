package facade

import (
	"context"
	"log/slog"

	"github.com/starford/inkflow/internal/persist"
)

func (f *Facade) bridge() (persist.SyncBridge, error) {
	return f.adapter.Host().SyncBridge()
}

func (f *Facade) passThrough(ctx context.Context, verb string, run func(persist.SyncBridge) (string, error)) (string, error) {
	b, err := f.bridge()
	if err != nil {
		return "", err
	}
	out, err := run(b)
	if err != nil {
		f.logger.Warn("facade: sync verb failed", slog.String("verb", verb), slog.String("error", err.Error()))
		return out, err
	}
	f.logger.Debug("facade: sync verb done", slog.String("verb", verb))
	return out, nil
}

// Status reports the working tree state of repo.
func (f *Facade) Status(ctx context.Context, repo string) (string, error) {
	return f.passThrough(ctx, "status", func(b persist.SyncBridge) (string, error) { return b.Status(ctx, repo) })
}

// AddAll stages every change in repo.
func (f *Facade) AddAll(ctx context.Context, repo string) (string, error) {
	return f.passThrough(ctx, "add", func(b persist.SyncBridge) (string, error) { return b.AddAll(ctx, repo) })
}

// Commit records the staged changes in repo.
func (f *Facade) Commit(ctx context.Context, repo, message string) (string, error) {
	return f.passThrough(ctx, "commit", func(b persist.SyncBridge) (string, error) { return b.Commit(ctx, repo, message) })
}

// Push publishes repo's commits.
func (f *Facade) Push(ctx context.Context, repo string) (string, error) {
	return f.passThrough(ctx, "push", func(b persist.SyncBridge) (string, error) { return b.Push(ctx, repo) })
}

// Pull fetches and integrates upstream commits into repo.
func (f *Facade) Pull(ctx context.Context, repo string) (string, error) {
	return f.passThrough(ctx, "pull", func(b persist.SyncBridge) (string, error) { return b.Pull(ctx, repo) })
}

// ExportAsMarkdown writes the stored collections into repo as markdown files.
func (f *Facade) ExportAsMarkdown(ctx context.Context, repo string) (string, error) {
	return f.passThrough(ctx, "export", func(b persist.SyncBridge) (string, error) {
		return b.ExportMarkdown(ctx, repo, f.adapter.LoadNotebooks(ctx), f.adapter.LoadNotes(ctx))
	})
}
