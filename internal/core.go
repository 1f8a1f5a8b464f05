package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/gitsync"
	"github.com/starford/inkflow/internal/kv"
	"github.com/starford/inkflow/internal/persist"
	"github.com/starford/inkflow/internal/query"
	"github.com/starford/inkflow/internal/storage"
	"github.com/starford/inkflow/internal/store"
)

// Core is the note core assembled from a Config: one host, one adapter, and
// the store and facade built on top of it.
type Core struct {
	Config  *Config
	Logger  *slog.Logger
	Adapter *persist.Adapter
	Store   *store.Store
	Facade  *facade.Facade
	// Bridge is nil unless the file backend is selected.
	Bridge *gitsync.Bridge

	files   *persist.FileBackend
	closers []io.Closer
}

// NewLogger builds the JSON logger used by every entry point.
func NewLogger(cfg *Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Open selects the host for cfg and loads both collections.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{Config: cfg, Logger: logger}

	host, err := c.selectHost()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Adapter = persist.New(host, logger)
	c.Store = store.Open(ctx, c.Adapter, logger, store.WithEngine(query.New(cfg.App.Language())))
	c.Facade = facade.New(c.Adapter, logger)

	logger.Info("Note core ready",
		slog.String("backend", host.Backend.Name()),
		slog.Bool("sync", host.Bridge != nil),
		slog.Int("notes", len(c.Store.Notes())),
		slog.Int("notebooks", len(c.Store.Notebooks())))
	return c, nil
}

func (c *Core) selectHost() (*persist.Host, error) {
	sc := c.Config.Storage
	switch sc.Backend {
	case BackendMemory:
		return persist.NewHost(persist.NewMemoryBackend(), nil), nil
	case BackendKV:
		if err := os.MkdirAll(filepath.Dir(sc.KVPath), 0o755); err != nil {
			return nil, fmt.Errorf("create kv dir: %w", err)
		}
		db, err := kv.Open(sc.KVPath)
		if err != nil {
			return nil, fmt.Errorf("init kv: %w", err)
		}
		c.closers = append(c.closers, db)
		return persist.NewHost(db, nil), nil
	case BackendFile, "":
		files, err := storage.NewFS(sc.DataDir)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.files = persist.NewFileBackend(files)
		repo := c.Config.Git.RepoPath
		if repo == "" {
			repo = files.Root()
		}
		c.Bridge = gitsync.New(repo, c.Logger)
		return persist.NewHost(c.files, c.Bridge), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

// Files returns the file backend, or nil for the other backends.
func (c *Core) Files() *persist.FileBackend { return c.files }

// Close releases the backend.
func (c *Core) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}
