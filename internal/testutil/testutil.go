// Package testutil provides shared test helpers for setting up data directories and adapters.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/inkflow/internal/persist"
	"github.com/starford/inkflow/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MemoryAdapter returns an adapter over a fresh in-memory backend. bridge may be nil.
func MemoryAdapter(t *testing.T, bridge persist.SyncBridge) *persist.Adapter {
	t.Helper()
	return persist.New(persist.NewHost(persist.NewMemoryBackend(), bridge), Logger())
}

// TestDataDir creates a temporary data directory with a file backend on top.
func TestDataDir(t *testing.T) (string, *persist.FileBackend) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return files.Root(), persist.NewFileBackend(files)
}
