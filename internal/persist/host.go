// Package persist loads and saves the note and notebook collections through
// the storage backend chosen for this host.
package persist

import (
	"context"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
)

// Logical keys of the two persisted collections.
const (
	KeyNotes     = "inkflow_notes"
	KeyNotebooks = "inkflow_notebooks"
)

// Backend is a durable key-value store. Get on a missing key returns an error
// matching apperr.ErrNotFound.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// SyncBridge runs version-control and export operations on a repository.
// An empty repo selects the bridge's configured repository.
type SyncBridge interface {
	Status(ctx context.Context, repo string) (string, error)
	AddAll(ctx context.Context, repo string) (string, error)
	Commit(ctx context.Context, repo, message string) (string, error)
	Push(ctx context.Context, repo string) (string, error)
	Pull(ctx context.Context, repo string) (string, error)
	ExportMarkdown(ctx context.Context, repo string, notebooks []models.Notebook, notes []models.Note) (string, error)
}

// Host is the capability set available to this process. It is chosen once at
// startup; Bridge is nil when the host offers only key-value storage.
type Host struct {
	Backend Backend
	Bridge  SyncBridge
}

// NewHost bundles a backend and an optional sync bridge.
func NewHost(backend Backend, bridge SyncBridge) *Host {
	return &Host{Backend: backend, Bridge: bridge}
}

// SyncBridge returns the bridge or apperr.ErrHostUnsupported.
func (h *Host) SyncBridge() (SyncBridge, error) {
	if h == nil || h.Bridge == nil {
		return nil, apperr.ErrHostUnsupported
	}
	return h.Bridge, nil
}
