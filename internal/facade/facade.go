// Package facade is the verb-level API for scripts and agents. Every call is an
// independent load, mutate, save cycle against the persistence adapter; two
// racing calls may lose one update.
package facade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/mutate"
	"github.com/starford/inkflow/internal/persist"
	"github.com/starford/inkflow/internal/query"
)

// IDPrefix namespaces ids of notes created through the facade.
const IDPrefix = "agent-"

// ListFilter narrows ListNotes. Zero fields match everything.
type ListFilter struct {
	NotebookID string
	Status     models.Status
	Keyword    string
}

// CreateSpec describes a note to create.
type CreateSpec struct {
	Title      string
	Body       string
	NotebookID string
	Status     models.Status
}

// Patch lists the fields UpdateNote may overwrite.
type Patch struct {
	Title  Opt[string]        `json:"title"`
	Body   Opt[string]        `json:"body"`
	Status Opt[models.Status] `json:"status"`
}

// Facade runs the verb contract over a persistence adapter.
type Facade struct {
	adapter *persist.Adapter
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Facade.
type Option func(*Facade)

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option { return func(f *Facade) { f.now = now } }

// WithIDs overrides the id generator. The IDPrefix is still applied.
func WithIDs(gen func() string) Option { return func(f *Facade) { f.newID = gen } }

// New returns a Facade over adapter.
func New(adapter *persist.Adapter, logger *slog.Logger, opts ...Option) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Facade{adapter: adapter, logger: logger, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ListNotes returns stored notes matching every set field of filter, in stored order.
func (f *Facade) ListNotes(ctx context.Context, filter ListFilter) ([]models.Note, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, filter.Status)
	}
	notes := f.adapter.LoadNotes(ctx)
	notes = query.ByNotebook(notes, filter.NotebookID)
	notes = query.ByStatus(notes, filter.Status)
	return query.Search(notes, filter.Keyword), nil
}

// GetNote returns note id or an error matching apperr.ErrNotFound.
func (f *Facade) GetNote(ctx context.Context, id string) (models.Note, error) {
	n, ok := mutate.FindNote(f.adapter.LoadNotes(ctx), id)
	if !ok {
		return models.Note{}, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// CreateNote stores a new note. Status defaults to active and the notebook to
// the default notebook.
func (f *Facade) CreateNote(ctx context.Context, spec CreateSpec) (models.Note, error) {
	status := spec.Status
	if status == "" {
		status = models.StatusActive
	}
	if !status.Valid() {
		return models.Note{}, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, status)
	}
	notebookID := strings.TrimSpace(spec.NotebookID)
	if notebookID == "" {
		notebookID = models.DefaultNotebookID
	}
	if _, ok := mutate.FindNotebook(f.adapter.LoadNotebooks(ctx), notebookID); !ok {
		return models.Note{}, fmt.Errorf("notebook %q: %w", notebookID, apperr.ErrNotFound)
	}

	now := models.Millis(f.now())
	notes, n := mutate.CreateNote(f.adapter.LoadNotes(ctx), notebookID, status, IDPrefix+f.newID(), now)
	notes[0].Title = mutate.NormalizeTitle(spec.Title)
	notes[0].Content = spec.Body
	n = notes[0].Clone()

	f.adapter.SaveNotes(ctx, notes)
	f.logger.Info("facade: note created", slog.String("id", n.ID), slog.String("notebook", notebookID))
	return n, nil
}

// UpdateNote overwrites the fields present in patch. A present but blank
// title is ignored; a present empty body clears the content.
func (f *Facade) UpdateNote(ctx context.Context, id string, patch Patch) (models.Note, error) {
	if s, ok := patch.Status.Get(); ok && !s.Valid() {
		return models.Note{}, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, s)
	}

	notes := f.adapter.LoadNotes(ctx)
	current, ok := mutate.FindNote(notes, id)
	if !ok {
		return models.Note{}, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}

	title, setTitle := patch.Title.Get()
	setTitle = setTitle && strings.TrimSpace(title) != ""
	body, setBody := patch.Body.Get()
	status, setStatus := patch.Status.Get()
	if !setTitle && !setBody && !setStatus {
		return current, nil
	}

	updated, n, err := mutate.Update(notes, id, models.Millis(f.now()), func(n *models.Note) error {
		if setTitle {
			n.Title = mutate.NormalizeTitle(title)
		}
		if setBody {
			n.Content = body
		}
		if setStatus {
			n.Status = status
		}
		return nil
	})
	if err != nil {
		return models.Note{}, err
	}
	f.adapter.SaveNotes(ctx, updated)
	return n, nil
}

// DeleteNote removes note id and reports whether it existed.
func (f *Facade) DeleteNote(ctx context.Context, id string) (bool, error) {
	notes, ok := mutate.DeleteNote(f.adapter.LoadNotes(ctx), id)
	if !ok {
		return false, nil
	}
	f.adapter.SaveNotes(ctx, notes)
	return true, nil
}

// ListNotebooks returns every notebook.
func (f *Facade) ListNotebooks(ctx context.Context) ([]models.Notebook, error) {
	return f.adapter.LoadNotebooks(ctx), nil
}
