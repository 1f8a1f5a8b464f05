// Package store holds the live note and notebook collections for one process.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/mutate"
	"github.com/starford/inkflow/internal/persist"
	"github.com/starford/inkflow/internal/query"
)

// ChangeKind names what a mutation did.
type ChangeKind string

const (
	NoteCreated     ChangeKind = "note.created"
	NoteUpdated     ChangeKind = "note.updated"
	NoteDeleted     ChangeKind = "note.deleted"
	NotebookChanged ChangeKind = "notebook.changed"
	Reloaded        ChangeKind = "collection.reloaded"
)

// Change is delivered to the listener after every successful mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Store owns both collections. Mutations apply a pure function from package
// mutate, swap in the result, save through the adapter and then notify the
// listener. Save failures are logged by the adapter and never rolled back.
type Store struct {
	adapter *persist.Adapter
	engine  *query.Engine
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu        sync.RWMutex
	notes     []models.Note
	notebooks []models.Notebook
	listener  func(Change)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the mutation clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the note and notebook id generator.
func WithIDs(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithEngine sets the query engine used by Query.
func WithEngine(e *query.Engine) Option {
	return func(s *Store) { s.engine = e }
}

// Open loads both collections through adapter and returns a ready store.
func Open(ctx context.Context, adapter *persist.Adapter, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		adapter: adapter,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = query.New(language.Und)
	}
	s.notes = adapter.LoadNotes(ctx)
	s.notebooks = adapter.LoadNotebooks(ctx)
	return s
}

// OnChange registers fn as the single change listener. It runs outside the lock.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Reload replaces the collections with what the adapter currently holds.
// A collection whose stored document is absent or unreadable keeps its
// in-memory state and is never reseeded.
func (s *Store) Reload(ctx context.Context) {
	notes, notesOK := s.adapter.TryLoadNotes(ctx)
	notebooks, notebooksOK := s.adapter.TryLoadNotebooks(ctx)
	if !notesOK && !notebooksOK {
		s.logger.Warn("store: reload skipped, stored collections unreadable")
		return
	}
	s.mu.Lock()
	if notesOK {
		s.notes = notes
	} else {
		s.logger.Warn("store: kept in-memory notes, stored notes unreadable")
	}
	if notebooksOK {
		s.notebooks = notebooks
	} else {
		s.logger.Warn("store: kept in-memory notebooks, stored notebooks unreadable")
	}
	notes, notebooks = s.notes, s.notebooks
	listener := s.listener
	s.mu.Unlock()
	s.logger.Info("store: reloaded", slog.Int("notes", len(notes)), slog.Int("notebooks", len(notebooks)))
	if listener != nil {
		listener(Change{Kind: Reloaded})
	}
}

// Notes returns a copy of every note in stored order.
func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Notebooks returns a copy of every notebook.
func (s *Store) Notebooks() []models.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notebook(nil), s.notebooks...)
}

// Note returns note id.
func (s *Store) Note(id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := mutate.FindNote(s.notes, id)
	if !ok {
		return models.Note{}, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// Notebook returns notebook id.
func (s *Store) Notebook(id string) (models.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nb, ok := mutate.FindNotebook(s.notebooks, id)
	if !ok {
		return models.Notebook{}, fmt.Errorf("notebook %q: %w", id, apperr.ErrNotFound)
	}
	return nb, nil
}

// Query filters and sorts a snapshot of the notes.
func (s *Store) Query(f query.Filter, key models.SortKey) []models.Note {
	return s.engine.Apply(s.Notes(), f, key)
}

// CreateNote prepends an empty note in notebookID. An empty notebookID selects
// the default notebook and an empty status means none.
func (s *Store) CreateNote(ctx context.Context, notebookID string, status models.Status) (models.Note, error) {
	if status == "" {
		status = models.StatusNone
	}
	if !status.Valid() {
		return models.Note{}, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, status)
	}
	return s.createNote(ctx, notebookID, status, s.newID())
}

func (s *Store) createNote(ctx context.Context, notebookID string, status models.Status, id string) (models.Note, error) {
	if notebookID == "" {
		notebookID = models.DefaultNotebookID
	}
	var created models.Note
	err := s.updateNotes(ctx, NoteCreated, func(notes []models.Note, nbs []models.Notebook, now int64) ([]models.Note, string, error) {
		if err := requireNotebook(nbs, notebookID); err != nil {
			return nil, "", err
		}
		out, n := mutate.CreateNote(notes, notebookID, status, id, now)
		created = n
		return out, n.ID, nil
	})
	return created, err
}

// ImportNote prepends a note parsed from an uploaded markdown file.
func (s *Store) ImportNote(ctx context.Context, notebookID, content, filename string) (models.Note, error) {
	if notebookID == "" {
		notebookID = models.DefaultNotebookID
	}
	id := s.newID()
	var created models.Note
	err := s.updateNotes(ctx, NoteCreated, func(notes []models.Note, nbs []models.Notebook, now int64) ([]models.Note, string, error) {
		if err := requireNotebook(nbs, notebookID); err != nil {
			return nil, "", err
		}
		out, n := mutate.ImportNote(notes, notebookID, content, filename, id, now)
		created = n
		return out, n.ID, nil
	})
	return created, err
}

// UpdateContent replaces the body of note id.
func (s *Store) UpdateContent(ctx context.Context, id, content string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.UpdateContent(notes, id, content, now)
	})
}

// UpdateTitle renames note id.
func (s *Store) UpdateTitle(ctx context.Context, id, title string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.UpdateTitle(notes, id, title, now)
	})
}

// UpdateTags replaces the tags of note id.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.UpdateTags(notes, id, tags, now)
	})
}

// UpdateStatus sets the status of note id.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.UpdateStatus(notes, id, status, now)
	})
}

// MoveNote reassigns note id to an existing notebook.
func (s *Store) MoveNote(ctx context.Context, id, notebookID string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, nbs []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.MoveNote(notes, nbs, id, notebookID, now)
	})
}

// SetPinned pins or unpins note id.
func (s *Store) SetPinned(ctx context.Context, id string, pinned bool) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, _ int64) ([]models.Note, models.Note, error) {
		return mutate.SetPinned(notes, id, pinned)
	})
}

// AddTag appends tag to note id.
func (s *Store) AddTag(ctx context.Context, id, tag string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.AddTag(notes, id, tag, now)
	})
}

// RemoveTag drops tag from note id.
func (s *Store) RemoveTag(ctx context.Context, id, tag string) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, _ []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.RemoveTag(notes, id, tag, now)
	})
}

// Edit applies fn to note id as a single mutation with one updatedAt bump.
func (s *Store) Edit(ctx context.Context, id string, fn func(*models.Note) error) (models.Note, error) {
	return s.updateNote(ctx, func(notes []models.Note, nbs []models.Notebook, now int64) ([]models.Note, models.Note, error) {
		return mutate.Update(notes, id, now, func(n *models.Note) error {
			before := n.NotebookID
			if err := fn(n); err != nil {
				return err
			}
			if !n.Status.Valid() {
				return fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, n.Status)
			}
			if n.NotebookID != before {
				return requireNotebook(nbs, n.NotebookID)
			}
			return nil
		})
	})
}

// DeleteNote removes note id. Deleting a missing note is a no-op.
func (s *Store) DeleteNote(ctx context.Context, id string) bool {
	var existed bool
	err := s.updateNotes(ctx, NoteDeleted, func(notes []models.Note, _ []models.Notebook, _ int64) ([]models.Note, string, error) {
		out, ok := mutate.DeleteNote(notes, id)
		existed = ok
		if !ok {
			return nil, "", errNoChange
		}
		return out, id, nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		s.logger.Error("store: delete note failed", slog.String("id", id), slog.String("error", err.Error()))
	}
	return existed
}

// CreateNotebook adds a notebook with the next palette color.
func (s *Store) CreateNotebook(ctx context.Context, name string) (models.Notebook, error) {
	id := s.newID()
	var created models.Notebook
	err := s.updateNotebooks(ctx, func(nbs []models.Notebook, notes []models.Note) ([]models.Notebook, []models.Note, string, error) {
		out, nb, err := mutate.CreateNotebook(nbs, name, id)
		created = nb
		return out, nil, nb.ID, err
	})
	return created, err
}

// RenameNotebook renames notebook id.
func (s *Store) RenameNotebook(ctx context.Context, id, name string) (models.Notebook, error) {
	var renamed models.Notebook
	err := s.updateNotebooks(ctx, func(nbs []models.Notebook, notes []models.Note) ([]models.Notebook, []models.Note, string, error) {
		out, nb, err := mutate.RenameNotebook(nbs, id, name)
		renamed = nb
		return out, nil, id, err
	})
	return renamed, err
}

// DeleteNotebook removes notebook id and moves its notes to the default
// notebook, which itself cannot be deleted.
func (s *Store) DeleteNotebook(ctx context.Context, id string) error {
	return s.updateNotebooks(ctx, func(nbs []models.Notebook, notes []models.Note) ([]models.Notebook, []models.Note, string, error) {
		outNbs, outNotes, err := mutate.DeleteNotebook(nbs, notes, id, models.DefaultNotebookID)
		return outNbs, outNotes, id, err
	})
}

var errNoChange = errors.New("store: no change")

func requireNotebook(nbs []models.Notebook, id string) error {
	if _, ok := mutate.FindNotebook(nbs, id); !ok {
		return fmt.Errorf("notebook %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

type noteMutation func(notes []models.Note, notebooks []models.Notebook, now int64) ([]models.Note, models.Note, error)

func (s *Store) updateNote(ctx context.Context, fn noteMutation) (models.Note, error) {
	var updated models.Note
	err := s.updateNotes(ctx, NoteUpdated, func(notes []models.Note, nbs []models.Notebook, now int64) ([]models.Note, string, error) {
		out, n, err := fn(notes, nbs, now)
		updated = n
		return out, n.ID, err
	})
	return updated, err
}

func (s *Store) updateNotes(ctx context.Context, kind ChangeKind, fn func([]models.Note, []models.Notebook, int64) ([]models.Note, string, error)) error {
	s.mu.Lock()
	out, id, err := fn(s.notes, s.notebooks, models.Millis(s.now()))
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	s.notes = out
	s.adapter.SaveNotes(ctx, out)
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(Change{Kind: kind, ID: id})
	}
	return nil
}

func (s *Store) updateNotebooks(ctx context.Context, fn func([]models.Notebook, []models.Note) ([]models.Notebook, []models.Note, string, error)) error {
	s.mu.Lock()
	nbs, notes, id, err := fn(s.notebooks, s.notes)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.notebooks = nbs
	s.adapter.SaveNotebooks(ctx, nbs)
	if notes != nil {
		s.notes = notes
		s.adapter.SaveNotes(ctx, notes)
	}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(Change{Kind: NotebookChanged, ID: id})
	}
	return nil
}
