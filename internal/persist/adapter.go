package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
)

// Adapter is the only reader and writer of durable note state. Load never
// fails: absent or corrupt data is replaced by the seed collections. Save
// failures are logged and swallowed; in-memory state stays authoritative.
type Adapter struct {
	host   *Host
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the clock used to stamp seed notes.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New creates an Adapter over host.
func New(host *Host, logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{host: host, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Host returns the capabilities this adapter was built with.
func (a *Adapter) Host() *Host { return a.host }

// LoadNotes returns the stored notes, seeding them on first run.
func (a *Adapter) LoadNotes(ctx context.Context) []models.Note {
	notes := load(ctx, a, KeyNotes, func() []models.Note { return models.SeedNotes(a.now()) })
	for i := range notes {
		normalizeNote(&notes[i])
	}
	return notes
}

// TryLoadNotes returns the stored notes, or false when the document is absent
// or corrupt. Unlike LoadNotes it never seeds or writes.
func (a *Adapter) TryLoadNotes(ctx context.Context) ([]models.Note, bool) {
	notes, ok := tryLoad[models.Note](ctx, a, KeyNotes)
	for i := range notes {
		normalizeNote(&notes[i])
	}
	return notes, ok
}

// SaveNotes replaces the stored notes.
func (a *Adapter) SaveNotes(ctx context.Context, notes []models.Note) {
	save(ctx, a, KeyNotes, notes)
}

// LoadNotebooks returns the stored notebooks, seeding them on first run.
func (a *Adapter) LoadNotebooks(ctx context.Context) []models.Notebook {
	return load(ctx, a, KeyNotebooks, models.SeedNotebooks)
}

// TryLoadNotebooks is TryLoadNotes for the notebook collection.
func (a *Adapter) TryLoadNotebooks(ctx context.Context) ([]models.Notebook, bool) {
	return tryLoad[models.Notebook](ctx, a, KeyNotebooks)
}

// SaveNotebooks replaces the stored notebooks.
func (a *Adapter) SaveNotebooks(ctx context.Context, notebooks []models.Notebook) {
	save(ctx, a, KeyNotebooks, notebooks)
}

var errNullCollection = errors.New("stored collection is null")

// read decodes the stored collection under key without any fallback.
func read[T any](ctx context.Context, a *Adapter, key string) ([]T, error) {
	data, err := a.host.Backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNullCollection
	}
	return out, nil
}

func load[T any](ctx context.Context, a *Adapter, key string, seed func() []T) []T {
	log := a.logger.With(slog.String("key", key), slog.String("backend", a.host.Backend.Name()))

	out, err := read[T](ctx, a, key)
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return out
	case errors.Is(err, apperr.ErrNotFound):
		log.Info("persist: no stored collection, seeding defaults")
	case errors.Is(err, errNullCollection), errors.Is(err, apperr.ErrInvalidStatus),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		log.Warn("persist: stored collection is corrupt, reseeding", slog.String("error", err.Error()))
	default:
		log.Warn("persist: load failed, reseeding", slog.String("error", err.Error()))
	}

	defaults := seed()
	save(ctx, a, key, defaults)
	return defaults
}

// tryLoad is load without seeding: ok is false when the document is absent or
// unreadable, and nothing is written.
func tryLoad[T any](ctx context.Context, a *Adapter, key string) ([]T, bool) {
	out, err := read[T](ctx, a, key)
	if err != nil {
		a.logger.Warn("persist: stored collection unavailable",
			slog.String("key", key),
			slog.String("backend", a.host.Backend.Name()),
			slog.String("error", err.Error()))
		return nil, false
	}
	return out, true
}

func save[T any](ctx context.Context, a *Adapter, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		a.logger.Error("persist: encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := a.host.Backend.Put(ctx, key, data); err != nil {
		a.logger.Error("persist: save failed",
			slog.String("key", key),
			slog.String("backend", a.host.Backend.Name()),
			slog.String("error", err.Error()))
	}
}

// normalizeNote fills fields older documents may lack.
func normalizeNote(n *models.Note) {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.Status == "" {
		n.Status = models.StatusNone
	}
	if n.UpdatedAt < n.CreatedAt {
		n.UpdatedAt = n.CreatedAt
	}
}
