// Package mutate implements the note and notebook mutations as pure functions.
// Every function returns a new slice and leaves its inputs untouched.
package mutate

import (
	"fmt"
	"strings"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
)

// CreateNote prepends an empty note to notes.
func CreateNote(notes []models.Note, notebookID string, status models.Status, id string, now int64) ([]models.Note, models.Note) {
	if status == "" {
		status = models.StatusNone
	}
	n := models.Note{
		ID:         id,
		NotebookID: notebookID,
		Tags:       []string{},
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	out := make([]models.Note, 0, len(notes)+1)
	out = append(out, n)
	out = append(out, notes...)
	return out, n.Clone()
}

// UpdateContent replaces the body of note id.
func UpdateContent(notes []models.Note, id, content string, now int64) ([]models.Note, models.Note, error) {
	return Update(notes, id, now, func(n *models.Note) error {
		n.Content = content
		return nil
	})
}

// UpdateTitle renames note id. A blank title becomes models.DefaultTitle.
func UpdateTitle(notes []models.Note, id, title string, now int64) ([]models.Note, models.Note, error) {
	return Update(notes, id, now, func(n *models.Note) error {
		n.Title = NormalizeTitle(title)
		return nil
	})
}

// UpdateTags replaces the tags of note id, dropping blanks and duplicates.
func UpdateTags(notes []models.Note, id string, tags []string, now int64) ([]models.Note, models.Note, error) {
	return Update(notes, id, now, func(n *models.Note) error {
		n.Tags = NormalizeTags(tags)
		return nil
	})
}

// UpdateStatus sets the status of note id.
func UpdateStatus(notes []models.Note, id string, status models.Status, now int64) ([]models.Note, models.Note, error) {
	if !status.Valid() {
		return notes, models.Note{}, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, status)
	}
	return Update(notes, id, now, func(n *models.Note) error {
		n.Status = status
		return nil
	})
}

// MoveNote reassigns note id to notebookID, which must exist in notebooks.
func MoveNote(notes []models.Note, notebooks []models.Notebook, id, notebookID string, now int64) ([]models.Note, models.Note, error) {
	if indexOfNotebook(notebooks, notebookID) < 0 {
		return notes, models.Note{}, fmt.Errorf("notebook %q: %w", notebookID, apperr.ErrNotFound)
	}
	return Update(notes, id, now, func(n *models.Note) error {
		n.NotebookID = notebookID
		return nil
	})
}

// SetPinned pins or unpins note id. Pinning is presentation state and leaves updatedAt alone.
func SetPinned(notes []models.Note, id string, pinned bool) ([]models.Note, models.Note, error) {
	i := indexOfNote(notes, id)
	if i < 0 {
		return notes, models.Note{}, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}
	out := cloneNotes(notes)
	out[i].Pinned = pinned
	return out, out[i].Clone(), nil
}

// Update applies fn to a copy of note id and refreshes its updatedAt.
// If fn fails the original slice is returned.
func Update(notes []models.Note, id string, now int64, fn func(*models.Note) error) ([]models.Note, models.Note, error) {
	i := indexOfNote(notes, id)
	if i < 0 {
		return notes, models.Note{}, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}
	out := cloneNotes(notes)
	if err := fn(&out[i]); err != nil {
		return notes, models.Note{}, err
	}
	out[i].UpdatedAt = Touch(out[i], now)
	return out, out[i].Clone(), nil
}

// DeleteNote removes note id and reports whether it existed.
func DeleteNote(notes []models.Note, id string) ([]models.Note, bool) {
	i := indexOfNote(notes, id)
	if i < 0 {
		return notes, false
	}
	out := make([]models.Note, 0, len(notes)-1)
	out = append(out, notes[:i]...)
	out = append(out, notes[i+1:]...)
	return cloneNotes(out), true
}

// Touch returns the updatedAt a mutation at now should record for n.
// The result never goes backwards and always moves past the previous value.
func Touch(n models.Note, now int64) int64 {
	next := now
	if next <= n.UpdatedAt {
		next = n.UpdatedAt + 1
	}
	if next < n.CreatedAt {
		next = n.CreatedAt
	}
	return next
}

// NormalizeTitle trims title and substitutes models.DefaultTitle when blank.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return models.DefaultTitle
	}
	return t
}

// NormalizeTags trims tags and drops blanks and repeats, keeping first occurrences.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// AddTag appends tag to note id unless it is already present.
func AddTag(notes []models.Note, id, tag string, now int64) ([]models.Note, models.Note, error) {
	return Update(notes, id, now, func(n *models.Note) error {
		n.Tags = NormalizeTags(append(n.Tags, tag))
		return nil
	})
}

// RemoveTag drops tag from note id.
func RemoveTag(notes []models.Note, id, tag string, now int64) ([]models.Note, models.Note, error) {
	return Update(notes, id, now, func(n *models.Note) error {
		kept := make([]string, 0, len(n.Tags))
		for _, t := range n.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		n.Tags = kept
		return nil
	})
}

// FindNote returns a copy of note id.
func FindNote(notes []models.Note, id string) (models.Note, bool) {
	i := indexOfNote(notes, id)
	if i < 0 {
		return models.Note{}, false
	}
	return notes[i].Clone(), true
}

func indexOfNote(notes []models.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneNotes(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
