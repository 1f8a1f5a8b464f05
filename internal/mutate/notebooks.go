package mutate

import (
	"fmt"
	"strings"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/models"
)

// CreateNotebook appends a notebook named name with the next palette color.
func CreateNotebook(notebooks []models.Notebook, name, id string) ([]models.Notebook, models.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return notebooks, models.Notebook{}, apperr.ErrBlankName
	}
	nb := models.Notebook{
		ID:    id,
		Name:  name,
		Color: models.PaletteColor(len(notebooks)),
	}
	out := make([]models.Notebook, 0, len(notebooks)+1)
	out = append(out, notebooks...)
	out = append(out, nb)
	return out, nb, nil
}

// RenameNotebook sets the name of notebook id.
func RenameNotebook(notebooks []models.Notebook, id, name string) ([]models.Notebook, models.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return notebooks, models.Notebook{}, apperr.ErrBlankName
	}
	i := indexOfNotebook(notebooks, id)
	if i < 0 {
		return notebooks, models.Notebook{}, fmt.Errorf("notebook %q: %w", id, apperr.ErrNotFound)
	}
	out := append([]models.Notebook(nil), notebooks...)
	out[i].Name = name
	return out, out[i], nil
}

// DeleteNotebook removes notebook id and moves its notes to defaultID.
// No note is ever removed. A missing id, or id == defaultID, leaves both
// collections as they are.
func DeleteNotebook(notebooks []models.Notebook, notes []models.Note, id, defaultID string) ([]models.Notebook, []models.Note, error) {
	if id == defaultID {
		return notebooks, notes, fmt.Errorf("notebook %q: %w", id, apperr.ErrDefaultNotebook)
	}
	i := indexOfNotebook(notebooks, id)
	if i < 0 {
		return notebooks, notes, fmt.Errorf("notebook %q: %w", id, apperr.ErrNotFound)
	}
	nbs := make([]models.Notebook, 0, len(notebooks)-1)
	nbs = append(nbs, notebooks[:i]...)
	nbs = append(nbs, notebooks[i+1:]...)

	moved := cloneNotes(notes)
	for j := range moved {
		if moved[j].NotebookID == id {
			moved[j].NotebookID = defaultID
		}
	}
	return nbs, moved, nil
}

// FindNotebook returns notebook id.
func FindNotebook(notebooks []models.Notebook, id string) (models.Notebook, bool) {
	i := indexOfNotebook(notebooks, id)
	if i < 0 {
		return models.Notebook{}, false
	}
	return notebooks[i], true
}

func indexOfNotebook(notebooks []models.Notebook, id string) int {
	for i := range notebooks {
		if notebooks[i].ID == id {
			return i
		}
	}
	return -1
}
