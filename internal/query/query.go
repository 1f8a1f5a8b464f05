// Package query filters, searches and orders note collections.
// Every function is pure: inputs are never modified.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/inkflow/internal/models"
)

// Filter narrows a note collection. Zero-valued fields are absent.
type Filter struct {
	NotebookID string
	Status     models.Status
	// Tag keeps notes carrying this exact tag.
	Tag    string
	Search string
}

// Engine orders titles with the collation rules of a language.
type Engine struct {
	lang language.Tag
}

// New returns an Engine collating titles for lang.
func New(lang language.Tag) *Engine {
	return &Engine{lang: lang}
}

var defaultEngine = New(language.Und)

// Apply filters notes and sorts the result with the root collation.
func Apply(notes []models.Note, f Filter, key models.SortKey) []models.Note {
	return defaultEngine.Apply(notes, f, key)
}

// Apply keeps the notes matching f and orders them by key.
// Filtering preserves input order; sorting is stable.
func (e *Engine) Apply(notes []models.Note, f Filter, key models.SortKey) []models.Note {
	out := ByStatus(ByNotebook(notes, f.NotebookID), f.Status)
	out = ByTag(out, f.Tag)
	out = Search(out, f.Search)
	return e.Sort(out, key)
}

// ByNotebook keeps notes in notebookID; an empty id keeps everything.
func ByNotebook(notes []models.Note, notebookID string) []models.Note {
	if notebookID == "" {
		return notes
	}
	return keep(notes, func(n models.Note) bool { return n.NotebookID == notebookID })
}

// ByStatus keeps notes with status; an empty status keeps everything.
func ByStatus(notes []models.Note, status models.Status) []models.Note {
	if status == "" {
		return notes
	}
	return keep(notes, func(n models.Note) bool { return n.Status == status })
}

// ByTag keeps notes tagged exactly tag; an empty tag keeps everything.
func ByTag(notes []models.Note, tag string) []models.Note {
	if tag == "" {
		return notes
	}
	return keep(notes, func(n models.Note) bool { return n.HasTag(tag) })
}

// Search returns notes whose title, content or any tag contains q, ignoring case.
// A blank query returns notes unchanged.
func Search(notes []models.Note, q string) []models.Note {
	if strings.TrimSpace(q) == "" {
		return notes
	}
	needle := strings.ToLower(q)
	return keep(notes, func(n models.Note) bool { return Matches(n, needle) })
}

// Matches reports whether n contains the already lower-cased needle.
func Matches(n models.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Sort returns a copy of notes ordered by key. Unknown keys fall back to SortUpdated.
func (e *Engine) Sort(notes []models.Note, key models.SortKey) []models.Note {
	out := append([]models.Note(nil), notes...)
	switch key {
	case models.SortCreated:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	case models.SortTitle:
		// collate.Collator is not safe for concurrent use.
		c := collate.New(e.lang)
		sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i].Title, out[j].Title) < 0 })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	}
	return out
}

// PinnedFirst moves pinned notes ahead of the rest without reordering either group.
func PinnedFirst(notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Pinned {
			out = append(out, n)
		}
	}
	for _, n := range notes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}

func keep(notes []models.Note, pred func(models.Note) bool) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}
