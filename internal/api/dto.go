package api

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/query"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	NotebookID string        `json:"notebookId" example:"1"`
	Status     models.Status `json:"status" example:"none"`
}

// Validate checks the optional status.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.By(validStatus)),
	)
}

// UpdateNoteRequest is a partial update. Omitted fields are untouched.
type UpdateNoteRequest struct {
	Title      facade.Opt[string]        `json:"title"`
	Content    facade.Opt[string]        `json:"content"`
	Tags       facade.Opt[[]string]      `json:"tags"`
	Status     facade.Opt[models.Status] `json:"status"`
	Pinned     facade.Opt[bool]          `json:"pinned"`
	NotebookID facade.Opt[string]        `json:"notebookId"`
}

// Validate rejects a patch that sets nothing, moves a note to a blank notebook
// or carries a missing status, including an explicit null.
func (r UpdateNoteRequest) Validate() error {
	if !r.Title.Set && !r.Content.Set && !r.Tags.Set && !r.Status.Set && !r.Pinned.Set && !r.NotebookID.Set {
		return fmt.Errorf("at least one field is required")
	}
	if r.NotebookID.Set && strings.TrimSpace(r.NotebookID.Value) == "" {
		return fmt.Errorf("notebookId: cannot be blank")
	}
	if r.Status.Set && !r.Status.Value.Valid() {
		return fmt.Errorf("status: must be one of none, active, onHold, completed, dropped")
	}
	return nil
}

// ImportNoteRequest carries a markdown file to turn into a note.
type ImportNoteRequest struct {
	Filename   string `json:"filename" example:"Trip Plan.md"`
	Content    string `json:"content" example:"# Hi"`
	NotebookID string `json:"notebookId" example:"1"`
}

// Validate checks the import request.
func (r ImportNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename, validation.Length(0, 255)),
	)
}

// NotebookRequest is the body for creating or renaming a notebook.
type NotebookRequest struct {
	Name string `json:"name" example:"Travel"`
}

// Validate requires a non-blank name.
func (r NotebookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank), validation.Length(1, 120)),
	)
}

// TagRequest is the body of POST /notes/{id}/tags.
type TagRequest struct {
	Tag string `json:"tag" example:"Travel"`
}

// Validate requires a non-blank tag.
func (r TagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag, validation.Required, validation.By(notBlank), validation.Length(1, 120)),
	)
}

// CommitRequest is the body of POST /sync/commit.
type CommitRequest struct {
	Message string `json:"message" example:"Weekly notes"`
}

// Validate bounds the commit message.
func (r CommitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Length(0, 2000)),
	)
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// TagsResponse lists every tag with its note count.
type TagsResponse struct {
	Tags []query.TagCount `json:"tags" validate:"required"`
}

// SyncResponse carries the raw output of a sync verb.
type SyncResponse struct {
	Output string `json:"output"`
}

func validStatus(v any) error {
	s, _ := v.(models.Status)
	if s == "" || s.Valid() {
		return nil
	}
	return fmt.Errorf("must be one of none, active, onHold, completed, dropped")
}

func notBlank(v any) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}
