package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/mutate"
	"github.com/starford/inkflow/internal/query"
	"github.com/starford/inkflow/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	store  *store.Store
	facade *facade.Facade
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store, f *facade.Facade) *Handler {
	return &Handler{store: st, facade: f}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, pinned first
//	@Tags			notes
//	@Produce		json
//	@Param			notebook	query		string	false	"Notebook id"
//	@Param			status		query		string	false	"Status"	Enums(none, active, onHold, completed, dropped)
//	@Param			tag			query		string	false	"Exact tag"
//	@Param			q			query		string	false	"Case-insensitive search"
//	@Param			sort		query		string	false	"Sort key"	Enums(updated, created, title)
//	@Success		200			{object}	NoteListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status models.Status
	if raw := q.Get("status"); raw != "" {
		s, err := models.ParseStatus(raw)
		if err != nil {
			writeError(w, r, "list notes", err)
			return
		}
		status = s
	}
	key, err := models.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, r, "list notes", err)
		return
	}

	notes := h.store.Query(query.Filter{
		NotebookID: q.Get("notebook"),
		Status:     status,
		Tag:        q.Get("tag"),
		Search:     q.Get("q"),
	}, key)
	notes = query.PinnedFirst(notes)

	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Note(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create an empty note at the top of the list
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	false	"Target notebook and status"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	n, err := h.store.CreateNote(r.Context(), req.NotebookID, req.Status)
	if err != nil {
		writeError(w, r, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PATCH /api/notes/{id}.
//
//	@Summary		Partially update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	ctx := r.Context()
	var (
		n   models.Note
		err error
	)
	edits := req.Title.Set || req.Content.Set || req.Tags.Set || req.Status.Set || req.NotebookID.Set
	if edits {
		n, err = h.store.Edit(ctx, id, func(n *models.Note) error {
			if v, ok := req.Title.Get(); ok {
				n.Title = mutate.NormalizeTitle(v)
			}
			if v, ok := req.Content.Get(); ok {
				n.Content = v
			}
			if v, ok := req.Tags.Get(); ok {
				n.Tags = mutate.NormalizeTags(v)
			}
			if v, ok := req.Status.Get(); ok {
				n.Status = v
			}
			if v, ok := req.NotebookID.Get(); ok {
				n.NotebookID = v
			}
			return nil
		})
		if err != nil {
			writeError(w, r, "update note", err)
			return
		}
	}
	if v, ok := req.Pinned.Get(); ok {
		n, err = h.store.SetPinned(ctx, id, v)
		if err != nil {
			writeError(w, r, "update note", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteNote(r.Context(), chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportNote handles POST /api/notes/import.
//
//	@Summary		Create a note from a markdown file
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportNoteRequest	true	"File name and content"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/import [post]
func (h *Handler) ImportNote(w http.ResponseWriter, r *http.Request) {
	var req ImportNoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	n, err := h.store.ImportNote(r.Context(), req.NotebookID, req.Content, req.Filename)
	if err != nil {
		writeError(w, r, "import note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// ExportNote handles GET /api/notes/{id}/export.
//
//	@Summary		Download a note as markdown
//	@Tags			notes
//	@Produce		text/markdown
//	@Param			id	path	string	true	"Note id"
//	@Success		200	{string}	string	"Markdown file"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/export [get]
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Note(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "export note", err)
		return
	}
	exp := mutate.ExportNote(n)
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Content)
}

// Tags handles GET /api/tags.
//
//	@Summary		List tags with note counts
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagsResponse{Tags: query.Tags(h.store.Notes())})
}

// AddTag handles POST /api/notes/{id}/tags.
//
//	@Summary		Tag a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note id"
//	@Param			body	body		TagRequest	true	"Tag to add"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/tags [post]
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	n, err := h.store.AddTag(r.Context(), chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		writeError(w, r, "add tag", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// RemoveTag handles DELETE /api/notes/{id}/tags/{tag}.
//
//	@Summary		Untag a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Param			tag	path		string	true	"Tag to remove"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/tags/{tag} [delete]
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.RemoveTag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, r, "remove tag", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
