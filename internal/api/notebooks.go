package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkflow/internal/models"
)

// ListNotebooks handles GET /api/notebooks.
//
//	@Summary		List notebooks
//	@Tags			notebooks
//	@Produce		json
//	@Success		200	{array}	models.Notebook
//	@Security		BearerAuth
//	@Router			/notebooks [get]
func (h *Handler) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Notebooks())
}

// CreateNotebook handles POST /api/notebooks.
//
//	@Summary		Create a notebook
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NotebookRequest	true	"Notebook name"
//	@Success		201		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks [post]
func (h *Handler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req NotebookRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	nb, err := h.store.CreateNotebook(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, "create notebook", err)
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

// RenameNotebook handles PUT /api/notebooks/{id}.
//
//	@Summary		Rename a notebook
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Notebook id"
//	@Param			body	body		NotebookRequest	true	"New name"
//	@Success		200		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [put]
func (h *Handler) RenameNotebook(w http.ResponseWriter, r *http.Request) {
	var req NotebookRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	nb, err := h.store.RenameNotebook(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, "rename notebook", err)
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// DeleteNotebook handles DELETE /api/notebooks/{id}. Its notes move to the
// default notebook. The seed notebooks cannot be deleted.
//
//	@Summary		Delete a notebook
//	@Tags			notebooks
//	@Param			id	path	string	true	"Notebook id"
//	@Success		204	"Notebook deleted"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [delete]
func (h *Handler) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if models.IsSeedNotebook(id) {
		writeJSON(w, http.StatusConflict, errorBody("built-in notebooks cannot be deleted"))
		return
	}
	if err := h.store.DeleteNotebook(r.Context(), id); err != nil {
		writeError(w, r, "delete notebook", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
