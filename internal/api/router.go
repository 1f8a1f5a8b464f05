package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(st *store.Store, f *facade.Facade, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(st, f)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Post("/import", h.ImportNote)
		r.Get("/{id}", h.GetNote)
		r.Patch("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
		r.Get("/{id}/export", h.ExportNote)
		r.Post("/{id}/tags", h.AddTag)
		r.Delete("/{id}/tags/{tag}", h.RemoveTag)
	})
	r.Get("/tags", h.Tags)

	r.Route("/notebooks", func(r chi.Router) {
		r.Get("/", h.ListNotebooks)
		r.Post("/", h.CreateNotebook)
		r.Put("/{id}", h.RenameNotebook)
		r.Delete("/{id}", h.DeleteNotebook)
	})

	r.Route("/sync", func(r chi.Router) {
		r.Get("/status", h.SyncStatus)
		r.Post("/add", h.syncVerb("sync add", f.AddAll))
		r.Post("/commit", h.SyncCommit)
		r.Post("/push", h.syncVerb("sync push", f.Push))
		r.Post("/pull", h.syncVerb("sync pull", f.Pull))
		r.Post("/export", h.syncVerb("sync export", f.ExportAsMarkdown))
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
