package api

import (
	"context"
	"net/http"
)

// Sync routes always act on the configured repository. Choosing another
// path is left to local callers (CLI and MCP over stdio).

// SyncStatus handles GET /api/sync/status.
//
//	@Summary		Git status of the notes repository
//	@Tags			sync
//	@Produce		json
//	@Success		200		{object}	SyncResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync/status [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	h.writeSync(w, r, "sync status", func(ctx context.Context) (string, error) {
		return h.facade.Status(ctx, "")
	})
}

// SyncCommit handles POST /api/sync/commit.
//
//	@Summary		Commit staged changes
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CommitRequest	false	"Commit message"
//	@Success		200		{object}	SyncResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync/commit [post]
func (h *Handler) SyncCommit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	h.writeSync(w, r, "sync commit", func(ctx context.Context) (string, error) {
		return h.facade.Commit(ctx, "", req.Message)
	})
}

// syncVerb builds a handler for a body-less POST sync verb.
func (h *Handler) syncVerb(op string, run func(ctx context.Context, repo string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeSync(w, r, op, func(ctx context.Context) (string, error) {
			return run(ctx, "")
		})
	}
}

func (h *Handler) writeSync(w http.ResponseWriter, r *http.Request, op string, run func(context.Context) (string, error)) {
	out, err := run(r.Context())
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Output: out})
}
