package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/persist"
	"github.com/starford/inkflow/internal/store"
	"github.com/starford/inkflow/internal/testutil"
)

// testEnv builds a store over an in-memory backend and a router in front of it.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*store.Store, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*store.Store, http.Handler) {
	t.Helper()
	return testEnvBridge(t, authEnabled, authToken, sseHandler, nil)
}

func testEnvBridge(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler, bridge persist.SyncBridge) (*store.Store, http.Handler) {
	t.Helper()
	logger := testutil.Logger()
	adapter := testutil.MemoryAdapter(t, bridge)
	st := store.Open(context.Background(), adapter, logger)
	router := NewRouter(st, facade.New(adapter, logger), authEnabled, authToken, sseHandler)
	return st, router
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeNote(t *testing.T, w *httptest.ResponseRecorder) models.Note {
	t.Helper()
	var n models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &n); err != nil {
		t.Fatalf("decode note: %v (body %s)", err, w.Body.String())
	}
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", map[string]string{"notebookId": "2", "status": "active"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decodeNote(t, w)
	if created.NotebookID != "2" || created.Status != models.StatusActive {
		t.Errorf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decodeNote(t, w); got.ID != created.ID {
		t.Errorf("id = %q, want %q", got.ID, created.ID)
	}
}

func TestCreateWithoutBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	n := decodeNote(t, w)
	if n.NotebookID != models.DefaultNotebookID || n.Status != models.StatusNone {
		t.Errorf("defaults = %+v", n)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/notes", map[string]string{"status": "later"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/notes", map[string]string{"notebookId": "404"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown notebook = %d, want 404", w.Code)
	}
}

func TestPatchNote(t *testing.T) {
	st, router := testEnv(t, "")
	before, _ := st.Note("1")

	w := do(t, router, http.MethodPatch, "/notes/1", map[string]any{
		"title":  "  ",
		"tags":   []string{"a", "a", " b "},
		"status": "onHold",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	n := decodeNote(t, w)
	if n.Title != models.DefaultTitle {
		t.Errorf("title = %q, want Untitled", n.Title)
	}
	if strings.Join(n.Tags, ",") != "a,b" {
		t.Errorf("tags = %v", n.Tags)
	}
	if n.Status != models.StatusOnHold {
		t.Errorf("status = %q", n.Status)
	}
	if n.UpdatedAt <= before.UpdatedAt {
		t.Errorf("updatedAt did not advance: %d -> %d", before.UpdatedAt, n.UpdatedAt)
	}
	if n.Content != before.Content {
		t.Error("content changed although absent from patch")
	}
}

func TestPatchPinnedOnly(t *testing.T) {
	st, router := testEnv(t, "")
	before, _ := st.Note("2")

	w := do(t, router, http.MethodPatch, "/notes/2", map[string]bool{"pinned": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	n := decodeNote(t, w)
	if !n.Pinned || n.UpdatedAt != before.UpdatedAt {
		t.Errorf("pin = %v, updatedAt %d -> %d", n.Pinned, before.UpdatedAt, n.UpdatedAt)
	}

	w = do(t, router, http.MethodGet, "/notes", nil)
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 2 || list.Notes[0].ID != "2" {
		t.Errorf("pinned note not first: %+v", list.Notes)
	}
}

func TestPatchValidation(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPatch, "/notes/1", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty patch = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPatch, "/notes/1", map[string]any{"notebookId": "9"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown notebook = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodPatch, "/notes/ghost", map[string]any{"content": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestPatchNullStatusRejected(t *testing.T) {
	st, router := testEnv(t, "")
	before, err := st.Note("1")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/notes/1", strings.NewReader(`{"status":null}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("null status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}

	after, _ := st.Note("1")
	if after.Status != before.Status {
		t.Errorf("status changed to %q", after.Status)
	}
	if got := len(st.Notes()); got != 2 {
		t.Errorf("notes = %d, want the 2 seeds", got)
	}
}

func TestCreateInUnknownNotebook(t *testing.T) {
	st, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/notes", map[string]string{"notebookId": "404"}); w.Code != http.StatusNotFound {
		t.Errorf("create = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/notes/import", map[string]string{"notebookId": "404", "filename": "a.md"}); w.Code != http.StatusNotFound {
		t.Errorf("import = %d, want 404", w.Code)
	}
	if got := len(st.Notes()); got != 2 {
		t.Errorf("notes = %d, want the 2 seeds", got)
	}
}

func TestNoteTagRoutes(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes/1/tags", map[string]string{"tag": " Travel "})
	if w.Code != http.StatusOK {
		t.Fatalf("add tag = %d, body = %s", w.Code, w.Body.String())
	}
	if n := decodeNote(t, w); !n.HasTag("Travel") {
		t.Errorf("tags = %v", n.Tags)
	}

	w = do(t, router, http.MethodGet, "/notes?tag=Travel", nil)
	var list NoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Notes[0].ID != "1" {
		t.Errorf("tag filter = %+v", list)
	}

	w = do(t, router, http.MethodDelete, "/notes/1/tags/Travel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove tag = %d", w.Code)
	}
	if n := decodeNote(t, w); n.HasTag("Travel") {
		t.Errorf("tag still present: %v", n.Tags)
	}

	if w := do(t, router, http.MethodPost, "/notes/1/tags", map[string]string{"tag": "  "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank tag = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/notes/ghost/tags", map[string]string{"tag": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodDelete, "/notes/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notes/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	st, router := testEnv(t, "")
	ctx := context.Background()
	n, _ := st.CreateNote(ctx, "2", models.StatusActive)
	_, _ = st.UpdateTitle(ctx, n.ID, "Daily Standup")

	w := do(t, router, http.MethodGet, "/notes?q=DAILY&status=active", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var list NoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Notes[0].ID != n.ID {
		t.Errorf("list = %+v", list)
	}

	w = do(t, router, http.MethodGet, "/notes?sort=title", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 3 || list.Notes[0].Title != "Daily Standup" {
		t.Errorf("title sort = %+v", list.Notes)
	}
}

func TestListNotesRejectsBadParams(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/notes?sort=size", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad sort = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes?status=someday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}
}

func TestImportAndExport(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes/import", map[string]string{"filename": "Trip Plan.md", "content": "# Hi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	n := decodeNote(t, w)
	if n.Title != "Trip Plan" || n.Content != "# Hi" {
		t.Errorf("imported = %+v", n)
	}

	w = do(t, router, http.MethodGet, "/notes/"+n.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Trip Plan.md"`) {
		t.Errorf("content-disposition = %q", cd)
	}
	if w.Body.String() != "# Hi" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestTags(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/tags", nil)
	var resp TagsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tags) == 0 {
		t.Error("expected seed tags")
	}
}

func TestNotebookLifecycle(t *testing.T) {
	st, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notebooks", map[string]string{"name": "  Travel "})
	if w.Code != http.StatusCreated {
		t.Fatalf("create notebook = %d, body = %s", w.Code, w.Body.String())
	}
	var nb models.Notebook
	_ = json.Unmarshal(w.Body.Bytes(), &nb)
	if nb.Name != "Travel" || nb.Color == "" {
		t.Errorf("notebook = %+v", nb)
	}

	n, _ := st.CreateNote(context.Background(), nb.ID, "")

	if w := do(t, router, http.MethodPut, "/notebooks/"+nb.ID, map[string]string{"name": "Trips"}); w.Code != http.StatusOK {
		t.Errorf("rename = %d", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notebooks/"+nb.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	moved, _ := st.Note(n.ID)
	if moved.NotebookID != models.DefaultNotebookID {
		t.Errorf("note not reassigned: %q", moved.NotebookID)
	}
}

func TestNotebookValidation(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/notebooks", map[string]string{"name": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notebooks/2", nil); w.Code != http.StatusConflict {
		t.Errorf("seed delete = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/notebooks/77", map[string]string{"name": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("rename missing = %d, want 404", w.Code)
	}
}

func TestSyncWithoutBridge(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/sync/status", nil); w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/sync/commit", map[string]string{"message": "m"}); w.Code != http.StatusNotImplemented {
		t.Errorf("commit = %d, want 501", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/sync/export", nil); w.Code != http.StatusNotImplemented {
		t.Errorf("export = %d, want 501", w.Code)
	}
}

// recordingBridge remembers the repository each sync verb was asked to use.
type recordingBridge struct {
	repos []string
}

func (b *recordingBridge) record(repo string) (string, error) {
	b.repos = append(b.repos, repo)
	return "ok", nil
}

func (b *recordingBridge) Status(_ context.Context, repo string) (string, error) {
	return b.record(repo)
}
func (b *recordingBridge) AddAll(_ context.Context, repo string) (string, error) {
	return b.record(repo)
}
func (b *recordingBridge) Commit(_ context.Context, repo, _ string) (string, error) {
	return b.record(repo)
}
func (b *recordingBridge) Push(_ context.Context, repo string) (string, error) { return b.record(repo) }
func (b *recordingBridge) Pull(_ context.Context, repo string) (string, error) { return b.record(repo) }
func (b *recordingBridge) ExportMarkdown(_ context.Context, repo string, _ []models.Notebook, _ []models.Note) (string, error) {
	return b.record(repo)
}

func TestSyncIgnoresClientRepo(t *testing.T) {
	bridge := &recordingBridge{}
	_, router := testEnvBridge(t, false, "", nil, bridge)

	if w := do(t, router, http.MethodGet, "/sync/status?repo=/etc", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/sync/commit", map[string]string{"message": "m", "repo": "/etc"}); w.Code != http.StatusOK {
		t.Fatalf("commit = %d, body = %s", w.Code, w.Body.String())
	}
	for _, verb := range []string{"add", "push", "pull", "export"} {
		if w := do(t, router, http.MethodPost, "/sync/"+verb, map[string]string{"repo": "/etc"}); w.Code != http.StatusOK {
			t.Fatalf("%s = %d, body = %s", verb, w.Code, w.Body.String())
		}
	}

	if len(bridge.repos) != 6 {
		t.Fatalf("calls = %d, want 6", len(bridge.repos))
	}
	for i, repo := range bridge.repos {
		if repo != "" {
			t.Errorf("call %d used repo %q, want the configured one", i, repo)
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	// Writes headers and blocks until the client goes away.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", sseStub())

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvFull(t, true, "tok", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
