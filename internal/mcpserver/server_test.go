package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := testutil.Logger()
	return New(facade.New(testutil.MemoryAdapter(t, nil), logger), "test", logger)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "list_notebooks":
		result, err = srv.listNotebooks(ctx, req)
	case "git_status":
		result, err = srv.syncVerb(name, srv.facade.Status)(ctx, req)
	case "git_commit":
		result, err = srv.gitCommit(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeNote(t *testing.T, r *mcp.CallToolResult) models.Note {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	var n models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatalf("decode note: %v", err)
	}
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	srv := testServer(t)

	created := decodeNote(t, callTool(t, srv, "create_note", map[string]interface{}{
		"title":      "Plan",
		"body":       "# Plan",
		"notebookId": "2",
	}))
	if !strings.HasPrefix(created.ID, facade.IDPrefix) {
		t.Errorf("id = %q, want agent- prefix", created.ID)
	}
	if created.Status != models.StatusActive {
		t.Errorf("status = %q, want active", created.Status)
	}

	got := decodeNote(t, callTool(t, srv, "get_note", map[string]interface{}{"id": created.ID}))
	if got.Content != "# Plan" || got.NotebookID != "2" {
		t.Errorf("got %+v", got)
	}
}

func TestListNotesByStatus(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{"title": "A", "status": "active"})

	r := callTool(t, srv, "list_notes", map[string]interface{}{"status": "active"})
	var notes []models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Title != "A" {
		t.Errorf("notes = %+v", notes)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{"status": "bogus"})
	if !r.IsError {
		t.Error("expected error for unknown status")
	}
}

func TestUpdateNoteIgnoresEmptyTitle(t *testing.T) {
	srv := testServer(t)
	n := decodeNote(t, callTool(t, srv, "update_note", map[string]interface{}{
		"id":    "1",
		"title": "",
		"body":  "rewritten",
	}))
	if n.Title != "Welcome to InkFlow" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Content != "rewritten" {
		t.Errorf("content = %q", n.Content)
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
	r = callTool(t, srv, "get_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestDeleteNote(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "delete_note", map[string]interface{}{"id": "2"})
	if text := resultText(r); !strings.Contains(text, `"deleted": true`) {
		t.Errorf("first delete = %s", text)
	}
	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": "2"})
	if text := resultText(r); !strings.Contains(text, `"deleted": false`) {
		t.Errorf("second delete = %s", text)
	}
}

func TestListNotebooks(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_notebooks", map[string]interface{}{})
	var nbs []models.Notebook
	if err := json.Unmarshal([]byte(resultText(r)), &nbs); err != nil {
		t.Fatal(err)
	}
	if len(nbs) != 3 {
		t.Errorf("notebooks = %d, want 3", len(nbs))
	}
}

func TestSyncToolsWithoutBridge(t *testing.T) {
	srv := testServer(t)
	for _, tool := range []string{"git_status", "git_commit"} {
		r := callTool(t, srv, tool, map[string]interface{}{"message": "x"})
		if !r.IsError || !strings.Contains(resultText(r), "host unsupported") {
			t.Errorf("%s: %s", tool, resultText(r))
		}
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != noteFormatURI || !strings.Contains(tc.Text, "onHold") {
		t.Errorf("resource = %+v", contents[0])
	}
}
