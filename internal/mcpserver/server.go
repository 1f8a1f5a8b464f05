// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the InkFlow facade verbs as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/facade"
	"github.com/starford/inkflow/internal/models"
)

const noteFormatURI = "inkflow://note-format"

// Server wraps the MCP server with InkFlow tools.
type Server struct {
	mcp    *server.MCPServer
	facade *facade.Facade
	logger *slog.Logger
}

// New creates a new MCP server with all InkFlow tools registered.
func New(f *facade.Facade, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{facade: f, logger: logger}

	s.mcp = server.NewMCPServer(
		"InkFlow",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	statuses := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		statuses[i] = string(st)
	}

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally filtered by notebook, status and a case-insensitive keyword."),
		mcp.WithString("notebookId", mcp.Description("Only notes in this notebook")),
		mcp.WithString("status", mcp.Description("Only notes with this status"), mcp.Enum(statuses...)),
		mcp.WithString("keyword", mcp.Description("Substring matched against title, content and tags")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Status defaults to active, notebook to the default notebook. "+
			"Read the inkflow://note-format resource for the record shape."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Markdown body")),
		mcp.WithString("notebookId", mcp.Description("Target notebook id (see list_notebooks)")),
		mcp.WithString("status", mcp.Description("Initial status"), mcp.Enum(statuses...)),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Overwrite the provided fields of a note. Omitted fields are untouched; an empty title is ignored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New markdown body")),
		mcp.WithString("status", mcp.Description("New status"), mcp.Enum(statuses...)),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id. Reports whether it existed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("List every notebook with its id, name and color."),
	), s.listNotebooks)

	s.registerSyncTools()

	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format",
			mcp.WithResourceDescription("Shape of an InkFlow note record and the allowed status values."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.facade.ListNotes(ctx, facade.ListFilter{
		NotebookID: req.GetString("notebookId", ""),
		Status:     models.Status(req.GetString("status", "")),
		Keyword:    req.GetString("keyword", ""),
	})
	if err != nil {
		return s.toolError("list_notes", err), nil
	}
	return jsonResult(notes)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.facade.GetNote(ctx, id)
	if err != nil {
		return s.toolError("get_note", err), nil
	}
	return jsonResult(n)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.facade.CreateNote(ctx, facade.CreateSpec{
		Title:      title,
		Body:       req.GetString("body", ""),
		NotebookID: req.GetString("notebookId", ""),
		Status:     models.Status(req.GetString("status", "")),
	})
	if err != nil {
		return s.toolError("create_note", err), nil
	}
	return jsonResult(n)
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var patch facade.Patch
	args := req.GetArguments()
	if v, ok := args["title"].(string); ok {
		patch.Title = facade.Some(v)
	}
	if v, ok := args["body"].(string); ok {
		patch.Body = facade.Some(v)
	}
	if v, ok := args["status"].(string); ok {
		patch.Status = facade.Some(models.Status(v))
	}

	n, err := s.facade.UpdateNote(ctx, id, patch)
	if err != nil {
		return s.toolError("update_note", err), nil
	}
	return jsonResult(n)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.facade.DeleteNote(ctx, id)
	if err != nil {
		return s.toolError("delete_note", err), nil
	}
	return jsonResult(map[string]bool{"deleted": found})
}

func (s *Server) listNotebooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nbs, err := s.facade.ListNotebooks(ctx)
	if err != nil {
		return s.toolError("list_notebooks", err), nil
	}
	return jsonResult(nbs)
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}

// toolError turns a facade error into a tool-level error result.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	case errors.Is(err, apperr.ErrHostUnsupported):
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Warn("mcp: tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
