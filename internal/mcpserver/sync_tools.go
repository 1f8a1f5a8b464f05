package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func repoArg() mcp.ToolOption {
	return mcp.WithString("repo", mcp.Description("Repository path; empty uses the configured repository"))
}

func (s *Server) registerSyncTools() {
	s.mcp.AddTool(mcp.NewTool("git_status",
		mcp.WithDescription("Show the porcelain git status of the notes repository."),
		repoArg(),
	), s.syncVerb("git_status", s.facade.Status))

	s.mcp.AddTool(mcp.NewTool("git_add_all",
		mcp.WithDescription("Stage every change in the notes repository."),
		repoArg(),
	), s.syncVerb("git_add_all", s.facade.AddAll))

	s.mcp.AddTool(mcp.NewTool("git_commit",
		mcp.WithDescription("Commit staged changes."),
		repoArg(),
		mcp.WithString("message", mcp.Description("Commit message; a timestamped default is used when empty")),
	), s.gitCommit)

	s.mcp.AddTool(mcp.NewTool("git_push",
		mcp.WithDescription("Push commits to the configured remote."),
		repoArg(),
	), s.syncVerb("git_push", s.facade.Push))

	s.mcp.AddTool(mcp.NewTool("git_pull",
		mcp.WithDescription("Pull and integrate remote commits."),
		repoArg(),
	), s.syncVerb("git_pull", s.facade.Pull))

	s.mcp.AddTool(mcp.NewTool("export_markdown",
		mcp.WithDescription("Write every note into the repository as <notebook>/<title>.md with YAML front matter."),
		repoArg(),
	), s.syncVerb("export_markdown", s.facade.ExportAsMarkdown))
}

type repoVerb func(ctx context.Context, repo string) (string, error)

func (s *Server) syncVerb(tool string, run repoVerb) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := run(ctx, req.GetString("repo", ""))
		if err != nil {
			return s.toolError(tool, err), nil
		}
		return textOrDone(out), nil
	}
}

func (s *Server) gitCommit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.facade.Commit(ctx, req.GetString("repo", ""), req.GetString("message", ""))
	if err != nil {
		return s.toolError("git_commit", err), nil
	}
	return textOrDone(out), nil
}

func textOrDone(out string) *mcp.CallToolResult {
	if out == "" {
		out = "done"
	}
	return mcp.NewToolResultText(out)
}
