package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/adosprint/internal/sprints"
)

// Server exposes sprint queries as MCP tools. Unlike the HTTP API it runs as
// the local user, so it uses the PAT from local configuration.
type Server struct {
	sprints *sprints.Service
	pat     string
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(svc *sprints.Service, pat, version string) *Server {
	return &Server{sprints: svc, pat: pat, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("adosprint", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listSprintsTool())
	srv.AddTool(s.sprintWorkItemsTool())
	srv.AddTool(s.sprintSummaryTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// ado_list_sprints
func (s *Server) listSprintsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("ado_list_sprints",
		mcp.WithDescription("List the team's Azure DevOps sprints, current first, then future, then past. Returns JSON with name, path, start_date, finish_date and time_frame."),
	)
	return tool, s.handleListSprints
}

func (s *Server) handleListSprints(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.sprints.ListSprints(ctx, s.pat)
	if err != nil {
		return toolError("failed to list sprints", err), nil
	}
	return jsonResult(list)
}

// ado_sprint_work_items
func (s *Server) sprintWorkItemsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("ado_sprint_work_items",
		mcp.WithDescription("Get the full details of work items in a sprint that you created or are assigned to, including comments."),
		mcp.WithString("sprint", mcp.Required(), mcp.Description("Sprint name, e.g. 'Sprint 37'")),
	)
	return tool, s.handleSprintWorkItems
}

func (s *Server) handleSprintWorkItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprint, err := request.RequireString("sprint")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: sprint"), nil
	}
	result, err := s.sprints.WorkItems(ctx, sprint, s.pat)
	if err != nil {
		return toolError("failed to query work items", err), nil
	}
	return jsonResult(result)
}

// ado_sprint_summary
func (s *Server) sprintSummaryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("ado_sprint_summary",
		mcp.WithDescription("Get a condensed summary of your work items in a sprint: titles, descriptions and comment texts only."),
		mcp.WithString("sprint", mcp.Required(), mcp.Description("Sprint name, e.g. 'Sprint 37'")),
	)
	return tool, s.handleSprintSummary
}

func (s *Server) handleSprintSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprint, err := request.RequireString("sprint")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: sprint"), nil
	}
	result, err := s.sprints.WorkItems(ctx, sprint, s.pat)
	if err != nil {
		return toolError("failed to query work items", err), nil
	}
	return jsonResult(sprints.Summarize(result))
}

// toolError wraps a service error into a tool error result.
func toolError(msg string, err error) *mcp.CallToolResult {
	if errors.Is(err, sprints.ErrAuthRequired) {
		return mcp.NewToolResultError(msg + ": no PAT configured (set AZURE_PAT or pat in config)")
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
