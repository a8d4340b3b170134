// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes journal tools over stdio. The stdio transport is only reachable
// from the author's own machine, so tools run with author trust and no PIN
// exchange.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duetlabs/duet/internal/journal"
)

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp *server.MCPServer
	svc *journal.Service
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journal.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Duet",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List journal entries, newest first."),
		mcp.WithString("limit", mcp.Description("Maximum number of entries to return (default 20)")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read a single journal entry by its ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Append a new journal entry."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry text")),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Search journal entries by a content substring."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to search for")),
	), s.searchEntries)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if raw := req.GetString("limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid limit: %q", raw)), nil
		}
		limit = n
	}
	entries, _, err := s.svc.List(ctx, limit, 0, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %q", raw)), nil
	}
	entry, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", raw)), nil
	}
	out, _ := json.MarshalIndent(entry, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Add(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created entry %d", entry.ID)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, _, err := s.svc.List(ctx, 50, 0, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
