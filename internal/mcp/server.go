// Package mcp implements a Model Context Protocol (MCP) server for kgit using the mcp-go library.
//
// The server exposes read-only tools over one working copy so that assistants
// can inspect branches and read files as recorded on any branch. read_file
// fetches, briefly switches to the branch and then restores the previous one.
// Untracked files are left alone and edits to tracked files make it fail
// rather than be discarded:
//
//   - list_branches: local, remote-tracking or all branches with their commit ids
//   - read_file: the contents of one file at the tip of a branch
//
// It communicates via stdin/stdout using JSON-RPC 2.0 as specified by the MCP standard.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"kgit/internal/logging"
	"kgit/internal/repository"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Branch scopes accepted by list_branches
const (
	ScopeAll       = "all"
	ScopeLocal     = "local"
	ScopeRemote    = "remote"
	ScopeLocalOnly = "local-only"
)

// maxFileBytes caps what read_file returns in a single response
const maxFileBytes = 1 << 20

// Server represents an MCP server instance using mcp-go
type Server struct {
	handle    *repository.Handle
	logger    *logging.AppLogger
	mcpServer *server.MCPServer

	// Tool calls may arrive concurrently; the working copy allows one at a time
	mu sync.Mutex
}

// NewServer creates an MCP server over h with its tools registered
func NewServer(h *repository.Handle, logger *logging.AppLogger, version string) *Server {
	if logger == nil {
		logger = logging.GetDefault()
	}

	s := &Server{
		handle: h,
		logger: logger,
		mcpServer: server.NewMCPServer("kgit", version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_branches",
		mcp.WithDescription("List branches of the working copy with their commit ids"),
		mcp.WithString("scope",
			mcp.Description("Which branches to list: all, local, remote or local-only"),
			mcp.Enum(ScopeAll, ScopeLocal, ScopeRemote, ScopeLocalOnly),
		),
	), s.handleListBranches)

	s.mcpServer.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file as recorded in the tip commit of a branch"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file relative to the repository root"),
		),
		mcp.WithString("branch",
			mcp.Required(),
			mcp.Description("Branch to read the file from"),
		),
	), s.handleReadFile)
}

// Start serves the MCP protocol on stdin/stdout until the client disconnects
func (s *Server) Start() error {
	s.logger.Info("Starting MCP server", "repo", s.handle.Path())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// MCPServer exposes the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) handleListBranches(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := req.GetString("scope", ScopeAll)

	s.mu.Lock()
	refs, err := s.listBranches(scope)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("list_branches failed", "scope", scope, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "%s %s\n", r.Hash, r.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listBranches(scope string) ([]repository.BranchRef, error) {
	switch scope {
	case ScopeAll, "":
		return s.handle.ListAll()
	case ScopeLocal:
		return s.handle.ListLocal()
	case ScopeRemote:
		return s.handle.ListRemoteTracking()
	case ScopeLocalOnly:
		return s.handle.ListLocalOnly()
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

func (s *Server) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch, err := req.RequireString("branch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	s.mu.Lock()
	err = s.handle.ReadFileTo(path, branch, &buf)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("read_file failed", "path", path, "branch", branch, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if buf.Len() > maxFileBytes {
		return mcp.NewToolResultError(fmt.Sprintf("%s is %d bytes, larger than the %d byte limit", path, buf.Len(), maxFileBytes)), nil
	}

	s.logger.Debug("read_file", "path", path, "branch", branch, "bytes", buf.Len())
	return mcp.NewToolResultText(buf.String()), nil
}
