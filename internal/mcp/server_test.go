package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"kgit/internal/gittest"
	"kgit/internal/logging"
	"kgit/internal/repository"

	"github.com/mark3labs/mcp-go/mcp"
)

func createTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	originPath, seedPath := gittest.NewOrigin(t, map[string]string{"README.md": "master readme\n"})
	gittest.CommitOnBranch(t, seedPath, "feature", map[string]string{"notes.txt": "feature notes\n"}, "feature work")

	logger, _ := logging.NewTestLogger()
	h, err := repository.Open(repository.OpenOptions{
		Path:      filepath.Join(t.TempDir(), "work"),
		RemoteURL: originPath,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	return NewServer(h, logger, "test"), h.Path()
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	server, _ := createTestServer(t)

	if server.MCPServer() == nil {
		t.Fatal("MCP server not created")
	}
	if server.logger == nil {
		t.Error("Server logger not set")
	}
}

func TestListBranches(t *testing.T) {
	server, _ := createTestServer(t)

	tests := []struct {
		scope    string
		contains []string
		excludes []string
	}{
		{scope: "", contains: []string{"refs/heads/master", "refs/remotes/origin/feature"}},
		{scope: ScopeRemote, contains: []string{"refs/remotes/origin/feature", "refs/remotes/origin/master"}, excludes: []string{"refs/heads/"}},
		{scope: ScopeLocal, contains: []string{"refs/heads/master"}, excludes: []string{"refs/remotes/"}},
	}

	for _, tt := range tests {
		t.Run("scope="+tt.scope, func(t *testing.T) {
			args := map[string]any{}
			if tt.scope != "" {
				args["scope"] = tt.scope
			}

			result, err := server.handleListBranches(context.Background(), callTool("list_branches", args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if result.IsError {
				t.Fatalf("tool error: %s", resultText(t, result))
			}

			text := resultText(t, result)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("expected %q in output:\n%s", want, text)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(text, unwanted) {
					t.Errorf("did not expect %q in output:\n%s", unwanted, text)
				}
			}
		})
	}
}

func TestListBranches_UnknownScope(t *testing.T) {
	server, _ := createTestServer(t)

	result, err := server.handleListBranches(context.Background(), callTool("list_branches", map[string]any{"scope": "tags"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error for an unknown scope")
	}
}

func TestReadFile(t *testing.T) {
	server, repoPath := createTestServer(t)

	result, err := server.handleReadFile(context.Background(), callTool("read_file", map[string]any{
		"path":   "notes.txt",
		"branch": "feature",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}
	if got := resultText(t, result); got != "feature notes\n" {
		t.Errorf("unexpected contents %q", got)
	}

	if branch := gittest.HeadBranch(t, repoPath); branch != gittest.Master {
		t.Errorf("checked-out branch changed to %s", branch)
	}
}

func TestReadFile_Errors(t *testing.T) {
	server, _ := createTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing path", args: map[string]any{"branch": "feature"}, want: "path"},
		{name: "missing branch", args: map[string]any{"path": "notes.txt"}, want: "branch"},
		{name: "missing file", args: map[string]any{"path": "nope.txt", "branch": "feature"}, want: "nope.txt"},
		{name: "missing remote branch", args: map[string]any{"path": "notes.txt", "branch": "nope"}, want: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleReadFile(context.Background(), callTool("read_file", tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected a tool error")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in error, got %q", tt.want, text)
			}
		})
	}
}
