package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/testhelpers"
)

const todoDefinition = `
export function getSettings() {
  return { includeFilePatterns: ["**/*.ts"] };
}
export function searchByFile() {
  return {
    doesFileMatchSearch(contents: string): boolean {
      return contents.includes("export");
    },
  };
}
export function searchByLine() {
  return {
    doesLineMatchSearch(line: string): boolean {
      return line.includes("TODO");
    },
  };
}
`

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	s, err := NewServer(testhelpers.NewTestConfigBuilder(root).Build())
	require.NoError(t, err)
	return s
}

func callSearch(t *testing.T, s *Server, params map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	args, err := json.Marshal(params)
	require.NoError(t, err)

	result, err := s.handleSearch(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: args},
	})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	return result, body
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.cfg)

	bad := config.Default()
	bad.Run.Workers = -1
	_, err := NewServer(bad)
	assert.Error(t, err)
}

func TestHandleSearch_Results(t *testing.T) {
	root := testhelpers.WriteTree(t, map[string]string{
		"src/a.ts":  "export const a = 1;\n// TODO: a\n",
		"src/b.ts":  "const b = 2;\n",
		"src/c.ts":  "// TODO: c\n",
		"readme.md": "TODO: not included\n",
		"src/d.ts":  "export {}\n",
	})
	s := newTestServer(t, root)

	result, body := callSearch(t, s, map[string]any{"definition": todoDefinition})
	assert.False(t, result.IsError)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["run_id"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["candidates"])
	assert.Equal(t, float64(3), summary["reported"])

	results := body["results"].([]any)
	require.Len(t, results, 3)
	first := results[0].(map[string]any)
	assert.Equal(t, "src/a.ts", first["file_path"])
	assert.Equal(t, true, first["matches_by_file"])
	assert.Equal(t, []any{map[string]any{"line": float64(1), "text": "// TODO: a"}}, first["lines"])

	assert.Equal(t, "src/c.ts", results[1].(map[string]any)["file_path"])
	assert.Equal(t, "src/d.ts", results[2].(map[string]any)["file_path"])
}

func TestHandleSearch_DefinitionPathAndRoot(t *testing.T) {
	root := testhelpers.WriteTree(t, map[string]string{"x.ts": "// TODO\n"})
	defPath := filepath.Join(t.TempDir(), "search.jsps.ts")
	require.NoError(t, os.WriteFile(defPath, []byte(todoDefinition), 0644))

	s := newTestServer(t, t.TempDir())
	result, body := callSearch(t, s, map[string]any{"definition_path": defPath, "root": root})
	assert.False(t, result.IsError)
	assert.Len(t, body["results"], 1)
}

func TestHandleSearch_Errors(t *testing.T) {
	root := testhelpers.WriteTree(t, map[string]string{"a.ts": "x"})

	tests := []struct {
		name      string
		params    map[string]any
		wantError string
		wantKind  string
	}{
		{"no definition", map[string]any{}, "required", ""},
		{"both definitions", map[string]any{"definition": "x", "definition_path": "y"}, "not both", ""},
		{"unreadable path", map[string]any{"definition_path": filepath.Join(root, "missing.ts")}, "cannot read definition", ""},
		{"bad root", map[string]any{"definition": todoDefinition, "root": filepath.Join(root, "nope")}, "not a directory", ""},
		{"missing export", map[string]any{"definition": "export function getSettings() { return {}; }"}, "searchByFile", "missing_export"},
		{"syntax error", map[string]any{"definition": "export function ("}, "transpile", "compile_failed"},
		{"no files", map[string]any{"definition": strings.Replace(todoDefinition, "**/*.ts", "**/*.none", 1)}, "no files matched", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, body := callSearch(t, newTestServer(t, root), tt.params)
			assert.True(t, result.IsError)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tt.wantError)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["kind"])
			}
		})
	}
}

func TestHandleSearch_ProbeFailureNeedsConfirmation(t *testing.T) {
	root := testhelpers.WriteTree(t, map[string]string{"a.ts": "boom", "b.ts": "fine"})
	throwing := strings.Replace(todoDefinition,
		`return contents.includes("export");`,
		`if (contents === "boom") { throw new Error("boom"); } return true;`, 1)
	s := newTestServer(t, root)

	result, body := callSearch(t, s, map[string]any{"definition": throwing})
	assert.True(t, result.IsError)
	assert.Contains(t, body["hint"], "continue_on_probe_failure")

	result, body = callSearch(t, s, map[string]any{"definition": throwing, "continue_on_probe_failure": true})
	assert.False(t, result.IsError)
	failures := body["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, "a.ts", failures[0].(map[string]any)["file_path"])
	assert.Contains(t, failures[0].(map[string]any)["error"], "boom")
	assert.Len(t, body["results"], 1)
}

func TestHandleSearch_ScaleConfirmation(t *testing.T) {
	root := testhelpers.WriteTree(t, map[string]string{"a.ts": "export", "b.ts": "export", "c.ts": "export"})
	s, err := NewServer(testhelpers.NewTestConfigBuilder(root).WithConfirmThreshold(2).Build())
	require.NoError(t, err)

	result, body := callSearch(t, s, map[string]any{"definition": todoDefinition})
	assert.True(t, result.IsError)
	assert.Contains(t, body["hint"], "confirm_large")

	result, body = callSearch(t, s, map[string]any{"definition": todoDefinition, "confirm_large": true, "max_results": 2})
	assert.False(t, result.IsError)
	assert.Len(t, body["results"], 2)
	assert.Equal(t, true, body["truncated"])
}

func TestHandleTemplate(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	result, err := s.handleTemplate(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}})
	require.NoError(t, err)
	text := result.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "export function getSettings")
	assert.Contains(t, text, "doesLineMatchSearch")
}
