package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsps/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func relPaths(t *testing.T, root string, files []types.FileCandidate) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

var tree = map[string]string{
	"a.go":                       "package a",
	"b.ts":                       "export {}",
	"docs/readme.md":             "# hi",
	"src/c.go":                   "package c",
	"src/deep/d.go":              "package d",
	"node_modules/lib/index.js":  "module.exports = {}",
	"src/node_modules/x/y.js":    "y",
	"build/out.js":               "out",
	"assets/logo.png":            "png",
	"src/deep/generated.pb.go":   "package d",
	"src/deep/ignored/secret.go": "package secret",
}

func TestEnumerate_DefaultSettings(t *testing.T) {
	root := writeTree(t, tree)
	settings := types.Settings{}

	files, err := NewWalker(Options{Root: root}).Enumerate(context.Background(), settings.IncludeGlobs(), settings.ExcludeGlobs())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.go",
		"assets/logo.png",
		"b.ts",
		"build/out.js",
		"docs/readme.md",
		"src/c.go",
		"src/deep/d.go",
		"src/deep/generated.pb.go",
		"src/deep/ignored/secret.go",
	}, relPaths(t, root, files), "lexical order, node_modules excluded at any depth")
}

func TestEnumerate_IncludeNodeModules(t *testing.T) {
	root := writeTree(t, tree)
	settings := types.Settings{IncludeNodeModules: true, IncludeFilePatterns: []string{"**/*.js"}}

	files, err := NewWalker(Options{Root: root}).Enumerate(context.Background(), settings.IncludeGlobs(), settings.ExcludeGlobs())
	require.NoError(t, err)
	assert.Equal(t, []string{"build/out.js", "node_modules/lib/index.js", "src/node_modules/x/y.js"}, relPaths(t, root, files))
}

func TestEnumerate_IncludeAndExclude(t *testing.T) {
	root := writeTree(t, tree)

	files, err := NewWalker(Options{Root: root}).Enumerate(context.Background(),
		[]string{"**/*.go"},
		[]string{"**/*.pb.go", "src/deep/ignored/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "src/c.go", "src/deep/d.go"}, relPaths(t, root, files))
}

func TestEnumerate_ExtraPatterns(t *testing.T) {
	root := writeTree(t, tree)

	w := NewWalker(Options{
		Root:          root,
		ExtraIncludes: []string{"**/*.md"},
		ExtraExcludes: []string{"docs/**"},
	})
	files, err := w.Enumerate(context.Background(), []string{"*.go"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, relPaths(t, root, files))
}

func TestEnumerate_Gitignore(t *testing.T) {
	files := map[string]string{".gitignore": "build/\n*.pb.go\n"}
	for k, v := range tree {
		files[k] = v
	}
	root := writeTree(t, files)

	got, err := NewWalker(Options{Root: root, RespectGitignore: true}).Enumerate(context.Background(),
		[]string{"**/*.go", "**/*.js"}, []string{"**/node_modules/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "src/c.go", "src/deep/d.go", "src/deep/ignored/secret.go"}, relPaths(t, root, got))

	// Without the flag .gitignore is ordinary content
	got, err = NewWalker(Options{Root: root}).Enumerate(context.Background(), []string{"build/**"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"build/out.js"}, relPaths(t, root, got))
}

func TestEnumerate_SkipBinary(t *testing.T) {
	root := writeTree(t, tree)

	got, err := NewWalker(Options{Root: root, SkipBinary: true}).Enumerate(context.Background(), []string{"assets/**"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnumerate_InvalidPatternIgnored(t *testing.T) {
	root := writeTree(t, tree)

	got, err := NewWalker(Options{Root: root}).Enumerate(context.Background(), []string{"[", "*.ts"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.ts"}, relPaths(t, root, got))
}

func TestEnumerate_Cancelled(t *testing.T) {
	root := writeTree(t, tree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(Options{Root: root}).Enumerate(ctx, []string{"**/*"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnumerate_MissingRoot(t *testing.T) {
	_, err := NewWalker(Options{Root: filepath.Join(t.TempDir(), "nope")}).Enumerate(context.Background(), []string{"**/*"}, nil)
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	assert.True(t, Match([]string{"**/*"}, []string{types.NodeModulesExcludePattern}, "src/a.js"))
	assert.False(t, Match([]string{"**/*"}, []string{types.NodeModulesExcludePattern}, "node_modules/a.js"))
	assert.False(t, Match([]string{"**/*.go"}, nil, "a.js"))
}

func TestIsBinaryPath(t *testing.T) {
	assert.True(t, IsBinaryPath("img/logo.PNG"))
	assert.False(t, IsBinaryPath("icon.svg"))
	assert.False(t, IsBinaryPath("Makefile"))
}
