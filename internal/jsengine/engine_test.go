package jsengine

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsps/internal/definition"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/types"
)

func load(t *testing.T, source string) (*definition.SearchDefinition, error) {
	t.Helper()
	return definition.NewLoader(NewCompiler(), NewHost()).Load("search.jsps.ts", source)
}

const threeFileDefinition = `
export function getSettings() {
  return { maxFileSizeInKB: 1000, onlyTestLinesInMatchingFiles: false };
}
export function searchByFile() {
  return {
    doesFileMatchSearch: (file: string) => {
      if (file.includes("3")) throw new Error("three");
      if (file.includes("2")) return false;
      return true;
    },
  };
}
export function searchByLine() {
  return {
    doesLineMatchSearch: (line: string) => !line.includes("2"),
  };
}
`

func TestLoad_Template(t *testing.T) {
	def, err := load(t, definition.Template())
	require.NoError(t, err)
	require.NotNil(t, def.FileMatcher)
	require.NotNil(t, def.LineMatcher)

	ok, err := def.LineMatcher.MatchLine("this is exactly what I'm looking for", types.LineContext{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = def.FileMatcher.MatchFile("nothing here", types.FileContext{})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, float64(types.DefaultMaxFileSizeInKB), def.Settings.MaxFileSizeKB())
}

func TestLoad_ThreeFilePredicates(t *testing.T) {
	def, err := load(t, threeFileDefinition)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, def.Settings.MaxFileSizeKB())

	ok, err := def.FileMatcher.MatchFile("1", types.FileContext{FileName: "1", Lines: []string{"1"}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = def.FileMatcher.MatchFile("2", types.FileContext{FileName: "2", Lines: []string{"2"}})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = def.FileMatcher.MatchFile("3", types.FileContext{FileName: "3", Lines: []string{"3"}})
	require.Error(t, err)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "Error: three", scriptErr.Message)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   jspserrors.LoadErrorKind
		export string
	}{
		{
			name:   "syntax error",
			source: "export function getSettings( {",
			kind:   jspserrors.CompileFailed,
		},
		{
			name:   "throw in module body",
			source: "throw new Error('top level');",
			kind:   jspserrors.LinkFailed,
		},
		{
			name:   "require is unavailable",
			source: "const fs = require('fs'); export function getSettings() { return {}; }",
			kind:   jspserrors.LinkFailed,
		},
		{
			name: "missing export",
			source: `export function getSettings() { return {}; }
export function searchByFile() { return {}; }`,
			kind:   jspserrors.MissingExport,
			export: definition.ExportSearchByLine,
		},
		{
			name: "export is not a function",
			source: `export const getSettings = {};
export function searchByFile() { return {}; }
export function searchByLine() { return {}; }`,
			kind:   jspserrors.MissingExport,
			export: definition.ExportGetSettings,
		},
		{
			name: "export throws",
			source: `export function getSettings() { return {}; }
export function searchByFile() { throw new Error("nope"); }
export function searchByLine() { return {}; }`,
			kind:   jspserrors.ExportThrew,
			export: definition.ExportSearchByFile,
		},
		{
			name: "primitive return",
			source: `export function getSettings() { return 5; }
export function searchByFile() { return {}; }
export function searchByLine() { return {}; }`,
			kind:   jspserrors.InvalidReturn,
			export: definition.ExportGetSettings,
		},
		{
			name: "null return",
			source: `export function getSettings() { return {}; }
export function searchByFile() { return {}; }
export function searchByLine() { return null; }`,
			kind:   jspserrors.InvalidReturn,
			export: definition.ExportSearchByLine,
		},
		{
			name: "function return",
			source: `export function getSettings() { return {}; }
export function searchByFile() { return () => true; }
export function searchByLine() { return {}; }`,
			kind:   jspserrors.InvalidReturn,
			export: definition.ExportSearchByFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := load(t, tt.source)
			require.Error(t, err)
			assert.Nil(t, def)

			var loadErr *jspserrors.LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.Equal(t, tt.kind, loadErr.Kind)
			assert.Equal(t, tt.export, loadErr.Export)
		})
	}
}

func TestLoad_EmptyObjectsHaveNoMatchers(t *testing.T) {
	def, err := load(t, `
export function getSettings() { return []; }
export function searchByFile() { return {}; }
export function searchByLine() { return { doesLineMatchSearch: undefined }; }`)
	require.NoError(t, err)
	assert.True(t, def.MatchesEverything())
}

func TestLoad_SettingsUseScriptSemantics(t *testing.T) {
	const rest = `
export function searchByFile() { return {}; }
export function searchByLine() { return {}; }`

	tests := []struct {
		name     string
		settings string
		check    func(t *testing.T, s types.Settings)
	}{
		{
			name:     "NaN cap disables the size check",
			settings: "{ maxFileSizeInKB: NaN }",
			check: func(t *testing.T, s types.Settings) {
				require.NotNil(t, s.MaxFileSizeInKB)
				assert.True(t, math.IsNaN(*s.MaxFileSizeInKB))
				assert.False(t, s.ExceedsMaxSize(1<<40))
			},
		},
		{
			name:     "Infinity cap never skips",
			settings: "{ maxFileSizeInKB: Infinity, matchTestingTimeoutInSeconds: Infinity }",
			check: func(t *testing.T, s types.Settings) {
				assert.True(t, math.IsInf(s.MaxFileSizeKB(), 1))
				assert.False(t, s.ExceedsMaxSize(1<<40))
				assert.Equal(t, time.Duration(math.MaxInt64), s.ProbeTimeout())
			},
		},
		{
			name:     "string cap uses the default",
			settings: `{ maxFileSizeInKB: "500", matchTestingTimeoutInSeconds: "1" }`,
			check: func(t *testing.T, s types.Settings) {
				assert.Nil(t, s.MaxFileSizeInKB)
				assert.Equal(t, float64(types.DefaultMaxFileSizeInKB), s.MaxFileSizeKB())
				assert.Equal(t, 5*time.Second, s.ProbeTimeout())
			},
		},
		{
			name:     "truthy non-booleans",
			settings: `{ includeNodeModules: 1, onlyTestLinesInMatchingFiles: "" }`,
			check: func(t *testing.T, s types.Settings) {
				assert.True(t, s.IncludeNodeModules)
				assert.False(t, s.OnlyTestLinesInMatchingFiles)
			},
		},
		{
			name:     "pattern lists keep string elements",
			settings: `{ includeFilePatterns: ["**/*.ts", 3, null, "**/*.tsx"], excludeFilePatterns: "dist/**" }`,
			check: func(t *testing.T, s types.Settings) {
				assert.Equal(t, []string{"**/*.ts", "**/*.tsx"}, s.IncludeFilePatterns)
				assert.Nil(t, s.ExcludeFilePatterns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := load(t, "export function getSettings() { return "+tt.settings+"; }"+rest)
			require.NoError(t, err)
			tt.check(t, def.Settings)
		})
	}
}

func TestLoad_PlainJavaScript(t *testing.T) {
	def, err := definition.NewLoader(NewCompiler(), NewHost()).Load("search.js", `
exports.getSettings = function () { return { includeFilePatterns: ["**/*.md"] }; };
exports.searchByFile = function () { return {}; };
exports.searchByLine = function () { return { doesLineMatchSearch: function (l) { return l === "x"; } }; };`)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.md"}, def.Settings.IncludeFilePatterns)
}

func TestMatchers_ReceiveMetadata(t *testing.T) {
	def, err := load(t, `
export function getSettings() { return {}; }
export function searchByFile() {
  return {
    doesFileMatchSearch: (file, meta) =>
      meta.fileName === "a.txt" && meta.filePath === "dir/a.txt" && meta.lines.length === 2 && meta.lines.join("|") === "x|y",
  };
}
export function searchByLine() {
  return {
    doesLineMatchSearch: (line, meta) => meta.previousLine === null && meta.nextLine === "y",
  };
}`)
	require.NoError(t, err)

	ok, err := def.FileMatcher.MatchFile("x\ny", types.FileContext{FileName: "a.txt", FilePath: "dir/a.txt", Lines: []string{"x", "y"}})
	require.NoError(t, err)
	assert.True(t, ok)

	next := "y"
	ok, err = def.LineMatcher.MatchLine("x", types.LineContext{FileName: "a.txt", FilePath: "dir/a.txt", NextLine: &next})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchers_TruthyResults(t *testing.T) {
	def, err := load(t, `
export function getSettings() { return {}; }
export function searchByFile() { return {}; }
export function searchByLine() { return { doesLineMatchSearch: (line) => line.length ? "yes" : 0 }; }`)
	require.NoError(t, err)

	ok, err := def.LineMatcher.MatchLine("abc", types.LineContext{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = def.LineMatcher.MatchLine("", types.LineContext{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchers_ConcurrentCalls(t *testing.T) {
	def, err := load(t, `
let calls = 0;
export function getSettings() { return {}; }
export function searchByFile() { return {}; }
export function searchByLine() { return { doesLineMatchSearch: (line) => { calls++; return line.startsWith("a"); } }; }`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			line := "b"
			if i%2 == 0 {
				line = "a"
			}
			ok, err := def.LineMatcher.MatchLine(line, types.LineContext{})
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.Equal(t, i%2 == 0, ok)
	}
}

func TestCompiler_ReportsLocation(t *testing.T) {
	_, err := NewCompiler().Compile("bad.ts", "let x = ;")
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "bad.ts", compileErr.File)
	assert.Equal(t, 1, compileErr.Line)
	assert.Contains(t, err.Error(), "bad.ts:1:")
}
