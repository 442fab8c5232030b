package definition

import (
	"github.com/standardbeagle/jsps/internal/types"
)

// Names of the predicate methods inside the objects returned by searchByFile and searchByLine
const (
	FileMatcherMethod = "doesFileMatchSearch"
	LineMatcherMethod = "doesLineMatchSearch"
)

// FileMatcher decides whether a whole file matches
type FileMatcher interface {
	MatchFile(contents string, meta types.FileContext) (bool, error)
}

// LineMatcher decides whether a single line matches
type LineMatcher interface {
	MatchLine(line string, meta types.LineContext) (bool, error)
}

// FileMatcherFunc adapts a function to FileMatcher
type FileMatcherFunc func(contents string, meta types.FileContext) (bool, error)

func (f FileMatcherFunc) MatchFile(contents string, meta types.FileContext) (bool, error) {
	return f(contents, meta)
}

// LineMatcherFunc adapts a function to LineMatcher
type LineMatcherFunc func(line string, meta types.LineContext) (bool, error)

func (f LineMatcherFunc) MatchLine(line string, meta types.LineContext) (bool, error) {
	return f(line, meta)
}

// SearchDefinition is a loaded, validated search. It is built once per run
// and must not be modified afterwards. Either matcher may be nil.
type SearchDefinition struct {
	Settings    types.Settings
	FileMatcher FileMatcher
	LineMatcher LineMatcher
}

// MatchesEverything reports whether the definition has no predicates at all,
// in which case every admitted file matches without being read.
func (d *SearchDefinition) MatchesEverything() bool {
	return d.FileMatcher == nil && d.LineMatcher == nil
}

// scriptFileMatcher calls a doesFileMatchSearch function living in a Module
type scriptFileMatcher struct {
	method Method
}

func (m scriptFileMatcher) MatchFile(contents string, meta types.FileContext) (bool, error) {
	lines := make([]any, len(meta.Lines))
	for i, l := range meta.Lines {
		lines[i] = l
	}
	return m.method(contents, map[string]any{
		"fileName": meta.FileName,
		"filePath": meta.FilePath,
		"lines":    lines,
	})
}

// scriptLineMatcher calls a doesLineMatchSearch function living in a Module
type scriptLineMatcher struct {
	method Method
}

func (m scriptLineMatcher) MatchLine(line string, meta types.LineContext) (bool, error) {
	return m.method(line, map[string]any{
		"fileName":     meta.FileName,
		"filePath":     meta.FilePath,
		"previousLine": optionalString(meta.PreviousLine),
		"nextLine":     optionalString(meta.NextLine),
	})
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
