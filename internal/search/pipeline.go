package search

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/definition"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/types"
)

// CompletionHook sees every outcome before it is returned and may replace it
type CompletionHook func(types.Outcome) types.Outcome

// Pipeline evaluates one loaded definition against single files.
// It holds no per-file state, so one Pipeline serves any number of goroutines.
type Pipeline struct {
	fs  FileSystem
	def *definition.SearchDefinition
}

// NewPipeline creates a pipeline for def reading through fsys
func NewPipeline(fsys FileSystem, def *definition.SearchDefinition) *Pipeline {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Pipeline{fs: fsys, def: def}
}

// Definition returns the definition the pipeline runs
func (p *Pipeline) Definition() *definition.SearchDefinition {
	return p.def
}

// TestFile gates then evaluates file, passing the outcome through hook.
// The hook runs exactly once whether the file was skipped, failed or succeeded.
func (p *Pipeline) TestFile(file types.FileCandidate, cancelled CancelFunc, hook CompletionHook) types.Outcome {
	outcome := p.gateAndEvaluate(file, cancelled)
	if hook != nil {
		outcome = hook(outcome)
	}
	return outcome
}

func (p *Pipeline) gateAndEvaluate(file types.FileCandidate, cancelled CancelFunc) types.Outcome {
	admitted, err := Admit(p.fs, file, p.def.Settings, cancelled)
	if err != nil {
		debug.LogSearch("gate failed for %s: %v", file.Path, err)
		return types.FailureOutcome(file, err)
	}
	if !admitted {
		return types.SkippedOutcome()
	}
	return p.Evaluate(file)
}

// Evaluate runs the predicates on an admitted file. A predicate that throws
// or panics turns the whole file into a Failure; partial line matches are dropped.
func (p *Pipeline) Evaluate(file types.FileCandidate) (outcome types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("predicate panicked: %v", r)
			debug.LogSearch("%s: %v", file.Path, err)
			outcome = types.FailureOutcome(file, err)
		}
	}()

	outcome = types.Outcome{
		Kind:     types.OutcomeSuccess,
		File:     file,
		FileName: file.FileName(),
		FilePath: file.FilePath(),
	}

	if p.def.MatchesEverything() {
		outcome.MatchesByFile = true
		return outcome
	}

	raw, err := p.fs.ReadFile(file.Path)
	if err != nil {
		return types.FailureOutcome(file, jspserrors.NewFileError("read", file.Path, err))
	}
	contents := string(raw)
	lines := SplitLines(contents)

	if p.def.FileMatcher != nil {
		matched, err := p.def.FileMatcher.MatchFile(contents, types.FileContext{
			FileName: outcome.FileName,
			FilePath: outcome.FilePath,
			Lines:    lines,
		})
		if err != nil {
			return p.fail(file, definition.FileMatcherMethod, -1, err)
		}
		outcome.MatchesByFile = matched
	}

	if p.def.LineMatcher == nil {
		return outcome
	}
	if p.def.Settings.OnlyTestLinesInMatchingFiles && !outcome.MatchesByFile {
		return outcome
	}

	matches := make(map[int]string)
	for i, line := range lines {
		meta := types.LineContext{FileName: outcome.FileName, FilePath: outcome.FilePath}
		if i > 0 {
			meta.PreviousLine = &lines[i-1]
		}
		if i < len(lines)-1 {
			meta.NextLine = &lines[i+1]
		}

		matched, err := p.def.LineMatcher.MatchLine(line, meta)
		if err != nil {
			return p.fail(file, definition.LineMatcherMethod, i, err)
		}
		if matched {
			matches[i] = strings.TrimSpace(line)
		}
	}
	outcome.MatchesByLine = matches
	return outcome
}

func (p *Pipeline) fail(file types.FileCandidate, predicate string, line int, err error) types.Outcome {
	predErr := jspserrors.NewPredicateError(predicate, file.FilePath(), line, err)
	debug.LogSearch("%v", predErr)
	return types.FailureOutcome(file, predErr)
}
