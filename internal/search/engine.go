package search

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/definition"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/types"
)

// Engine fans a Pipeline out over many files
type Engine struct {
	pipeline *Pipeline
	workers  int
}

// NewEngine creates an engine. workers <= 0 picks one per spare CPU.
func NewEngine(fsys FileSystem, def *definition.SearchDefinition, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	return &Engine{pipeline: NewPipeline(fsys, def), workers: workers}
}

// Workers returns the concurrency limit
func (e *Engine) Workers() int {
	return e.workers
}

// Pipeline returns the single-file pipeline
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline
}

// TestFiles evaluates every file concurrently and waits for all of them.
// Hooks fire in completion order; the returned slice is aligned with files.
// A failing file never stops the others.
func (e *Engine) TestFiles(files []types.FileCandidate, cancelled CancelFunc, hook CompletionHook) []types.Outcome {
	outcomes := make([]types.Outcome, len(files))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, file := range files {
		g.Go(func() error {
			outcomes[i] = e.pipeline.TestFile(file, cancelled, hook)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// ProbeResult is the outcome of the preliminary single-file run
type ProbeResult struct {
	Outcome  types.Outcome
	Duration time.Duration
	Limit    time.Duration
}

// Failed reports whether the probe should be confirmed before continuing
func (r ProbeResult) Failed() bool {
	return r.Outcome.IsFailure()
}

// Probe runs one file alone and times it against the definition's
// matchTestingTimeoutInSeconds. The predicate always runs to completion;
// an overrun replaces its result with a timeout failure afterwards.
// hook sees the computed outcome, before any timeout replacement.
func (e *Engine) Probe(file types.FileCandidate, cancelled CancelFunc, hook CompletionHook) ProbeResult {
	limit := e.pipeline.def.Settings.ProbeTimeout()

	start := time.Now()
	outcome := e.pipeline.TestFile(file, cancelled, hook)
	took := time.Since(start)

	switch {
	case took > limit:
		outcome = types.FailureOutcome(file, jspserrors.NewProbeTimeout(file.FilePath(), took, limit))
	case outcome.IsFailure():
		outcome = types.FailureOutcome(file, jspserrors.NewProbeThrew(file.FilePath(), outcome.Err))
	}

	debug.LogSearch("probe on %s took %v (limit %v): %s", file.Path, took, limit, outcome.Kind)
	return ProbeResult{Outcome: outcome, Duration: took, Limit: limit}
}
