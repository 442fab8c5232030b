// Package run sequences a search: load, enumerate, confirm, probe, then the
// concurrent full run, streaming outcomes to the run's sink.
package run

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/definition"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/search"
	"github.com/standardbeagle/jsps/internal/types"
)

// State is a step of the run state machine
type State int

const (
	StateIdle State = iota
	StateLoading
	StateEnumerating
	StateConfirmingScale
	StateProbing
	StateConfirmingProbeFailure
	StateRunning
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateEnumerating:
		return "enumerating"
	case StateConfirmingScale:
		return "confirming-scale"
	case StateProbing:
		return "probing"
	case StateConfirmingProbeFailure:
		return "confirming-probe-failure"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefinitionLoader turns definition source into a SearchDefinition
type DefinitionLoader interface {
	Load(name, source string) (*definition.SearchDefinition, error)
}

// Enumerator lists candidate files for the effective glob patterns
type Enumerator interface {
	Enumerate(ctx context.Context, include, exclude []string) ([]types.FileCandidate, error)
}

// Options tunes an Orchestrator
type Options struct {
	// ConfirmThreshold is the candidate count above which ConfirmScale is asked. 0 disables it.
	ConfirmThreshold int
	// ProbeMessageLimit truncates the probe failure shown to the confirmer. 0 disables truncation.
	ProbeMessageLimit int
	// Workers bounds concurrent file evaluation. 0 picks a default.
	Workers int
	// OnStateChange, when set, observes every transition.
	OnStateChange func(State)
}

// DefaultOptions returns the options used when no config is present
func DefaultOptions() Options {
	return Options{
		ConfirmThreshold:  types.DefaultConfirmThreshold,
		ProbeMessageLimit: types.DefaultProbeMessageLimit,
	}
}

// Orchestrator runs searches. It holds no per-run state besides the current
// State, so one Orchestrator may serve consecutive runs.
type Orchestrator struct {
	loader     DefinitionLoader
	enumerator Enumerator
	fs         search.FileSystem
	opts       Options

	mu    sync.Mutex
	state State
}

// New creates an orchestrator. A nil fsys reads from the OS.
func New(loader DefinitionLoader, enumerator Enumerator, fsys search.FileSystem, opts Options) *Orchestrator {
	return &Orchestrator{
		loader:     loader,
		enumerator: enumerator,
		fs:         fsys,
		opts:       opts,
	}
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.opts.OnStateChange != nil {
		o.opts.OnStateChange(s)
	}
}

// tally counts outcomes by kind across workers
type tally struct {
	reported atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
}

func (t *tally) add(o types.Outcome) {
	switch {
	case o.IsFailure():
		t.failed.Add(1)
	case o.IsSkipped():
		t.skipped.Add(1)
	case o.Reportable():
		t.reported.Add(1)
	}
}

// Run loads the definition in source and searches with it.
//
// Load errors, an empty enumeration and declined confirmations abort the run
// before any file content is read; the returned stats are marked Aborted and
// the error says why. Per-file failures never abort: they reach the sink.
// The sink sees OnRunStart and OnRunEnd only for runs that reach Running.
func (o *Orchestrator) Run(rc *RunContext, name, source string) (types.RunStats, error) {
	start := time.Now()
	stats := types.RunStats{RunID: rc.ID}

	abort := func(err error) (types.RunStats, error) {
		stats.Aborted = true
		stats.Reason = err.Error()
		stats.Elapsed = time.Since(start)
		debug.LogRun("run %s aborted in %s: %v", rc.ID, o.State(), err)
		o.setState(StateFinalized)
		return stats, err
	}

	o.setState(StateLoading)
	def, err := o.loader.Load(name, source)
	if err != nil {
		return abort(err)
	}

	o.setState(StateEnumerating)
	files, err := o.enumerator.Enumerate(rc.Ctx, def.Settings.IncludeGlobs(), def.Settings.ExcludeGlobs())
	if err != nil {
		return abort(fmt.Errorf("enumerating files: %w", err))
	}
	if len(files) == 0 {
		return abort(jspserrors.ErrNoFilesMatched)
	}
	stats.Candidates = len(files)
	debug.LogRun("run %s: %d candidate files", rc.ID, len(files))

	if o.opts.ConfirmThreshold > 0 && len(files) > o.opts.ConfirmThreshold {
		o.setState(StateConfirmingScale)
		if err := confirmed(rc.Confirmer.ConfirmScale(rc.Ctx, len(files))); err != nil {
			return abort(err)
		}
	}

	engine := search.NewEngine(o.fs, def, o.opts.Workers)

	o.setState(StateProbing)
	probe := engine.Probe(files[0], rc.Cancelled, nil)
	if probe.Failed() {
		o.setState(StateConfirmingProbeFailure)
		message := jspserrors.Truncate(probe.Outcome.Err.Error(), o.opts.ProbeMessageLimit)
		if err := confirmed(rc.Confirmer.ConfirmProbeFailure(rc.Ctx, message)); err != nil {
			return abort(err)
		}
	}

	o.setState(StateRunning)
	rc.Sink.OnRunStart(rc.ID)

	var counts tally
	progress := NewProgressTracker(len(files), rc.Progress)
	complete := func(outcome types.Outcome) types.Outcome {
		counts.add(outcome)
		progress.IncrementCompleted()
		if outcome.IsFailure() {
			debug.LogSearch("run %s: %s failed: %v", rc.ID, outcome.FilePath, outcome.Err)
		}
		if outcome.IsFailure() || outcome.Reportable() {
			rc.Sink.OnResult(outcome)
		}
		return outcome
	}

	complete(probe.Outcome)
	engine.TestFiles(files[1:], rc.Cancelled, complete)

	stats.Reported = int(counts.reported.Load())
	stats.Failed = int(counts.failed.Load())
	stats.Skipped = int(counts.skipped.Load())
	stats.Elapsed = time.Since(start)
	if rc.Cancelled() {
		stats.Reason = "cancelled"
	}

	rc.Sink.OnRunEnd(stats)
	o.setState(StateFinalized)
	debug.LogRun("run %s finished in %v: %d reported, %d failed, %d skipped",
		rc.ID, stats.Elapsed, stats.Reported, stats.Failed, stats.Skipped)
	return stats, nil
}

// confirmed turns a confirmer answer into an abort reason
func confirmed(ok bool, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", jspserrors.ErrDeclined, err)
		}
		return err
	}
	if !ok {
		return jspserrors.ErrDeclined
	}
	return nil
}
