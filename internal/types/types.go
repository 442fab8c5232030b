package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Common system-wide constants
const (
	// Settings defaults applied when a definition omits a field
	DefaultMaxFileSizeInKB              = 1000
	DefaultMatchTestingTimeoutInSeconds = 5

	// Glob defaults used while building the effective pattern lists
	DefaultIncludePattern     = "**/*"
	NodeModulesExcludePattern = "**/node_modules/**"

	// DefaultConfirmThreshold is the candidate count above which a run needs explicit confirmation.
	DefaultConfirmThreshold = 500

	// ProgressSteps is the number of evenly spaced progress reports over a run.
	ProgressSteps = 25

	// DefaultProbeMessageLimit caps probe failure text shown in confirmation prompts.
	DefaultProbeMessageLimit = 300

	// BytesPerKB matches the size cap arithmetic of definitions (size / 1000 > maxFileSizeInKB).
	BytesPerKB = 1000
)

// FileCandidate is a handle to one file produced by enumeration.
// Path is the OS path used for stat and read; FilePath and FileName are derived from it.
type FileCandidate struct {
	Path string `json:"path"`
}

// NewFileCandidate creates a candidate for the given OS path
func NewFileCandidate(path string) FileCandidate {
	return FileCandidate{Path: path}
}

// FilePath returns the candidate path with forward slashes
func (f FileCandidate) FilePath() string {
	return filepath.ToSlash(f.Path)
}

// FileName returns the last path segment
func (f FileCandidate) FileName() string {
	p := f.FilePath()
	return p[strings.LastIndex(p, "/")+1:]
}

// FileContext is the metadata handed to a file predicate.
type FileContext struct {
	FileName string
	FilePath string
	Lines    []string
}

// LineContext is the metadata handed to a line predicate.
// PreviousLine and NextLine are nil at file boundaries.
type LineContext struct {
	FileName     string
	FilePath     string
	PreviousLine *string
	NextLine     *string
}

// RunStats summarizes a finished or aborted run.
type RunStats struct {
	RunID      string        `json:"run_id"`
	Candidates int           `json:"candidates"`
	Reported   int           `json:"reported"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Aborted    bool          `json:"aborted"`
	Reason     string        `json:"reason,omitempty"`
}
