package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/standardbeagle/jsps/internal/types"
	"github.com/standardbeagle/jsps/pkg/pathutil"
)

// Format selects how a Writer renders results
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Writer streams results to an io.Writer as they complete
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	root   string
	format Format
	err    error
}

// NewWriter creates a writer. Paths under root are printed relative to it.
func NewWriter(out io.Writer, root string, format Format) *Writer {
	return &Writer{out: out, root: root, format: format}
}

// Err returns the first write error, if any
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// jsonRecord is one line of JSON output. Field names follow the
// definition's own camelCase vocabulary. The match fields are pointers so a
// result always carries matchesByFile, and matchesByLine is present (possibly
// as {}) exactly when a line predicate ran.
type jsonRecord struct {
	Type          string          `json:"type"`
	RunID         string          `json:"runId,omitempty"`
	FileName      string          `json:"fileName,omitempty"`
	FilePath      string          `json:"filePath,omitempty"`
	MatchesByFile *bool           `json:"matchesByFile,omitempty"`
	MatchesByLine *map[int]string `json:"matchesByLine,omitempty"`
	Error         string          `json:"error,omitempty"`
	Stats         *jsonStats      `json:"stats,omitempty"`
}

type jsonStats struct {
	Candidates int     `json:"candidates"`
	Reported   int     `json:"reported"`
	Failed     int     `json:"failed"`
	Skipped    int     `json:"skipped"`
	ElapsedMs  float64 `json:"elapsedMs"`
	Aborted    bool    `json:"aborted,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

func (w *Writer) OnRunStart(runID string) {
	if w.format == FormatJSON {
		w.writeJSON(jsonRecord{Type: "start", RunID: runID})
	}
}

func (w *Writer) OnResult(outcome types.Outcome) {
	path := w.display(outcome)
	if w.format == FormatJSON {
		rec := jsonRecord{Type: "result", FileName: outcome.FileName, FilePath: path}
		if outcome.IsFailure() {
			rec.Type = "failure"
			rec.Error = outcome.Err.Error()
		} else {
			byFile := outcome.MatchesByFile
			rec.MatchesByFile = &byFile
			if outcome.MatchesByLine != nil {
				byLine := outcome.MatchesByLine
				rec.MatchesByLine = &byLine
			}
		}
		w.writeJSON(rec)
		return
	}

	if outcome.IsFailure() {
		w.printf("%s: error: %v\n", path, outcome.Err)
		return
	}
	if len(outcome.MatchesByLine) == 0 {
		w.printf("%s\n", path)
		return
	}
	// one write per file keeps concurrent results from interleaving
	text := path + "\n"
	for _, m := range outcome.SortedLineMatches() {
		text += fmt.Sprintf("  %d: %s\n", m.Index+1, m.Text)
	}
	w.printf("%s", text)
}

func (w *Writer) OnRunEnd(stats types.RunStats) {
	if w.format == FormatJSON {
		w.writeJSON(jsonRecord{Type: "summary", RunID: stats.RunID, Stats: &jsonStats{
			Candidates: stats.Candidates,
			Reported:   stats.Reported,
			Failed:     stats.Failed,
			Skipped:    stats.Skipped,
			ElapsedMs:  float64(stats.Elapsed) / float64(time.Millisecond),
			Aborted:    stats.Aborted,
			Reason:     stats.Reason,
		}})
		return
	}
	w.printf("%s\n", FormatSummary(stats))
}

// FormatSummary renders the one-line human summary of a run
func FormatSummary(stats types.RunStats) string {
	if stats.Aborted {
		return fmt.Sprintf("search aborted: %s", stats.Reason)
	}
	return fmt.Sprintf("%d matching files, %d failed, %d skipped of %d searched in %v",
		stats.Reported, stats.Failed, stats.Skipped, stats.Candidates, stats.Elapsed.Round(time.Millisecond))
}

func (w *Writer) display(outcome types.Outcome) string {
	return filepath.ToSlash(pathutil.ToRelative(outcome.File.Path, w.root))
}

func (w *Writer) writeJSON(rec jsonRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		w.fail(err)
		return
	}
	w.printf("%s\n", data)
}

func (w *Writer) printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.out, format, args...); err != nil {
		w.err = err
	}
}

func (w *Writer) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
