package types

import "sort"

// OutcomeKind tags a MatchOutcome
type OutcomeKind uint8

const (
	// OutcomeSkipped is the zero value, so an unset Outcome reads as "no result".
	OutcomeSkipped OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "skipped"
	}
}

// Outcome is the result of evaluating one file.
//
// MatchesByLine is nil when no line predicate ran for the file, and a non-nil
// (possibly empty) map of line index to trimmed line text when it did.
// Err is set only for failures. Outcomes are never modified after creation.
type Outcome struct {
	Kind          OutcomeKind
	File          FileCandidate
	FileName      string
	FilePath      string
	MatchesByFile bool
	MatchesByLine map[int]string
	Err           error
}

// SkippedOutcome returns the payload-free skip outcome
func SkippedOutcome() Outcome {
	return Outcome{}
}

// FailureOutcome builds a failure for the given file
func FailureOutcome(file FileCandidate, err error) Outcome {
	return Outcome{
		Kind:     OutcomeFailure,
		File:     file,
		FileName: file.FileName(),
		FilePath: file.FilePath(),
		Err:      err,
	}
}

// IsSkipped reports whether the outcome carries no result
func (o Outcome) IsSkipped() bool { return o.Kind == OutcomeSkipped }

// IsFailure reports whether a predicate or probe failed for the file
func (o Outcome) IsFailure() bool { return o.Kind == OutcomeFailure }

// IsSuccess reports whether the predicates ran to completion
func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// Reportable reports whether a success carries at least one positive signal
func (o Outcome) Reportable() bool {
	return o.Kind == OutcomeSuccess && (o.MatchesByFile || len(o.MatchesByLine) > 0)
}

// LineMatch is one matched line in index order
type LineMatch struct {
	Index int    `json:"line"`
	Text  string `json:"text"`
}

// SortedLineMatches returns the line matches ordered by line index
func (o Outcome) SortedLineMatches() []LineMatch {
	if len(o.MatchesByLine) == 0 {
		return nil
	}
	out := make([]LineMatch, 0, len(o.MatchesByLine))
	for idx, text := range o.MatchesByLine {
		out = append(out, LineMatch{Index: idx, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
