package types

import (
	"math"
	"time"
)

// Settings is the object returned by a definition's getSettings export.
// Optional fields are pointers so that "absent" and "zero" stay distinguishable.
type Settings struct {
	IncludeFilePatterns          []string `json:"includeFilePatterns,omitempty"`
	ExcludeFilePatterns          []string `json:"excludeFilePatterns,omitempty"`
	IncludeNodeModules           bool     `json:"includeNodeModules,omitempty"`
	MaxFileSizeInKB              *float64 `json:"maxFileSizeInKB,omitempty"`
	OnlyTestLinesInMatchingFiles bool     `json:"onlyTestLinesInMatchingFiles,omitempty"`
	MatchTestingTimeoutInSeconds *float64 `json:"matchTestingTimeoutInSeconds,omitempty"`
}

// MaxFileSizeKB returns the effective size cap. Zero means unlimited.
func (s Settings) MaxFileSizeKB() float64 {
	if s.MaxFileSizeInKB == nil {
		return DefaultMaxFileSizeInKB
	}
	return *s.MaxFileSizeInKB
}

// ExceedsMaxSize reports whether a file of the given size is over the cap.
// A cap that is not a positive number disables the check.
func (s Settings) ExceedsMaxSize(size int64) bool {
	limit := s.MaxFileSizeKB()
	if !(limit > 0) {
		return false
	}
	return float64(size)/BytesPerKB > limit
}

// ProbeTimeout returns the wall-clock budget for the probe file.
// Absent, non-positive and NaN values fall back to the default. Values past
// what a Duration can hold, Infinity included, saturate.
func (s Settings) ProbeTimeout() time.Duration {
	secs := float64(DefaultMatchTestingTimeoutInSeconds)
	if s.MatchTestingTimeoutInSeconds != nil && *s.MatchTestingTimeoutInSeconds > 0 {
		secs = *s.MatchTestingTimeoutInSeconds
	}
	nanos := secs * float64(time.Second)
	if nanos >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(nanos)
}

// IncludeGlobs returns the effective include patterns
func (s Settings) IncludeGlobs() []string {
	if len(s.IncludeFilePatterns) == 0 {
		return []string{DefaultIncludePattern}
	}
	out := make([]string, len(s.IncludeFilePatterns))
	copy(out, s.IncludeFilePatterns)
	return out
}

// ExcludeGlobs returns the effective exclude patterns, adding the node_modules
// exclusion unless the definition opted in to searching it.
func (s Settings) ExcludeGlobs() []string {
	out := make([]string, 0, len(s.ExcludeFilePatterns)+1)
	out = append(out, s.ExcludeFilePatterns...)
	if !s.IncludeNodeModules {
		out = append(out, NodeModulesExcludePattern)
	}
	return out
}

// Float is a helper for building optional numeric settings
func Float(v float64) *float64 {
	return &v
}
