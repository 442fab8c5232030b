package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the predicate search system
type ErrorType string

const (
	// Definition errors
	ErrorTypeLoad      ErrorType = "load"
	ErrorTypePredicate ErrorType = "predicate"
	ErrorTypeProbe     ErrorType = "probe"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileIO       ErrorType = "file_io"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

var (
	// ErrNoFilesMatched is returned when enumeration yields no candidates.
	ErrNoFilesMatched = errors.New("no files matched the provided file patterns; check your settings object")

	// ErrDeclined is returned when the user declines a confirmation prompt.
	ErrDeclined = errors.New("search cancelled")
)

// LoadErrorKind identifies which loading step rejected a definition
type LoadErrorKind uint8

const (
	CompileFailed LoadErrorKind = iota + 1
	LinkFailed
	MissingExport
	ExportThrew
	InvalidReturn
)

func (k LoadErrorKind) String() string {
	switch k {
	case CompileFailed:
		return "compile_failed"
	case LinkFailed:
		return "link_failed"
	case MissingExport:
		return "missing_export"
	case ExportThrew:
		return "export_threw"
	case InvalidReturn:
		return "invalid_return"
	default:
		return "unknown"
	}
}

// LoadError represents a definition that could not be turned into a search
type LoadError struct {
	Type       ErrorType
	Kind       LoadErrorKind
	Export     string
	Suggestion string // closest actual export name for MissingExport, if any
	Underlying error
	Timestamp  time.Time
}

// NewLoadError creates a new load error
func NewLoadError(kind LoadErrorKind, export string, err error) *LoadError {
	return &LoadError{
		Type:       ErrorTypeLoad,
		Kind:       kind,
		Export:     export,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion records a likely intended export name
func (e *LoadError) WithSuggestion(name string) *LoadError {
	e.Suggestion = name
	return e
}

// Message returns the user-facing sentence for the error, without underlying detail
func (e *LoadError) Message() string {
	switch e.Kind {
	case CompileFailed:
		return "Unable to transpile this search definition file. Check for syntax errors."
	case LinkFailed:
		return "Unable to compile and link this search definition file. Check for errors."
	case MissingExport:
		msg := fmt.Sprintf("Could not find the %s function export in this file.", e.Export)
		if e.Suggestion != "" {
			msg += fmt.Sprintf(" Did you mean %q?", e.Suggestion)
		}
		return msg
	case ExportThrew:
		return fmt.Sprintf("An error was thrown by %s.", e.Export)
	case InvalidReturn:
		return fmt.Sprintf("%s must return an object.", e.Export)
	default:
		return "Unable to load this search definition file."
	}
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s %v", e.Message(), e.Underlying)
	}
	return e.Message()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *LoadError) Unwrap() error {
	return e.Underlying
}

// IsLoadError reports whether err is a LoadError of the given kind
func IsLoadError(err error, kind LoadErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

// PredicateError represents a user predicate that threw while evaluating a file
type PredicateError struct {
	Type       ErrorType
	Predicate  string
	FilePath   string
	Line       int // -1 for file predicates
	Underlying error
	Timestamp  time.Time
}

// NewPredicateError creates a new predicate error
func NewPredicateError(predicate, path string, line int, err error) *PredicateError {
	return &PredicateError{
		Type:       ErrorTypePredicate,
		Predicate:  predicate,
		FilePath:   path,
		Line:       line,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *PredicateError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s threw for %s line %d: %v", e.Predicate, e.FilePath, e.Line, e.Underlying)
	}
	return fmt.Sprintf("%s threw for %s: %v", e.Predicate, e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *PredicateError) Unwrap() error {
	return e.Underlying
}

// ProbeError represents a probe file that threw or exceeded its time budget
type ProbeError struct {
	Type       ErrorType
	FilePath   string
	Timeout    bool
	Duration   time.Duration
	Limit      time.Duration
	Underlying error
	Timestamp  time.Time
}

// NewProbeTimeout creates a probe error for a probe that ran over its budget
func NewProbeTimeout(path string, took, limit time.Duration) *ProbeError {
	return &ProbeError{
		Type:      ErrorTypeProbe,
		FilePath:  path,
		Timeout:   true,
		Duration:  took,
		Limit:     limit,
		Timestamp: time.Now(),
	}
}

// NewProbeThrew creates a probe error wrapping the failure of the probe file
func NewProbeThrew(path string, err error) *ProbeError {
	return &ProbeError{
		Type:       ErrorTypeProbe,
		FilePath:   path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("search took %v on %s, longer than the %v allowed by matchTestingTimeoutInSeconds",
			e.Duration.Round(time.Millisecond), e.FilePath, e.Limit)
	}
	return fmt.Sprintf("search failed on test file %s: %v", e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ProbeError) Unwrap() error {
	return e.Underlying
}

// Truncated returns the error message cut to at most n runes
func (e *ProbeError) Truncated(n int) string {
	return Truncate(e.Error(), n)
}

// Truncate shortens msg to n runes, marking the cut with an ellipsis
func Truncate(msg string, n int) string {
	if n <= 0 {
		return msg
	}
	r := []rune(msg)
	if len(r) <= n {
		return msg
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileIO
	switch {
	case isNotExist(err):
		errorType = ErrorTypeFileNotFound
	case isPermissionError(err):
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
