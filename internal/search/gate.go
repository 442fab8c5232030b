package search

import (
	"github.com/standardbeagle/jsps/internal/debug"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/types"
)

// CancelFunc reports whether the run has been asked to stop
type CancelFunc func() bool

// NeverCancelled is a CancelFunc for runs without cancellation
func NeverCancelled() bool { return false }

// Admit decides whether a file may be evaluated. It only looks at metadata.
// This is the single point per file where cancellation is observed.
func Admit(fsys FileSystem, file types.FileCandidate, settings types.Settings, cancelled CancelFunc) (bool, error) {
	if cancelled != nil && cancelled() {
		return false, nil
	}

	info, err := fsys.Stat(file.Path)
	if err != nil {
		return false, jspserrors.NewFileError("stat", file.Path, err)
	}

	if settings.ExceedsMaxSize(info.Size()) {
		debug.LogSearch("skipping %s: %d bytes over %.0fKB cap", file.Path, info.Size(), settings.MaxFileSizeKB())
		return false, nil
	}
	return true, nil
}
