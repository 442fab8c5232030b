// Package pathutil converts between the absolute paths used during a run and
// the root-relative paths shown to users.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/jsps/internal/types"
)

// ToRelative converts an absolute path to one relative to rootDir.
// Paths that are already relative, or that lie outside rootDir, are returned
// unchanged (cleaned, in the latter case).
//
// Examples:
//   - ToRelative("/home/user/project/src/main.ts", "/home/user/project") → "src/main.ts"
//   - ToRelative("/other/location/file.ts", "/home/user/project") → "/other/location/file.ts"
//   - ToRelative("src/main.ts", "/home/user/project") → "src/main.ts"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// ToRelativeOutcomes rewrites the FilePath of each outcome relative to rootDir,
// using forward slashes. The input slice is not modified.
func ToRelativeOutcomes(outcomes []types.Outcome, rootDir string) []types.Outcome {
	if len(outcomes) == 0 {
		return outcomes
	}

	converted := make([]types.Outcome, len(outcomes))
	copy(converted, outcomes)
	for i := range converted {
		converted[i].FilePath = filepath.ToSlash(ToRelative(converted[i].File.Path, rootDir))
	}
	return converted
}
