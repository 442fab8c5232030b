// Package scan enumerates candidate files under a root directory using
// doublestar include/exclude globs matched against root-relative slash paths.
package scan

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/types"
)

// Options configures a Walker
type Options struct {
	Root             string
	RespectGitignore bool
	SkipBinary       bool
	ExtraExcludes    []string // appended to every Enumerate call
	ExtraIncludes    []string // appended to every Enumerate call
}

// Walker lists files under a root directory
type Walker struct {
	root          string
	ignore        *gitignore.GitIgnore
	skipBinary    bool
	extraExcludes []string
	extraIncludes []string
}

// NewWalker creates a walker. A missing or unreadable .gitignore only
// produces a warning.
func NewWalker(opts Options) *Walker {
	root := opts.Root
	if root == "" {
		root = "."
	}
	w := &Walker{
		root:          root,
		skipBinary:    opts.SkipBinary,
		extraExcludes: opts.ExtraExcludes,
		extraIncludes: opts.ExtraIncludes,
	}

	if opts.RespectGitignore {
		gitignorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			ignore, err := gitignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				log.Printf("Warning: failed to load .gitignore: %v", err)
			} else {
				w.ignore = ignore
			}
		}
	}
	return w
}

// Root returns the directory being walked
func (w *Walker) Root() string {
	return w.root
}

// Enumerate returns every file matching at least one include pattern and no
// exclude pattern, in lexical walk order. Excluded directories are pruned.
// The walk stops with ctx.Err() when ctx is cancelled.
func (w *Walker) Enumerate(ctx context.Context, include, exclude []string) ([]types.FileCandidate, error) {
	include = append(append([]string{}, include...), w.extraIncludes...)
	exclude = append(append([]string{}, exclude...), w.extraExcludes...)
	include = validPatterns(include)
	exclude = validPatterns(exclude)

	debug.LogScan("enumerating %s include=%v exclude=%v", w.root, include, exclude)

	var files []types.FileCandidate
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			debug.LogScan("scanner error for %s: %v", path, walkErr)
			if d != nil && d.IsDir() && path != w.root {
				return filepath.SkipDir
			}
			if path == w.root {
				return walkErr
			}
			return nil
		}

		if path == w.root {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			relPath = path
		}
		normalized := filepath.ToSlash(relPath)

		if d.IsDir() {
			if matchesAny(exclude, normalized) || matchesAny(exclude, normalized+"/") || w.ignored(normalized, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Symlinked files are searched; symlinked directories are not followed
			if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if matchesAny(exclude, normalized) || !matchesAny(include, normalized) {
			return nil
		}
		if w.ignored(normalized, false) {
			return nil
		}
		if w.skipBinary && IsBinaryPath(normalized) {
			return nil
		}

		files = append(files, types.NewFileCandidate(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	debug.LogScan("enumerated %d files under %s", len(files), w.root)
	return files, nil
}

func (w *Walker) ignored(rel string, isDir bool) bool {
	if w.ignore == nil {
		return false
	}
	if isDir {
		return w.ignore.MatchesPath(rel) || w.ignore.MatchesPath(rel+"/")
	}
	return w.ignore.MatchesPath(rel)
}

// Match reports whether rel passes the include and exclude patterns
func Match(include, exclude []string, rel string) bool {
	return matchesAny(include, rel) && !matchesAny(exclude, rel)
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// validPatterns drops patterns doublestar cannot parse, warning about each
func validPatterns(patterns []string) []string {
	out := patterns[:0]
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			log.Printf("Warning: ignoring invalid glob pattern %q", p)
			continue
		}
		out = append(out, p)
	}
	return out
}
