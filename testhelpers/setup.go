package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"
)

// WriteTree creates files (slash-separated relative path to content) under
// a fresh temp dir and returns the dir
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// AssertNoLeaks fails t if goroutines other than those already running
// when the returned function was created are still alive at the end of the test.
// Usage: defer testhelpers.AssertNoLeaks(t)()
func AssertNoLeaks(t *testing.T) func() {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	return func() {
		t.Helper()
		goleak.VerifyNone(t, ignore)
	}
}

// SkipIfShort skips the test if -short flag is provided
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping in short mode: %s", reason)
	}
}
