package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Schedule()
	}
	assert.Equal(t, 5, d.Pending())

	select {
	case <-d.C():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced signal")
	}
	assert.Zero(t, d.Pending())

	select {
	case <-d.C():
		t.Fatal("burst produced more than one signal")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(10 * time.Second)
	defer d.Stop()

	d.Schedule()
	d.Flush()

	select {
	case <-d.C():
	default:
		t.Fatal("flush did not signal")
	}
	assert.Zero(t, d.Pending())
}

func TestDebouncer_StopCancels(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Schedule()
	d.Stop()

	select {
	case <-d.C():
		t.Fatal("stopped debouncer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultDebounce, NewDebouncer(0).delay)
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.jsps.ts"), 0, func(context.Context, string) {})
	assert.Error(t, err)
}

func TestWatcher_RerunsOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.jsps.ts")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	var mu sync.Mutex
	var sources []string
	runs := make(chan string, 10)
	w, err := New(path, 50*time.Millisecond, func(_ context.Context, source string) {
		mu.Lock()
		sources = append(sources, source)
		mu.Unlock()
		runs <- source
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitRun := func(want string) {
		t.Helper()
		select {
		case got := <-runs:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for run with %q", want)
		}
	}

	waitRun("v1")

	// Same bytes: the event arrives but no run starts
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))
	require.Eventually(t, func() bool {
		_, unchanged := w.Stats()
		return unchanged >= 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))
	waitRun("v2")

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ts"), []byte("x"), 0644))
	time.Sleep(150 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	runCount, _ := w.Stats()
	assert.Equal(t, 2, runCount)
	mu.Lock()
	assert.Equal(t, []string{"v1", "v2"}, sources)
	mu.Unlock()
}
