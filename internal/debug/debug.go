// Package debug writes component-tagged diagnostic lines for jsps.
//
// Output is off unless the binary was built with debug enabled, the
// JSPS_DEBUG (or DEBUG) environment variable is set, or a log file was
// opened with InitDebugLogFile. Nothing is ever written while serving MCP,
// because stdout then carries the protocol.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// EnableDebug turns logging on at build time:
// go build -ldflags "-X github.com/standardbeagle/jsps/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// Component tags each line with the subsystem that wrote it
type Component string

const (
	Load   Component = "LOAD"
	Search Component = "SEARCH"
	Run    Component = "RUN"
	Scan   Component = "SCAN"
	Watch  Component = "WATCH"
	MCP    Component = "MCP"
	Script Component = "SCRIPT"
)

type sinkState struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
	// set when a log file is open; a file is only opened to be written to
	forced bool
}

var (
	state   sinkState
	mcpMode atomic.Bool
)

// SetMCPMode suppresses all output while enabled
func SetMCPMode(enabled bool) {
	mcpMode.Store(enabled)
}

// InMCPMode reports whether output is suppressed for an MCP session
func InMCPMode() bool {
	return mcpMode.Load()
}

// SetDebugOutput directs output to w. A nil writer discards everything.
func SetDebugOutput(w io.Writer) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.out = w
}

// InitDebugLogFile opens a timestamped log file under the temp directory,
// routes output to it and enables logging. It returns the file's path.
func InitDebugLogFile() (string, error) {
	dir := filepath.Join(os.TempDir(), "jsps-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	path := filepath.Join(dir, "debug-"+time.Now().Format("2006-01-02T150405")+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.file != nil {
		state.file.Close()
	}
	state.file = file
	state.out = file
	state.forced = true
	return path, nil
}

// CloseDebugLog closes the file opened by InitDebugLogFile, if any
func CloseDebugLog() error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.file == nil {
		return nil
	}
	err := state.file.Close()
	state.file = nil
	state.out = nil
	state.forced = false
	return err
}

// IsDebugEnabled reports whether Logf would write anything given a writer
func IsDebugEnabled() bool {
	if mcpMode.Load() {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	for _, key := range []string{"JSPS_DEBUG", "DEBUG"} {
		if v := os.Getenv(key); v == "1" || v == "true" {
			return true
		}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.forced
}

// Logf writes one line tagged with c. A trailing newline is added.
func Logf(c Component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.out == nil {
		return
	}
	fmt.Fprintf(state.out, "%s [%s] %s\n", time.Now().Format("15:04:05.000"), c, fmt.Sprintf(format, args...))
}

func LogLoad(format string, args ...interface{})   { Logf(Load, format, args...) }
func LogSearch(format string, args ...interface{}) { Logf(Search, format, args...) }
func LogRun(format string, args ...interface{})    { Logf(Run, format, args...) }
func LogScan(format string, args ...interface{})   { Logf(Scan, format, args...) }
func LogWatch(format string, args ...interface{})  { Logf(Watch, format, args...) }
func LogMCP(format string, args ...interface{})    { Logf(MCP, format, args...) }

// LogScript records console output from definition code
func LogScript(format string, args ...interface{}) { Logf(Script, format, args...) }
