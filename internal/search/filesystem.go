package search

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// FileSystem abstracts the two operations the pipeline performs on a file
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem implements FileSystem using the actual filesystem
type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemFileSystem is an in-memory FileSystem for tests and for searching
// content that never touched disk. It counts reads so callers can verify
// that skipped files were never loaded.
type MemFileSystem struct {
	mu    sync.RWMutex
	files map[string]memFile
	reads atomic.Int64
}

type memFile struct {
	content []byte
	size    int64
}

// NewMemFileSystem creates an empty in-memory filesystem
func NewMemFileSystem() *MemFileSystem {
	return &MemFileSystem{files: make(map[string]memFile)}
}

// AddFile stores content under path
func (m *MemFileSystem) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = memFile{content: []byte(content), size: int64(len(content))}
}

// AddSizedFile stores content but reports size from Stat
func (m *MemFileSystem) AddSizedFile(path, content string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = memFile{content: []byte(content), size: size}
}

// Paths returns every stored path in lexical order
func (m *MemFileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reads returns how many ReadFile calls succeeded
func (m *MemFileSystem) Reads() int64 {
	return m.reads.Load()
}

func (m *MemFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return memFileInfo{name: path.Base(name), size: f.size}, nil
}

func (m *MemFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	m.reads.Add(1)
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0644 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
