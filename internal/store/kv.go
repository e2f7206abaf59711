package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is the synchronous string-keyed backing store the persistence layer is
// built on. Three logical keys are used: the note collection, the tag index
// and the flat flashcard collection; all values are JSON text.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores the value for key, replacing any previous value.
	Set(key, value string) error
}

// FileKV stores each key as one JSON file inside a data directory.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed store rooted at dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir %s: %w", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the file for key; a missing file is "not present", not an error.
func (f *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes the value through a temp file rename so readers never observe a
// partially written value.
func (f *FileKV) Set(key, value string) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("store: commit %s: %w", key, err)
	}
	return nil
}

// MemoryKV is an in-memory KV used by tests and throwaway runs.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

var (
	_ KV = (*FileKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
