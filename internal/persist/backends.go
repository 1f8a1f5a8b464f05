package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/starford/inkflow/internal/apperr"
	"github.com/starford/inkflow/internal/checksum"
	"github.com/starford/inkflow/internal/storage"
)

var fileNames = map[string]string{
	KeyNotes:     "notes.json",
	KeyNotebooks: "notebooks.json",
}

// FileName maps a logical key to its file under the data directory.
func FileName(key string) string {
	if name, ok := fileNames[key]; ok {
		return name
	}
	return key + ".json"
}

// FileBackend stores each key as a JSON file through a storage.Provider.
type FileBackend struct {
	files storage.Provider

	mu      sync.Mutex
	written map[string]string // file name -> checksum of our last write
}

// NewFileBackend returns a backend writing under files.Root().
func NewFileBackend(files storage.Provider) *FileBackend {
	return &FileBackend{files: files, written: make(map[string]string)}
}

// Name identifies the backend in logs.
func (b *FileBackend) Name() string { return "file" }

// Dir returns the data directory.
func (b *FileBackend) Dir() string { return b.files.Root() }

// Get reads the file for key.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := b.files.Read(FileName(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file backend: %s: %w", key, apperr.ErrNotFound)
	}
	return data, err
}

// Put atomically replaces the file for key.
func (b *FileBackend) Put(_ context.Context, key string, value []byte) error {
	name := FileName(key)
	// Record before writing so a watcher never sees the file ahead of the checksum.
	b.mu.Lock()
	prev := b.written[name]
	b.written[name] = checksum.Sum(value)
	b.mu.Unlock()

	if err := b.files.Write(name, value); err != nil {
		b.mu.Lock()
		b.written[name] = prev
		b.mu.Unlock()
		return err
	}
	return nil
}

// OwnWrite reports whether sum is the checksum of the last value this backend
// wrote to file name, so watchers can ignore their own writes.
func (b *FileBackend) OwnWrite(name, sum string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written[name] == sum
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
	// FailPuts makes every Put fail, for exercising persistence failure paths.
	FailPuts bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// Name identifies the backend in logs.
func (m *MemoryBackend) Name() string { return "memory" }

// Get returns a copy of the value under key.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("memory backend: %s: %w", key, apperr.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value under key.
func (m *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts {
		return errors.New("memory backend: write refused")
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}
