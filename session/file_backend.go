package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend is a [Backend] over a single JSON file, for clients that own
// their local storage. Writes go through a temp file plus rename so a crash
// mid-write never leaves a torn store behind.
type FileBackend struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

// NewFileBackend creates a [FileBackend] rooted at path. The file is created
// lazily on first Set.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("session: file backend path is required")
	}
	return &FileBackend{path: path, values: map[string]string{}}, nil
}

func (b *FileBackend) load() error {
	if b.loaded {
		return nil
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		b.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read store file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &b.values); err != nil {
			return fmt.Errorf("session: decode store file: %w", err)
		}
	}
	b.loaded = true
	return nil
}

func (b *FileBackend) flush() error {
	data, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode store file: %w", err)
	}
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: close temp store: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: replace store file: %w", err)
	}
	return nil
}

// Get implements [Backend].
func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return "", false, err
	}
	value, ok := b.values[key]
	return value, ok, nil
}

// Set implements [Backend].
func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	b.values[key] = value
	return b.flush()
}

// Delete implements [Backend]. Deleting an absent key is a no-op.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	if _, ok := b.values[key]; !ok {
		return nil
	}
	delete(b.values, key)
	return b.flush()
}
