package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Store implements ports.Backend using a single JSON document on the local filesystem.
// It mirrors a browser storage area: one flat map of string keys to string values.
type Store struct {
	Path string
	mu   sync.Mutex
}

// New creates a new Store backed by the file at path.
// If path is empty, it defaults to ".leadchat/ledger.json".
func New(path string) *Store {
	if path == "" {
		path = filepath.Join(".leadchat", "ledger.json")
	}
	return &Store{Path: path}
}

// Get reads the value for key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set writes the value for key and persists the document atomically.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	data[key] = value
	return s.write(data)
}

// Remove deletes key from the document.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.write(data)
}

// Keys lists every key in the document, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// read loads the document. A missing file is an empty document.
func (s *Store) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read ledger file: %w: %w", domain.ErrStorageUnavailable, err)
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger file: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return data, nil
}

// write persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) write(data map[string]string) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure ledger directory: %w", err)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to ledger: %w", err)
	}
	return nil
}
