package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// FileStore keeps records in a JSON object on disk, keyed like browser local
// storage. Other keys in the file are preserved.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Put replaces the stored profile.
func (s *FileStore) Put(ctx context.Context, profile *types.ExtractedProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("profile is required")
	}

	value, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked()
	if err != nil {
		return err
	}
	records[types.ProfileStorageKey] = value

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	return s.writeLocked(data)
}

// Get returns the stored profile or ErrNotFound.
func (s *FileStore) Get(ctx context.Context) (*types.ExtractedProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.readLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	raw, ok := records[types.ProfileStorageKey]
	if !ok || string(raw) == "null" {
		return nil, ErrNotFound
	}

	var profile types.ExtractedProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode stored profile: %w", err)
	}
	return &profile, nil
}

func (s *FileStore) readLocked() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	records := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", s.path, err)
	}
	return records, nil
}

// writeLocked replaces the file atomically so readers never see a partial write.
func (s *FileStore) writeLocked(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jobfit-store-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
