package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tender-watch/pkg/domain"
)

// FileStore keeps state in plain files under a data directory: a JSON array
// of {title, url} objects per site, or a text file holding a single URL.
type FileStore struct {
	dataDir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store rooted at dataDir
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

// path resolves a state key; absolute keys are used as-is
func (s *FileStore) path(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.dataDir, key)
}

// LoadSeen reads the JSON state file for key
func (s *FileStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var tenders []domain.Tender
	if err := json.Unmarshal(data, &tenders); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", s.path(key), err)
	}

	return tenders, nil
}

// SaveSeen writes tenders as the JSON state file for key
func (s *FileStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	if tenders == nil {
		tenders = []domain.Tender{}
	}

	data, err := json.Marshal(tenders)
	if err != nil {
		return fmt.Errorf("failed to encode tenders: %w", err)
	}

	return writeFileAtomic(s.path(key), data)
}

// LoadLastURL reads the single-URL state file for key
func (s *FileStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read state file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// SaveLastURL overwrites the single-URL state file for key
func (s *FileStore) SaveLastURL(ctx context.Context, key, url string) error {
	return writeFileAtomic(s.path(key), []byte(url))
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file next to path and renames it over
// path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
