package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store abstracts where uploaded document files live. The processing
// pipeline only needs to write, read back and remove the original bytes.
type Store interface {
	Save(data []byte, filename string) (string, error)
	Load(path string) ([]byte, error)
	Delete(path string) error
}

// LocalStore keeps document files on the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a local file store rooted at basePath
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Save writes the file under a unique name and returns its path
func (s *LocalStore) Save(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filename), ext)

	uniqueID := uuid.New().String()[:8]
	finalFilename := fmt.Sprintf("%s_%d_%s%s", nameWithoutExt, time.Now().Unix(), uniqueID, ext)

	path := filepath.Join(s.basePath, finalFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// Load reads a previously saved file back
func (s *LocalStore) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes a saved file. A file that is already gone is not an error.
func (s *LocalStore) Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
