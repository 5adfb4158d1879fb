package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/recipevault/recipevault/recipevault/config"
)

// ImageStorage persists recipe images under opaque keys. Save returns the
// key it stored under so callers can record it on the recipe row.
type ImageStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewImageKey builds a storage key for an uploaded recipe image,
// keeping the original extension but never the original name.
func NewImageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s%s%s", config.RecipeImageRoot, uuid.New().String(), ext)
}

// LocalImageStorage writes images to a directory on disk, for development
// and test runs without an object store.
type LocalImageStorage struct {
	rootDir string
	baseURL string
}

func NewLocalImageStorage(rootDir, baseURL string) *LocalImageStorage {
	return &LocalImageStorage{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalImageStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.rootDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return key, nil
}

func (s *LocalImageStorage) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.rootDir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *LocalImageStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}
