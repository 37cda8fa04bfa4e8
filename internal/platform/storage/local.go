// Package storage persists uploaded attachments on the local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory the store writes to, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the upload under a generated name and returns that name.
// The client-supplied base name is slugified so the stored name is safe
// to serve back as a URL path segment.
func (s *LocalStore) Save(src io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)

	name := uuid.NewString()
	if cleaned := slug.Make(base); cleaned != "" {
		name += "_" + cleaned
	}
	name += strings.ToLower(ext)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating attachment file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing attachment file: %w", err)
	}
	return name, nil
}
