package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BlobStore keeps article bodies outside the document store.
type BlobStore interface {
	// Put writes content to existingPath, or to a freshly allocated path when
	// existingPath is empty, and returns the path written.
	Put(ctx context.Context, content, existingPath string) (string, error)
	// Get returns "" for an empty path or a missing object.
	Get(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

type contentStore struct {
	backend Backend
	dir     string
}

func NewContentStore(backend Backend, dir string) BlobStore {
	if dir == "" {
		dir = "articles"
	}
	return &contentStore{backend: backend, dir: dir}
}

func (s *contentStore) Put(ctx context.Context, content, existingPath string) (string, error) {
	path := existingPath
	if path == "" {
		path = fmt.Sprintf("%s/articles-%s-article.txt", s.dir, uuid.NewString())
	}
	if err := s.backend.Write(ctx, path, []byte(content)); err != nil {
		return "", fmt.Errorf("put content %s: %w", path, err)
	}
	return path, nil
}

func (s *contentStore) Get(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := s.backend.Read(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get content %s: %w", path, err)
	}
	return string(data), nil
}

func (s *contentStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := s.backend.Remove(ctx, path); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete content %s: %w", path, err)
	}
	return nil
}
