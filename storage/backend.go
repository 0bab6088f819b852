package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when no object exists at a path.
var ErrNotFound = errors.New("object not found")

// Backend reads and writes raw objects at caller-chosen relative paths.
type Backend interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}
