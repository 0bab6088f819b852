package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"newsroom-cms/config"
	"newsroom-cms/images"
	"newsroom-cms/models"
	"newsroom-cms/worker"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testLogger = config.NewLoggerTo(io.Discard, "error")

func newTestDB(t *testing.T) *gorm.DB {
	db, err := config.InitDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, "error", testLogger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestQueue(t *testing.T) *worker.Queue {
	q := worker.NewQueue(worker.Options{Workers: 2, QueueSize: 64, Backoff: time.Millisecond}, testLogger)
	t.Cleanup(func() { _ = q.Close(context.Background()) })
	return q
}

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string]string
	puts    int
	deletes []string
	putErr  error
	block   bool
	next    int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string]string{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, content, existingPath string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return "", f.putErr
	}
	path := existingPath
	if path == "" {
		f.next++
		path = fmt.Sprintf("articles/articles-%d-article.txt", f.next)
	}
	f.objects[path] = content
	return path, nil
}

func (f *fakeBlobStore) Get(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[path], nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeBlobStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *fakeBlobStore) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

type fakeDeriver struct {
	mu      sync.Mutex
	calls   int
	last    map[string]images.Resolution
	removed []string
	err     error
	next    int
}

func (f *fakeDeriver) DeriveAll(ctx context.Context, data, extension string, resolutions map[string]images.Resolution) (models.ImageSet, error) {
	if data == "" || extension == "" {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = resolutions
	if f.err != nil {
		return nil, f.err
	}
	out := models.ImageSet{}
	for name, res := range resolutions {
		if res.ExistingPath != "" {
			out[name] = res.ExistingPath
			continue
		}
		f.next++
		out[name] = fmt.Sprintf("hdfs-images/%d_%d_%d.%s", f.next, res.Height, res.Width, extension)
	}
	return out, nil
}

func (f *fakeDeriver) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeDeriver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeDeriver) removedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

var errStoreDown = errors.New("store down")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
