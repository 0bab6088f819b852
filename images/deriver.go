package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"sync"

	"newsroom-cms/models"
	"newsroom-cms/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Resolution is a render target. A non-empty ExistingPath is overwritten
// instead of allocating a new path.
type Resolution struct {
	Height       int    `yaml:"height" json:"height"`
	Width        int    `yaml:"width" json:"width"`
	ExistingPath string `yaml:"-" json:"existingPath,omitempty"`
}

// Deriver renders one uploaded image into every requested resolution.
type Deriver interface {
	// DeriveAll returns nil, nil when data or extension is empty. Any failed
	// resolution fails the whole batch.
	DeriveAll(ctx context.Context, data, extension string, resolutions map[string]Resolution) (models.ImageSet, error)
	// Remove deletes a derived image.
	Remove(ctx context.Context, path string) error
}

type imagingDeriver struct {
	backend storage.Backend
	dir     string
}

func NewDeriver(backend storage.Backend, dir string) Deriver {
	if dir == "" {
		dir = "hdfs-images"
	}
	return &imagingDeriver{backend: backend, dir: dir}
}

func (d *imagingDeriver) DeriveAll(ctx context.Context, data, extension string, resolutions map[string]Resolution) (models.ImageSet, error) {
	if data == "" || extension == "" {
		return nil, nil
	}
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))

	format, err := imaging.FormatFromExtension(extension)
	if err != nil {
		return nil, fmt.Errorf("derive images: %w", err)
	}
	raw, err := decodeBase64(data)
	if err != nil {
		return nil, fmt.Errorf("derive images: decode payload: %w", err)
	}
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("derive images: %w", err)
	}

	var (
		mu    sync.Mutex
		out   = make(models.ImageSet, len(resolutions))
		fresh []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, res := range resolutions {
		g.Go(func() error {
			path, err := d.render(gctx, src, format, extension, res)
			if err != nil {
				return fmt.Errorf("derive %s: %w", name, err)
			}
			mu.Lock()
			out[name] = path
			if res.ExistingPath == "" {
				fresh = append(fresh, path)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleanup := context.WithoutCancel(ctx)
		for _, path := range fresh {
			_ = d.backend.Remove(cleanup, path)
		}
		return nil, err
	}
	return out, nil
}

func (d *imagingDeriver) render(ctx context.Context, src image.Image, format imaging.Format, extension string, res Resolution) (string, error) {
	if res.Height <= 0 || res.Width <= 0 {
		return "", fmt.Errorf("invalid resolution %dx%d", res.Height, res.Width)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resized := imaging.Fill(src, res.Width, res.Height, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return "", err
	}

	path := res.ExistingPath
	if path == "" {
		path = fmt.Sprintf("%s/%s_%d_%d.%s", d.dir, uuid.NewString(), res.Height, res.Width, extension)
	}
	if err := d.backend.Write(ctx, path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func (d *imagingDeriver) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	return d.backend.Remove(ctx, path)
}

// decodeBase64 accepts raw base64 or a data URI.
func decodeBase64(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(data))
}
