package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"newsroom-cms/storage"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) string {
	img := imaging.New(64, 48, color.NRGBA{R: 200, G: 20, B: 20, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestDeriver(t *testing.T) (Deriver, string) {
	root := t.TempDir()
	backend, err := storage.NewLocalBackend(root)
	require.NoError(t, err)
	return NewDeriver(backend, "hdfs-images"), root
}

func decodedBounds(t *testing.T, root, path string) image.Rectangle {
	img, err := imaging.Open(filepath.Join(root, path))
	require.NoError(t, err)
	return img.Bounds()
}

func TestDeriveAllRendersEveryResolution(t *testing.T) {
	deriver, root := newTestDeriver(t)

	out, err := deriver.DeriveAll(context.Background(), samplePNG(t), "png", map[string]Resolution{
		"thumbnail": {Height: 20, Width: 30},
		"image":     {Height: 40, Width: 60},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.True(t, strings.HasPrefix(out["thumbnail"], "hdfs-images/"))
	assert.True(t, strings.HasSuffix(out["thumbnail"], "_20_30.png"))
	assert.Equal(t, 30, decodedBounds(t, root, out["thumbnail"]).Dx())
	assert.Equal(t, 20, decodedBounds(t, root, out["thumbnail"]).Dy())
	assert.Equal(t, 60, decodedBounds(t, root, out["image"]).Dx())
}

func TestDeriveAllReusesExistingPath(t *testing.T) {
	deriver, root := newTestDeriver(t)

	out, err := deriver.DeriveAll(context.Background(), "data:image/png;base64,"+samplePNG(t), "PNG", map[string]Resolution{
		"thumbnail": {Height: 10, Width: 10, ExistingPath: "hdfs-images/kept.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hdfs-images/kept.png", out["thumbnail"])
	assert.Equal(t, 10, decodedBounds(t, root, "hdfs-images/kept.png").Dx())
}

func TestDeriveAllWithoutPayload(t *testing.T) {
	deriver, _ := newTestDeriver(t)

	out, err := deriver.DeriveAll(context.Background(), "", "png", map[string]Resolution{"thumbnail": {Height: 1, Width: 1}})
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = deriver.DeriveAll(context.Background(), samplePNG(t), "", map[string]Resolution{"thumbnail": {Height: 1, Width: 1}})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDeriveAllFailsWholeBatch(t *testing.T) {
	deriver, _ := newTestDeriver(t)

	_, err := deriver.DeriveAll(context.Background(), samplePNG(t), "png", map[string]Resolution{
		"ok":     {Height: 10, Width: 10},
		"broken": {Height: 0, Width: 10},
	})
	assert.Error(t, err)

	_, err = deriver.DeriveAll(context.Background(), "%%%not-base64", "png", map[string]Resolution{"ok": {Height: 10, Width: 10}})
	assert.Error(t, err)

	_, err = deriver.DeriveAll(context.Background(), samplePNG(t), "tiff2", map[string]Resolution{"ok": {Height: 10, Width: 10}})
	assert.Error(t, err)
}
