package raw_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenvault/photovault/internal/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRAWRecognizesKnownExtensions(t *testing.T) {
	for _, ext := range []string{".cr2", ".CR3", ".nef", ".arw", ".dng", ".orf", ".raf", ".rw2", ".pef", ".srw"} {
		assert.True(t, raw.IsRAW("photo"+ext), ext)
	}
	assert.False(t, raw.IsRAW("photo.jpg"))
}

func TestDecodeEmbeddedPreviewFindsLargestJPEG(t *testing.T) {
	small := encodeJPEG(t, 4, 4)
	large := encodeJPEG(t, 64, 64)

	container := append([]byte("LEADER-BYTES-NOT-JPEG"), small...)
	container = append(container, []byte("MIDDLE-GARBAGE")...)
	container = append(container, large...)
	container = append(container, []byte("TRAILER")...)

	path := filepath.Join(t.TempDir(), "sample.dng")
	require.NoError(t, os.WriteFile(path, container, 0o644))

	img, err := raw.Decode(path, raw.StrategyEmbeddedPreview)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestDecodeEmbeddedPreviewFailsWithoutJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.cr2")
	require.NoError(t, os.WriteFile(path, []byte("no jpeg markers here"), 0o644))

	_, err := raw.Decode(path, raw.StrategyEmbeddedPreview)
	require.Error(t, err)
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}
