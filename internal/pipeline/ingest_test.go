package pipeline_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/pipeline"
	"github.com/lumenvault/photovault/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	photos []pipeline.PersistedPhoto
	onCall func(p pipeline.PersistedPhoto) error
}

func (s *fakeStore) Insert(ctx context.Context, photo pipeline.PersistedPhoto) error {
	if s.onCall != nil {
		if err := s.onCall(photo); err != nil {
			return err
		}
	}
	s.photos = append(s.photos, photo)
	return nil
}

func writeSampleJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1200, 800))
	for y := 0; y < 800; y++ {
		for x := 0; x < 1200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestIngestPipelineRunsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "staging", "IMG_0001.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0o755))
	writeSampleJPEG(t, source)

	tmpl, err := template.Compile(template.DefaultTemplate)
	require.NoError(t, err)

	store := &fakeStore{}
	p := pipeline.NewIngestPipeline(store)

	pc, err := p.Run(context.Background(), pipeline.IngestRequest{
		SourcePath:  source,
		StorageID:   "storage-1",
		StorageRoot: filepath.Join(dir, "library"),
		Template:    tmpl,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, pc.Hash)
	assert.NotEmpty(t, pc.ThumbnailBytes)
	assert.NotEmpty(t, pc.PreviewBytes)
	assert.NotEmpty(t, pc.Categorized.AbsolutePath)

	assert.Equal(t, "jpg", pc.Format)
	assert.False(t, pc.IsRAW)
	assert.Equal(t, 1200, pc.Width)
	assert.Equal(t, 800, pc.Height)
	assert.Greater(t, pc.ThumbnailWidth, 0)
	assert.Greater(t, pc.ThumbnailHeight, 0)

	_, statErr := os.Stat(source)
	assert.True(t, os.IsNotExist(statErr), "source should have been moved")

	_, statErr = os.Stat(pc.Categorized.AbsolutePath)
	assert.NoError(t, statErr, "categorized destination should exist")

	require.Len(t, store.photos, 1)
	assert.Equal(t, "storage-1", store.photos[0].StorageID)
	assert.Equal(t, pc.Hash, store.photos[0].Hash)
	assert.Equal(t, "jpg", store.photos[0].Format)
	assert.Equal(t, 1200, store.photos[0].Width)
	assert.Equal(t, 800, store.photos[0].Height)
}

func TestIngestPipelineSwallowsConflictOnPersist(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "staging", "IMG_0002.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0o755))
	writeSampleJPEG(t, source)

	tmpl, err := template.Compile(template.DefaultTemplate)
	require.NoError(t, err)

	store := &fakeStore{onCall: func(p pipeline.PersistedPhoto) error {
		return apperr.New(apperr.KindConflict, "catalog.Insert", assertErr{})
	}}
	p := pipeline.NewIngestPipeline(store)

	_, err = p.Run(context.Background(), pipeline.IngestRequest{
		SourcePath:  source,
		StorageID:   "storage-1",
		StorageRoot: filepath.Join(dir, "library"),
		Template:    tmpl,
	})
	require.NoError(t, err)
}

type assertErr struct{}

func (assertErr) Error() string { return "already ingested" }
