package catalog

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/lumenvault/photovault/internal/exif"
	"github.com/lumenvault/photovault/internal/pipeline"
)

func TestCameraLabelCombinesMakeAndModel(t *testing.T) {
	photo := pipeline.PersistedPhoto{Exif: exif.Record{CameraMake: "Fujifilm", CameraModel: "X-T5"}}
	assert.Equal(t, "Fujifilm X-T5", cameraLabel(photo))
}

func TestCameraLabelHandlesMissingMake(t *testing.T) {
	photo := pipeline.PersistedPhoto{Exif: exif.Record{CameraModel: "X-T5"}}
	assert.Equal(t, "X-T5", cameraLabel(photo))
}

func TestCameraLabelHandlesNeitherPresent(t *testing.T) {
	photo := pipeline.PersistedPhoto{}
	assert.Equal(t, "", cameraLabel(photo))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	got := nullIfEmpty("jpeg")
	if assert.NotNil(t, got) {
		assert.Equal(t, "jpeg", *got)
	}
}

func TestIsUniqueViolationMatchesPostgresCode23505(t *testing.T) {
	err := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(err))
}

func TestIsUniqueViolationRejectsOtherCodes(t *testing.T) {
	err := &pgconn.PgError{Code: "23503"}
	assert.False(t, isUniqueViolation(err))
}

func TestIsUniqueViolationRejectsNonPgError(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestBaseNameReturnsSegmentAfterLastSlash(t *testing.T) {
	assert.Equal(t, "photo.jpg", baseName("2024/2024-05-10/photo.jpg"))
}

func TestBaseNameReturnsWholeStringWithoutSlash(t *testing.T) {
	assert.Equal(t, "photo.jpg", baseName("photo.jpg"))
}
