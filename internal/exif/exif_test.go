package exif_test

import (
	"testing"
	"time"

	"github.com/lumenvault/photovault/internal/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNoExifReturnsZeroRecord(t *testing.T) {
	rec, err := exif.Extract([]byte("not an image"))
	require.NoError(t, err)
	assert.True(t, rec.DateTimeOriginal.IsZero())
	assert.Empty(t, rec.CameraMake)
}

func TestParseDateTimeAcceptsExifColonFormat(t *testing.T) {
	got, err := exif.ParseDateTime("2024:05:10 08:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC), got)
}

func TestParseDateTimeAcceptsISOAndRFC3339(t *testing.T) {
	_, err := exif.ParseDateTime("2024-05-10 08:30:00")
	require.NoError(t, err)

	_, err = exif.ParseDateTime("2024-05-10T08:30:00Z")
	require.NoError(t, err)
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	_, err := exif.ParseDateTime("not-a-date")
	require.Error(t, err)
}

func TestEffectiveDatePrefersOriginalThenDigitizedThenDateTimeThenFallback(t *testing.T) {
	fallback := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, fallback, exif.Record{}.EffectiveDate(fallback))

	dt := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, dt, exif.Record{DateTime: dt}.EffectiveDate(fallback))

	digitized := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, digitized, exif.Record{DateTime: dt, DateTimeDigitized: digitized}.EffectiveDate(fallback))

	original := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, original, exif.Record{DateTime: dt, DateTimeDigitized: digitized, DateTimeOriginal: original}.EffectiveDate(fallback))
}
