package multipart_test

import (
	"testing"

	"github.com/lumenvault/photovault/internal/multipart"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilenameStripsTraversalAndSeparators(t *testing.T) {
	assert.Equal(t, "passwd", multipart.SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "IMG_1234.jpg", multipart.SanitizeFilename("IMG_1234.jpg"))
	assert.Equal(t, "weird_name_.jpg", multipart.SanitizeFilename("weird name!.jpg"))
}

func TestSanitizeFilenameHandlesEmptyBase(t *testing.T) {
	assert.NotEmpty(t, multipart.SanitizeFilename("."))
}

func TestIsTraversalSafe(t *testing.T) {
	assert.True(t, multipart.IsTraversalSafe("IMG_1234.jpg"))
	assert.False(t, multipart.IsTraversalSafe("../secret"))
	assert.False(t, multipart.IsTraversalSafe(`..\secret`))
}
