package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitWithinPreservesAspectRatio(t *testing.T) {
	w, h := fitWithin(4000, 2000, 400)
	assert.Equal(t, 400, w)
	assert.Equal(t, 200, h)
}

func TestFitWithinNeverUpscales(t *testing.T) {
	w, h := fitWithin(100, 50, 400)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestFitWithinHandlesTallImages(t *testing.T) {
	w, h := fitWithin(1000, 3000, 300)
	assert.Equal(t, 100, w)
	assert.Equal(t, 300, h)
}
