package imaging

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "golang.org/x/image/bmp"

	"github.com/nfnt/resize"

	"github.com/lumenvault/photovault/internal/apperr"
)

// standardFallback resizes src with the pure-Go decode+resize path:
// stdlib image.Decode (extended to read BMP via the blank x/image/bmp
// import) followed by nfnt/resize's Lanczos3 resampler. It exists for
// the source formats libvips was built without support for on this
// deployment; bimg's Size/Process calls fail fast on those, which is
// the trigger resizeWithVips uses to fall back here.
func standardFallback(src []byte, maxBorder, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, apperr.New(apperr.KindDecode, "imaging.standardFallback", err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxBorder)
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.standardFallback", err)
	}
	return buf.Bytes(), nil
}
