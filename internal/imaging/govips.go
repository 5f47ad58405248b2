package imaging

import (
	"sync"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/lumenvault/photovault/internal/apperr"
)

var vipsStartup sync.Once

// ensureVips brings up libvips' global state the first time it's
// needed. govips.Startup panics if called twice, so every entry point
// into this file funnels through here.
func ensureVips() {
	vipsStartup.Do(func() {
		govips.Startup(&govips.Config{})
	})
}

// ShutdownVips releases libvips' global resources. Call once, at
// process exit, if any of the RAW*Bytes helpers below were used.
func ShutdownVips() {
	govips.Shutdown()
}

// ThumbnailFromRAWPreviewBytes fits an embedded-preview JPEG (recovered
// from a RAW container by internal/raw) within ThumbnailMaxBorder and
// encodes it as WebP, using libvips' own thumbnailing operator rather
// than decoding to a Go image.Image first.
func ThumbnailFromRAWPreviewBytes(src []byte) ([]byte, error) {
	ensureVips()

	ref, err := govips.NewThumbnailFromBuffer(src, ThumbnailMaxBorder, ThumbnailMaxBorder, govips.InterestingNone)
	if err != nil {
		return nil, apperr.New(apperr.KindDecode, "imaging.ThumbnailFromRAWPreviewBytes", err)
	}
	defer ref.Close()

	params := govips.NewWebpExportParams()
	params.Quality = thumbnailWebPQuality
	out, _, err := ref.ExportWebp(params)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.ThumbnailFromRAWPreviewBytes", err)
	}
	return out, nil
}

// PreviewFromRAWPreviewBytes fits an embedded-preview JPEG within
// PreviewMaxBorder and re-encodes it as JPEG via libvips.
func PreviewFromRAWPreviewBytes(src []byte) ([]byte, error) {
	ensureVips()

	ref, err := govips.NewThumbnailFromBuffer(src, PreviewMaxBorder, PreviewMaxBorder, govips.InterestingNone)
	if err != nil {
		return nil, apperr.New(apperr.KindDecode, "imaging.PreviewFromRAWPreviewBytes", err)
	}
	defer ref.Close()

	params := govips.NewJpegExportParams()
	params.Quality = previewJPEGQuality
	out, _, err := ref.ExportJpeg(params)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.PreviewFromRAWPreviewBytes", err)
	}
	return out, nil
}
