// Package imaging produces the thumbnail and preview renditions the
// ingest pipeline persists alongside every photo (spec §4.3).
//
// Two code paths exist because the source material differs: ordinary
// JPEG/PNG/TIFF bytes are processed in-place by bimg (libvips), while
// a RAW file already decoded to an image.Image (via internal/raw) is
// resized with disintegration/imaging and encoded with go-webp, since
// libvips cannot take an in-memory image.Image as input.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/lumenvault/photovault/internal/apperr"
)

// ThumbnailMaxBorder is the longest edge, in pixels, of a generated
// thumbnail.
const ThumbnailMaxBorder = 400

// PreviewMaxBorder is the longest edge, in pixels, of a generated
// preview.
const PreviewMaxBorder = 2048

const (
	thumbnailWebPQuality = 80
	previewJPEGQuality   = 85
)

// ThumbnailFromBytes fits src within ThumbnailMaxBorder and encodes
// the result as WebP using libvips. A source libvips cannot decode
// goes through standardFallback and comes back as JPEG instead.
func ThumbnailFromBytes(src []byte) ([]byte, error) {
	return resizeWithVips(src, ThumbnailMaxBorder, bimg.WEBP, thumbnailWebPQuality)
}

// PreviewFromBytes fits src within PreviewMaxBorder and encodes the
// result as JPEG using libvips.
func PreviewFromBytes(src []byte) ([]byte, error) {
	return resizeWithVips(src, PreviewMaxBorder, bimg.JPEG, previewJPEGQuality)
}

// resizeWithVips resizes src via libvips. When libvips can't decode
// src at all (a format this deployment's libvips build lacks, e.g.
// BMP), it falls back to standardFallback, which always yields a JPEG
// regardless of the requested format.
func resizeWithVips(src []byte, maxBorder int, format bimg.ImageType, quality int) ([]byte, error) {
	size, err := bimg.NewImage(src).Size()
	if err != nil {
		return standardFallback(src, maxBorder, quality)
	}
	if size.Width == 0 || size.Height == 0 {
		return nil, apperr.Newf(apperr.KindDecode, "imaging.resizeWithVips", "source has zero dimensions")
	}

	width, height := fitWithin(size.Width, size.Height, maxBorder)

	out, err := bimg.NewImage(src).Process(bimg.Options{
		Width:   width,
		Height:  height,
		Crop:    false,
		Enlarge: false,
		Quality: quality,
		Type:    format,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.resizeWithVips", err)
	}
	return out, nil
}

// Dimensions reports the pixel width/height of an encoded image,
// preferring libvips's header-only size read and falling back to
// stdlib image.DecodeConfig for formats libvips can't open (the same
// fallback boundary resizeWithVips uses).
func Dimensions(src []byte) (width, height int, err error) {
	if size, sizeErr := bimg.NewImage(src).Size(); sizeErr == nil && size.Width > 0 && size.Height > 0 {
		return size.Width, size.Height, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return 0, 0, apperr.New(apperr.KindDecode, "imaging.Dimensions", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ThumbnailFromImage fits img within ThumbnailMaxBorder and encodes
// the result as WebP. Used for RAW sources already decoded to an
// image.Image.
func ThumbnailFromImage(img image.Image) ([]byte, error) {
	return encodeWebP(resizeImage(img, ThumbnailMaxBorder), thumbnailWebPQuality)
}

// PreviewFromImage fits img within PreviewMaxBorder and encodes the
// result as JPEG.
func PreviewFromImage(img image.Image) ([]byte, error) {
	return encodeJPEG(resizeImage(img, PreviewMaxBorder), previewJPEGQuality)
}

func resizeImage(img image.Image, maxBorder int) image.Image {
	return imaging.Fit(img, maxBorder, maxBorder, imaging.Lanczos)
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetPhoto, float32(quality))
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.encodeWebP", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.encodeWebP", err)
	}
	return buf.Bytes(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperr.New(apperr.KindInternal, "imaging.encodeJPEG", err)
	}
	return buf.Bytes(), nil
}

// fitWithin computes the largest width/height that preserves aspect
// ratio and keeps both edges at or under maxBorder, never upscaling.
func fitWithin(width, height, maxBorder int) (int, int) {
	scale := math.Min(float64(maxBorder)/float64(width), float64(maxBorder)/float64(height))
	if scale > 1 {
		scale = 1
	}
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
