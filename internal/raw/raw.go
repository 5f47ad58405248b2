// Package raw detects camera RAW formats by file extension and
// extracts a decodable preview image from them, either from an
// embedded JPEG or by a full LibRaw decode (spec §4.3).
package raw

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/inokone/golibraw"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Extensions lists the file suffixes (lowercase, with leading dot)
// treated as camera RAW formats.
var Extensions = map[string]bool{
	".cr2": true,
	".cr3": true,
	".nef": true,
	".arw": true,
	".dng": true,
	".orf": true,
	".raf": true,
	".rw2": true,
	".pef": true,
	".srw": true,
}

// IsRAW reports whether path's extension names a supported RAW
// format.
func IsRAW(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// Strategy selects how a preview image is obtained from a RAW file.
type Strategy int

const (
	// StrategyAuto tries the embedded preview first and falls back to
	// a full LibRaw decode.
	StrategyAuto Strategy = iota
	// StrategyEmbeddedPreview only looks for an embedded JPEG and
	// fails if none is found.
	StrategyEmbeddedPreview
	// StrategyFullRender always performs a full LibRaw decode.
	StrategyFullRender
)

// Decode produces a decodable image.Image from the RAW file at path
// according to strategy.
func Decode(path string, strategy Strategy) (image.Image, error) {
	switch strategy {
	case StrategyEmbeddedPreview:
		return extractEmbeddedPreview(path)
	case StrategyFullRender:
		return fullRender(path)
	default:
		if img, err := extractEmbeddedPreview(path); err == nil {
			return img, nil
		}
		return fullRender(path)
	}
}

func fullRender(path string) (image.Image, error) {
	img, err := golibraw.ImportRaw(path)
	if err != nil {
		return nil, apperr.New(apperr.KindDecode, "raw.Decode", err)
	}
	return img, nil
}

// extractEmbeddedPreview scans the RAW container for the largest
// embedded JPEG preview, which every supported RAW format carries for
// camera-LCD display. Scanning for SOI/EOI markers avoids depending on
// a container-specific parser for every manufacturer format.
func extractEmbeddedPreview(path string) (image.Image, error) {
	best, err := EmbeddedPreviewBytes(path)
	if err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(best))
	if err != nil {
		return nil, apperr.New(apperr.KindDecode, "raw.extractEmbeddedPreview", err)
	}
	return img, nil
}

// EmbeddedPreviewBytes returns the raw bytes of the largest embedded
// JPEG preview in the RAW file at path, undecoded. Callers that can
// consume encoded JPEG bytes directly (such as a libvips-backed
// resizer) should prefer this over extractEmbeddedPreview, which pays
// for a stdlib decode this package's own callers don't need.
func EmbeddedPreviewBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "raw.EmbeddedPreviewBytes", err)
	}

	best := largestEmbeddedJPEG(data)
	if best == nil {
		return nil, apperr.Newf(apperr.KindDecode, "raw.EmbeddedPreviewBytes", "no embedded preview in %s", path)
	}
	return best, nil
}

func largestEmbeddedJPEG(data []byte) []byte {
	var best []byte

	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0xFF || data[i+1] != 0xD8 {
			continue
		}
		start := i
		for j := start + 2; j < len(data)-1; j++ {
			if data[j] != 0xFF || data[j+1] != 0xD9 {
				continue
			}
			end := j + 2
			candidate := data[start:end]
			if len(candidate) > len(best) {
				if _, err := jpeg.DecodeConfig(bytes.NewReader(candidate)); err == nil {
					best = candidate
				}
			}
			i = end - 1
			break
		}
	}

	return best
}
