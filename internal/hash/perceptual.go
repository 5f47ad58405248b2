package hash

import (
	"bytes"
	"image"

	_ "image/jpeg"

	"github.com/corona10/goimagehash"
)

// PerceptualHashFromThumbnail computes a perceptual hash (pHash) of
// an already-decoded thumbnail image, encoded as the library's own
// string form for storage. This is a supplemental dedup signal
// alongside the content Fingerprint, never required by an ingest
// invariant.
func PerceptualHashFromThumbnail(img image.Image) (string, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", err
	}
	return h.ToString(), nil
}

// PerceptualHashFromBytes decodes src as an image before hashing it,
// for callers that only have already-encoded rendition bytes. src
// must be in a format registered with package image; this file
// registers JPEG, which is why the ingest pipeline passes the JPEG
// preview rather than the WebP thumbnail.
func PerceptualHashFromBytes(src []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return "", err
	}
	return PerceptualHashFromThumbnail(img)
}

// PerceptualHashDistance returns the Hamming distance between two
// hashes produced by PerceptualHashFromThumbnail/PerceptualHashFromBytes.
func PerceptualHashDistance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, err
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}
