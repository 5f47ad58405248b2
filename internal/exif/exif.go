// Package exif extracts camera, exposure, temporal and GPS metadata
// from image bytes using go-exif, and derives the photo's effective
// capture date (spec §4.2).
package exif

import (
	"fmt"
	"strings"
	"time"

	goexif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Record holds the subset of EXIF tags the catalog persists. Raw
// carries every flat tag go-exif extracted, keyed by tag name, for
// callers that need fields Record does not surface directly.
type Record struct {
	CameraMake  string
	CameraModel string
	LensMake    string
	LensModel   string

	ISO                  int
	Aperture             float64
	ShutterSpeed         string
	ExposureCompensation float64
	FocalLength          float64
	FocalLength35mm      int

	Width       int
	Height      int
	Orientation int
	ColorSpace  string

	DateTimeOriginal  time.Time
	DateTimeDigitized time.Time
	DateTime          time.Time

	Latitude  float64
	Longitude float64
	Altitude  float64

	FlashFired bool

	Raw map[string]any
}

// Extract parses EXIF out of data. A file with no EXIF segment is not
// an error: Extract returns a zero Record so the pipeline can still
// proceed using filesystem timestamps.
func Extract(data []byte) (Record, error) {
	rawExif, err := goexif.SearchAndExtractExif(data)
	if err != nil {
		// No EXIF segment is routine for PNG/WebP/some RAW previews; the
		// pipeline falls back to filesystem timestamps.
		return Record{Raw: map[string]any{}}, nil
	}

	entries, _, err := goexif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return Record{Raw: map[string]any{}}, nil
	}

	rec := Record{Raw: make(map[string]any, len(entries))}
	for _, entry := range entries {
		if entry.Value != nil {
			rec.Raw[entry.TagName] = entry.Value
		}
		applyTag(&rec, entry)
	}
	applyGPSReferences(&rec, entries)

	return rec, nil
}

func applyTag(rec *Record, entry goexif.ExifTag) {
	val := entry.Value
	if val == nil {
		return
	}

	switch entry.TagName {
	case "Make":
		rec.CameraMake = trimTag(val)
	case "Model":
		rec.CameraModel = trimTag(val)
	case "LensMake":
		rec.LensMake = trimTag(val)
	case "LensModel":
		rec.LensModel = trimTag(val)

	case "ISOSpeedRatings", "PhotographicSensitivity":
		if v, ok := val.([]uint16); ok && len(v) > 0 {
			rec.ISO = int(v[0])
		}
	case "FNumber":
		if v, ok := firstRational(val); ok {
			rec.Aperture = v
		}
	case "ExposureTime":
		rec.ShutterSpeed = formatShutterSpeed(val)
	case "ExposureBiasValue":
		if v, ok := firstSignedRational(val); ok {
			rec.ExposureCompensation = v
		}
	case "FocalLength":
		if v, ok := firstRational(val); ok {
			rec.FocalLength = v
		}
	case "FocalLengthIn35mmFilm":
		if v, ok := val.([]uint16); ok && len(v) > 0 {
			rec.FocalLength35mm = int(v[0])
		}

	case "DateTimeOriginal":
		if t, ok := parseTag(val); ok {
			rec.DateTimeOriginal = t
		}
	case "DateTimeDigitized":
		if t, ok := parseTag(val); ok {
			rec.DateTimeDigitized = t
		}
	case "DateTime":
		if t, ok := parseTag(val); ok {
			rec.DateTime = t
		}

	case "PixelXDimension", "ImageWidth":
		if v, ok := firstUint(val); ok {
			rec.Width = v
		}
	case "PixelYDimension", "ImageLength":
		if v, ok := firstUint(val); ok {
			rec.Height = v
		}
	case "Orientation":
		if v, ok := val.([]uint16); ok && len(v) > 0 {
			rec.Orientation = int(v[0])
		}
	case "ColorSpace":
		rec.ColorSpace = fmt.Sprintf("%v", val)

	case "GPSLatitude":
		rec.Latitude = parseGPSCoordinate(val)
	case "GPSLongitude":
		rec.Longitude = parseGPSCoordinate(val)
	case "GPSAltitude":
		if v, ok := firstRational(val); ok {
			rec.Altitude = v
		}

	case "Flash":
		switch v := val.(type) {
		case []uint16:
			if len(v) > 0 {
				rec.FlashFired = v[0]&0x01 != 0
			}
		case uint16:
			rec.FlashFired = v&0x01 != 0
		}
	}
}

func applyGPSReferences(rec *Record, entries []goexif.ExifTag) {
	for _, entry := range entries {
		val := entry.Value
		if val == nil {
			continue
		}
		switch entry.TagName {
		case "GPSLatitudeRef":
			if ref, ok := val.(string); ok && strings.EqualFold(ref, "S") {
				rec.Latitude = -rec.Latitude
			}
		case "GPSLongitudeRef":
			if ref, ok := val.(string); ok && strings.EqualFold(ref, "W") {
				rec.Longitude = -rec.Longitude
			}
		}
	}
}

func trimTag(val any) string {
	return strings.Trim(fmt.Sprintf("%v", val), "\x00 ")
}

func firstRational(val any) (float64, bool) {
	rats, ok := val.([]exifcommon.Rational)
	if !ok || len(rats) == 0 || rats[0].Denominator == 0 {
		return 0, false
	}
	return float64(rats[0].Numerator) / float64(rats[0].Denominator), true
}

func firstSignedRational(val any) (float64, bool) {
	rats, ok := val.([]exifcommon.SignedRational)
	if !ok || len(rats) == 0 || rats[0].Denominator == 0 {
		return 0, false
	}
	return float64(rats[0].Numerator) / float64(rats[0].Denominator), true
}

func firstUint(val any) (int, bool) {
	switch v := val.(type) {
	case []uint32:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []uint16:
		if len(v) > 0 {
			return int(v[0]), true
		}
	}
	return 0, false
}

func formatShutterSpeed(val any) string {
	v, ok := val.([]exifcommon.Rational)
	if !ok || len(v) == 0 {
		return ""
	}
	r := v[0]
	switch {
	case r.Denominator == 0:
		return ""
	case r.Denominator == 1:
		return fmt.Sprintf("%d", r.Numerator)
	case r.Numerator == 1:
		return fmt.Sprintf("1/%d", r.Denominator)
	default:
		return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
	}
}

func parseGPSCoordinate(val any) float64 {
	rats, ok := val.([]exifcommon.Rational)
	if !ok || len(rats) < 3 {
		return 0
	}
	degrees := float64(rats[0].Numerator) / float64(rats[0].Denominator)
	minutes := float64(rats[1].Numerator) / float64(rats[1].Denominator)
	seconds := float64(rats[2].Numerator) / float64(rats[2].Denominator)
	return degrees + minutes/60.0 + seconds/3600.0
}

func parseTag(val any) (time.Time, bool) {
	s, ok := val.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateTimeFormats are tried in order against EXIF and fallback
// timestamp strings throughout the pipeline (spec §4.2 "effective
// date").
var dateTimeFormats = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDateTime parses an EXIF timestamp string, trying the EXIF
// colon-separated format first, then an ISO space-separated variant,
// then RFC3339.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.Trim(s, "\x00 ")
	if s == "" {
		return time.Time{}, apperr.Newf(apperr.KindInvalidInput, "exif.ParseDateTime", "empty timestamp")
	}
	for _, format := range dateTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Newf(apperr.KindInvalidInput, "exif.ParseDateTime", "unrecognized timestamp %q", s)
}

// EffectiveDate picks the capture date the catalog should sort by:
// DateTimeOriginal, then DateTimeDigitized, then DateTime, in that
// order, falling back to fallback (typically the file's modification
// time) when none of the EXIF fields are set.
func (r Record) EffectiveDate(fallback time.Time) time.Time {
	for _, candidate := range []time.Time{r.DateTimeOriginal, r.DateTimeDigitized, r.DateTime} {
		if !candidate.IsZero() {
			return candidate
		}
	}
	return fallback
}
