// Package multipart stages an uploaded file into a storage location's
// inbox directory ahead of ingest, sniffing its real content type and
// sanitizing the client-supplied filename (spec §6 "upload").
package multipart

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lumenvault/photovault/internal/apperr"
)

// unsafeFilenameChars is everything a sanitized filename must not
// contain; matches are replaced with "_".
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename strips path separators and any character outside
// the safe set, so a client-supplied name can never escape the
// staging directory or collide with a reserved path.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}

// Staged describes a file written into a storage location's staging
// directory, ready for the ingest pipeline to pick up.
type Staged struct {
	Path        string
	ContentType string
	Size        int64
}

// Stage reads the first 512 bytes of an uploaded multipart file into a
// sniff buffer to detect its real content type, then streams the whole
// file into destDir under a sanitized version of its original filename.
func Stage(file multipart.File, header *multipart.FileHeader, destDir string) (Staged, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Staged{}, apperr.New(apperr.KindIO, "multipart.Stage", err)
	}

	sniffBuf := make([]byte, 512)
	n, err := io.ReadFull(file, sniffBuf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Staged{}, apperr.New(apperr.KindIO, "multipart.Stage", err)
	}
	sniffBuf = sniffBuf[:n]
	detected := mimetype.Detect(sniffBuf)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detected.String()
	}

	name := SanitizeFilename(header.Filename)
	destPath := filepath.Join(destDir, name)

	out, err := os.Create(destPath)
	if err != nil {
		return Staged{}, apperr.New(apperr.KindIO, "multipart.Stage", err)
	}
	defer out.Close()

	written, err := out.Write(sniffBuf)
	if err != nil {
		return Staged{}, apperr.New(apperr.KindIO, "multipart.Stage", err)
	}
	rest, err := io.Copy(out, file)
	if err != nil {
		return Staged{}, apperr.New(apperr.KindIO, "multipart.Stage", err)
	}

	return Staged{
		Path:        destPath,
		ContentType: contentType,
		Size:        int64(written) + rest,
	}, nil
}

// IsTraversalSafe reports whether name, once sanitized, still refers
// to the same file — i.e. the original contained no path separators
// worth stripping. Callers that want to reject rather than rewrite a
// suspicious filename can use this.
func IsTraversalSafe(name string) bool {
	return !strings.ContainsAny(name, `/\`)
}
