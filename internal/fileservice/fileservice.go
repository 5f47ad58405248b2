// Package fileservice provides the atomic-intent file move, parent
// directory creation, and relative-path computation the ingest
// pipeline's categorize-and-move step relies on (spec §4.1).
package fileservice

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Service groups the small set of filesystem primitives the pipeline
// needs. It holds no state; it exists so callers can depend on an
// interface in tests.
type Service struct{}

// New returns a Service.
func New() *Service { return &Service{} }

// Move relocates source to destination, creating destination's
// parent directories as needed. It prefers a rename (atomic on the
// same filesystem) and falls back to copy+delete across filesystems.
func (s *Service) Move(source, destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return apperr.New(apperr.KindIO, "fileservice.Move", err)
	}

	if err := os.Rename(source, destination); err == nil {
		return nil
	}

	if err := copyFile(source, destination); err != nil {
		return apperr.New(apperr.KindIO, "fileservice.Move", err)
	}
	if err := os.Remove(source); err != nil {
		return apperr.New(apperr.KindIO, "fileservice.Move", err)
	}
	return nil
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}

// RelativePath returns full's path relative to base, using forward
// slashes regardless of host OS, as all persisted relative paths
// require (spec §6).
func RelativePath(base, full string) (string, error) {
	rel, err := filepath.Rel(base, full)
	if err != nil {
		return "", apperr.New(apperr.KindIO, "fileservice.RelativePath", err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", apperr.Newf(apperr.KindIO, "fileservice.RelativePath", "%s is not inside %s", full, base)
	}
	return filepath.ToSlash(rel), nil
}

// HashSegments returns the two two-character directory segments
// ("h0h1", "h2h3") used to shard thumbnail/preview storage by hash, as
// required by spec §4.3/§8 ("thumbnail path ends with
// /h[0:2]/h[2:4]/h.webp"). Hashes shorter than four characters are
// zero-padded so the layout is always well formed.
func HashSegments(fullHash string) (string, string) {
	h := fullHash
	for len(h) < 4 {
		h += "0"
	}
	return h[0:2], h[2:4]
}
