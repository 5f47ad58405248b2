// Package categorizer resolves the final on-disk path for an ingested
// master file by rendering a storage location's categorization
// template against the pipeline's property map (spec §4.5).
package categorizer

import (
	"path/filepath"

	"github.com/lumenvault/photovault/internal/propmap"
	"github.com/lumenvault/photovault/internal/template"
)

// Result carries both forms of the resolved path: the one relative to
// the storage root (persisted on the Photo row) and the absolute path
// the file service moves the master to.
type Result struct {
	RelativePath string
	AbsolutePath string
}

// Categorize renders tmpl against m and joins it onto storageRoot.
func Categorize(storageRoot string, tmpl *template.Compiled, m *propmap.Map) (Result, error) {
	rel, err := tmpl.Render(m)
	if err != nil {
		return Result{}, err
	}
	return Result{
		RelativePath: rel,
		AbsolutePath: filepath.Join(storageRoot, filepath.FromSlash(rel)),
	}, nil
}
