package categorizer_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenvault/photovault/internal/categorizer"
	"github.com/lumenvault/photovault/internal/propmap"
	"github.com/lumenvault/photovault/internal/template"
	"github.com/stretchr/testify/require"
)

func TestCategorizeJoinsStorageRoot(t *testing.T) {
	m := propmap.New()
	propmap.Insert(m, "IMG_1234.jpg").Alias(template.AliasFileName)
	propmap.Insert(m, time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)).Alias(template.AliasEffectiveDate)

	tmpl, err := template.Compile(template.DefaultTemplate)
	require.NoError(t, err)

	result, err := categorizer.Categorize("/storage/root", tmpl, m)
	require.NoError(t, err)
	require.Equal(t, "2024/2024-05-10/IMG_1234.jpg", result.RelativePath)
	require.Equal(t, filepath.Join("/storage/root", "2024", "2024-05-10", "IMG_1234.jpg"), result.AbsolutePath)
}
