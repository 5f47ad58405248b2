package template_test

import (
	"testing"
	"time"

	"github.com/lumenvault/photovault/internal/propmap"
	"github.com/lumenvault/photovault/internal/template"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, fileName, hash string, date time.Time) *propmap.Map {
	t.Helper()
	m := propmap.New()
	propmap.Insert(m, fileName).Alias(template.AliasFileName)
	propmap.Insert(m, date).Alias(template.AliasEffectiveDate)
	propmap.Insert(m, hash).Alias(template.AliasHash)
	return m
}

func TestRenderHashSliceAndStem(t *testing.T) {
	ctx := newContext(t, "holiday.snapshot.jpg", "abcdef1234567890", time.Date(2025, 1, 4, 10, 20, 30, 0, time.UTC))

	tmpl, err := template.Compile("{year}/{fileStem}-{hash:0:6}.{extension}")
	require.NoError(t, err)

	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025/holiday.snapshot-abcdef.jpg", out)
}

func TestRenderDefaultTemplate(t *testing.T) {
	ctx := newContext(t, "IMG_0001.CR2", "0123456789abcdef", time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC))

	tmpl, err := template.Compile(template.DefaultTemplate)
	require.NoError(t, err)

	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024/2024-05-10/IMG_0001.CR2", out)
}

func TestRenderMissingPropertyFails(t *testing.T) {
	m := propmap.New()
	propmap.Insert(m, "photo.jpg").Alias(template.AliasFileName)

	tmpl, err := template.Compile("{year}/{fileName}")
	require.NoError(t, err)

	_, err = tmpl.Render(m)
	require.Error(t, err)
}

func TestRenderMissingCameraFails(t *testing.T) {
	ctx := newContext(t, "photo.jpg", "hash", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tmpl, err := template.Compile("{camera}/{fileName}")
	require.NoError(t, err)

	_, err = tmpl.Render(ctx)
	require.Error(t, err)
}

func TestRenderMissingFileNameFailsForFileStemAndExtension(t *testing.T) {
	m := propmap.New()
	propmap.Insert(m, "hash").Alias(template.AliasHash)

	stemTmpl, err := template.Compile("{fileStem}")
	require.NoError(t, err)
	_, err = stemTmpl.Render(m)
	require.Error(t, err)

	extTmpl, err := template.Compile("{extension}")
	require.NoError(t, err)
	_, err = extTmpl.Render(m)
	require.Error(t, err)
}

func TestRenderMissingRatingDefaultsToZero(t *testing.T) {
	ctx := newContext(t, "photo.jpg", "hash", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tmpl, err := template.Compile("{rating}")
	require.NoError(t, err)

	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	require.Equal(t, "0", out)
}

func TestNormalizeDropsEmptySegments(t *testing.T) {
	ctx := newContext(t, "c.jpg", "hash", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tmpl, err := template.Compile("///{fileName}//")
	require.NoError(t, err)

	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	require.Equal(t, "c.jpg", out)
}

func TestSanitizeReplacesTraversalAndSeparators(t *testing.T) {
	ctx := newContext(t, "../evil\\name.jpg", "hash", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tmpl, err := template.Compile("{fileName}")
	require.NoError(t, err)

	out, err := tmpl.Render(ctx)
	require.NoError(t, err)
	require.NotContains(t, out, "..")
	require.NotContains(t, out, "/")
	require.NotContains(t, out, "\\")
}

func TestRequiresHash(t *testing.T) {
	withHash, err := template.Compile(template.HashTemplate)
	require.NoError(t, err)
	require.True(t, withHash.RequiresHash())

	withoutHash, err := template.Compile(template.DateTemplate)
	require.NoError(t, err)
	require.False(t, withoutHash.RequiresHash())
}

func TestUnknownTokenFailsCompile(t *testing.T) {
	_, err := template.Compile("{bogus}")
	require.Error(t, err)
}
