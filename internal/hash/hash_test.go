package hash_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenvault/photovault/internal/hash"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i)
	}
	a := hash.Fingerprint(data, int64(len(data)))
	b := hash.Fingerprint(data, int64(len(data)))
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestFingerprintChangesWithPrefix(t *testing.T) {
	a := make([]byte, hash.Chunk+10)
	b := make([]byte, hash.Chunk+10)
	copy(b, a)
	b[0] ^= 0xFF

	fa := hash.Fingerprint(a, int64(len(a)))
	fb := hash.Fingerprint(b, int64(len(b)))
	require.NotEqual(t, fa, fb)
}

func TestFingerprintChangesWithLength(t *testing.T) {
	data := make([]byte, 100)
	a := hash.Fingerprint(data, 100)
	b := hash.Fingerprint(data[:90], 90)
	require.NotEqual(t, a, b)
}

func TestFingerprintFileWindowBoundaries(t *testing.T) {
	dir := t.TempDir()

	small := make([]byte, hash.Chunk-1)
	writeFile(t, dir, "small.bin", small)

	mid := make([]byte, hash.Chunk+500)
	writeFile(t, dir, "mid.bin", mid)

	large := make([]byte, 2*hash.Chunk+500)
	writeFile(t, dir, "large.bin", large)

	smallHash, _, err := hash.FingerprintFile(filepath.Join(dir, "small.bin"))
	require.NoError(t, err)
	require.Len(t, smallHash, 16)

	midHash, _, err := hash.FingerprintFile(filepath.Join(dir, "mid.bin"))
	require.NoError(t, err)

	largeHash, _, err := hash.FingerprintFile(filepath.Join(dir, "large.bin"))
	require.NoError(t, err)

	require.NotEqual(t, smallHash, midHash)
	require.NotEqual(t, midHash, largeHash)

	// Fingerprint(data, size) must agree with FingerprintFile for the
	// same bytes, since both hash the same windows in the same order.
	direct := hash.Fingerprint(mid, int64(len(mid)))
	require.Equal(t, direct, midHash)
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}
