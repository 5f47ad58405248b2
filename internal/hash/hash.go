// Package hash implements the ingest pipeline's content fingerprint
// (spec §4.6): a pure function of a file's bytes and size, built from
// windowed reads through a 64-bit non-cryptographic hasher so that
// very large masters don't need a full read to be fingerprinted.
package hash

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Chunk is the window size read from the prefix, middle, and suffix
// of a file when computing its fingerprint.
const Chunk = 64 * 1024

// Fingerprint computes the 16-hex-character content hash of data,
// whose total length is size. data must be the full file contents,
// exactly size bytes long: the prefix window is sliced as data[:size]
// for small inputs and the suffix window runs to the end of data.
func Fingerprint(data []byte, size int64) string {
	h := xxhash.New()

	prefixEnd := Chunk
	if int64(prefixEnd) > size {
		prefixEnd = int(size)
	}
	_, _ = h.Write(data[:prefixEnd])

	if size > 2*Chunk {
		mid := size / 2
		end := mid + Chunk
		if end > size {
			end = size
		}
		_, _ = h.Write(data[mid:end])
	}

	if size > Chunk {
		start := size - Chunk
		_, _ = h.Write(data[start:])
	}

	var lenBytes [8]byte
	binary.LittleEndian.PutUint64(lenBytes[:], uint64(size))
	_, _ = h.Write(lenBytes[:])

	return formatDigest(h.Sum64())
}

func formatDigest(digest uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], digest)
	return hex.EncodeToString(buf[:])
}

// FingerprintFile reads path and returns its Fingerprint along with
// the file's size. It never buffers the whole file: the windowed read
// pattern here only ever touches at most 3*Chunk bytes regardless of
// file size.
func FingerprintFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	size := info.Size()

	windows, err := readWindows(f, size)
	if err != nil {
		return "", 0, err
	}
	return fingerprintWindows(windows, size), size, nil
}

// window holds one of the (at most three) byte ranges the fingerprint
// draws from, tagged by its offset so they can be fed to the hasher
// in prefix/middle/suffix order regardless of how they were read.
type window struct {
	offset int64
	data   []byte
}

func readWindows(r io.ReaderAt, size int64) ([]window, error) {
	var windows []window

	prefixLen := int64(Chunk)
	if prefixLen > size {
		prefixLen = size
	}
	prefix := make([]byte, prefixLen)
	if _, err := r.ReadAt(prefix, 0); err != nil && err != io.EOF {
		return nil, err
	}
	windows = append(windows, window{offset: 0, data: prefix})

	if size > 2*Chunk {
		mid := size / 2
		end := mid + Chunk
		if end > size {
			end = size
		}
		middle := make([]byte, end-mid)
		if _, err := r.ReadAt(middle, mid); err != nil && err != io.EOF {
			return nil, err
		}
		windows = append(windows, window{offset: mid, data: middle})
	}

	if size > Chunk {
		start := size - Chunk
		suffix := make([]byte, size-start)
		if _, err := r.ReadAt(suffix, start); err != nil && err != io.EOF {
			return nil, err
		}
		windows = append(windows, window{offset: start, data: suffix})
	}

	return windows, nil
}

func fingerprintWindows(windows []window, size int64) string {
	h := xxhash.New()
	for _, w := range windows {
		_, _ = h.Write(w.data)
	}
	var lenBytes [8]byte
	binary.LittleEndian.PutUint64(lenBytes[:], uint64(size))
	_, _ = h.Write(lenBytes[:])
	return formatDigest(h.Sum64())
}

// StrongDigest computes a collision-resistant BLAKE3 digest of a
// file's full contents. The pipeline does not use this by default
// (see spec §9 "Hash weakness") but a deployment with a very large
// catalog can opt into it as a configuration point.
func StrongDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
