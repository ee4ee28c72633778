package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// HashReader wraps an io.Reader and computes a SHA-256 hash while reading.
// Used to fingerprint uploaded assets in a single pass.
type HashReader struct {
	reader io.Reader
	sha256 hash.Hash
	size   int64
}

// NewHashReader creates a new HashReader.
func NewHashReader(r io.Reader) *HashReader {
	return &HashReader{
		reader: r,
		sha256: sha256.New(),
	}
}

// Read implements io.Reader and updates the hash computation.
func (h *HashReader) Read(p []byte) (n int, err error) {
	n, err = h.reader.Read(p)
	if n > 0 {
		h.sha256.Write(p[:n])
		h.size += int64(n)
	}
	return n, err
}

// SHA256 returns the hex-encoded SHA-256 hash.
// Should only be called after reading is complete.
func (h *HashReader) SHA256() string {
	return hex.EncodeToString(h.sha256.Sum(nil))
}

// Size returns the total number of bytes read.
func (h *HashReader) Size() int64 {
	return h.size
}

// ComputeSHA256 computes the SHA-256 hash of a byte slice.
func ComputeSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
