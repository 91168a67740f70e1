package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hash is a hex-encoded SHA-256 content hash.
type Hash string

// NewHash hashes data in one shot.
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// HashingReader accumulates the content hash of everything read through it,
// so callers can persist a stream and checksum it in one pass.
type HashingReader struct {
	r io.Reader
	h hash.Hash
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	h := sha256.New()
	return &HashingReader{r: io.TeeReader(r, h), h: h}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	return hr.r.Read(p)
}

// Sum returns the hash of the bytes read so far.
func (hr *HashingReader) Sum() Hash {
	return Hash(hex.EncodeToString(hr.h.Sum(nil)))
}
