package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DigestSize is the length in bytes of a SHA-256 digest.
const DigestSize = sha256.Size

// Calculator computes content digests.
// This abstraction allows backends to share one hashing strategy.
type Calculator interface {
	// CalculateRaw computes a checksum of an in-memory byte slice.
	CalculateRaw(content []byte) string

	// CalculateReader streams r through the hash function.
	CalculateReader(r io.Reader) (string, error)
}

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
// Using value semantics (pass by value) eliminates heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of content.
func (c SHA256) CalculateRaw(content []byte) string {
	return FormatDigest(sha256.Sum256(content))
}

// CalculateReader computes SHA-256 of everything read from r.
// Memory usage is constant regardless of the content size.
func (c SHA256) CalculateReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	var digest [DigestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return FormatDigest(digest), nil
}

// CalculateFile computes SHA-256 of the file at path.
func (c SHA256) CalculateFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	sum, err := c.CalculateReader(file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return sum, nil
}

// FormatDigest returns the lowercase hex representation of a digest.
func FormatDigest(digest [DigestSize]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded SHA-256 digest. Returns an error if the
// string is not a valid 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) ([DigestSize]byte, error) {
	var digest [DigestSize]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != DigestSize {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), DigestSize)
	}
	copy(digest[:], decoded)
	return digest, nil
}

// Verify compile-time interface compliance
var _ Calculator = SHA256{}
