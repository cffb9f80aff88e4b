// Package checksum provides content hashing for the file tree.
//
// Every file hash reported by the tree is the SHA-256 digest of the file's
// bytes, formatted as 64 lowercase hex characters with no separators. Both
// backends delegate here so that a file hashes identically wherever it is
// stored.
//
// # Example Usage
//
//	calculator := checksum.New()
//	sum := calculator.CalculateRaw(content)
//	streamed, err := calculator.CalculateReader(reader)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
