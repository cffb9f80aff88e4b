package checksum

import (
	"bytes"
	"testing"
)

// BenchmarkCalculateRaw benchmarks in-memory checksum calculation
func BenchmarkCalculateRaw(b *testing.B) {
	calculator := New()
	content := bytes.Repeat([]byte("0123456789abcdef"), 4096)

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calculator.CalculateRaw(content)
	}
}

// BenchmarkCalculateReader benchmarks streamed checksum calculation
func BenchmarkCalculateReader(b *testing.B) {
	calculator := New()
	content := bytes.Repeat([]byte("0123456789abcdef"), 4096)

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := calculator.CalculateReader(bytes.NewReader(content)); err != nil {
			b.Fatal(err)
		}
	}
}
