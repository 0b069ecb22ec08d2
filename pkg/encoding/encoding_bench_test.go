package encoding

import (
	"fmt"
	"testing"
)

func BenchmarkFingerprint(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		batch := make([][]byte, n)
		for i := range batch {
			batch[i] = []byte(fmt.Sprintf(`{"dataModelUpdate":{"surfaceId":"s","contents":[{"key":"k%d","valueNumber":%d}]}}`, i, i))
		}
		b.Run(fmt.Sprintf("messages=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Fingerprint(batch)
			}
		})
	}
}
