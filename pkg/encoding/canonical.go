package encoding

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gowebpki/jcs"
)

// Canonical returns the RFC 8785 canonical form of a JSON document.
func Canonical(data []byte) ([]byte, error) {
	out, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize JSON: %w", err)
	}
	return out, nil
}

// Fingerprint hashes an ordered batch of JSON payloads as a single unit.
// Each payload is canonicalized first; payloads that cannot be canonicalized are
// hashed verbatim. A length prefix separates payloads so that moving bytes
// between neighbours changes the result.
func Fingerprint(batch [][]byte) uint64 {
	d := xxhash.New()
	var prefix [8]byte
	for _, payload := range batch {
		canon, err := Canonical(payload)
		if err != nil {
			canon = payload
		}
		n := uint64(len(canon))
		for i := 0; i < 8; i++ {
			prefix[i] = byte(n >> (8 * i))
		}
		_, _ = d.Write(prefix[:])
		_, _ = d.Write(canon)
	}
	return d.Sum64()
}
