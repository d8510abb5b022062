package keysort

import "github.com/zeebo/xxh3"

// Fingerprint hashes an ordered key sequence. Two results with the same keys
// in the same order have the same fingerprint, which makes it cheap to check
// that re-sorting changed nothing or that two runs agree.
func Fingerprint(keys []string) uint64 {
	h := xxh3.New()

	for _, k := range keys {
		_, _ = h.WriteString(k)
		// Terminate each key so ["ab","c"] and ["a","bc"] differ.
		_, _ = h.Write([]byte{0})
	}

	return h.Sum64()
}
