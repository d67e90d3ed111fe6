package partition

import "hash/fnv"

// DefaultCount is the number of partitions used when a caller passes none.
const DefaultCount = 16

// For returns the partition of key among n partitions.
// Stable and deterministic: the same key always maps to the same partition.
// Uses FNV-32a (stdlib, fast, well-distributed).
func For(key string, n int) int {
	if n <= 0 {
		n = DefaultCount
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
