package flowsketch

import (
	"math/bits"

	"github.com/zeebo/xxh3"
)

// PreHash maps an arbitrary byte key into the key domain [0, limit) with
// xxHash3-64 and a multiply-high range reduction.
//
// Use it for keys that are not already small integers: flow 5-tuples,
// addresses, strings. Pass the sketch's KeyLimit (or Modulus) as limit:
//
//	key := flowsketch.PreHash(tuple, s.KeyLimit())
//	s.Insert(key)
//
// Verify then reports the hashed keys. Callers that need the original bytes
// back keep their own map from hashed key to original; distinct inputs
// colliding in [0, limit) are merged. limit must be positive.
func PreHash(key []byte, limit uint64) uint64 {
	hi, _ := bits.Mul64(xxh3.Hash(key), limit)
	return hi
}

// PreHashString is PreHash for string keys without a copy.
func PreHashString(key string, limit uint64) uint64 {
	hi, _ := bits.Mul64(xxh3.HashString(key), limit)
	return hi
}
