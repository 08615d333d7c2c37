// Package hashing adapts third-party hash functions to the seeded integer
// hash the sketch consumes: hash(key, seed) -> uint32.
//
// Keys are hashed as their 8-byte little-endian encoding. All functions are
// deterministic and safe for concurrent use.
package hashing

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Func is a deterministic, uniform, seeded integer hash.
type Func func(key uint64, seed uint32) uint32

// Murmur3 hashes key with MurmurHash3 x86_32.
func Murmur3(key uint64, seed uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return murmur3.Sum32WithSeed(buf[:], seed)
}

// XXH3 hashes key with XXH3-64 and folds the result to 32 bits.
func XXH3(key uint64, seed uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	h := xxh3.HashSeed(buf[:], uint64(seed))
	return uint32(h) ^ uint32(h>>32)
}

// XXHash hashes key with XXH64 and folds the result to 32 bits.
func XXHash(key uint64, seed uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	d := xxhash.NewWithSeed(uint64(seed))
	_, _ = d.Write(buf[:]) // Digest.Write never fails
	h := d.Sum64()
	return uint32(h) ^ uint32(h>>32)
}
