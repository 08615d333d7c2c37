// Package bits provides low-level bit mixing primitives.
package bits

import "math/bits"

// SplitMix64 applies the SplitMix64 finalizer to x.
// Nearby inputs (row indices, bucket indices) map to independent-looking
// outputs, which is what seed derivation needs.
func SplitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// DeriveSeed32 derives a 32-bit hash seed for sub-structure idx of a
// structure seeded with parent.
func DeriveSeed32(parent uint64, idx uint64) uint32 {
	return uint32(SplitMix64(parent ^ bits.RotateLeft64(idx+1, 32)))
}

// DeriveSeed64 is DeriveSeed32 without truncation.
func DeriveSeed64(parent uint64, idx uint64) uint64 {
	return SplitMix64(parent ^ bits.RotateLeft64(idx+1, 32))
}
