package flowsketch

import (
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	"github.com/tamirms/flowsketch/internal/hashing"
)

// HashAlgorithmID identifies the seeded hash used for placement and weight
// column selection. Two sketches only merge if they use the same one.
type HashAlgorithmID uint16

const (
	// HashMurmur3 uses MurmurHash3 x86_32.
	HashMurmur3 HashAlgorithmID = 0

	// HashXXH3 uses XXH3-64 folded to 32 bits.
	HashXXH3 HashAlgorithmID = 1

	// HashXXHash uses XXH64 folded to 32 bits.
	HashXXHash HashAlgorithmID = 2
)

// String returns the algorithm name.
func (a HashAlgorithmID) String() string {
	switch a {
	case HashMurmur3:
		return "murmur3"
	case HashXXH3:
		return "xxh3"
	case HashXXHash:
		return "xxhash"
	default:
		return "unknown"
	}
}

// newHashFunc returns the hash function for id.
func newHashFunc(id HashAlgorithmID) (hashing.Func, error) {
	switch id {
	case HashMurmur3:
		return hashing.Murmur3, nil
	case HashXXH3:
		return hashing.XXH3, nil
	case HashXXHash:
		return hashing.XXHash, nil
	}
	return nil, fmt.Errorf("%w: id %d", sketcherrors.ErrUnknownHashAlgorithm, id)
}
