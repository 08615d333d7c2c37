// Package weight holds the fixed weight table and the memoized generator of
// candidate weight matrices searched by the decoder.
//
// A key placed in a Kbucket contributes to Bucket row r with weight
// Table[r*rc + col], where col in [0, rc) is chosen per key by the Bucket's
// column selector. Distinct rows draw from disjoint slices of the table, so
// the k weights of one key form a column that is linearly independent from
// other keys' columns with high probability.
package weight

import (
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

// Table is the ordered weight table: the 46 primes below 200.
var Table = [...]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
	59, 61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173, 179, 181,
	191, 193, 197, 199,
}

// Size is the number of entries in Table.
const Size = len(Table)

// MaxWeight is the largest entry in Table. The field modulus must exceed it
// so that distinct weights stay distinct mod p.
const MaxWeight = 199

// At returns the weight for row index row and column choice col.
func At(row, col, rc int) uint64 {
	return Table[row*rc+col]
}

// Validate checks that k rows of rc columns fit in Table.
func Validate(k, rc int) error {
	if k < 1 {
		return fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidReplication, k)
	}
	if rc < 1 {
		return fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidColumnRange, rc)
	}
	if k*rc > Size {
		return fmt.Errorf("%w: %d*%d > %d", sketcherrors.ErrWeightTableExceeded, k, rc, Size)
	}
	return nil
}
