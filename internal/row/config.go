// Package row implements the encode/decode engine below the sketch: Bucket
// (one linear accumulator cell), Kbucket (k Buckets sharing a slot) and Row
// (M Kbuckets with hash placement and the per-Kbucket decoder).
//
// Ownership is a strict tree: a Row owns its Kbuckets, a Kbucket owns its
// Buckets. All Rows of a sketch share one immutable *Config.
package row

import (
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	"github.com/tamirms/flowsketch/internal/field"
	"github.com/tamirms/flowsketch/internal/hashing"
	"github.com/tamirms/flowsketch/internal/weight"
)

// Weighting selects how a Bucket picks a key's weight column.
type Weighting uint8

const (
	// WeightKeyed picks column hash(key, bucketSeed) mod rc. Reproducible
	// from the sketch seed alone.
	WeightKeyed Weighting = iota

	// WeightAffine picks column ((a*key + b) mod p) mod rc with a, b drawn
	// per Bucket at construction.
	WeightAffine
)

// String returns the weighting name.
func (w Weighting) String() string {
	switch w {
	case WeightKeyed:
		return "keyed"
	case WeightAffine:
		return "affine"
	default:
		return "unknown"
	}
}

// Config is the geometry and arithmetic shared by every Row of a sketch.
// It must not be modified after Init.
type Config struct {
	Field       field.Field
	K           int // replication factor: Buckets per Kbucket
	ColumnRange int // rc: weight choices per row index
	Buckets     int // M: Kbuckets per Row
	Hash        hashing.Func
	Weighting   Weighting

	// MaxMultiplicity is the largest multiplicity decode accepts.
	MaxMultiplicity uint64
	// KeyLimit bounds the key domain: valid keys are [0, KeyLimit).
	KeyLimit uint64

	// Workers > 1 enables the parallel candidate search.
	Workers int

	candidates []*weight.Set      // index kk-1
	inverses   []*weight.Inverses // index kk-1; nil entries are inverted on the fly
}

// Init validates c and loads the candidate sets for kk = 1..K.
func (c *Config) Init() error {
	if err := weight.Validate(c.K, c.ColumnRange); err != nil {
		return err
	}
	if err := weight.ValidateCandidates(c.K, c.ColumnRange); err != nil {
		return err
	}
	if c.Buckets < 1 {
		return fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidBuckets, c.Buckets)
	}
	p := c.Field.Modulus()
	if p <= weight.MaxWeight {
		return fmt.Errorf("%w: modulus %d must exceed the largest weight %d",
			sketcherrors.ErrModulusOutOfRange, p, weight.MaxWeight)
	}
	if c.KeyLimit == 0 || c.KeyLimit > p {
		return fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidKeyLimit, c.KeyLimit)
	}
	if c.MaxMultiplicity == 0 || c.MaxMultiplicity >= p {
		return fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidMaxMultiplicity, c.MaxMultiplicity)
	}
	if c.Weighting > WeightAffine {
		return fmt.Errorf("%w: %d", sketcherrors.ErrUnknownWeighting, c.Weighting)
	}
	if c.Hash == nil {
		c.Hash = hashing.Murmur3
	}

	c.candidates = make([]*weight.Set, c.K)
	c.inverses = make([]*weight.Inverses, c.K)
	for kk := 1; kk <= c.K; kk++ {
		c.candidates[kk-1] = weight.Candidates(kk, c.ColumnRange)
		if kk > 1 {
			c.inverses[kk-1] = weight.InversesFor(c.candidates[kk-1], c.Field)
		}
	}
	return nil
}

// ValidateKey reports whether key lies in the key domain.
func (c *Config) ValidateKey(key uint64) error {
	if key >= c.KeyLimit {
		return fmt.Errorf("%w: %d >= %d", sketcherrors.ErrKeyOutOfRange, key, c.KeyLimit)
	}
	return nil
}

// ValidateMultiplicity reports whether n is an acceptable event multiplicity.
func (c *Config) ValidateMultiplicity(n uint64) error {
	if n == 0 {
		return sketcherrors.ErrZeroMultiplicity
	}
	if n > c.MaxMultiplicity {
		return fmt.Errorf("%w: %d > %d", sketcherrors.ErrMultiplicityOutOfRange, n, c.MaxMultiplicity)
	}
	return nil
}
