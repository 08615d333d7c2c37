package row

import (
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	"github.com/tamirms/flowsketch/internal/weight"
)

// selector chooses a key's weight column within one Bucket.
// With WeightKeyed only seed is used; with WeightAffine only a and b.
type selector struct {
	seed uint32
	a, b uint64
}

func (s selector) column(cfg *Config, key uint64) int {
	rc := cfg.ColumnRange
	if cfg.Weighting == WeightAffine {
		f := cfg.Field
		v := f.Add(f.Mul(s.a, f.Reduce(key)), s.b)
		return int(v % uint64(rc))
	}
	return int(cfg.Hash(key, s.seed) % uint32(rc))
}

// Bucket is one linear accumulator cell over the field:
//
//	count = Σ g(f_i, row)·c_i        (mod p)
//	idSum = Σ g(f_i, row)·f_i·c_i    (mod p)
//
// over the keys f_i with multiplicities c_i encoded here. Both values are
// always canonical.
type Bucket struct {
	sel   selector
	count uint64
	idSum uint64
}

// Count returns the weighted count.
func (b *Bucket) Count() uint64 { return b.count }

// IDSum returns the weighted key sum.
func (b *Bucket) IDSum() uint64 { return b.idSum }

// G returns the weight key carries in this Bucket when it sits at row index
// row of its Kbucket.
func (b *Bucket) G(cfg *Config, key uint64, row int) (uint64, error) {
	if row < 0 || row >= cfg.K {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", sketcherrors.ErrRowOutOfRange, row, cfg.K)
	}
	return b.g(cfg, key, row), nil
}

// g is G without the range check, for callers iterating rows 0..K-1.
func (b *Bucket) g(cfg *Config, key uint64, row int) uint64 {
	return weight.At(row, b.sel.column(cfg, key), cfg.ColumnRange)
}

// Insert adds n occurrences of key at row index row.
func (b *Bucket) Insert(cfg *Config, key uint64, row int, n uint64) error {
	w, err := b.G(cfg, key, row)
	if err != nil {
		return err
	}
	b.add(cfg, key, w, n)
	return nil
}

// Delete removes n occurrences of key at row index row.
func (b *Bucket) Delete(cfg *Config, key uint64, row int, n uint64) error {
	w, err := b.G(cfg, key, row)
	if err != nil {
		return err
	}
	b.sub(cfg, key, w, n)
	return nil
}

func (b *Bucket) add(cfg *Config, key, w, n uint64) {
	f := cfg.Field
	wn := f.Mul(w, f.Reduce(n))
	b.count = f.Add(b.count, wn)
	b.idSum = f.Add(b.idSum, f.Mul(wn, f.Reduce(key)))
}

func (b *Bucket) sub(cfg *Config, key, w, n uint64) {
	f := cfg.Field
	wn := f.Mul(w, f.Reduce(n))
	b.count = f.Sub(b.count, wn)
	b.idSum = f.Sub(b.idSum, f.Mul(wn, f.Reduce(key)))
}

// NormalizedSingle returns (idSum/count, count), or (0, 0) when count is 0.
// When the Bucket holds exactly one key f, idSum/count == f.
func (b *Bucket) NormalizedSingle(cfg *Config) (key, count uint64) {
	if b.count == 0 {
		return 0, 0
	}
	k, _ := cfg.Field.Div(b.idSum, b.count)
	return k, b.count
}
