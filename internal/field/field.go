// Package field implements arithmetic in the prime field Z/pZ and the small
// dense linear algebra the decoder runs over it.
//
// Elements are uint64 values in canonical form [0, p). Every operation
// expects canonical inputs and returns canonical outputs; callers that hold
// arbitrary uint64 values must Reduce them first.
package field

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v4/ring"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

// MaxModulus is the largest supported modulus (exclusive). Barrett reduction
// in ring.ModExp needs two bits of headroom.
const MaxModulus = uint64(1) << 62

// Field is the prime field Z/pZ. The zero value is not usable; build one with New.
type Field struct {
	p uint64
}

// New returns the field of integers modulo p. p must be a prime in (2, MaxModulus).
func New(p uint64) (Field, error) {
	if p <= 2 || p >= MaxModulus {
		return Field{}, fmt.Errorf("%w: %d not in (2, 2^62)", sketcherrors.ErrModulusOutOfRange, p)
	}
	if !ring.IsPrime(p) {
		return Field{}, fmt.Errorf("%w: %d", sketcherrors.ErrModulusNotPrime, p)
	}
	return Field{p: p}, nil
}

// Modulus returns p.
func (f Field) Modulus() uint64 { return f.p }

// Reduce maps an arbitrary uint64 into [0, p).
func (f Field) Reduce(x uint64) uint64 { return x % f.p }

// Add returns a+b mod p.
func (f Field) Add(a, b uint64) uint64 {
	// a, b < 2^62 so the sum cannot overflow.
	s := a + b
	if s >= f.p {
		s -= f.p
	}
	return s
}

// Sub returns a-b mod p.
func (f Field) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + f.p - b
}

// Neg returns -a mod p.
func (f Field) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return f.p - a
}

// Mul returns a*b mod p using a 128-bit intermediate product.
func (f Field) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, f.p)
	return rem
}

// Pow returns a^e mod p.
func (f Field) Pow(a, e uint64) uint64 {
	if e == 0 {
		return 1
	}
	return ring.ModExp(a, e, f.p)
}

// Inv returns the multiplicative inverse of a via Fermat's little theorem,
// a^(p-2). ok is false when a == 0.
func (f Field) Inv(a uint64) (inv uint64, ok bool) {
	if a == 0 {
		return 0, false
	}
	return f.Pow(a, f.p-2), true
}

// Div returns a/b mod p. ok is false when b == 0.
func (f Field) Div(a, b uint64) (uint64, bool) {
	inv, ok := f.Inv(b)
	if !ok {
		return 0, false
	}
	return f.Mul(a, inv), true
}
