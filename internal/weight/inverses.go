package weight

import (
	"sync"

	"github.com/tamirms/flowsketch/internal/field"
)

// MaxCachedInverseWords bounds the memory of one Inverses table (in uint64
// entries, 16 MiB). Larger candidate sets are inverted on the fly.
const MaxCachedInverseWords = 1 << 21

// Inverses holds G^-1 for every candidate G of a Set over one field, with a
// flag for candidates that are singular mod p. Like Set it depends only on
// its parameters, so it is memoized and shared read-only.
type Inverses struct {
	kk   int
	ok   []bool
	data []uint64
}

// Fill writes the inverse of candidate i into dst and reports whether the
// candidate is invertible.
func (t *Inverses) Fill(i int, dst field.Matrix) bool {
	if !t.ok[i] {
		return false
	}
	n := t.kk * t.kk
	copy(dst.Data, t.data[i*n:(i+1)*n])
	return true
}

type inverseKey struct {
	kk, rc int
	p      uint64
}

var (
	inverseMu    sync.Mutex
	inverseCache = make(map[inverseKey]*Inverses)
)

// InversesFor returns the memoized inverse table of s over f, or nil when the
// table would exceed MaxCachedInverseWords.
func InversesFor(s *Set, f field.Field) *Inverses {
	n := s.kk * s.kk
	if s.Len()*n > MaxCachedInverseWords {
		return nil
	}
	key := inverseKey{s.kk, s.rc, f.Modulus()}

	inverseMu.Lock()
	defer inverseMu.Unlock()
	if t, ok := inverseCache[key]; ok {
		return t
	}

	t := &Inverses{
		kk:   s.kk,
		ok:   make([]bool, s.Len()),
		data: make([]uint64, s.Len()*n),
	}
	g, inv, work := field.NewMatrix(s.kk), field.NewMatrix(s.kk), field.NewMatrix(s.kk)
	for i := 0; i < s.Len(); i++ {
		s.Fill(i, g)
		if f.Rank(g, work) < s.kk {
			continue
		}
		if !f.Inverse(g, inv, work) {
			continue
		}
		t.ok[i] = true
		copy(t.data[i*n:(i+1)*n], inv.Data)
	}
	inverseCache[key] = t
	return t
}
