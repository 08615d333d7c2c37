package weight

import (
	"fmt"
	"sync"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	"github.com/tamirms/flowsketch/internal/field"
)

// MaxCandidates bounds rc^(kk*kk), the number of candidate matrices one
// decode may scan. At the bound a 3×3 set occupies 36 MiB.
const MaxCandidates = 1 << 22

// CandidateCount returns rc^(kk*kk) and whether it stays within MaxCandidates.
func CandidateCount(kk, rc int) (uint64, bool) {
	n := uint64(1)
	for i := 0; i < kk*kk; i++ {
		n *= uint64(rc)
		if n > MaxCandidates {
			return n, false
		}
	}
	return n, true
}

// ValidateCandidates checks that every kk in [1, k] yields a searchable set.
func ValidateCandidates(k, rc int) error {
	if n, ok := CandidateCount(k, rc); !ok {
		return fmt.Errorf("%w: %d^(%d*%d) >= %d (got at least %d)",
			sketcherrors.ErrCandidateSpaceTooLarge, rc, k, k, MaxCandidates, n)
	}
	return nil
}

// Set is the ordered list of all kk×kk candidate weight matrices for a
// column range rc. Entry (row, j) of a candidate is the weight hypothetical
// key j would carry in Bucket row: Table[row*rc + col] for some col in [0, rc).
//
// Candidates are enumerated as an odometer over the kk*kk entries in
// row-major order, the last entry varying fastest. A Set is immutable and
// safe for concurrent use.
type Set struct {
	kk, rc  int
	weights []uint8 // len = Len()*kk*kk, row-major per candidate
}

// Len returns the number of candidates.
func (s *Set) Len() int { return len(s.weights) / (s.kk * s.kk) }

// Dim returns kk.
func (s *Set) Dim() int { return s.kk }

// ColumnRange returns rc.
func (s *Set) ColumnRange() int { return s.rc }

// Fill writes candidate i into dst, which must be kk×kk.
func (s *Set) Fill(i int, dst field.Matrix) {
	n := s.kk * s.kk
	src := s.weights[i*n : (i+1)*n]
	for j, w := range src {
		dst.Data[j] = uint64(w)
	}
}

type setKey struct{ kk, rc int }

var (
	cacheMu sync.Mutex
	cache   = make(map[setKey]*Set)
)

// Candidates returns the memoized candidate set for (kk, rc), generating it
// on first use. Callers must have checked the parameters with Validate and
// ValidateCandidates.
func Candidates(kk, rc int) *Set {
	key := setKey{kk, rc}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[key]; ok {
		return s
	}
	s := generate(kk, rc)
	cache[key] = s
	return s
}

func generate(kk, rc int) *Set {
	count, _ := CandidateCount(kk, rc)
	length := kk * kk
	s := &Set{kk: kk, rc: rc, weights: make([]uint8, 0, int(count)*length)}

	combo := make([]int, length)
	for {
		for pos, col := range combo {
			row := pos / kk
			s.weights = append(s.weights, uint8(At(row, col, rc)))
		}

		pos := length - 1
		for pos >= 0 && combo[pos] == rc-1 {
			combo[pos] = 0
			pos--
		}
		if pos < 0 {
			return s
		}
		combo[pos]++
	}
}
