package weight

import (
	"errors"
	"testing"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	"github.com/tamirms/flowsketch/internal/field"
)

func TestTableIsStrictlyIncreasingPrimes(t *testing.T) {
	if Size != 46 {
		t.Fatalf("Size = %d, want 46", Size)
	}
	for i, w := range Table {
		if i > 0 && w <= Table[i-1] {
			t.Fatalf("Table[%d]=%d not greater than Table[%d]=%d", i, w, i-1, Table[i-1])
		}
		for d := uint64(2); d*d <= w; d++ {
			if w%d == 0 {
				t.Fatalf("Table[%d]=%d is not prime", i, w)
			}
		}
	}
	if Table[Size-1] != MaxWeight {
		t.Fatalf("MaxWeight = %d, last entry %d", MaxWeight, Table[Size-1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		k, rc int
		want  error
	}{
		{0, 4, sketcherrors.ErrInvalidReplication},
		{2, 0, sketcherrors.ErrInvalidColumnRange},
		{5, 10, sketcherrors.ErrWeightTableExceeded},
		{2, 23, nil},
		{2, 24, sketcherrors.ErrWeightTableExceeded},
		{3, 10, nil},
	}
	for _, tt := range tests {
		err := Validate(tt.k, tt.rc)
		if tt.want == nil && err != nil {
			t.Errorf("Validate(%d, %d) = %v, want nil", tt.k, tt.rc, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("Validate(%d, %d) = %v, want %v", tt.k, tt.rc, err, tt.want)
		}
	}
}

func TestValidateCandidates(t *testing.T) {
	if err := ValidateCandidates(2, 10); err != nil {
		t.Errorf("k=2 rc=10: %v", err)
	}
	if err := ValidateCandidates(3, 5); err != nil {
		t.Errorf("k=3 rc=5: %v", err)
	}
	if err := ValidateCandidates(3, 10); !errors.Is(err, sketcherrors.ErrCandidateSpaceTooLarge) {
		t.Errorf("k=3 rc=10: got %v, want ErrCandidateSpaceTooLarge", err)
	}
}

func TestCandidatesEnumeration(t *testing.T) {
	const rc = 3
	s := Candidates(2, rc)
	if s.Len() != 81 {
		t.Fatalf("Len = %d, want 81", s.Len())
	}
	if s.Dim() != 2 || s.ColumnRange() != rc {
		t.Fatalf("Dim/ColumnRange = %d/%d", s.Dim(), s.ColumnRange())
	}

	m := field.NewMatrix(2)

	// First candidate: every entry picks column 0.
	s.Fill(0, m)
	want := []uint64{At(0, 0, rc), At(0, 0, rc), At(1, 0, rc), At(1, 0, rc)}
	for i := range want {
		if m.Data[i] != want[i] {
			t.Fatalf("candidate 0 = %v, want %v", m.Data, want)
		}
	}

	// Second candidate: the last entry advances first.
	s.Fill(1, m)
	if m.At(1, 1) != At(1, 1, rc) || m.At(0, 0) != At(0, 0, rc) {
		t.Fatalf("candidate 1 = %v", m.Data)
	}

	// Last candidate: every entry picks column rc-1.
	s.Fill(s.Len()-1, m)
	if m.At(0, 0) != At(0, rc-1, rc) || m.At(1, 1) != At(1, rc-1, rc) {
		t.Fatalf("last candidate = %v", m.Data)
	}

	// Each row draws only from its own slice of the table, and all
	// candidates are distinct.
	seen := make(map[[4]uint64]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		s.Fill(i, m)
		for r := 0; r < 2; r++ {
			for j := 0; j < 2; j++ {
				w := m.At(r, j)
				if w < Table[r*rc] || w > Table[r*rc+rc-1] {
					t.Fatalf("candidate %d entry (%d,%d)=%d outside row %d slice", i, r, j, w, r)
				}
			}
		}
		var k [4]uint64
		copy(k[:], m.Data)
		if seen[k] {
			t.Fatalf("candidate %d duplicates an earlier one: %v", i, k)
		}
		seen[k] = true
	}
}

func TestCandidatesMemoized(t *testing.T) {
	a := Candidates(2, 4)
	b := Candidates(2, 4)
	if a != b {
		t.Fatal("Candidates(2, 4) not memoized")
	}
	if Candidates(1, 4) == a {
		t.Fatal("different kk share a set")
	}
	if got := Candidates(1, 4).Len(); got != 4 {
		t.Fatalf("Candidates(1, 4).Len() = %d, want 4", got)
	}
}

func TestInversesFor(t *testing.T) {
	f, err := field.New(1_000_000_007)
	if err != nil {
		t.Fatal(err)
	}
	s := Candidates(2, 4)
	inv := InversesFor(s, f)
	if inv == nil {
		t.Fatal("InversesFor(2, 4) = nil")
	}
	if InversesFor(s, f) != inv {
		t.Fatal("InversesFor not memoized")
	}

	g, ginv, work := field.NewMatrix(2), field.NewMatrix(2), field.NewMatrix(2)
	col, out := make([]uint64, 2), make([]uint64, 2)
	singular := 0
	for i := 0; i < s.Len(); i++ {
		s.Fill(i, g)
		ok := inv.Fill(i, ginv)
		if full := f.Rank(g, work) == 2; ok != full {
			t.Fatalf("candidate %d: Fill ok=%v, full rank=%v", i, ok, full)
		}
		if !ok {
			singular++
			continue
		}
		for j := 0; j < 2; j++ {
			col[0], col[1] = ginv.At(0, j), ginv.At(1, j)
			f.MulVec(g, col, out)
			for r := 0; r < 2; r++ {
				want := uint64(0)
				if r == j {
					want = 1
				}
				if out[r] != want {
					t.Fatalf("candidate %d: (G·G^-1)[%d][%d] = %d", i, r, j, out[r])
				}
			}
		}
	}
	// Two hypothetical keys with the same column in both rows give equal
	// columns of G: 4*4 of the 256 candidates.
	if singular < 16 {
		t.Fatalf("singular candidates = %d, want at least 16", singular)
	}
}

func TestInversesForTooLarge(t *testing.T) {
	f, err := field.New(1_000_000_007)
	if err != nil {
		t.Fatal(err)
	}
	// 4^9 candidates of 9 words each exceed MaxCachedInverseWords.
	if InversesFor(Candidates(3, 4), f) != nil {
		t.Fatal("expected nil table for an oversized candidate set")
	}
}
