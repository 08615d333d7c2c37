package flowsketch

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

const testPrime = 1_000_000_007

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

func newTestSketch(t testing.TB, rows, m int, opts ...Option) *Sketch {
	t.Helper()
	s, err := New(rows, m, testPrime, 2, 10, opts...)
	require.NoError(t, err)
	return s
}

// randomMultiset returns n distinct keys below limit with multiplicities
// in [1, maxCount].
func randomMultiset(rng *randv2.Rand, n int, limit, maxCount uint64) map[uint64]uint64 {
	out := make(map[uint64]uint64, n)
	for len(out) < n {
		out[rng.Uint64N(limit)] = 1 + rng.Uint64N(maxCount)
	}
	return out
}

func insertAll(t testing.TB, s *Sketch, m map[uint64]uint64) {
	t.Helper()
	for key, n := range m {
		require.NoError(t, s.InsertN(key, n))
	}
}

// assertNotRedecoded decodes every Kbucket of every Row after a Verify and
// checks that none yields a key already recovered.
func assertNotRedecoded(t testing.TB, s *Sketch, recovered map[uint64]uint64) {
	t.Helper()
	for ri, r := range s.rows {
		for i := 0; i < r.Len(); i++ {
			for _, e := range r.Decode(i) {
				_, again := recovered[e.Key]
				assert.False(t, again, "row %d kbucket %d decodes recovered key %d again", ri, i, e.Key)
			}
		}
	}
}

// collidingKeys returns the first n keys placed into the same Kbucket of
// row 0.
func collidingKeys(s *Sketch, n int) []uint64 {
	byBucket := make(map[int][]uint64)
	for key := uint64(1); ; key++ {
		i := s.rows[0].Place(key)
		byBucket[i] = append(byBucket[i], key)
		if len(byBucket[i]) == n {
			return byBucket[i]
		}
	}
}
