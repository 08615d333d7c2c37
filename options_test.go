package flowsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name           string
		rows, m, k, rc int
		p              uint64
		opts           []Option
		want           error
	}{
		{"zero rows", 0, 10, 2, 10, testPrime, nil, sketcherrors.ErrInvalidRows},
		{"zero buckets", 1, 0, 2, 10, testPrime, nil, sketcherrors.ErrInvalidBuckets},
		{"too many coordinates", 1 << 16, 1<<16 + 1, 2, 10, testPrime, nil, sketcherrors.ErrInvalidBuckets},
		{"composite modulus", 1, 10, 2, 10, testPrime + 1, nil, sketcherrors.ErrModulusNotPrime},
		{"modulus too small", 1, 10, 2, 10, 2, nil, sketcherrors.ErrModulusOutOfRange},
		{"modulus below weights", 1, 10, 2, 10, 197, nil, sketcherrors.ErrModulusOutOfRange},
		{"modulus too large", 1, 10, 2, 10, 1 << 62, nil, sketcherrors.ErrModulusOutOfRange},
		{"zero replication", 1, 10, 0, 10, testPrime, nil, sketcherrors.ErrInvalidReplication},
		{"zero column range", 1, 10, 2, 0, testPrime, nil, sketcherrors.ErrInvalidColumnRange},
		{"table exceeded", 1, 10, 5, 10, testPrime, nil, sketcherrors.ErrWeightTableExceeded},
		{"candidate space", 1, 10, 3, 10, testPrime, nil, sketcherrors.ErrCandidateSpaceTooLarge},
		{"unknown hash", 1, 10, 2, 10, testPrime, []Option{WithHash(99)}, sketcherrors.ErrUnknownHashAlgorithm},
		{"unknown weighting", 1, 10, 2, 10, testPrime, []Option{WithWeighting(9)}, sketcherrors.ErrUnknownWeighting},
		{"key limit above p", 1, 10, 2, 10, testPrime, []Option{WithKeyLimit(testPrime + 1)}, sketcherrors.ErrInvalidKeyLimit},
		{"max multiplicity p", 1, 10, 2, 10, testPrime, []Option{WithMaxMultiplicity(testPrime)}, sketcherrors.ErrInvalidMaxMultiplicity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.rows, tt.m, tt.p, tt.k, tt.rc, tt.opts...)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewAcceptsBoundaries(t *testing.T) {
	// 211 is the smallest prime above the largest weight.
	_, err := New(1, 4, 211, 2, 23)
	require.NoError(t, err)
	_, err = New(1, 4, testPrime, 1, 46)
	require.NoError(t, err)
	_, err = New(1, 4, testPrime, 2, 10, WithKeyLimit(testPrime), WithMaxMultiplicity(testPrime-1))
	require.NoError(t, err)
}

func TestInsertErrors(t *testing.T) {
	m := &BasicMetricsCollector{}
	s := newTestSketch(t, 1, 8, WithKeyLimit(100), WithMaxMultiplicity(10), WithMetrics(m))

	assert.ErrorIs(t, s.Insert(100), sketcherrors.ErrKeyOutOfRange)
	assert.ErrorIs(t, s.InsertN(1, 0), sketcherrors.ErrZeroMultiplicity)
	assert.ErrorIs(t, s.InsertN(1, 11), sketcherrors.ErrMultiplicityOutOfRange)
	assert.ErrorIs(t, s.Delete(100, 1), sketcherrors.ErrKeyOutOfRange)
	assert.True(t, s.Empty(), "rejected updates must not touch the sketch")

	require.NoError(t, s.InsertN(99, 10))
	stats := m.GetStats()
	assert.Equal(t, int64(3), stats.InsertErrors)
	assert.Equal(t, int64(1), stats.DeleteErrors)
	assert.Equal(t, int64(1), stats.InsertCount)
	assert.Equal(t, uint64(10), stats.InsertItems)
}

func TestDeleteMetricsSeparateFromInserts(t *testing.T) {
	m := &BasicMetricsCollector{}
	s := newTestSketch(t, 2, 16, WithMetrics(m))
	require.NoError(t, s.InsertN(4, 6))
	require.NoError(t, s.Delete(4, 2))
	require.NoError(t, s.Delete(4, 1))

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.InsertCount)
	assert.Equal(t, uint64(6), stats.InsertItems)
	assert.Equal(t, int64(2), stats.DeleteCount)
	assert.Equal(t, uint64(3), stats.DeleteItems)
	assert.Zero(t, stats.InsertErrors)
	assert.Zero(t, stats.DeleteErrors)
	assert.Equal(t, map[uint64]uint64{4: 3}, s.Verify())
}

func TestHashAlgorithmString(t *testing.T) {
	assert.Equal(t, "murmur3", HashMurmur3.String())
	assert.Equal(t, "xxh3", HashXXH3.String())
	assert.Equal(t, "xxhash", HashXXHash.String())
	assert.Equal(t, "unknown", HashAlgorithmID(7).String())
	assert.Equal(t, "keyed", WeightKeyed.String())
	assert.Equal(t, "affine", WeightAffine.String())
}
