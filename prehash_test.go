package flowsketch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreHashRange(t *testing.T) {
	rng := newTestRNG(t)
	for _, limit := range []uint64{1, 2, 1000, testPrime, 1 << 62} {
		for range 200 {
			buf := make([]byte, 1+rng.IntN(40))
			for i := range buf {
				buf[i] = byte(rng.Uint32())
			}
			assert.Less(t, PreHash(buf, limit), limit)
		}
	}
}

func TestPreHashDeterministic(t *testing.T) {
	key := []byte("10.0.0.1:443->10.0.0.2:51234/tcp")
	assert.Equal(t, PreHash(key, testPrime), PreHash(key, testPrime))
	assert.Equal(t, PreHash(key, testPrime), PreHashString(string(key), testPrime))
	assert.NotEqual(t, PreHash(key, testPrime), PreHash([]byte("other"), testPrime))
}

func TestPreHashRoundTrip(t *testing.T) {
	s := newTestSketch(t, 3, 128)
	want := make(map[uint64]uint64)
	for i := range 30 {
		key := PreHashString(fmt.Sprintf("flow-%d", i), s.KeyLimit())
		want[key] += uint64(i + 1)
		require.NoError(t, s.InsertN(key, uint64(i+1)))
	}
	assert.Equal(t, want, s.Verify())
}
