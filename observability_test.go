package flowsketch

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newTestSketch(t, 1, 8, WithLogger(logger), WithSeed(3))

	require.NoError(t, s.InsertN(1, 2))
	s.Verify()
	out := buf.String()
	assert.Contains(t, out, "verify completed")
	assert.Contains(t, out, "seed=3")
	assert.Contains(t, out, "decoded=1")
}

func TestVerifyLoggingResidual(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newTestSketch(t, 1, 4, WithLogger(logger))
	for _, key := range collidingKeys(s, 3) {
		require.NoError(t, s.Insert(key))
	}
	s.Verify()
	if !s.Empty() {
		out := buf.String()
		assert.Contains(t, out, "verify left residual kbuckets")
		assert.Contains(t, out, "peeling pass")
	}
}

func TestVerifyLoggingCancelled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil))
	s := newTestSketch(t, 1, 4, WithLogger(logger))
	require.NoError(t, s.Insert(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.VerifyContext(ctx)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "verify interrupted")
}

func TestNoopLoggerIsDefault(t *testing.T) {
	s := newTestSketch(t, 1, 4)
	assert.False(t, s.logger.Enabled(context.Background(), slog.LevelError))
}

func TestWithLogLevel(t *testing.T) {
	s := newTestSketch(t, 1, 4, WithLogLevel(slog.LevelWarn))
	assert.True(t, s.logger.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, s.logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestBasicMetricsVerify(t *testing.T) {
	m := &BasicMetricsCollector{}
	s := newTestSketch(t, 2, 32, WithMetrics(m))
	require.NoError(t, s.InsertN(5, 3))
	require.NoError(t, s.InsertN(6, 1))

	got := s.Verify()
	require.Len(t, got, 2)
	s.Verify()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.VerifyCount)
	assert.Equal(t, int64(2), stats.DecodedKeys)
	assert.Equal(t, int64(0), stats.ResidualBuckets)
	assert.GreaterOrEqual(t, stats.DecodeAttempts, int64(1))
	assert.Equal(t, uint64(4), stats.InsertItems)
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = NoopMetricsCollector{}
	m.RecordInsert(1, nil)
	m.RecordDelete(1, nil)
	m.RecordVerify(VerifyStats{})
}
