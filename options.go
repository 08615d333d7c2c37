package flowsketch

import (
	"log/slog"

	"github.com/decred/dcrd/crypto/rand"

	"github.com/tamirms/flowsketch/internal/row"
)

// Weighting selects how a Bucket picks the weight column for a key.
type Weighting = row.Weighting

const (
	// WeightKeyed picks column hash(key, bucketSeed) mod rc. Fully
	// determined by the sketch seed and hash algorithm.
	WeightKeyed = row.WeightKeyed

	// WeightAffine picks column ((a*key + b) mod p) mod rc with per-Bucket
	// a, b drawn from a PRNG seeded by the row seed.
	WeightAffine = row.WeightAffine
)

// Option is a functional option for configuring a Sketch.
type Option func(*config)

type config struct {
	seed            uint64
	hash            HashAlgorithmID
	weighting       Weighting
	workers         int
	maxMultiplicity uint64 // 0 means min(DefaultMaxMultiplicity, (p-1)/2)
	keyLimit        uint64 // 0 means p
	logger          *Logger
	logLevel        *slog.Level
	metrics         MetricsCollector
}

func defaultConfig() *config {
	return &config{
		seed:      0x1234567890abcdef, // Arbitrary default; overridden via WithSeed
		hash:      HashMurmur3,
		weighting: WeightKeyed,
		workers:   0, // Serial decode; use WithWorkers(n) to parallelize
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
	}
}

// WithSeed sets the sketch seed. Row seeds, placement and weight columns all
// derive from it, so equal seeds give reproducible sketches.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithRandomSeed draws the sketch seed from a cryptographically secure
// source. Use Seed to recover it, e.g. to build a mergeable peer.
func WithRandomSeed() Option {
	return func(c *config) {
		c.seed = rand.Uint64()
	}
}

// WithHash sets the seeded hash algorithm. Default is HashMurmur3.
func WithHash(id HashAlgorithmID) Option {
	return func(c *config) {
		c.hash = id
	}
}

// WithWeighting sets the weight column strategy. Default is WeightKeyed.
func WithWeighting(w Weighting) Option {
	return func(c *config) {
		c.weighting = w
	}
}

// WithWorkers sets the number of goroutines one Kbucket decode may use to
// scan large candidate sets. n <= 1 keeps decode serial.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// DefaultMaxMultiplicity is the default per-key multiplicity bound, capped at
// (p-1)/2 for small moduli. Decode rejects any candidate whose recovered
// multiplicity exceeds it, which is what filters spurious solutions out of
// over-full Kbuckets.
const DefaultMaxMultiplicity = 1 << 20

// WithMaxMultiplicity sets the largest per-key multiplicity decode accepts,
// in [1, p). Default is min(DefaultMaxMultiplicity, (p-1)/2). Larger values
// admit heavier keys but let over-full Kbuckets decode to keys that were
// never inserted.
func WithMaxMultiplicity(n uint64) Option {
	return func(c *config) {
		c.maxMultiplicity = n
	}
}

// WithKeyLimit restricts the key domain to [0, limit), limit in [1, p].
// Default is p. Decoded keys at or above the limit are rejected.
func WithKeyLimit(limit uint64) Option {
	return func(c *config) {
		c.keyLimit = limit
	}
}

// WithLogger sets the logger. Default discards all output.
func WithLogger(l *Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithLogLevel replaces the logger with a text logger to stderr at level.
func WithLogLevel(level slog.Level) Option {
	return func(c *config) {
		c.logLevel = &level
	}
}

// WithMetrics sets the metrics collector. Default is NoopMetricsCollector.
func WithMetrics(m MetricsCollector) Option {
	return func(c *config) {
		c.metrics = m
	}
}
