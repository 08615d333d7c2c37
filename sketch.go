package flowsketch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	intbits "github.com/tamirms/flowsketch/internal/bits"
	"github.com/tamirms/flowsketch/internal/field"
	"github.com/tamirms/flowsketch/internal/row"
)

// Sketch is a fixed-memory keyed multiset: R independent Rows of M Kbuckets,
// each Kbucket holding k Buckets. All state is allocated in New.
//
// A Sketch is not safe for concurrent use. Inserts must not overlap a
// Verify call.
type Sketch struct {
	cfg     *row.Config
	rows    []*row.Row
	seed    uint64
	hash    HashAlgorithmID
	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty sketch with rows Rows of bucketsPerRow Kbuckets, over
// the prime field Z/pZ, replication factor k and weight column range rc.
//
// p must be a prime in (199, 2^62). k*rc must not exceed the 46-entry weight
// table, and rc^(k*k) bounds the candidate search per decode.
func New(rows, bucketsPerRow int, p uint64, k, rc int, opts ...Option) (*Sketch, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	if rows < 1 {
		return nil, fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidRows, rows)
	}
	if bucketsPerRow < 1 {
		return nil, fmt.Errorf("%w: got %d", sketcherrors.ErrInvalidBuckets, bucketsPerRow)
	}
	// Peeling tracks coordinates row*M+bucket as uint32.
	if uint64(rows)*uint64(bucketsPerRow) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d rows of %d kbuckets exceed 2^32 coordinates",
			sketcherrors.ErrInvalidBuckets, rows, bucketsPerRow)
	}
	f, err := field.New(p)
	if err != nil {
		return nil, err
	}
	hash, err := newHashFunc(c.hash)
	if err != nil {
		return nil, err
	}

	cfg := &row.Config{
		Field:           f,
		K:               k,
		ColumnRange:     rc,
		Buckets:         bucketsPerRow,
		Hash:            hash,
		Weighting:       c.weighting,
		MaxMultiplicity: c.maxMultiplicity,
		KeyLimit:        c.keyLimit,
		Workers:         c.workers,
	}
	if cfg.MaxMultiplicity == 0 {
		cfg.MaxMultiplicity = min(DefaultMaxMultiplicity, (p-1)/2)
	}
	if cfg.KeyLimit == 0 {
		cfg.KeyLimit = p
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	logger := c.logger
	if c.logLevel != nil {
		logger = NewTextLogger(*c.logLevel)
	}
	if logger == nil {
		logger = NoopLogger()
	}
	metrics := c.metrics
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	s := &Sketch{
		cfg:     cfg,
		rows:    make([]*row.Row, rows),
		seed:    c.seed,
		hash:    c.hash,
		logger:  logger.WithSeed(c.seed),
		metrics: metrics,
	}
	for ri := range s.rows {
		s.rows[ri] = row.New(cfg, intbits.DeriveSeed64(c.seed, uint64(ri)))
	}
	return s, nil
}

// Insert records one occurrence of key.
func (s *Sketch) Insert(key uint64) error {
	return s.InsertN(key, 1)
}

// InsertN records n occurrences of key in every Row.
func (s *Sketch) InsertN(key, n uint64) error {
	if err := s.validate(key, n); err != nil {
		s.metrics.RecordInsert(n, err)
		return err
	}
	for _, r := range s.rows {
		r.Insert(key, n)
	}
	s.metrics.RecordInsert(n, nil)
	return nil
}

// Delete removes n occurrences of key from every Row. Deleting more than
// was inserted leaves negative mass that no decode will accept.
func (s *Sketch) Delete(key, n uint64) error {
	if err := s.validate(key, n); err != nil {
		s.metrics.RecordDelete(n, err)
		return err
	}
	for _, r := range s.rows {
		r.Delete(key, n)
	}
	s.metrics.RecordDelete(n, nil)
	return nil
}

func (s *Sketch) validate(key, n uint64) error {
	if err := s.cfg.ValidateKey(key); err != nil {
		return err
	}
	return s.cfg.ValidateMultiplicity(n)
}

// Verify decodes the sketch and returns every recovered key with its total
// multiplicity. Recovered mass is subtracted from the sketch, so a second
// call without intervening inserts returns an empty map. Keys stuck in
// over-full Kbuckets are left in place and omitted.
func (s *Sketch) Verify() map[uint64]uint64 {
	out, _ := s.VerifyContext(context.Background())
	return out
}

// VerifyContext is Verify with cancellation. When ctx is done it stops
// between Kbucket decodes and returns the keys recovered so far together
// with ctx.Err(); the sketch stays consistent with the returned map.
func (s *Sketch) VerifyContext(ctx context.Context) (map[uint64]uint64, error) {
	start := time.Now()
	out := make(map[uint64]uint64)
	var stats VerifyStats

	err := s.peel(ctx, out, &stats)

	stats.Decoded = len(out)
	stats.Residual = s.Residual()
	stats.Duration = time.Since(start)
	s.logger.LogVerify(ctx, stats, err)
	s.metrics.RecordVerify(stats)
	return out, err
}

// peel runs the initial sweep and then fixed-point passes over the pending
// coordinates until a pass decodes nothing.
func (s *Sketch) peel(ctx context.Context, out map[uint64]uint64, stats *VerifyStats) error {
	m := s.cfg.Buckets
	pending := roaring.New()

	for ri, r := range s.rows {
		for i := 0; i < m; i++ {
			if r.Kbucket(i).Empty() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			stats.DecodeAttempts++
			if entries := r.Decode(i); entries != nil {
				s.cancel(entries, out)
				continue
			}
			pending.Add(uint32(ri*m + i))
		}
	}

	for !pending.IsEmpty() {
		stats.Passes++
		progress := false
		for _, coord := range pending.ToArray() {
			ri, i := int(coord)/m, int(coord)%m
			r := s.rows[ri]
			if r.Kbucket(i).Empty() {
				pending.Remove(coord)
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			stats.DecodeAttempts++
			if entries := r.Decode(i); entries != nil {
				s.cancel(entries, out)
				pending.Remove(coord)
				progress = true
			}
		}
		s.logger.LogPass(ctx, stats.Passes, len(out), int(pending.GetCardinality()))
		if !progress {
			break
		}
	}
	return nil
}

// cancel subtracts decoded entries from every Row and records them.
func (s *Sketch) cancel(entries []row.Entry, out map[uint64]uint64) {
	for _, e := range entries {
		for _, r := range s.rows {
			r.Delete(e.Key, e.Count)
		}
		out[e.Key] += e.Count
	}
}

// Merge adds other's contents into s, as if every event inserted into other
// had been inserted into s. Both sketches must share shape, field, seed,
// hash, weighting and decode acceptance bounds (KeyLimit, MaxMultiplicity).
func (s *Sketch) Merge(other *Sketch) error {
	if !s.compatible(other) {
		return sketcherrors.ErrIncompatibleSketch
	}
	for ri, r := range s.rows {
		r.Merge(other.rows[ri])
	}
	return nil
}

func (s *Sketch) compatible(o *Sketch) bool {
	a, b := s.cfg, o.cfg
	return len(s.rows) == len(o.rows) &&
		s.seed == o.seed &&
		s.hash == o.hash &&
		a.Field.Modulus() == b.Field.Modulus() &&
		a.K == b.K &&
		a.ColumnRange == b.ColumnRange &&
		a.Buckets == b.Buckets &&
		a.Weighting == b.Weighting &&
		a.KeyLimit == b.KeyLimit &&
		a.MaxMultiplicity == b.MaxMultiplicity
}

// Clone returns a deep copy of the sketch. Verify on the clone leaves s
// untouched.
func (s *Sketch) Clone() *Sketch {
	c := *s
	c.rows = make([]*row.Row, len(s.rows))
	for ri, r := range s.rows {
		c.rows[ri] = r.Clone()
	}
	return &c
}

// Empty reports whether every Kbucket in every Row has zero count.
func (s *Sketch) Empty() bool {
	return s.Residual() == 0
}

// Residual returns the number of nonzero Kbuckets across all Rows.
func (s *Sketch) Residual() int {
	n := 0
	for _, r := range s.rows {
		n += r.NonEmpty()
	}
	return n
}

// Rows returns R.
func (s *Sketch) Rows() int { return len(s.rows) }

// BucketsPerRow returns M.
func (s *Sketch) BucketsPerRow() int { return s.cfg.Buckets }

// Modulus returns p.
func (s *Sketch) Modulus() uint64 { return s.cfg.Field.Modulus() }

// Replication returns k, the Buckets per Kbucket.
func (s *Sketch) Replication() int { return s.cfg.K }

// ColumnRange returns rc.
func (s *Sketch) ColumnRange() int { return s.cfg.ColumnRange }

// Seed returns the sketch seed.
func (s *Sketch) Seed() uint64 { return s.seed }

// HashAlgorithm returns the configured hash.
func (s *Sketch) HashAlgorithm() HashAlgorithmID { return s.hash }

// Weighting returns the weight column strategy.
func (s *Sketch) Weighting() Weighting { return s.cfg.Weighting }

// KeyLimit returns the exclusive upper bound of the key domain.
func (s *Sketch) KeyLimit() uint64 { return s.cfg.KeyLimit }

// MaxMultiplicity returns the largest multiplicity decode accepts.
func (s *Sketch) MaxMultiplicity() uint64 { return s.cfg.MaxMultiplicity }
