package row

import (
	"math/rand/v2"

	intbits "github.com/tamirms/flowsketch/internal/bits"
)

// Row is one independent hash-indexed array of M Kbuckets. Its seed makes
// both placement and the weight function independent from other Rows, so a
// collision stuck in one Row is often resolvable through another.
type Row struct {
	cfg       *Config
	seed      uint64
	placeSeed uint32
	kbuckets  []Kbucket
	store     []Bucket // backing array for all Kbuckets, M*K entries
}

// New builds an empty Row. cfg must have been initialized with Init.
func New(cfg *Config, seed uint64) *Row {
	r := &Row{
		cfg:       cfg,
		seed:      seed,
		placeSeed: intbits.DeriveSeed32(seed, 0),
		kbuckets:  make([]Kbucket, cfg.Buckets),
		store:     make([]Bucket, cfg.Buckets*cfg.K),
	}

	var rng *rand.Rand
	if cfg.Weighting == WeightAffine {
		rng = rand.New(rand.NewPCG(seed, intbits.SplitMix64(seed)))
	}
	p := cfg.Field.Modulus()
	for j := range r.kbuckets {
		kb := r.store[j*cfg.K : (j+1)*cfg.K : (j+1)*cfg.K]
		for i := range kb {
			if rng != nil {
				kb[i].sel = selector{a: 1 + rng.Uint64N(p-1), b: rng.Uint64N(p)}
			} else {
				kb[i].sel = selector{seed: intbits.DeriveSeed32(seed, uint64(i)+1)}
			}
		}
		r.kbuckets[j].buckets = kb
	}
	return r
}

// Seed returns the seed the Row was built with.
func (r *Row) Seed() uint64 { return r.seed }

// Len returns M, the number of Kbuckets.
func (r *Row) Len() int { return len(r.kbuckets) }

// Kbucket returns Kbucket i.
func (r *Row) Kbucket(i int) *Kbucket { return &r.kbuckets[i] }

// Place returns the Kbucket index key hashes to: hash(key, rowSeed) mod M.
func (r *Row) Place(key uint64) int {
	return int(r.cfg.Hash(key, r.placeSeed) % uint32(len(r.kbuckets)))
}

// Insert adds n occurrences of key to its Kbucket. The caller validates key
// and n against the Config.
func (r *Row) Insert(key, n uint64) {
	r.kbuckets[r.Place(key)].Insert(r.cfg, key, n)
}

// Delete removes n occurrences of key from its Kbucket.
func (r *Row) Delete(key, n uint64) {
	r.kbuckets[r.Place(key)].Delete(r.cfg, key, n)
}

// NonEmpty returns the number of Kbuckets with a nonzero count.
func (r *Row) NonEmpty() int {
	n := 0
	for i := range r.kbuckets {
		if !r.kbuckets[i].Empty() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy sharing only the Config.
func (r *Row) Clone() *Row {
	c := &Row{
		cfg:       r.cfg,
		seed:      r.seed,
		placeSeed: r.placeSeed,
		kbuckets:  make([]Kbucket, len(r.kbuckets)),
		store:     append([]Bucket(nil), r.store...),
	}
	k := r.cfg.K
	for j := range c.kbuckets {
		c.kbuckets[j].buckets = c.store[j*k : (j+1)*k : (j+1)*k]
	}
	return c
}

// Merge adds o's bucket state into r. Both Rows must come from the same
// Config and seed; the caller checks this.
func (r *Row) Merge(o *Row) {
	for j := range r.kbuckets {
		r.kbuckets[j].add(r.cfg, &o.kbuckets[j])
	}
}
