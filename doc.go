// Package flowsketch implements a fixed-memory sketch for keyed multisets.
// It accepts a stream of (key, multiplicity) events and later attempts
// exact recovery of every key with its total multiplicity, using memory
// proportional to the number of Kbuckets rather than the number of keys.
//
// Each of R Rows hashes a key into one of M Kbuckets. A Kbucket holds k
// Buckets, each a pair of linear accumulators over Z/pZ weighted by a small
// prime that depends on the key, so up to k keys colliding in one Kbucket
// can be separated by solving a k×k linear system. Verify decodes every
// Kbucket it can, subtracts the recovered keys from all Rows and repeats
// until no further Kbucket resolves (peeling).
//
// # Basic Usage
//
//	s, err := flowsketch.New(3, 1024, 1_000_000_007, 2, 10, flowsketch.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ev := range events {
//	    if err := s.InsertN(ev.Key, ev.Count); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	for key, count := range s.Verify() {
//	    fmt.Println(key, count)
//	}
//
// Recovery is best effort: a Kbucket holding more than k keys is left
// undecoded unless peeling through another Row drains it. A decode is
// accepted only when every recovered multiplicity is at most
// MaxMultiplicity, every key is below KeyLimit and places back into its
// Kbucket, and the weights reproduce every Bucket. An over-full Kbucket
// passes all of these by chance with probability that shrinks with
// MaxMultiplicity and KeyLimit, so keep both as tight as the workload
// allows. Raising MaxMultiplicity toward p trades that margin away.
//
// # Package Structure
//
//   - Public API: sketch.go (New, Insert, Verify, Merge), prehash.go (PreHash)
//   - Configuration: options.go (Option, With* functions), algorithm.go (hash IDs)
//   - Observability: logger.go (slog wrapper), metrics.go (MetricsCollector)
//   - Engine: internal/row (Bucket, Kbucket, Row, decode), internal/field
//     (Z/pZ arithmetic and matrices), internal/weight (weight table,
//     candidate matrices), internal/hashing (seeded hashes)
//   - Traces: trace/ (on-disk event streams, replay, synthetic workloads)
package flowsketch
