package row

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/flowsketch/internal/field"
)

// parallelThreshold is the smallest candidate set worth splitting across
// workers. Below it goroutine startup costs more than the scan.
const parallelThreshold = 4096

// chunksPerWorker oversubscribes chunks so a worker that finishes early can
// pick up more of the remaining range.
const chunksPerWorker = 4

// Entry is one recovered key and its total multiplicity.
type Entry struct {
	Key   uint64
	Count uint64
}

// Decode attempts exact recovery of every key in Kbucket i. It returns the
// keys and multiplicities on success and nil when the Kbucket is empty or
// holds more keys (or a worse collision pattern) than it can separate.
//
// For kk = K down to 1 it searches the candidate weight matrices G in order
// and solves G·c = counts, then G·diag(c)·f = idSums. A solution is accepted
// only if every multiplicity and key is in range, every key places into
// Kbucket i, the weights g(f_j, r) reproduce G, and the Buckets beyond the
// first kk agree with the recovered keys. The first accepted candidate wins.
//
// Decode does not modify the Row.
func (r *Row) Decode(i int) []Entry {
	kb := &r.kbuckets[i]
	if kb.Empty() {
		return nil
	}
	for kk := r.cfg.K; kk >= 1; kk-- {
		if kk > kb.Len() {
			continue
		}
		var out []Entry
		if kk == 1 {
			out = r.decodeSingle(i, kb)
		} else {
			out = r.search(i, kb, kk)
		}
		if out != nil {
			return out
		}
	}
	return nil
}

// decodeSingle is the kk=1 closed form: a lone key f with multiplicity c
// leaves idSum/count == f in every Bucket, and c = count/g(f, 0).
func (r *Row) decodeSingle(i int, kb *Kbucket) []Entry {
	cfg := r.cfg
	key, count := kb.buckets[0].NormalizedSingle(cfg)
	if count == 0 || key >= cfg.KeyLimit {
		return nil
	}
	c, _ := cfg.Field.Div(count, kb.buckets[0].g(cfg, key, 0))
	if c == 0 || c > cfg.MaxMultiplicity {
		return nil
	}
	if r.Place(key) != i {
		return nil
	}
	out := []Entry{{Key: key, Count: c}}
	if !r.consistentTail(kb, out, 1) {
		return nil
	}
	return out
}

// consistentTail checks Buckets [from, K) against the recovered entries by
// exact re-substitution.
func (r *Row) consistentTail(kb *Kbucket, entries []Entry, from int) bool {
	cfg := r.cfg
	f := cfg.Field
	for row := from; row < kb.Len(); row++ {
		b := &kb.buckets[row]
		var count, idSum uint64
		for _, e := range entries {
			wc := f.Mul(b.g(cfg, e.Key, row), e.Count)
			count = f.Add(count, wc)
			idSum = f.Add(idSum, f.Mul(wc, e.Key))
		}
		if count != b.count || idSum != b.idSum {
			return false
		}
	}
	return true
}

// workspace holds the scratch state for evaluating candidates of one size.
type workspace struct {
	g, ginv, work field.Matrix
	a, idv, c, f  []uint64
	check         []uint64
}

func newWorkspace(kb *Kbucket, kk int) *workspace {
	ws := &workspace{
		g:     field.NewMatrix(kk),
		ginv:  field.NewMatrix(kk),
		work:  field.NewMatrix(kk),
		a:     make([]uint64, kk),
		idv:   make([]uint64, kk),
		c:     make([]uint64, kk),
		f:     make([]uint64, kk),
		check: make([]uint64, kk),
	}
	for j := 0; j < kk; j++ {
		ws.a[j] = kb.buckets[j].count
		ws.idv[j] = kb.buckets[j].idSum
	}
	return ws
}

// search scans the kk×kk candidates, in parallel when configured.
func (r *Row) search(i int, kb *Kbucket, kk int) []Entry {
	set := r.cfg.candidates[kk-1]
	n := set.Len()
	workers := r.cfg.Workers
	if workers <= 1 || n < parallelThreshold {
		_, out := r.scan(i, kb, kk, 0, n, nil)
		return out
	}
	return r.searchParallel(i, kb, kk, workers)
}

// searchParallel splits the candidate range into contiguous chunks. best
// holds the lowest index that succeeded so far; chunks entirely above it stop
// early. The lowest-index success is returned, matching the serial scan.
func (r *Row) searchParallel(i int, kb *Kbucket, kk, workers int) []Entry {
	n := r.cfg.candidates[kk-1].Len()
	chunks := workers * chunksPerWorker
	size := (n + chunks - 1) / chunks

	var best atomic.Int64
	best.Store(int64(n))
	results := make([][]Entry, chunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for ci := 0; ci < chunks; ci++ {
		lo := ci * size
		hi := min(lo+size, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			idx, out := r.scan(i, kb, kk, lo, hi, &best)
			if out == nil {
				return nil
			}
			results[ci] = out
			for {
				cur := best.Load()
				if int64(idx) >= cur || best.CompareAndSwap(cur, int64(idx)) {
					return nil
				}
			}
		})
	}
	_ = g.Wait() // workers never return errors

	for _, out := range results {
		if out != nil {
			return out
		}
	}
	return nil
}

// scan evaluates candidates [lo, hi) in order and returns the first success.
// When best is non-nil the scan stops once every remaining index is above
// the best success found by another worker.
func (r *Row) scan(i int, kb *Kbucket, kk, lo, hi int, best *atomic.Int64) (int, []Entry) {
	set := r.cfg.candidates[kk-1]
	inverses := r.cfg.inverses[kk-1]
	ws := newWorkspace(kb, kk)
	for idx := lo; idx < hi; idx++ {
		if best != nil && idx&63 == 0 && int64(idx) > best.Load() {
			return -1, nil
		}
		set.Fill(idx, ws.g)
		if inverses != nil {
			if !inverses.Fill(idx, ws.ginv) {
				continue
			}
		} else if !r.invert(ws) {
			continue
		}
		if out := r.tryCandidate(i, kb, ws); out != nil {
			return idx, out
		}
	}
	return -1, nil
}

// invert computes ws.ginv from ws.g, reporting false when G is singular.
func (r *Row) invert(ws *workspace) bool {
	f := r.cfg.Field
	if f.Rank(ws.g, ws.work) < ws.g.N {
		return false
	}
	return f.Inverse(ws.g, ws.ginv, ws.work)
}

// tryCandidate runs the solve-and-verify pipeline for the candidate G in
// ws.g with inverse ws.ginv.
//
// The key solve uses (G·diag(c))^-1 = diag(c)^-1·G^-1: G·diag(c) is full
// rank exactly when G is and every c_j is nonzero, which the multiplicity
// range check guarantees.
func (r *Row) tryCandidate(i int, kb *Kbucket, ws *workspace) []Entry {
	cfg := r.cfg
	f := cfg.Field

	// Multiplicities: c = G^-1·a, each in [1, MaxMultiplicity].
	f.MulVec(ws.ginv, ws.a, ws.c)
	for _, c := range ws.c {
		if c == 0 || c > cfg.MaxMultiplicity {
			return nil
		}
	}
	f.MulVec(ws.g, ws.c, ws.check)
	for j := range ws.check {
		if ws.check[j] != ws.a[j] {
			return nil
		}
	}

	// Keys: f = diag(c)^-1·G^-1·idv, each below KeyLimit and placed in i.
	f.MulVec(ws.ginv, ws.idv, ws.f)
	for j := range ws.f {
		inv, ok := f.Inv(ws.c[j])
		if !ok {
			return nil
		}
		ws.f[j] = f.Mul(ws.f[j], inv)
		if ws.f[j] >= cfg.KeyLimit || r.Place(ws.f[j]) != i {
			return nil
		}
	}
	kk := ws.g.N
	for row := 0; row < kk; row++ {
		b := &kb.buckets[row]
		for j, key := range ws.f {
			if b.g(cfg, key, row) != ws.g.At(row, j) {
				return nil
			}
		}
	}

	out := make([]Entry, kk)
	for j := range out {
		out[j] = Entry{Key: ws.f[j], Count: ws.c[j]}
	}
	if !r.consistentTail(kb, out, kk) {
		return nil
	}
	return out
}
