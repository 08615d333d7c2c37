package row

// Kbucket is a slot of k Buckets, row index 0..k-1, fed identically. A key
// carries an independently chosen weight in each, which lets decode separate
// up to k colliding keys.
type Kbucket struct {
	buckets []Bucket
}

// Len returns k.
func (kb *Kbucket) Len() int { return len(kb.buckets) }

// Bucket returns the Bucket at row index r.
func (kb *Kbucket) Bucket(r int) *Bucket { return &kb.buckets[r] }

// Insert adds n occurrences of key to every Bucket.
func (kb *Kbucket) Insert(cfg *Config, key, n uint64) {
	for r := range kb.buckets {
		b := &kb.buckets[r]
		b.add(cfg, key, b.g(cfg, key, r), n)
	}
}

// Delete removes n occurrences of key from every Bucket.
func (kb *Kbucket) Delete(cfg *Config, key, n uint64) {
	for r := range kb.buckets {
		b := &kb.buckets[r]
		b.sub(cfg, key, b.g(cfg, key, r), n)
	}
}

// Counts returns a snapshot of the k weighted counts.
func (kb *Kbucket) Counts() []uint64 {
	out := make([]uint64, len(kb.buckets))
	for r := range kb.buckets {
		out[r] = kb.buckets[r].count
	}
	return out
}

// Empty reports whether all k counts are zero.
func (kb *Kbucket) Empty() bool {
	for r := range kb.buckets {
		if kb.buckets[r].count != 0 {
			return false
		}
	}
	return true
}

// add merges o into kb bucket-wise. Both must share selectors.
func (kb *Kbucket) add(cfg *Config, o *Kbucket) {
	f := cfg.Field
	for r := range kb.buckets {
		kb.buckets[r].count = f.Add(kb.buckets[r].count, o.buckets[r].count)
		kb.buckets[r].idSum = f.Add(kb.buckets[r].idSum, o.buckets[r].idSum)
	}
}
