package field

// Matrix is a dense square matrix over the field, stored row-major.
//
// Decode evaluates thousands of candidate matrices per Kbucket, so the
// operations below write into caller-provided matrices instead of allocating.
type Matrix struct {
	N    int
	Data []uint64
}

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) Matrix {
	return Matrix{N: n, Data: make([]uint64, n*n)}
}

// MatrixFromRows builds a matrix from row slices. All rows must have len(rows) entries.
func MatrixFromRows(rows [][]uint64) Matrix {
	m := NewMatrix(len(rows))
	for r, row := range rows {
		copy(m.Data[r*m.N:(r+1)*m.N], row)
	}
	return m
}

// At returns entry (r, c).
func (m Matrix) At(r, c int) uint64 { return m.Data[r*m.N+c] }

// Set stores v at (r, c).
func (m Matrix) Set(r, c int, v uint64) { m.Data[r*m.N+c] = v }

// CopyFrom overwrites m with src. Both must have the same size.
func (m Matrix) CopyFrom(src Matrix) { copy(m.Data, src.Data) }

// Equal reports whether m and o hold the same entries.
func (m Matrix) Equal(o Matrix) bool {
	if m.N != o.N {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

func (m Matrix) swapRows(a, b int) {
	if a == b {
		return
	}
	ra := m.Data[a*m.N : (a+1)*m.N]
	rb := m.Data[b*m.N : (b+1)*m.N]
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
}

// firstPivot returns the first row at or below from whose entry in column
// col is nonzero, or -1.
func (m Matrix) firstPivot(from, col int) int {
	for r := from; r < m.N; r++ {
		if m.Data[r*m.N+col] != 0 {
			return r
		}
	}
	return -1
}

// Rank returns the rank of m over the field using Gauss-Jordan elimination.
// work must be the same size as m; it is overwritten.
func (f Field) Rank(m Matrix, work Matrix) int {
	work.CopyFrom(m)
	n := m.N
	rank := 0
	for col := 0; col < n && rank < n; col++ {
		piv := work.firstPivot(rank, col)
		if piv < 0 {
			continue
		}
		work.swapRows(piv, rank)
		inv, _ := f.Inv(work.At(rank, col))
		pr := work.Data[rank*n : (rank+1)*n]
		for j := col; j < n; j++ {
			pr[j] = f.Mul(pr[j], inv)
		}
		for r := 0; r < n; r++ {
			if r == rank {
				continue
			}
			factor := work.At(r, col)
			if factor == 0 {
				continue
			}
			row := work.Data[r*n : (r+1)*n]
			for j := col; j < n; j++ {
				row[j] = f.Sub(row[j], f.Mul(factor, pr[j]))
			}
		}
		rank++
	}
	return rank
}

// Inverse writes m^-1 into dst and reports whether m is invertible.
// work must be the same size as m; it is overwritten. On failure dst holds
// garbage.
func (f Field) Inverse(m Matrix, dst Matrix, work Matrix) bool {
	work.CopyFrom(m)
	n := m.N
	clear(dst.Data)
	for i := 0; i < n; i++ {
		dst.Set(i, i, 1)
	}
	for col := 0; col < n; col++ {
		piv := work.firstPivot(col, col)
		if piv < 0 {
			return false
		}
		work.swapRows(piv, col)
		dst.swapRows(piv, col)

		inv, ok := f.Inv(work.At(col, col))
		if !ok {
			return false
		}
		wr := work.Data[col*n : (col+1)*n]
		dr := dst.Data[col*n : (col+1)*n]
		for j := 0; j < n; j++ {
			wr[j] = f.Mul(wr[j], inv)
			dr[j] = f.Mul(dr[j], inv)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := work.At(r, col)
			if factor == 0 {
				continue
			}
			wrow := work.Data[r*n : (r+1)*n]
			drow := dst.Data[r*n : (r+1)*n]
			for j := 0; j < n; j++ {
				wrow[j] = f.Sub(wrow[j], f.Mul(factor, wr[j]))
				drow[j] = f.Sub(drow[j], f.Mul(factor, dr[j]))
			}
		}
	}
	return true
}

// MulVec writes m·v into dst and returns it. dst must not alias v.
func (f Field) MulVec(m Matrix, v, dst []uint64) []uint64 {
	n := m.N
	for r := 0; r < n; r++ {
		var acc uint64
		row := m.Data[r*n : (r+1)*n]
		for c, x := range row {
			acc = f.Add(acc, f.Mul(x, v[c]))
		}
		dst[r] = acc
	}
	return dst
}
