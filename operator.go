/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

package ebm

import (
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operator is a square sparse linear operator stored in compressed-row
// form. It is immutable after construction and implements mat.Matrix.
type Operator struct {
	n      int
	rowPtr []int
	cols   []int
	vals   []float64

	// Skipped is the number of neighbor contributions that were left out
	// while building the operator because two cell centers were
	// coincident.
	Skipped int
}

// newOperator compresses the n×n coordinate array a. Explicit zeros are
// dropped.
func newOperator(a *sparse.SparseArray) *Operator {
	n := a.Shape[0]
	keys := make([]int, 0, len(a.Elements))
	for k, v := range a.Elements {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	// Row-major keys sort into row order and then column order.
	sort.Ints(keys)

	o := &Operator{
		n:      n,
		rowPtr: make([]int, n+1),
		cols:   make([]int, len(keys)),
		vals:   make([]float64, len(keys)),
	}
	for p, k := range keys {
		o.rowPtr[k/n+1]++
		o.cols[p] = k % n
		o.vals[p] = a.Elements[k]
	}
	for i := 0; i < n; i++ {
		o.rowPtr[i+1] += o.rowPtr[i]
	}
	return o
}

// Dims returns the dimensions of the operator.
func (o *Operator) Dims() (r, c int) { return o.n, o.n }

// At returns the element at row i, column j.
func (o *Operator) At(i, j int) float64 {
	if uint(i) >= uint(o.n) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(o.n) {
		panic(mat.ErrColAccess)
	}
	cols := o.cols[o.rowPtr[i]:o.rowPtr[i+1]]
	p := sort.SearchInts(cols, j)
	if p < len(cols) && cols[p] == j {
		return o.vals[o.rowPtr[i]+p]
	}
	return 0
}

// T returns the transpose of the operator.
func (o *Operator) T() mat.Matrix { return mat.Transpose{Matrix: o} }

// NNZ returns the number of stored non-zero elements.
func (o *Operator) NNZ() int { return len(o.vals) }

// MulVec sets dst = o·x. dst and x must both have length N and must not
// share memory.
func (o *Operator) MulVec(dst, x []float64) {
	if len(dst) != o.n || len(x) != o.n {
		panic(mat.ErrShape)
	}
	for i := 0; i < o.n; i++ {
		var v float64
		for p := o.rowPtr[i]; p < o.rowPtr[i+1]; p++ {
			v += o.vals[p] * x[o.cols[p]]
		}
		dst[i] = v
	}
}

// RowSums returns the sum of every row.
func (o *Operator) RowSums() []float64 {
	s := make([]float64, o.n)
	for i := range s {
		s[i] = floats.Sum(o.vals[o.rowPtr[i]:o.rowPtr[i+1]])
	}
	return s
}

// ColSums returns the sum of every column.
func (o *Operator) ColSums() []float64 {
	s := make([]float64, o.n)
	for p, j := range o.cols {
		s[j] += o.vals[p]
	}
	return s
}

// normalizeRows scales every row of o to sum to 1, in column order, and
// returns the result. Rows that sum to zero become identity rows.
func (o *Operator) normalizeRows() *Operator {
	var empty []int
	for i := 0; i < o.n; i++ {
		row := o.vals[o.rowPtr[i]:o.rowPtr[i+1]]
		sum := floats.Sum(row)
		if sum == 0 {
			empty = append(empty, i)
			continue
		}
		for p := range row {
			row[p] /= sum
		}
	}
	return o.withIdentity(empty)
}

// normalizeColumns scales every column of o to sum to 1, accumulating in
// storage order, and returns the result. Columns that sum to zero become
// identity columns.
func (o *Operator) normalizeColumns() *Operator {
	sums := make([]float64, o.n)
	for p, j := range o.cols {
		sums[j] += o.vals[p]
	}
	for p, j := range o.cols {
		if sum := sums[j]; sum != 0 {
			o.vals[p] /= sum
		}
	}
	var empty []int
	for j, sum := range sums {
		if sum == 0 {
			empty = append(empty, j)
		}
	}
	return o.withIdentity(empty)
}

// withIdentity returns o with its diagonal element set to 1 in each of
// the given lines.
func (o *Operator) withIdentity(lines []int) *Operator {
	if len(lines) == 0 {
		return o
	}
	a := sparse.ZerosSparse(o.n, o.n)
	for i := 0; i < o.n; i++ {
		for p := o.rowPtr[i]; p < o.rowPtr[i+1]; p++ {
			a.Set(o.vals[p], i, o.cols[p])
		}
	}
	for _, i := range lines {
		a.Set(1, i, i)
	}
	no := newOperator(a)
	no.Skipped = o.Skipped
	return no
}
