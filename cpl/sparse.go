// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpl

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// SparseMat holds a sparse matrix in global (GID-addressed) coordinate form
// together with its declared row and column maps. Assembly is additive;
// Complete merges duplicates and is the global fence after which the matrix
// may be applied or copied into the solver triplet.
type SparseMat struct {
	rowMap *DofMap
	colMap *DofMap
	ri     []int
	ci     []int
	vals   []float64
	done   bool
}

// NewSparseMat returns a new (empty) sparse matrix over the given maps
func NewSparseMat(rowMap, colMap *DofMap) (o *SparseMat) {
	return &SparseMat{rowMap: rowMap, colMap: colMap}
}

// RowMap returns the declared row map
func (o *SparseMat) RowMap() *DofMap { return o.rowMap }

// ColMap returns the declared column map
func (o *SparseMat) ColMap() *DofMap { return o.colMap }

// Start erases all entries so the matrix can be refilled with the same maps
func (o *SparseMat) Start() {
	o.ri = o.ri[:0]
	o.ci = o.ci[:0]
	o.vals = o.vals[:0]
	o.done = false
}

// Put adds v to entry (gidRow, gidCol). Rows outside the declared row map
// are fatal; this is the assembly invariant of the block system.
func (o *SparseMat) Put(gidRow, gidCol int, v float64) {
	if !o.rowMap.Has(gidRow) {
		chk.Panic("cannot assemble into row %d: row is outside the declared row map", gidRow)
	}
	if !o.colMap.Has(gidCol) {
		chk.Panic("cannot assemble into column %d: column is outside the declared column map", gidCol)
	}
	o.ri = append(o.ri, gidRow)
	o.ci = append(o.ci, gidCol)
	o.vals = append(o.vals, v)
	o.done = false
}

// Complete merges duplicate entries. It must be called before Apply,
// ExtractEntries, or AssembleTriplet; re-assembly after Complete is allowed
// and requires a new Complete.
func (o *SparseMat) Complete() {
	if o.done {
		return
	}
	if len(o.vals) > 1 {
		idx := make([]int, len(o.vals))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			ia, ib := idx[a], idx[b]
			if o.ri[ia] != o.ri[ib] {
				return o.ri[ia] < o.ri[ib]
			}
			return o.ci[ia] < o.ci[ib]
		})
		ri := make([]int, 0, len(idx))
		ci := make([]int, 0, len(idx))
		vals := make([]float64, 0, len(idx))
		for _, i := range idx {
			n := len(ri)
			if n > 0 && ri[n-1] == o.ri[i] && ci[n-1] == o.ci[i] {
				vals[n-1] += o.vals[i]
				continue
			}
			ri = append(ri, o.ri[i])
			ci = append(ci, o.ci[i])
			vals = append(vals, o.vals[i])
		}
		o.ri, o.ci, o.vals = ri, ci, vals
	}
	o.done = true
}

// Nnz returns the number of stored entries (after merging if completed)
func (o *SparseMat) Nnz() int { return len(o.vals) }

// Each calls f for every stored entry. The matrix must be completed.
func (o *SparseMat) Each(f func(gidRow, gidCol int, v float64)) {
	if !o.done {
		chk.Panic("matrix must be completed before iterating its entries")
	}
	for k, v := range o.vals {
		f(o.ri[k], o.ci[k], v)
	}
}

// MulVecAdd computes res += alpha * A * x with x over the column map and
// res over the row map. The matrix must be completed.
func (o *SparseMat) MulVecAdd(res []float64, alpha float64, x []float64) {
	if !o.done {
		chk.Panic("matrix must be completed before applying it")
	}
	for k, v := range o.vals {
		res[o.rowMap.Lid(o.ri[k])] += alpha * v * x[o.colMap.Lid(o.ci[k])]
	}
}

// MulTrVecAdd computes res += alpha * Aᵀ * x with x over the row map and
// res over the column map. The matrix must be completed.
func (o *SparseMat) MulTrVecAdd(res []float64, alpha float64, x []float64) {
	if !o.done {
		chk.Panic("matrix must be completed before applying it")
	}
	for k, v := range o.vals {
		res[o.colMap.Lid(o.ci[k])] += alpha * v * x[o.rowMap.Lid(o.ri[k])]
	}
}

// ScaleRows multiplies each row by the corresponding factor (over the row map)
func (o *SparseMat) ScaleRows(factors []float64) {
	for k := range o.vals {
		o.vals[k] *= factors[o.rowMap.Lid(o.ri[k])]
	}
}

// ScaleCols multiplies each column by the corresponding factor (over the column map)
func (o *SparseMat) ScaleCols(factors []float64) {
	for k := range o.vals {
		o.vals[k] *= factors[o.colMap.Lid(o.ci[k])]
	}
}

// AddRowInfNorms accumulates max |a_ij| per row into norms (over the row map)
func (o *SparseMat) AddRowInfNorms(norms []float64) {
	if !o.done {
		chk.Panic("matrix must be completed before computing row norms")
	}
	for k, v := range o.vals {
		l := o.rowMap.Lid(o.ri[k])
		a := v
		if a < 0 {
			a = -a
		}
		if a > norms[l] {
			norms[l] = a
		}
	}
}

// SetDiagonal puts v on the diagonal entry of row gid, erasing the rest of the
// row. Used to enforce Dirichlet rows in the monolithic system.
func (o *SparseMat) SetDiagonal(gid int, v float64) {
	for k := range o.vals {
		if o.ri[k] == gid {
			o.vals[k] = 0
		}
	}
	if o.colMap.Has(gid) {
		o.ri = append(o.ri, gid)
		o.ci = append(o.ci, gid)
		o.vals = append(o.vals, v)
	}
	o.done = false
}

// BlankRow zeroes all entries of row gid
func (o *SparseMat) BlankRow(gid int) {
	for k := range o.vals {
		if o.ri[k] == gid {
			o.vals[k] = 0
		}
	}
}

// AssembleTriplet copies all entries into the solver triplet kb using the
// given global row/column index lookups. The matrix must be completed.
func (o *SparseMat) AssembleTriplet(kb *la.Triplet, rowLid, colLid func(gid int) int) {
	if !o.done {
		chk.Panic("matrix must be completed before assembling into the solver triplet")
	}
	for k, v := range o.vals {
		kb.Put(rowLid(o.ri[k]), colLid(o.ci[k]), v)
	}
}
