// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpl

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// BlockMatrix holds a 2-D grid of sparse blocks. The row (resp. column)
// partition is a MultiMapExtractor; block (i,j) has row map equal to the
// i-th row sub-map and column map equal to the j-th column sub-map.
type BlockMatrix struct {
	rowEx  *MultiMapExtractor
	colEx  *MultiMapExtractor
	blocks [][]*SparseMat
}

// NewBlockMatrix returns a new block matrix with all blocks allocated empty
func NewBlockMatrix(rowEx, colEx *MultiMapExtractor) (o *BlockMatrix) {
	o = &BlockMatrix{rowEx: rowEx, colEx: colEx}
	o.blocks = make([][]*SparseMat, rowEx.NumMaps())
	for i := range o.blocks {
		o.blocks[i] = make([]*SparseMat, colEx.NumMaps())
		for j := range o.blocks[i] {
			o.blocks[i][j] = NewSparseMat(rowEx.Map(i), colEx.Map(j))
		}
	}
	return
}

// RowExtractor returns the row block partition
func (o *BlockMatrix) RowExtractor() *MultiMapExtractor { return o.rowEx }

// ColExtractor returns the column block partition
func (o *BlockMatrix) ColExtractor() *MultiMapExtractor { return o.colEx }

// Matrix returns block (i,j)
func (o *BlockMatrix) Matrix(i, j int) *SparseMat { return o.blocks[i][j] }

// Zero erases all blocks, keeping maps and graph estimates
func (o *BlockMatrix) Zero() {
	for i := range o.blocks {
		for j := range o.blocks[i] {
			o.blocks[i][j].Start()
		}
	}
}

// Complete completes all blocks and checks the block-map invariants.
// A mismatched block map is fatal since it means a field assembled into the
// wrong partition.
func (o *BlockMatrix) Complete() (err error) {
	for i := range o.blocks {
		for j := range o.blocks[i] {
			b := o.blocks[i][j]
			if b == nil {
				return chk.Err("block (%d,%d) was declared present but is nil", i, j)
			}
			if !b.RowMap().PointSameAs(o.rowEx.Map(i)) {
				return chk.Err("row map of block (%d,%d) does not point-same-as the %d-th partition map", i, j, i)
			}
			if !b.ColMap().PointSameAs(o.colEx.Map(j)) {
				return chk.Err("column map of block (%d,%d) does not point-same-as the %d-th partition map", i, j, j)
			}
			b.Complete()
		}
	}
	return
}

// MulVecAdd computes res += alpha * A * x with x and res over the full maps
func (o *BlockMatrix) MulVecAdd(res []float64, alpha float64, x []float64) {
	for i := range o.blocks {
		sub := make([]float64, o.rowEx.Map(i).Size())
		for j := range o.blocks[i] {
			xj := o.colEx.ExtractVector(x, j)
			o.blocks[i][j].MulVecAdd(sub, alpha, xj)
		}
		o.rowEx.AddVector(sub, i, res, 1)
	}
}

// RowInfNorms returns the infinity norms of all rows of block-row i,
// considering the main-diagonal block only
func (o *BlockMatrix) RowInfNorms(i int) (norms []float64) {
	norms = make([]float64, o.rowEx.Map(i).Size())
	o.blocks[i][i].AddRowInfNorms(norms)
	for k, v := range norms {
		if v == 0 {
			norms[k] = 1
		}
	}
	return
}

// ScaleDiagonalBlock applies symmetric row/column scaling to block (i,i) and
// the corresponding row scaling to the off-diagonal blocks of block-row i and
// column scaling to the off-diagonal blocks of block-column i
func (o *BlockMatrix) ScaleDiagonalBlock(i int, rowFactors []float64) {
	for j := range o.blocks[i] {
		o.blocks[i][j].ScaleRows(rowFactors)
	}
	for k := range o.blocks {
		o.blocks[k][i].ScaleCols(rowFactors)
	}
}

// AssembleTriplet copies all blocks into the solver triplet kb, addressing
// rows/columns by their local index in the full row/column maps
func (o *BlockMatrix) AssembleTriplet(kb *la.Triplet) {
	rowLid := func(gid int) int { return o.rowEx.FullMap().Lid(gid) }
	colLid := func(gid int) int { return o.colEx.FullMap().Lid(gid) }
	for i := range o.blocks {
		for j := range o.blocks[i] {
			o.blocks[i][j].AssembleTriplet(kb, rowLid, colLid)
		}
	}
}

// Nnz returns the total number of stored entries over all blocks
func (o *BlockMatrix) Nnz() (n int) {
	for i := range o.blocks {
		for j := range o.blocks[i] {
			n += o.blocks[i][j].Nnz()
		}
	}
	return
}

// SplitSparseIntoBlocks splits a completed sparse matrix into the blocks of
// dst, adding entries in place. Entries outside dst's partitions are fatal.
func SplitSparseIntoBlocks(src *SparseMat, dst *BlockMatrix) {
	src.Each(func(gr, gc int, v float64) {
		i := blockOf(dst.rowEx, gr)
		j := blockOf(dst.colEx, gc)
		if i < 0 || j < 0 {
			chk.Panic("entry (%d,%d) lies outside the block partition", gr, gc)
		}
		dst.blocks[i][j].Put(gr, gc, v)
	})
}

// blockOf returns the index of the sub-map containing gid or -1
func blockOf(ex *MultiMapExtractor, gid int) int {
	for i := 0; i < ex.NumMaps(); i++ {
		if ex.Map(i).Has(gid) {
			return i
		}
	}
	return -1
}

// VecNormOver returns the L2 norm of the entries of v (over full) lying in sub
func VecNormOver(full *DofMap, v []float64, sub *DofMap) (nrm float64) {
	for _, g := range sub.Gids() {
		x := v[full.Lid(g)]
		nrm += x * x
	}
	return math.Sqrt(nrm)
}
