// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpl

import (
	"github.com/cpmech/gosl/chk"
)

// SplitAndTransform restricts the rows of src to rowMap and the columns to
// colMap, applies the optional row and column converters, scales by scale,
// and assembles the result into dst. The zero-pattern is additive: entries
// land on top of whatever dst already holds. Unless addToDst is true, dst is
// erased first.
//
// This is the stateless algebraic workhorse behind interface condensation
// and the slave→master copy of interface linearizations.
func SplitAndTransform(src *SparseMat, rowMap, colMap *DofMap, scale float64,
	rowConv, colConv *Converter, dst *SparseMat, addToDst bool) (err error) {

	// converters must match the declared restriction maps
	if rowConv != nil && !rowConv.SrcMap().PointSameAs(rowMap) {
		// a looser containment is enough: every restricted row must be convertible
		for _, g := range rowMap.Gids() {
			if !rowConv.SrcMap().Has(g) {
				return chk.Err("row converter cannot convert GID %d of the row restriction map", g)
			}
		}
	}
	if colConv != nil {
		for _, g := range colMap.Gids() {
			if !colConv.SrcMap().Has(g) {
				return chk.Err("column converter cannot convert GID %d of the column restriction map", g)
			}
		}
	}

	if !addToDst {
		dst.Start()
	}

	src.Complete()
	src.Each(func(gr, gc int, v float64) {
		if !rowMap.Has(gr) || !colMap.Has(gc) {
			return
		}
		if rowConv != nil {
			gr, err = rowConv.Convert(gr)
			if err != nil {
				chk.Panic("%v", err)
			}
		}
		if colConv != nil {
			gc, err = colConv.Convert(gc)
			if err != nil {
				chk.Panic("%v", err)
			}
		}
		dst.Put(gr, gc, scale*v)
	})
	return
}
