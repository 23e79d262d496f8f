// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// Dense solves with a dense LU decomposition. It needs no external
// factorisation library and serves small systems and unit tests.
type Dense struct {
	kb  *la.Triplet
	lu  mat.LU
	dim int
}

// set factory
func init() {
	allocators["dense"] = func() Solver { return new(Dense) }
}

// Init stores the triplet reference; the dense copy is built on Fact
func (o *Dense) Init(kb *la.Triplet, symmetric, verbose, timing bool) (err error) {
	if kb == nil {
		return chk.Err("triplet must not be nil")
	}
	o.kb = kb
	return
}

// Fact converts the triplet to dense form and factorises
func (o *Dense) Fact() (err error) {
	if o.kb == nil {
		return chk.Err("solver must be initialised before factorisation")
	}
	dm := o.kb.ToDense()
	o.dim, _ = o.kb.Size()
	a := mat.NewDense(o.dim, o.dim, nil)
	for i := 0; i < o.dim; i++ {
		for j := 0; j < o.dim; j++ {
			a.Set(i, j, dm.Get(i, j))
		}
	}
	o.lu.Factorize(a)
	if o.lu.Cond() > 1e16 {
		return chk.Err("monolithic system matrix is singular to working precision")
	}
	return
}

// Solve solves A x = b using the last factorisation
func (o *Dense) Solve(x, b []float64, prms *Params) (err error) {
	if o.dim == 0 {
		return chk.Err("solver must be factorised before solving")
	}
	if len(x) != o.dim || len(b) != o.dim {
		return chk.Err("vector lengths do not match the system dimension. %d, %d ≠ %d", len(x), len(b), o.dim)
	}
	var xv mat.VecDense
	e := o.lu.SolveVecTo(&xv, false, mat.NewVecDense(o.dim, b))
	if e != nil {
		return chk.Err("dense solve failed:\n%v", e)
	}
	for i := 0; i < o.dim; i++ {
		x[i] = xv.AtVec(i)
	}
	return
}

// Free releases resources
func (o *Dense) Free() {
	o.kb = nil
	o.dim = 0
}
