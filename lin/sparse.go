// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Sparse solves with a direct sparse factorisation (UMFPACK or MUMPS)
type Sparse struct {
	name   string
	ls     la.SparseSolver
	inited bool
}

// set factory
func init() {
	allocators["umfpack"] = func() Solver { return &Sparse{name: "umfpack"} }
	allocators["mumps"] = func() Solver { return &Sparse{name: "mumps"} }
}

// Init initialises the solver with the assembled triplet
func (o *Sparse) Init(kb *la.Triplet, symmetric, verbose, timing bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("cannot initialise %s solver:\n%v", o.name, r)
		}
	}()
	if o.inited {
		o.ls.Free()
	}
	cfg := la.NewSparseConfig()
	cfg.Verbose = verbose
	if symmetric {
		cfg.SetUmfpackSymmetry()
	}
	o.ls = la.NewSparseSolver(o.name)
	o.ls.Init(kb, cfg)
	o.inited = true
	return
}

// Fact performs the numeric factorisation
func (o *Sparse) Fact() (err error) {
	if !o.inited {
		return chk.Err("solver must be initialised before factorisation")
	}
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("%s factorisation failed:\n%v", o.name, r)
		}
	}()
	o.ls.Fact()
	return
}

// Solve solves A x = b. Direct back ends ignore the tolerance in prms.
func (o *Sparse) Solve(x, b []float64, prms *Params) (err error) {
	if !o.inited {
		return chk.Err("solver must be initialised before solving")
	}
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("%s solve failed:\n%v", o.name, r)
		}
	}()
	o.ls.Solve(la.Vector(x), la.Vector(b))
	return
}

// Free releases resources
func (o *Sparse) Free() {
	if o.inited {
		o.ls.Free()
		o.inited = false
	}
}
