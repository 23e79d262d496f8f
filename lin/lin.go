// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lin defines the linear solver contract consumed by the nonlinear
// driver and provides sparse (gosl) and dense (gonum) implementations
package lin

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Params carries the per-solve parameters the nonlinear driver hands to the
// linear solver. The driver adapts Tol to its own convergence progress; the
// solver itself never inspects the nonlinear state.
type Params struct {
	Refactor        bool    // matrix values changed; refactorise
	Reset           bool    // matrix graph changed; rebuild symbolic data
	LinTolBetter    bool    // request a tolerance better than Tol if cheap
	Tol             float64 // target linear tolerance (iterative back ends)
	NonlinResidual  float64 // current nonlinear residual norm (for reporting)
	NonlinTolerance float64 // outer nonlinear tolerance (upper clamp)
}

// Solver wraps a linear system solver for the monolithic block system
type Solver interface {
	Init(kb *la.Triplet, symmetric, verbose, timing bool) (err error) // initialise with the assembled triplet
	Fact() (err error)                                                // (re)factorise
	Solve(x, b []float64, prms *Params) (err error)                   // solve A x = b
	Free()                                                            // release resources
}

// New returns a solver by name: "umfpack", "mumps" or "dense"
func New(name string) (o Solver, err error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("cannot find linear solver named %q", name)
	}
	o = alloc()
	return
}

// allocators holds all available solvers
var allocators = make(map[string]func() Solver)
