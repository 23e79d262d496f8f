// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/lin"
)

// NewtonStatus reports the outcome of one nonlinear solve
type NewtonStatus struct {
	Converged bool    // all per-field checks passed
	Diverging bool    // residual norm grew between iterations
	It        int     // number of iterations performed
	LargFb    float64 // largest absolute component of the monolithic residual
	Ldu       float64 // largest per-field RMS increment norm
}

// RunIterations solves the nonlinear monolithic problem of the current time
// step with the Newton-Raphson method. PrepareTimeStep must have been called;
// the fields hold the predictor state on entry and the converged state of
// tn+1 on success.
func (o *Driver) RunIterations() (st NewtonStatus, err error) {

	// auxiliary
	sd := &o.Sim.Solver
	n := o.Asm.DofRowMap().Size()
	f := make([]float64, n)
	x := make([]float64, n)
	fields := o.Fields()
	largFb0 := make([]float64, len(fields))
	var prevFb, prevLdu float64

	// message
	if o.Sim.Data.ShowR {
		io.Pf("\n%13s%4s%23s%23s\n", "t", "it", "largFb", "Lδu")
		defer func() {
			io.Pf("%13.6e%4d%23.15e%23.15e\n", o.Str.Time(), st.It, st.LargFb, st.Ldu)
		}()
	}

	// iterations
	for it := 0; it < sd.NmaxIt; it++ {
		st.It = it
		first := it == 0

		// assemble right-hand side vector (fb) with negative of residuals
		if err = o.Asm.SetupRHS(f, first); err != nil {
			return
		}

		// per-field residual norms over free DOFs
		st.LargFb = la.Vector(f).Largest(1)
		converged := true
		strict := false
		for k, fd := range fields {
			lf := la.Vector(fd.Rhs()).Largest(1)
			fbtol := fd.Data.FbTol
			if fbtol == 0 {
				fbtol = sd.FbTol
			}
			if first {
				largFb0[k] = lf
				converged = false
				continue
			}
			switch {
			case lf < sd.FbMin:
				strict = true
			case lf < fbtol*largFb0[k]:
			default:
				converged = false
			}
		}

		// save residual
		if o.Sim.Data.Stat && o.Sum != nil {
			o.Sum.Resids.Append(first, st.LargFb)
		}

		// converged on the residuals and on the previous increment
		if converged && strict {
			st.Converged = true
			return
		}

		// check divergence on fb
		if it > 1 && sd.DvgCtrl && st.LargFb > prevFb {
			st.Diverging = true
			return
		}
		prevFb = st.LargFb

		// assemble Jacobian matrix
		doAsmFact := first || !sd.CteTg
		if doAsmFact {
			if err = o.Asm.SetupSystemMatrix(); err != nil {
				return
			}
			o.Asm.ScaleSystem(f)

			// size the solver triplet from the filled matrix. capacity can
			// only be known after the fill; a growth forces a solver re-init
			if nnz := o.Asm.SystemMatrix().Nnz() + n; o.kb.Max() < nnz {
				o.kb.Init(n, n, nnz)
				o.initLSol = true
			}
			o.kb.Start()
			o.Asm.AssembleTriplet(&o.kb)

			// initialise linear solver
			if o.initLSol {
				if err = o.lis.Init(&o.kb, o.Sim.LinSol.Symmetric, o.Sim.LinSol.Verbose, o.Sim.LinSol.Timing); err != nil {
					return
				}
				o.initLSol = false
			}

			// perform factorisation
			if err = o.lis.Fact(); err != nil {
				return
			}
		} else {
			o.Asm.ScaleSystem(f)
		}

		// solve for x := δy
		prms := lin.Params{
			Refactor:        doAsmFact,
			Reset:           first,
			LinTolBetter:    sd.AdaLinTol,
			NonlinResidual:  st.LargFb,
			NonlinTolerance: sd.FbTol,
		}
		if sd.AdaLinTol && it > 0 && o.prevFb > 0 {
			prms.Tol = adaptiveLinTol(sd.LinTolEta, st.LargFb, o.prevFb, sd.LinTolMin, sd.FbTol)
		}
		if err = o.lis.Solve(x, f, &prms); err != nil {
			return
		}
		o.Asm.UnscaleSolution(x, f)
		o.prevFb = st.LargFb

		// update primary variables (y)
		relax := 1.0
		sx, fx, ax := o.Asm.ExtractFieldVectors(x, first)
		for ls := 0; ; ls++ {
			o.applyIncrements(sx, fx, ax, relax)
			if err = o.evaluateAll(false); err != nil {
				return
			}
			if !sd.LnSrch || ls >= sd.LsMaxIt {
				break
			}
			// residual-backtracking line search
			lf := o.largestFieldResidual(fields)
			if first || lf <= prevFb {
				break
			}
			o.applyIncrements(sx, fx, ax, -relax) // undo
			relax *= 0.5
		}

		// compute RMS norm of δy and check convergence on δy
		st.Ldu = 0
		converged = true
		incs := [][]float64{sx, fx, ax}
		for k, fd := range fields {
			ittol := fd.Data.ItTol
			if ittol == 0 {
				ittol = sd.Itol
			}
			ldu := relax * rmsErr(incs[k], sd.Atol, sd.Rtol, fd.StateNp().Y)
			if ldu > st.Ldu {
				st.Ldu = ldu
			}
			if ldu >= ittol {
				converged = false
			}
		}

		// message
		if o.Sim.Data.ShowR {
			io.Pf("%13.6e%4d%23.15e%23.15e\n", o.Str.Time(), it, st.LargFb, st.Ldu)
		}

		// stop if converged on δy
		if converged && it > 0 {
			st.Converged = true
			return
		}

		// check divergence on Lδu
		if it > 1 && sd.DvgCtrl && st.Ldu > prevLdu {
			st.Diverging = true
			return
		}
		prevLdu = st.Ldu
	}

	// max number of iterations reached
	return
}

// applyIncrements accumulates the (possibly relaxed) Newton increments of all
// fields into the step increments
func (o *Driver) applyIncrements(sx, fx, ax []float64, relax float64) {
	for i := range sx {
		o.sInc[i] += relax * sx[i]
	}
	for i := range fx {
		o.fInc[i] += relax * fx[i]
	}
	if o.aInc != nil {
		for i := range ax {
			o.aInc[i] += relax * ax[i]
		}
	}
}

// adaptiveLinTol returns the forcing term for an iterative linear solver:
// η.‖fb‖/‖fb_prev‖ clamped between the floor tolMin and the outer nonlinear
// tolerance, so the linear solve is never asked to be looser than the Newton
// convergence check
func adaptiveLinTol(eta, fb, prevFb, tolMin, outerTol float64) (tol float64) {
	tol = eta * fb / prevFb
	if tol < tolMin {
		tol = tolMin
	}
	if tol > outerTol {
		tol = outerTol
	}
	return
}

// rmsErr returns the scaled root-mean-square of u with scale atol + rtol.|y|
func rmsErr(u []float64, atol, rtol float64, y []float64) (rms float64) {
	if len(u) == 0 {
		return
	}
	for i := range u {
		scal := atol + rtol*math.Abs(y[i])
		rms += u[i] * u[i] / (scal * scal)
	}
	return math.Sqrt(rms / float64(len(u)))
}

// largestFieldResidual returns the largest per-field residual component
func (o *Driver) largestFieldResidual(fields []*fld.Field) (lf float64) {
	for _, fd := range fields {
		if v := la.Vector(fd.Rhs()).Largest(1); v > lf {
			lf = v
		}
	}
	return
}
