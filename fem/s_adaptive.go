// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/fld"
)

// step-size limitation reasons
const (
	AdaNone      = "none"             // no limitation: the largest admissible step was taken
	AdaStructure = "structure"        // structure temporal error governed
	AdaFluid     = "fluid"            // fluid temporal error governed
	AdaNewton    = "nonlinear_solver" // nonlinear solver failure governed
	AdaGrowth    = "growth"           // interface layer growth limit governed
	AdaClamp     = "clamping"         // Δt bounds governed
)

// SolverImplicit marches with a fixed time step size
type SolverImplicit struct {
	dr *Driver
}

// SolverAdaptive marches with the dual time step adaptivity: per-field
// temporal error estimates from an auxiliary low-order scheme plus divergence
// control of the nonlinear solver
type SolverAdaptive struct {
	dr     *Driver
	dtHist []float64 // accepted step sizes, newest first
}

// set factory
func init() {
	allocators["imp"] = func(dr *Driver) Solver { return &SolverImplicit{dr} }
	allocators["ada"] = func(dr *Driver) Solver { return &SolverAdaptive{dr} }
}

// Run marches from the current time to tf with the configured (fixed) Δt
func (o *SolverImplicit) Run(tf float64) (err error) {
	dr := o.dr
	ndiverg := 0
	md := 1.0
	for dr.Str.Time() < tf {

		// check for continued divergence
		if ndiverg >= dr.Sim.Solver.NdvgMax {
			return chk.Err("continuous divergence after %d steps reached", ndiverg)
		}

		// time increment
		dt := dr.Sim.Control.Dt * md
		if dr.Str.StateN().T+dt > tf {
			dt = tf - dr.Str.StateN().T
		}
		if dt < dr.Sim.Adapt.DtMin && md < 1 {
			return chk.Err("Δt increment is too small: %g < %g", dt, dr.Sim.Adapt.DtMin)
		}
		dr.SetDt(dt)

		// solve the step
		if err = dr.PrepareTimeStep(); err != nil {
			return
		}
		st, serr := dr.RunIterations()
		if serr != nil {
			return serr
		}

		// restore solution and reduce time step if divergence control is on
		if !st.Converged {
			if dr.Sim.Solver.DvgCtrl && st.Diverging {
				if dr.ShowMsg {
					io.Pfred(". . . iterations diverging (%2d) . . .\n", ndiverg+1)
				}
				dr.ResetStep(dt)
				md *= 0.5
				ndiverg++
				continue
			}
			switch dr.Sim.Solver.ErrAction {
			case "halve_step":
				dr.ResetStep(dt)
				md *= 0.5
				ndiverg++
				continue
			case "revert_dt":
				dr.ResetStep(dt)
				md = 1.0
				ndiverg++
				continue
			case "continue_with_warning":
				io.Pfred("WARNING: nonlinear iterations did not converge at t=%g\n", dr.Str.Time())
			default: // "none" or "stop"
				return chk.Err("nonlinear iterations did not converge at t=%g", dr.Str.Time())
			}
		}
		ndiverg = 0
		md = 1.0

		// commit and output
		dr.UpdateFields()
		if err = dr.Output(); err != nil {
			return
		}
	}
	return
}

// Run marches from the current time to tf adapting Δt to the temporal error
// estimates and to the nonlinear solver behaviour
func (o *SolverAdaptive) Run(tf float64) (err error) {
	dr := o.dr
	ad := &dr.Sim.Adapt
	dt := dr.Sim.Control.Dt
	rep := 0

	for dr.Str.Time() < tf {

		// time increment
		lastStep := false
		if dr.Str.StateN().T+dt >= tf {
			dt = tf - dr.Str.StateN().T
			lastStep = true
		}
		dr.SetDt(dt)

		// solve the step
		if err = dr.PrepareTimeStep(); err != nil {
			return
		}
		for _, f := range dr.Fields() {
			if err = f.TimeStepAuxiliary(); err != nil {
				return
			}
		}
		st, serr := dr.RunIterations()
		if serr != nil {
			return serr
		}

		// error estimates and new step size
		dec := o.decide(dt, &st)
		if dr.Sum != nil {
			dr.Sum.AdaRecords = append(dr.Sum.AdaRecords, AdaRecord{
				T: dr.Str.Time(), Dt: dt, DtNew: dec.dtNew, Reason: dec.reason,
				ErrStr: dec.errStr, ErrFlu: dec.errFlu, Accepted: dec.accept, Rep: rep,
			})
		}

		// rejected step
		if !dec.accept {
			rep++
			if rep > ad.NmaxRep {
				if err = dr.onFailure(io.Sf("time step repeated more than %d times", ad.NmaxRep)); err != nil {
					return
				}
				// continue_with_warning accepts the step as is
			} else {
				if dr.ShowMsg {
					io.Pfred(". . . step rejected (%s): Δt %g → %g . . .\n", dec.reason, dt, dec.dtNew)
				}
				dr.ResetStep(dt)
				dt = dec.dtNew
				if dt < ad.DtMin {
					return chk.Err("time adaptivity reached the minimum step size %g", ad.DtMin)
				}
				continue
			}
		}

		// accepted step
		rep = 0
		dr.UpdateFields()
		if dr.Growth != nil {
			if err = dr.advanceGrowth(dt); err != nil {
				return
			}
		}
		if err = dr.Output(); err != nil {
			return
		}
		if lastStep {
			break
		}
		dt = dec.dtNew
	}
	return
}

// onFailure applies the configured action on a terminal solver failure. Only
// continue_with_warning lets the simulation proceed; halve_step and revert_dt
// have already been honoured by the step controller at this point.
func (o *Driver) onFailure(msg string) (err error) {
	if o.Sim.Solver.ErrAction == "continue_with_warning" {
		io.Pfred("WARNING: %s\n", msg)
		return nil
	}
	return chk.Err("%s", msg)
}

// decision holds the outcome of the step size controller for one step
type decision struct {
	accept         bool
	dtNew          float64
	reason         string
	errStr, errFlu float64
}

// decide runs the dual step size controller: each temporal error estimate and
// the nonlinear solver produce a candidate step size; the minimum wins and
// its origin is recorded as the limitation reason.
func (o *SolverAdaptive) decide(dt float64, st *NewtonStatus) (dec decision) {
	dr := o.dr
	ad := &dr.Sim.Adapt

	dec.accept = st.Converged
	dec.dtNew = math.Min(ad.ScaleMax*dt, ad.DtMax)
	dec.reason = AdaNone

	consider := func(dtCand float64, reason string) {
		if dtCand < dec.dtNew {
			dec.dtNew = dtCand
			dec.reason = reason
		}
	}

	// temporal error candidates
	dec.errStr = o.fieldCandidate(dr.Str, nil, dt, AdaStructure, &dec.accept, consider)
	dec.errFlu = o.fieldCandidate(dr.Flu.Field, dr.Flu.PressureRowMap(), dt, AdaFluid, &dec.accept, consider)

	// nonlinear solver candidate
	if !st.Converged {
		consider(0.5*dt, AdaNewton)
	}

	// interface layer growth candidate
	if dr.Growth != nil && dr.Growth.LimitActive() && ad.GrowthDt > 0 {
		consider(ad.GrowthDt, AdaGrowth)
	}

	// clamping
	if dec.dtNew < ad.ScaleMin*dt {
		dec.dtNew = ad.ScaleMin * dt
		dec.reason = AdaClamp
	}
	if dec.dtNew < ad.DtMin {
		dec.dtNew = ad.DtMin
		dec.reason = AdaClamp
	}

	// averaging over past step sizes damps sudden increases
	if dec.accept && dec.dtNew > dt && len(ad.AvgWts) > 1 {
		sum := ad.AvgWts[0] * dec.dtNew
		wsum := ad.AvgWts[0]
		hist := append([]float64{dt}, o.dtHist...)
		for i := 1; i < len(ad.AvgWts) && i-1 < len(hist); i++ {
			sum += ad.AvgWts[i] * hist[i-1]
			wsum += ad.AvgWts[i]
		}
		dec.dtNew = sum / wsum
	}
	if dec.accept {
		o.dtHist = append([]float64{dt}, o.dtHist...)
		if len(o.dtHist) > 8 {
			o.dtHist = o.dtHist[:8]
		}
	}
	return
}

// fieldCandidate evaluates the temporal error of one field and feeds its step
// size candidate into the controller. Entries in neglect carry no temporal
// error information and are excluded from the norm.
func (o *SolverAdaptive) fieldCandidate(f *fld.Field, neglect *cpl.DofMap, dt float64, reason string, accept *bool, consider func(float64, string)) (errNorm float64) {
	ad := &o.dr.Sim.Adapt
	en := f.IndicateErrorNorms(neglect)
	errNorm = en.Err
	if errNorm > ad.Tol {
		*accept = false
	}
	if ad.TolCond > 0 && en.ErrCond > ad.TolCond {
		*accept = false
	}
	if ad.TolOther > 0 && en.ErrOther > ad.TolOther {
		*accept = false
	}

	// optimal scale from the asymptotic error model
	p := f.DynCfs().Order()
	if ao := f.AuxOrder(); ao > p {
		p = ao
	}
	kappa := ad.ScaleMax
	if errNorm > 0 {
		kappa = ad.Safety * math.Pow(ad.Tol/errNorm, 1.0/float64(p+1))
	}
	consider(kappa*dt, reason)
	return
}
