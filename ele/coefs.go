// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/gosl/chk"
	"github.com/reginabuehler/4C-sub003/inp"
)

// DynCoefs calculates coefficients for transient simulations.
//
// First-order (t1) variables obey
//
//	dy/dt = β1.y - ψ*
//
// where ψ* collects history terms:
//
//	one_step_theta:  β1 = 1/(θ.h)           ψ* = β1.yn + ((1-θ)/θ).vn
//	bdf2:            β1 = 3/(2h)            ψ* = (4.yn - ynm)/(2h)
//	gen-alpha:       β1 = 1/(γ.h)           ψ* = β1.yn - (1-1/γ).vn
//
// Second-order (t2) variables obey the Newmark relations
//
//	a = α1.y - ζ*    ζ* = α1.yn + α2.vn + α3.an
//	v = α4.y - χ*    χ* = α4.yn + α5.vn + α6.an
//
// BDF2 falls back to one_step_theta with θ = thetast during the first
// numstst steps, when no yn-1 history exists yet.
type DynCoefs struct {

	// input
	typ          string  // scheme tag
	th           float64 // θ
	alf, alm     float64 // α_F, α_M (generalised-α)
	gam          float64 // γ (generalised-α and Newmark)
	bet          float64 // Newmark β for t2 variables
	numStSt      int     // number of starting steps (bdf2)
	thSt         float64 // θ during starting steps (bdf2)

	// derived
	h                      float64 // current Δt
	β1, β2                 float64 // t1 coefficients
	α1, α2, α3, α4, α5, α6 float64 // t2 (Newmark) coefficients
	startup                bool    // within bdf2 starting steps
}

// Init initialises this structure from a scheme definition
func (o *DynCoefs) Init(sd *inp.SchemeData) (err error) {
	o.typ = sd.Type
	o.th = sd.Theta
	o.alf = sd.AlphaF
	o.alm = sd.AlphaM
	o.gam = sd.Gamma
	o.numStSt = sd.NumStSt
	o.thSt = sd.ThetaSt
	switch o.typ {
	case "stationary":
	case "one_step_theta":
		if o.th < 1e-5 || o.th > 1 {
			return chk.Err("θ must be within (0,1]. θ=%g is incorrect", o.th)
		}
	case "bdf2":
		if o.numStSt > 0 && (o.thSt < 1e-5 || o.thSt > 1) {
			return chk.Err("starting θ must be within (0,1]. θ=%g is incorrect", o.thSt)
		}
	case "af_gen_alpha", "np_gen_alpha":
		if o.gam < 1e-5 || o.gam > 1 {
			return chk.Err("γ must be within (0,1]. γ=%g is incorrect", o.gam)
		}
		if o.alf <= 0 || o.alm <= 0 {
			return chk.Err("α_F and α_M must be positive. α_F=%g α_M=%g is incorrect", o.alf, o.alm)
		}
	default:
		return chk.Err("time-integration scheme %q is not available", o.typ)
	}
	// Newmark parameters for t2 variables; trapezoidal rule unless γ is given
	if o.gam == 0 {
		o.gam = 0.5
	}
	o.bet = (o.gam + 0.5) * (o.gam + 0.5) / 4.0
	return
}

// CalcBoth computes both t1 and t2 coefficients for the given Δt.
// step is the 1-based step counter and selects the bdf2 startup scheme.
func (o *DynCoefs) CalcBoth(h float64, step int) (err error) {
	if h <= 0 {
		return chk.Err("time step must be positive. Δt=%g is incorrect", h)
	}
	o.h = h
	o.startup = false

	// t1 coefficients
	switch o.typ {
	case "stationary":
		o.β1, o.β2 = 0, 0
	case "one_step_theta":
		o.β1 = 1.0 / (o.th * h)
		o.β2 = (1.0 - o.th) / o.th
	case "bdf2":
		if step <= o.numStSt {
			o.startup = true
			o.β1 = 1.0 / (o.thSt * h)
			o.β2 = (1.0 - o.thSt) / o.thSt
		} else {
			o.β1 = 3.0 / (2.0 * h)
			o.β2 = 0
		}
	case "af_gen_alpha", "np_gen_alpha":
		o.β1 = 1.0 / (o.gam * h)
		o.β2 = 1.0/o.gam - 1.0
	}

	// t2 (Newmark) coefficients
	o.α1 = 1.0 / (o.bet * h * h)
	o.α2 = 1.0 / (o.bet * h)
	o.α3 = 1.0/(2.0*o.bet) - 1.0
	o.α4 = o.gam / (o.bet * h)
	o.α5 = o.gam/o.bet - 1.0
	o.α6 = h * (o.gam/(2.0*o.bet) - 1.0)
	return
}

// CalcStar computes the history (star) variables of a t1 field for the step
// from the converged state at tn. ynm holds yn-1 and may be nil unless the
// scheme is bdf2 past its startup phase.
func (o *DynCoefs) CalcStar(psi, y, v, ynm []float64) (err error) {
	switch o.typ {
	case "stationary":
		for i := 0; i < len(psi); i++ {
			psi[i] = 0
		}
	case "one_step_theta":
		for i := 0; i < len(psi); i++ {
			psi[i] = o.β1*y[i] + o.β2*v[i]
		}
	case "bdf2":
		if o.startup {
			for i := 0; i < len(psi); i++ {
				psi[i] = o.β1*y[i] + o.β2*v[i]
			}
			return
		}
		if ynm == nil {
			return chk.Err("bdf2 needs the yn-1 history to compute star variables")
		}
		for i := 0; i < len(psi); i++ {
			psi[i] = (4.0*y[i] - ynm[i]) / (2.0 * o.h)
		}
	case "af_gen_alpha", "np_gen_alpha":
		for i := 0; i < len(psi); i++ {
			psi[i] = o.β1*y[i] - o.β2*v[i]
		}
	}
	return
}

// CalcStarT2 computes the Newmark history variables of a t2 field
func (o *DynCoefs) CalcStarT2(zet, chi, y, v, a []float64) {
	for i := 0; i < len(zet); i++ {
		zet[i] = o.α1*y[i] + o.α2*v[i] + o.α3*a[i]
		chi[i] = o.α4*y[i] + o.α5*v[i] + o.α6*a[i]
	}
}

// Order returns the convergence order of the marching scheme
func (o *DynCoefs) Order() int {
	switch o.typ {
	case "one_step_theta":
		if o.th == 0.5 {
			return 2
		}
		return 1
	case "bdf2":
		if o.startup {
			if o.thSt == 0.5 {
				return 2
			}
			return 1
		}
		return 2
	case "af_gen_alpha", "np_gen_alpha":
		return 2
	}
	return 1
}

// LinErrCoeff returns the leading local truncation error coefficient of the
// marching scheme, used when weighing it against an auxiliary scheme of the
// same order
func (o *DynCoefs) LinErrCoeff() float64 {
	switch o.typ {
	case "one_step_theta":
		return o.th - 0.5
	case "bdf2":
		if o.startup {
			return o.thSt - 0.5
		}
		return -2.0 / 9.0
	case "af_gen_alpha", "np_gen_alpha":
		return 0.5 + o.alm - o.alf - o.gam
	}
	return 0
}

// getters
func (o *DynCoefs) GetBet1() float64 { return o.β1 }
func (o *DynCoefs) GetBet2() float64 { return o.β2 }
func (o *DynCoefs) GetAlp1() float64 { return o.α1 }
func (o *DynCoefs) GetAlp2() float64 { return o.α2 }
func (o *DynCoefs) GetAlp3() float64 { return o.α3 }
func (o *DynCoefs) GetAlp4() float64 { return o.α4 }
func (o *DynCoefs) GetAlp5() float64 { return o.α5 }
func (o *DynCoefs) GetAlp6() float64 { return o.α6 }

// Scheme returns the scheme tag
func (o *DynCoefs) Scheme() string { return o.typ }

// Stationary tells whether the scheme has no dynamics
func (o *DynCoefs) Stationary() bool { return o.typ == "stationary" }
