// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fld

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/reginabuehler/4C-sub003/cpl"
)

// TimeStepAuxiliary integrates one step with the configured low-order
// explicit scheme, storing the result in a dedicated vector for temporal
// error estimation. AB2 needs one past rate and falls back to forward Euler
// at step 1.
func (o *Field) TimeStepAuxiliary() (err error) {
	dt := o.np.Dt
	switch o.Sim.Adapt.AuxScheme {
	case "expleuler":
		for i := 0; i < len(o.locErrYnp); i++ {
			o.locErrYnp[i] = o.n.Y[i] + dt*o.n.Dydt[i]
		}
	case "ab2":
		if o.step <= 1 {
			for i := 0; i < len(o.locErrYnp); i++ {
				o.locErrYnp[i] = o.n.Y[i] + dt*o.n.Dydt[i]
			}
			return
		}
		dto := o.n.Dt
		if dto <= 0 {
			return chk.Err("ab2 needs the previous step size. Δt_o=%g is incorrect", dto)
		}
		c1 := (2.0*dt*dto + dt*dt) / (2.0 * dto)
		c2 := dt * dt / (2.0 * dto)
		for i := 0; i < len(o.locErrYnp); i++ {
			o.locErrYnp[i] = o.n.Y[i] + c1*o.n.Dydt[i] - c2*o.nm.Dydt[i]
		}
	default:
		return chk.Err("auxiliary scheme %q is not available", o.Sim.Adapt.AuxScheme)
	}
	return
}

// LocErrYnp returns the auxiliary solution of the current step
func (o *Field) LocErrYnp() []float64 { return o.locErrYnp }

// AuxOrder returns the convergence order of the auxiliary scheme
func (o *Field) AuxOrder() int {
	if o.Sim.Adapt.AuxScheme == "ab2" && o.step > 1 {
		return 2
	}
	return 1
}

// ErrorNorms holds the temporal discretization error estimates of one field
type ErrorNorms struct {
	Err      float64 // length-scaled L2 over all DOFs
	ErrCond  float64 // length-scaled L2 over the FSI interface
	ErrOther float64 // length-scaled L2 over the interior
	ErrInf   float64 // L∞ over all DOFs
	ErrCondInf, ErrOtherInf float64
}

// IndicateErrorNorms compares the implicit solution against the auxiliary one
// and returns the error norms. Entries in neglect (e.g. pressure DOFs) and
// Dirichlet entries are zeroed first: they carry no temporal error
// information. L2 norms are scaled by sqrt(N - neglected).
func (o *Field) IndicateErrorNorms(neglect *cpl.DofMap) (en *ErrorNorms) {
	nn := o.rowMap.Size()
	e := make([]float64, nn)
	for i := 0; i < nn; i++ {
		e[i] = o.np.Y[i] - o.locErrYnp[i]
	}

	// zero neglected entries
	zeroed := make(map[int]bool)
	if neglect != nil {
		for _, g := range neglect.Gids() {
			if o.rowMap.Has(g) {
				e[o.rowMap.Lid(g)] = 0
				zeroed[g] = true
			}
		}
	}
	for _, g := range o.dbc.CondMap().Gids() {
		e[o.rowMap.Lid(g)] = 0
		zeroed[g] = true
	}

	// norms
	en = new(ErrorNorms)
	iface := o.imex.Map(IfaceCond)
	nzIface := 0
	for _, g := range iface.Gids() {
		if zeroed[g] {
			nzIface++
		}
	}
	en.Err = scaledL2(e, nn-len(zeroed))
	en.ErrInf = infNorm(e)

	ec := make([]float64, 0, iface.Size())
	for _, g := range iface.Gids() {
		ec = append(ec, e[o.rowMap.Lid(g)])
	}
	en.ErrCond = scaledL2(ec, iface.Size()-nzIface)
	en.ErrCondInf = infNorm(ec)

	other := o.imex.Map(IfaceOther)
	eo := make([]float64, 0, other.Size())
	nzOther := len(zeroed) - nzIface
	for _, g := range other.Gids() {
		eo = append(eo, e[o.rowMap.Lid(g)])
	}
	en.ErrOther = scaledL2(eo, other.Size()-nzOther)
	en.ErrOtherInf = infNorm(eo)
	return
}

// scaledL2 returns ||v||2 / sqrt(n) with n the number of meaningful entries
func scaledL2(v []float64, n int) float64 {
	if n < 1 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s / float64(n))
}

// infNorm returns max |v_i|
func infNorm(v []float64) (nrm float64) {
	for _, x := range v {
		if x < 0 {
			x = -x
		}
		if x > nrm {
			nrm = x
		}
	}
	return
}
