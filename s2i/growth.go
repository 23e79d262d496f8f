// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package s2i

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// growth local Newton parameters
const (
	growthNewtonTol = 1e-12
	growthNewtonIt  = 50

	// number of accepted steps after which an active growth step-size limit
	// is lifted when the minimum overpotential keeps increasing
	growthRelaxSteps = 10
)

// Growth solves the interfacial current density of the plating/stripping
// model at each interface node and tracks the plated layer thickness. The
// current i at a node follows from the scalar nonlinear equation
//
//	i0.(H.exp(αa.F.η/RT) - exp(-αc.F.η/RT)) - i = 0
//	η = φ_ed - φ_el - (δ/σ).i
//
// where H = 1 if the layer thickness δ is positive and 0 otherwise, so a
// bare interface cannot strip material it does not have.
type Growth struct {
	Cond      *Condition // kinetic parameters (model "growth")
	Thickness []float64  // layer thickness δ per node pair

	// adaptive step-size interaction
	limitActive bool
	sinceActive int
	etaMinOld   float64
	haveEtaOld  bool
}

// NewGrowth allocates the growth solver for the node pairs of cond
func NewGrowth(cond *Condition) (o *Growth, err error) {
	if cond.Data.Model != "growth" {
		return nil, chk.Err("growth solver needs the %q kinetic model. %q is incorrect", "growth", cond.Data.Model)
	}
	if cond.Data.Conductivity <= 0 {
		return nil, chk.Err("growth model needs a positive layer conductivity. %g is incorrect", cond.Data.Conductivity)
	}
	o = &Growth{Cond: cond, Thickness: make([]float64, len(cond.Pairs))}
	return
}

// SolveCurrent performs the local Newton iteration for the current density of
// one node. cMaster is the electrolyte concentration at the master side,
// phiEd and phiEl the electrode and electrolyte potentials, thickness the
// current layer thickness.
func (o *Growth) SolveCurrent(cMaster, phiEd, phiEl, thickness float64) (i float64, err error) {
	d := o.Cond.Data
	i0 := d.Kr * Faraday * math.Pow(cMaster, d.AlphaA)
	resistance := thickness / d.Conductivity
	frt := o.Cond.frt()

	H := 0.0
	if thickness > 0 {
		H = 1
	}

	// plating precondition: without a layer and with a non-negative
	// overpotential there is nothing to strip and no driving force to plate
	if H == 0 && phiEd-phiEl >= 0 {
		return 0, nil
	}

	for it := 0; it < growthNewtonIt; it++ {
		eta := phiEd - phiEl - resistance*i
		e1 := math.Exp(d.AlphaA * frt * eta)
		e2 := math.Exp(-d.AlphaC * frt * eta)
		res := i0*(H*e1-e2) - i
		if math.Abs(res) < growthNewtonTol {
			return i, nil
		}
		jac := -i0*resistance*frt*(d.AlphaA*H*e1+d.AlphaC*e2) - 1
		i -= res / jac
	}
	return i, chk.Err("growth local Newton did not converge within %d iterations", growthNewtonIt)
}

// AdvanceLayer updates the layer thickness of every node pair from the
// currents i (anodic positive, so plating means negative current):
//
//	δ += -i.Δt.M/(ρ.F)
//
// Thickness is clamped at zero; a layer cannot have negative extent.
func (o *Growth) AdvanceLayer(i []float64, dt float64) (err error) {
	d := o.Cond.Data
	if d.MolMass <= 0 || d.Density <= 0 {
		return chk.Err("growth model needs positive molar mass and density. M=%g ρ=%g are incorrect", d.MolMass, d.Density)
	}
	if len(i) != len(o.Thickness) {
		return chk.Err("need one current per node pair. %d != %d", len(i), len(o.Thickness))
	}
	fac := dt * d.MolMass / (d.Density * Faraday)
	for k, ik := range i {
		o.Thickness[k] -= ik * fac
		if o.Thickness[k] < 0 {
			o.Thickness[k] = 0
		}
	}
	return
}

// EtaMin returns the minimum overpotential over all node pairs given the
// per-pair potential differences and currents
func (o *Growth) EtaMin(dphi, i []float64) (etaMin float64) {
	d := o.Cond.Data
	etaMin = math.Inf(1)
	for k := range dphi {
		eta := dphi[k] - o.Thickness[k]/d.Conductivity*i[k]
		if eta < etaMin {
			etaMin = eta
		}
	}
	return
}

// UpdateLimit decides whether the time step must be limited to protect the
// onset of plating. It linearly extrapolates the minimum overpotential one
// step ahead; if the extrapolation crosses zero the limit activates. An
// active limit is lifted after a fixed number of accepted steps or as soon
// as the minimum overpotential increases again. Returns the maximum
// admissible step size, or zero when no limit applies.
func (o *Growth) UpdateLimit(etaMin, dtLimit float64) (dtMax float64) {
	if o.limitActive {
		o.sinceActive++
		if o.sinceActive >= growthRelaxSteps || (o.haveEtaOld && etaMin > o.etaMinOld) {
			o.limitActive = false
			o.sinceActive = 0
		}
	} else if o.haveEtaOld && etaMin > 0 {
		if etaMin+(etaMin-o.etaMinOld) < 0 {
			o.limitActive = true
			o.sinceActive = 0
		}
	}
	o.etaMinOld = etaMin
	o.haveEtaOld = true
	if o.limitActive {
		return dtLimit
	}
	return 0
}

// LimitActive reports whether the growth step-size limit is currently engaged
func (o *Growth) LimitActive() bool { return o.limitActive }
