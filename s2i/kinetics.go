// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package s2i implements the scatra-scatra interface kinetics: Butler-Volmer
// flux laws, the interface layer growth model and the slave→master
// off-diagonal assembly feeding the monolithic block matrix.
package s2i

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/inp"
)

// physical constants
const (
	Faraday  = 96485.33212  // Faraday constant [C/mol]
	GasConst = 8.314462618  // universal gas constant [J/(mol.K)]
)

// NodePair couples one slave-side interface node with its master partner.
// Each node carries a concentration DOF and an electric potential DOF; the
// pair additionally knows the structure interface DOF its flux linearizes
// against (mesh motion changes the interface area).
type NodePair struct {
	SlCon, SlPot int     // slave concentration and potential GIDs
	MaCon, MaPot int     // master concentration and potential GIDs
	StrCol       int     // structure interface displacement GID
	DareaDd      float64 // derivative of the interface area w.r.t. StrCol
}

// Condition binds a kinetic parameter set to the interface node pairs of one
// tagged geometric entity
type Condition struct {
	Data  *inp.KineticsData
	Pairs []NodePair
}

// frt returns F/(R.T)
func (o *Condition) frt() float64 {
	T := o.Data.Temp
	if T <= 0 {
		T = 298.15
	}
	return Faraday / (GasConst * T)
}

// ExchangeCurrent returns the exchange current density j0. cEl is the
// electrolyte-side concentration, cEd the electrode-side one.
func (o *Condition) ExchangeCurrent(cEl, cEd float64) (j0 float64, err error) {
	d := o.Data
	switch d.Model {
	case "butlervolmer":
		if cEd < 0 || cEd > d.Cmax || cEl < 0 {
			return 0, chk.Err("concentrations outside the physical range: cEl=%g cEd=%g cmax=%g", cEl, cEd, d.Cmax)
		}
		j0 = d.Kr * math.Pow(cEl, d.AlphaA) * math.Pow(d.Cmax-cEd, d.AlphaA) * math.Pow(cEd, d.AlphaC)
	case "butlervolmerreduced", "butlervolmerreducedcapacitance":
		j0 = d.Kr
	default:
		return 0, chk.Err("kinetic model %q has no exchange current density", d.Model)
	}
	return
}

// Flux evaluates the Butler-Volmer flux and its derivative w.r.t. the
// overpotential:
//
//	j = j0.(exp(αa.F.η/RT) - exp(-αc.F.η/RT))
func (o *Condition) Flux(j0, eta float64) (j, djdeta float64) {
	d := o.Data
	frt := o.frt()
	e1 := math.Exp(d.AlphaA * frt * eta)
	e2 := math.Exp(-d.AlphaC * frt * eta)
	j = j0 * (e1 - e2)
	djdeta = j0 * frt * (d.AlphaA*e1 + d.AlphaC*e2)
	return
}

// Overpotential returns η = φ_ed - φ_el. The half-cell equilibrium potential
// is taken as zero; a nonzero open-circuit curve shifts η by a constant at
// the linearization point and does not change the assembly structure.
func (o *Condition) Overpotential(phiEd, phiEl float64) float64 {
	return phiEd - phiEl
}

// AddToRhs assembles the interfacial flux into the residual vector fb (over
// rowMap, with fb holding -R). The concentration equation receives
// ∓timefac.j and the potential equation ∓timefac.ne.j, sign opposite on the
// slave and master sides. Rows outside rowMap are skipped, so the same call
// serves the slave-side and the master-side field.
func (o *Condition) AddToRhs(fb []float64, rowMap *cpl.DofMap, y []float64, yMap *cpl.DofMap, timefac float64) (err error) {
	if o.Data.Model == "nointerfaceflux" {
		return
	}
	ne := float64(o.Data.NumElectrons)
	for _, p := range o.Pairs {
		j, _, ferr := o.pairFlux(y, yMap, &p)
		if ferr != nil {
			return ferr
		}
		add := func(gid int, v float64) {
			if l := rowMap.Lid(gid); l >= 0 {
				fb[l] += v
			}
		}
		// fb holds -R: slave rows get -timefac.j, master rows +timefac.j
		add(p.SlCon, -timefac*j)
		add(p.SlPot, -timefac*ne*j)
		add(p.MaCon, timefac*j)
		add(p.MaPot, timefac*ne*j)
	}
	return
}

// AddToKb assembles the symmetric (slave-side) linearization w.r.t. the
// scatra unknowns into kb. Rows outside kb's row map are skipped.
func (o *Condition) AddToKb(kb *cpl.SparseMat, y []float64, yMap *cpl.DofMap, timefac float64) (err error) {
	if o.Data.Model == "nointerfaceflux" {
		return
	}
	ne := float64(o.Data.NumElectrons)
	rowMap := kb.RowMap()
	for _, p := range o.Pairs {
		_, djdeta, ferr := o.pairFlux(y, yMap, &p)
		if ferr != nil {
			return ferr
		}
		// η = φ_slave(ed) - φ_master(el): dj/dφ_sl = +djdeta, dj/dφ_ma = -djdeta
		put := func(gr, gc int, v float64) {
			if rowMap.Has(gr) && kb.ColMap().Has(gc) {
				kb.Put(gr, gc, v)
			}
		}
		put(p.SlCon, p.SlPot, timefac*djdeta)
		put(p.SlCon, p.MaPot, -timefac*djdeta)
		put(p.SlPot, p.SlPot, timefac*ne*djdeta)
		put(p.SlPot, p.MaPot, -timefac*ne*djdeta)
		put(p.MaCon, p.SlPot, -timefac*djdeta)
		put(p.MaCon, p.MaPot, timefac*djdeta)
		put(p.MaPot, p.SlPot, -timefac*ne*djdeta)
		put(p.MaPot, p.MaPot, timefac*ne*djdeta)
	}
	return
}

// AddToOffdiagKb assembles the slave-row linearization of the interfacial
// flux w.r.t. the structure interface displacement into kd (slave scatra
// rows, structure columns). This is the symmetric part of the off-diagonal
// machinery; the master rows are produced afterwards by the slave→master
// copy with scale -1.
func (o *Condition) AddToOffdiagKb(kd *cpl.SparseMat, y []float64, yMap *cpl.DofMap, timefac float64) (err error) {
	if o.Data.Model == "nointerfaceflux" {
		return
	}
	ne := float64(o.Data.NumElectrons)
	for _, p := range o.Pairs {
		j, _, ferr := o.pairFlux(y, yMap, &p)
		if ferr != nil {
			return ferr
		}
		da := p.DareaDd
		if da == 0 {
			da = 1
		}
		kd.Put(p.SlCon, p.StrCol, timefac*j*da)
		kd.Put(p.SlPot, p.StrCol, timefac*ne*j*da)
	}
	return
}

// AddCapacitanceKb assembles the capacitive, non-symmetric contribution of
// the butlervolmerreducedcapacitance model: both a slave-row and a master-row
// block in the same pass. beta1 is the rate-recovery factor of the marching
// scheme (dφ̇/dφ).
func (o *Condition) AddCapacitanceKb(kb *cpl.SparseMat, timefac, beta1 float64) (err error) {
	if o.Data.Model != "butlervolmerreducedcapacitance" {
		return
	}
	c := o.Data.Capacitance
	rowMap := kb.RowMap()
	for _, p := range o.Pairs {
		// jC = C.d(φ_sl - φ_ma)/dt
		put := func(gr, gc int, v float64) {
			if rowMap.Has(gr) && kb.ColMap().Has(gc) {
				kb.Put(gr, gc, v)
			}
		}
		put(p.SlPot, p.SlPot, timefac*c*beta1)
		put(p.SlPot, p.MaPot, -timefac*c*beta1)
		put(p.MaPot, p.SlPot, -timefac*c*beta1)
		put(p.MaPot, p.MaPot, timefac*c*beta1)
	}
	return
}

// pairFlux evaluates flux and overpotential derivative of one node pair
func (o *Condition) pairFlux(y []float64, yMap *cpl.DofMap, p *NodePair) (j, djdeta float64, err error) {
	cEd := y[yMap.Lid(p.SlCon)]
	cEl := y[yMap.Lid(p.MaCon)]
	phiEd := y[yMap.Lid(p.SlPot)]
	phiEl := y[yMap.Lid(p.MaPot)]
	j0, err := o.ExchangeCurrent(cEl, cEd)
	if err != nil {
		return
	}
	eta := o.Overpotential(phiEd, phiEl)
	j, djdeta = o.Flux(j0, eta)
	return
}
