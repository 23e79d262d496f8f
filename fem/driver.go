// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the monolithic nonlinear driver: the Newton loop
// over the interface-condensed block system and the adaptive time loop on
// top of it
package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/blk"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
	"github.com/reginabuehler/4C-sub003/lin"
	"github.com/reginabuehler/4C-sub003/s2i"
)

// Driver holds all data of one monolithic simulation: the coupled fields,
// the block assembler, the linear solver and the time loop
type Driver struct {

	// problem
	Sim *inp.Simulation // simulation data
	Str *fld.Field      // structure field
	Flu *fld.Fluid      // fluid field
	Ale *fld.Field      // ALE field; may be nil
	Asm *blk.Assembler  // interface-condensed block assembler
	Mgr *cpl.Manager    // coupling operators

	// optional interface layer growth guard. GrowthField names the field
	// carrying the scatra DOFs of the growth node pairs; nil means the fluid.
	Growth      *s2i.Growth
	GrowthField *fld.Field

	// reporting
	Sum     *Summary // summary structure; may be nil
	ShowMsg bool     // show messages

	// linear solver
	lis      lin.Solver
	kb       la.Triplet
	initLSol bool

	// accumulated step increments per field
	sInc, fInc, aInc []float64

	// Newton bookkeeping across iterations (adaptive linear tolerance)
	prevFb float64
}

// NewDriver allocates the driver and the block assembler. ale may be nil for
// a two-field problem.
func NewDriver(sim *inp.Simulation, str *fld.Field, flu *fld.Fluid, ale *fld.Field, mgr *cpl.Manager) (o *Driver, err error) {
	o = new(Driver)
	o.Sim = sim
	o.Str = str
	o.Flu = flu
	o.Ale = ale
	o.Mgr = mgr
	o.Asm, err = blk.NewAssembler(sim, str, flu, ale, mgr)
	if err != nil {
		return nil, err
	}
	o.Asm.CreateSystemMatrix()

	o.lis, err = lin.New(sim.LinSol.Name)
	if err != nil {
		return nil, err
	}
	o.initLSol = true

	o.sInc = make([]float64, str.RowMap().Size())
	o.fInc = make([]float64, flu.RowMap().Size())
	if ale != nil {
		o.aInc = make([]float64, ale.RowMap().Size())
	}
	return
}

// NewSolver allocates the solver named by the configuration: "imp" for the
// fixed-step implicit loop or "ada" for the adaptive one
func (o *Driver) NewSolver(name string) (s Solver, err error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("cannot find solver type named %q", name)
	}
	return alloc(o), nil
}

// Free releases the linear solver resources
func (o *Driver) Free() {
	if o.lis != nil {
		o.lis.Free()
	}
}

// Fields returns all non-nil fields of this problem
func (o *Driver) Fields() (fields []*fld.Field) {
	fields = []*fld.Field{o.Str, o.Flu.Field}
	if o.Ale != nil {
		fields = append(fields, o.Ale)
	}
	return
}

// SetDt sets the time step size of all fields
func (o *Driver) SetDt(dt float64) {
	for _, f := range o.Fields() {
		f.SetDt(dt)
	}
}

// PrepareTimeStep advances all fields into the new step and evaluates the
// initial residual at the predictor state
func (o *Driver) PrepareTimeStep() (err error) {
	for _, f := range o.Fields() {
		if err = f.PrepareTimeStep(); err != nil {
			return
		}
	}
	la.Vector(o.sInc).Fill(0)
	la.Vector(o.fInc).Fill(0)
	if o.aInc != nil {
		la.Vector(o.aInc).Fill(0)
	}
	return o.evaluateAll(true)
}

// UpdateFields commits n+1 → n on all fields after an accepted step. The
// interface load (λ) is frozen first, from the converged true residual, so
// the next step sees the interface reaction of this one.
func (o *Driver) UpdateFields() {
	o.Asm.StoreLambda()
	o.Str.Update()
	o.Flu.Update()
	if o.Ale != nil {
		o.Ale.Update()
	}
}

// advanceGrowth runs the plating model after an accepted step: the local
// current solve per node pair, the layer thickness update and the step-size
// limit check feeding the adaptive controller
func (o *Driver) advanceGrowth(dt float64) (err error) {
	gf := o.GrowthField
	if gf == nil {
		gf = o.Flu.Field
	}
	y, m := gf.StateNp().Y, gf.RowMap()
	pairs := o.Growth.Cond.Pairs
	cur := make([]float64, len(pairs))
	dphi := make([]float64, len(pairs))
	for k, p := range pairs {
		phiEd := y[m.Lid(p.SlPot)]
		phiEl := y[m.Lid(p.MaPot)]
		cMaster := y[m.Lid(p.MaCon)]
		cur[k], err = o.Growth.SolveCurrent(cMaster, phiEd, phiEl, o.Growth.Thickness[k])
		if err != nil {
			return
		}
		dphi[k] = phiEd - phiEl
	}
	etaMin := o.Growth.EtaMin(dphi, cur)
	if err = o.Growth.AdvanceLayer(cur, dt); err != nil {
		return
	}
	o.Growth.UpdateLimit(etaMin, o.Sim.Adapt.GrowthDt)
	return
}

// ResetStep restores all fields to the beginning of the current step after a
// rejected one
func (o *Driver) ResetStep(oldDt float64) {
	for _, f := range o.Fields() {
		f.ResetStep()
		f.ResetTime(oldDt)
	}
}

// Output writes the states of all fields and appends the output time to the
// summary
func (o *Driver) Output() (err error) {
	for _, f := range o.Fields() {
		if err = f.Output(); err != nil {
			return
		}
	}
	if o.Sum != nil {
		o.Sum.OutTimes = append(o.Sum.OutTimes, o.Str.Time())
	}
	return
}

// evaluateAll re-evaluates residual and tangent of all fields at the
// accumulated step increments. first indicates the predictor state.
func (o *Driver) evaluateAll(first bool) (err error) {
	var sx, fx, ax []float64
	if !first {
		sx, fx, ax = o.sInc, o.fInc, o.aInc
	}
	if err = o.Str.Evaluate(sx); err != nil {
		return
	}
	if err = o.Flu.Evaluate(fx); err != nil {
		return
	}
	if o.Ale != nil {
		if err = o.Ale.Evaluate(ax); err != nil {
			return
		}
	}
	return
}
