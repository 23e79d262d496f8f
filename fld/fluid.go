// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fld

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/lin"
)

// Fluid wraps a Field with the ALE-capable extras: mesh displacement and grid
// velocity handling, interface displacement/velocity conversion, prescribed
// interface velocities and the relaxation solve used by steepest-descent FSI.
// The primary unknown of the underlying field is the velocity; pressure DOFs
// are the sub-map presMap of the row map.
type Fluid struct {
	*Field
	presMap    *cpl.DofMap
	meshDispNp []float64 // mesh displacement @ tn+1, over the row map
	meshDispN  []float64 // mesh displacement @ tn
	gridVel    []float64 // grid velocity, over the row map
}

// NewFluid wraps an allocated field. presMap holds the pressure DOFs and must
// be a subset of the field's row map.
func NewFluid(f *Field, presMap *cpl.DofMap) (o *Fluid, err error) {
	for _, g := range presMap.Gids() {
		if !f.RowMap().Has(g) {
			return nil, chk.Err("pressure map has GID %d outside the fluid row map", g)
		}
	}
	nn := f.RowMap().Size()
	o = &Fluid{
		Field:      f,
		presMap:    presMap,
		meshDispNp: make([]float64, nn),
		meshDispN:  make([]float64, nn),
		gridVel:    make([]float64, nn),
	}
	return
}

// PressureRowMap returns the map of pressure DOFs
func (o *Fluid) PressureRowMap() *cpl.DofMap { return o.presMap }

// GridVelocity returns the grid velocity over the row map
func (o *Fluid) GridVelocity() []float64 { return o.gridVel }

// ApplyMeshDisplacement inserts the mesh displacement and recomputes the grid
// velocity by finite differencing over the current Δt
func (o *Fluid) ApplyMeshDisplacement(d []float64) (err error) {
	if len(d) != len(o.meshDispNp) {
		return chk.Err("mesh displacement has wrong length. %d ≠ %d", len(d), len(o.meshDispNp))
	}
	copy(o.meshDispNp, d)
	dt := o.np.Dt
	if dt <= 0 {
		return chk.Err("mesh displacement needs a positive Δt. Δt=%g is incorrect", dt)
	}
	for i := range o.gridVel {
		o.gridVel[i] = (o.meshDispNp[i] - o.meshDispN[i]) / dt
	}
	return
}

// Tau returns the interface time-integration factor: 1/Δt for first-order
// interface integration, 2/Δt for second-order
func (o *Fluid) Tau() float64 {
	if o.Sim.Coupling.IntOrder == 2 {
		return 2.0 / o.np.Dt
	}
	return 1.0 / o.np.Dt
}

// DisplacementToVelocity converts an interface displacement increment (over
// the interface map) to an interface velocity increment:
//
//	Δu = τ.Δd - Δt.unΓ.τ
func (o *Fluid) DisplacementToVelocity(dd []float64) (du []float64) {
	τ := o.Tau()
	dt := o.np.Dt
	iface := o.InterfaceMap()
	du = make([]float64, iface.Size())
	for l, g := range iface.Gids() {
		unG := o.n.Y[o.rowMap.Lid(g)]
		du[l] = τ*dd[l] - dt*unG*τ
	}
	return
}

// VelocityToDisplacement is the exact inverse of DisplacementToVelocity for
// the same τ
func (o *Fluid) VelocityToDisplacement(du []float64) (dd []float64) {
	τ := o.Tau()
	dt := o.np.Dt
	iface := o.InterfaceMap()
	dd = make([]float64, iface.Size())
	for l, g := range iface.Gids() {
		unG := o.n.Y[o.rowMap.Lid(g)]
		dd[l] = (du[l] + dt*unG*τ) / τ
	}
	return
}

// ApplyInterfaceVelocities inserts v (over the interface map) into the
// velocity slot of the working state and marks the interface rows as
// Dirichlet for the subsequent Evaluate
func (o *Fluid) ApplyInterfaceVelocities(v []float64) (err error) {
	iface := o.InterfaceMap()
	if len(v) != iface.Size() {
		return chk.Err("interface velocity vector has wrong length. %d ≠ %d", len(v), iface.Size())
	}
	for l, g := range iface.Gids() {
		o.np.Y[o.rowMap.Lid(g)] = v[l]
	}
	err = o.AddDirichlet(iface)
	if err != nil {
		return
	}
	for _, g := range iface.Gids() {
		o.dbcVals[g] = nil // pin the inserted value
	}
	return
}

// Update commits n+1 → n including the mesh displacement history
func (o *Fluid) Update() {
	o.Field.Update()
	copy(o.meshDispN, o.meshDispNp)
}

// RelaxationSolve performs one linear solve with iv imposed on the interface
// and homogeneous values everywhere else, returning the resulting interface
// force. Used by steepest-descent partitioned FSI.
func (o *Fluid) RelaxationSolve(iv []float64, solname string) (force []float64, err error) {
	iface := o.InterfaceMap()
	if len(iv) != iface.Size() {
		return nil, chk.Err("interface velocity vector has wrong length. %d ≠ %d", len(iv), iface.Size())
	}
	nn := o.rowMap.Size()

	// raw tangent without Dirichlet rows
	kraw := cpl.NewSparseMat(o.rowMap, o.rowMap)
	for _, e := range o.elems {
		err = e.AddToKb(kraw, o.np, true)
		if err != nil {
			return nil, chk.Err("element %d failed to compute tangent:\n%v", e.Id(), err)
		}
	}
	kraw.Complete()

	// system with identity interface rows
	ksys := cpl.NewSparseMat(o.rowMap, o.rowMap)
	kraw.Each(func(gr, gc int, v float64) {
		if !iface.Has(gr) {
			ksys.Put(gr, gc, v)
		}
	})
	for _, g := range iface.Gids() {
		ksys.Put(g, g, 1)
	}
	ksys.Complete()

	// rhs: iv on the interface, zero elsewhere
	b := make([]float64, nn)
	for l, g := range iface.Gids() {
		b[o.rowMap.Lid(g)] = iv[l]
	}

	// solve
	var kb la.Triplet
	kb.Init(nn, nn, ksys.Nnz())
	lid := func(gid int) int { return o.rowMap.Lid(gid) }
	ksys.AssembleTriplet(&kb, lid, lid)
	sol, err := lin.New(solname)
	if err != nil {
		return
	}
	defer sol.Free()
	err = sol.Init(&kb, o.Sim.LinSol.Symmetric, o.Sim.LinSol.Verbose, o.Sim.LinSol.Timing)
	if err != nil {
		return
	}
	err = sol.Fact()
	if err != nil {
		return
	}
	x := make([]float64, nn)
	err = sol.Solve(x, b, &lin.Params{})
	if err != nil {
		return
	}

	// interface force from the raw tangent
	fx := make([]float64, nn)
	kraw.MulVecAdd(fx, 1, x)
	force = make([]float64, iface.Size())
	for l, g := range iface.Gids() {
		force[l] = fx[o.rowMap.Lid(g)]
	}
	return
}
