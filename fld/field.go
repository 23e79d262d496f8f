// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fld implements the field adapters: a uniform contract hiding the
// per-physics time integrator from the block assembler and the nonlinear
// driver. One concrete Field serves all physics; the scheme differences live
// in ele.DynCoefs and in the per-field configuration.
package fld

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/ele"
	"github.com/reginabuehler/4C-sub003/inp"
	"github.com/reginabuehler/4C-sub003/lin"
)

// Field hides a physics-specific time integrator behind a single contract.
// State vectors, maps and the per-field system matrix are exclusively owned
// here; the block assembler and the driver only hold references.
type Field struct {

	// configuration
	Name string          // field key: "structure", "fluid", "ale", "scatra", "thermo"
	Sim  *inp.Simulation // simulation data
	Data *inp.FieldData  // per-field input data

	// maps
	rowMap *cpl.DofMap           // full row map of this field
	dbc    *cpl.DBCMapExtractor  // Dirichlet/free partition
	imex   *cpl.MultiMapExtractor // interface partition: "fsi_cond", "other"

	// elements
	elems []ele.Element

	// time integration
	dc     *ele.DynCoefs
	order2 bool // second-order (t2) field: structure

	// states
	np *ele.State // state @ tn+1 (working state)
	n  *ele.State // converged state @ tn
	nm *ele.State // converged state @ tn-1

	// residual and tangent
	fb      []float64      // residual with Dirichlet rows blanked
	trueRes []float64      // residual before blanking; carries interface loads
	kb      *cpl.SparseMat // system matrix
	bkb     *cpl.BlockMatrix // block system matrix; nil unless UseBlockMatrix

	// prescribed Dirichlet values
	dbcVals map[int]inp.TimeFunc // gid => y(t); nil entries pin the predicted value

	// auxiliary (low-order explicit) solution for temporal error estimation
	locErrYnp []float64

	// counters
	step int
}

// NewField allocates a field adapter.
//  rowMap  -- full row map of this field
//  dbcCond -- Dirichlet-constrained sub-map (may be empty, not nil)
//  iface   -- FSI interface sub-map (may be empty, not nil)
//  order2  -- second-order dynamics (Newmark relations for vel/acc)
func NewField(name string, sim *inp.Simulation, rowMap, dbcCond, iface *cpl.DofMap, elems []ele.Element, order2 bool) (o *Field, err error) {
	o = new(Field)
	o.Name = name
	o.Sim = sim
	o.Data = sim.Field(name)
	if o.Data == nil {
		return nil, chk.Err("field %q is not defined in the simulation input", name)
	}
	o.rowMap = rowMap
	o.dbc = cpl.NewDBCMapExtractor(rowMap, dbcCond)
	other := cpl.DiffMaps(rowMap, iface)
	o.imex, err = cpl.NewMultiMapExtractor(rowMap, []*cpl.DofMap{iface, other})
	if err != nil {
		return nil, err
	}
	o.elems = elems
	o.order2 = order2

	// time integration
	o.dc = new(ele.DynCoefs)
	err = o.dc.Init(&o.Data.Scheme)
	if err != nil {
		return nil, err
	}

	// states and work vectors
	steady := o.dc.Stationary()
	o.np = ele.NewState(rowMap, o.dc, steady)
	o.n = ele.NewState(rowMap, o.dc, steady)
	o.nm = ele.NewState(rowMap, o.dc, steady)
	nn := rowMap.Size()
	o.fb = make([]float64, nn)
	o.trueRes = make([]float64, nn)
	o.kb = cpl.NewSparseMat(rowMap, rowMap)
	o.dbcVals = make(map[int]inp.TimeFunc)
	o.locErrYnp = make([]float64, nn)
	return
}

// accessors ///////////////////////////////////////////////////////////////////////////////////////

// RowMap returns the full row map of this field
func (o *Field) RowMap() *cpl.DofMap { return o.rowMap }

// DbcMapExtractor returns the Dirichlet/free partition
func (o *Field) DbcMapExtractor() *cpl.DBCMapExtractor { return o.dbc }

// InterfaceMapExtractor partitions the row map into fsi_cond (sub-map 0) and
// other (sub-map 1)
func (o *Field) InterfaceMapExtractor() *cpl.MultiMapExtractor { return o.imex }

// InterfaceMap returns the FSI interface sub-map
func (o *Field) InterfaceMap() *cpl.DofMap { return o.imex.Map(IfaceCond) }

// indices into the interface map extractor
const (
	IfaceCond  = 0 // FSI interface DOFs
	IfaceOther = 1 // interior DOFs
)

// StateNp returns the working state @ tn+1
func (o *Field) StateNp() *ele.State { return o.np }

// StateN returns the converged state @ tn
func (o *Field) StateN() *ele.State { return o.n }

// StateNm returns the converged state @ tn-1
func (o *Field) StateNm() *ele.State { return o.nm }

// InitialGuess returns the predicted state (read-only)
func (o *Field) InitialGuess() []float64 { return o.np.Y }

// Rhs returns the residual consistent with the last Evaluate, with Dirichlet
// rows blanked so that residual norms exclude them
func (o *Field) Rhs() []float64 { return o.fb }

// TrueResidual returns the assembled residual before Dirichlet blanking; it
// carries the correct sign and unit for computing interface loads
func (o *Field) TrueResidual() []float64 { return o.trueRes }

// SystemMatrix returns the sparse system matrix; nil if UseBlockMatrix was called
func (o *Field) SystemMatrix() *cpl.SparseMat {
	if o.bkb != nil {
		return nil
	}
	return o.kb
}

// BlockSystemMatrix returns the block system matrix or nil
func (o *Field) BlockSystemMatrix() *cpl.BlockMatrix { return o.bkb }

// UseBlockMatrix switches this field to block-matrix assembly over the given
// partition. SystemMatrix returns nil afterwards; the two are never both
// populated.
func (o *Field) UseBlockMatrix(rowEx, colEx *cpl.MultiMapExtractor) {
	o.bkb = cpl.NewBlockMatrix(rowEx, colEx)
}

// DynCfs returns the time-integration coefficients
func (o *Field) DynCfs() *ele.DynCoefs { return o.dc }

// Step returns the current step counter
func (o *Field) Step() int { return o.step }

// Dt returns the current time step size
func (o *Field) Dt() float64 { return o.np.Dt }

// Time returns the current time @ tn+1
func (o *Field) Time() float64 { return o.np.T }

// Elements returns the elements of this field
func (o *Field) Elements() []ele.Element { return o.elems }

// time stepping ///////////////////////////////////////////////////////////////////////////////////

// SetDt sets the time step size to be used by the next PrepareTimeStep
func (o *Field) SetDt(dt float64) { o.np.Dt = dt }

// SetTimeStep sets time and step counter, e.g. after restart
func (o *Field) SetTimeStep(t float64, step int) {
	o.np.T = t
	o.n.T = t
	o.step = step
}

// PrepareTimeStep advances time, recomputes the integration coefficients and
// history variables, and predicts the new state with the configured predictor
func (o *Field) PrepareTimeStep() (err error) {
	o.step++
	o.np.T = o.n.T + o.np.Dt
	err = o.dc.CalcBoth(o.np.Dt, o.step)
	if err != nil {
		return
	}

	// history (star) variables from the converged state
	if !o.np.Steady {
		var ynm []float64
		if o.step > 1 {
			ynm = o.nm.Y
		}
		err = o.dc.CalcStar(o.np.Psi, o.n.Y, o.n.Dydt, ynm)
		if err != nil {
			return
		}
		if o.order2 {
			o.dc.CalcStarT2(o.np.Zet, o.np.Chi, o.n.Y, o.n.Dydt, o.n.D2ydt2)
		}
	}

	// predictor
	err = o.predict()
	if err != nil {
		return
	}
	for i := 0; i < len(o.np.ΔY); i++ {
		o.np.ΔY[i] = 0
	}
	return
}

// Evaluate assembles residual and tangent at yn + stepInc. A nil stepInc
// re-evaluates at the current working state.
func (o *Field) Evaluate(stepInc []float64) (err error) {

	// working state
	if stepInc != nil {
		if len(stepInc) != len(o.np.Y) {
			return chk.Err("step increment of field %q has wrong length. %d ≠ %d", o.Name, len(stepInc), len(o.np.Y))
		}
		for i := 0; i < len(o.np.Y); i++ {
			o.np.Y[i] = o.n.Y[i] + stepInc[i]
			o.np.ΔY[i] = stepInc[i]
		}
	}

	// prescribed Dirichlet values
	for gid, f := range o.dbcVals {
		if f != nil {
			o.np.Y[o.rowMap.Lid(gid)] = f.F(o.np.T, nil)
		}
	}

	// recover rates from the integration relations
	if !o.np.Steady {
		if o.order2 {
			α1, α4 := o.dc.GetAlp1(), o.dc.GetAlp4()
			for i := 0; i < len(o.np.Y); i++ {
				o.np.D2ydt2[i] = α1*o.np.Y[i] - o.np.Zet[i]
				o.np.Dydt[i] = α4*o.np.Y[i] - o.np.Chi[i]
			}
		} else {
			β1 := o.dc.GetBet1()
			for i := 0; i < len(o.np.Y); i++ {
				o.np.Dydt[i] = β1*o.np.Y[i] - o.np.Psi[i]
			}
		}
	}

	// residual
	for i := 0; i < len(o.fb); i++ {
		o.fb[i] = 0
	}
	for _, e := range o.elems {
		err = e.AddToRhs(o.fb, o.np)
		if err != nil {
			return chk.Err("element %d of field %q failed to compute residual:\n%v", e.Id(), o.Name, err)
		}
	}
	copy(o.trueRes, o.fb)

	// blank Dirichlet rows
	cond := o.dbc.CondMap()
	for _, gid := range cond.Gids() {
		o.fb[o.rowMap.Lid(gid)] = 0
	}

	// tangent
	firstIt := stepInc == nil
	o.kb.Start()
	for _, e := range o.elems {
		err = e.AddToKb(o.kb, o.np, firstIt)
		if err != nil {
			return chk.Err("element %d of field %q failed to compute tangent:\n%v", e.Id(), o.Name, err)
		}
	}

	// Dirichlet rows become identity rows
	for _, gid := range cond.Gids() {
		o.kb.SetDiagonal(gid, 1)
	}
	o.kb.Complete()

	// split into block form if requested
	if o.bkb != nil {
		o.bkb.Zero()
		cpl.SplitSparseIntoBlocks(o.kb, o.bkb)
		err = o.bkb.Complete()
	}
	return
}

// Update commits n+1 → n for all state vectors
func (o *Field) Update() {
	o.n.CopyInto(o.nm)
	o.np.CopyInto(o.n)
}

// ResetStep restores the working state to its value at the beginning of the
// current time step
func (o *Field) ResetStep() {
	dt := o.np.Dt
	o.n.CopyInto(o.np)
	o.np.Dt = dt
}

// ResetTime decrements time and step counter after a rejected step and
// restores the attempted step size, so a caller that does not pick a new one
// repeats the same step
func (o *Field) ResetTime(oldDt float64) {
	o.np.T = o.n.T
	o.np.Dt = oldDt
	o.step--
}

// Dirichlet handling //////////////////////////////////////////////////////////////////////////////

// SetDbcValue prescribes the value function of one Dirichlet DOF. A nil
// function pins the predicted value.
func (o *Field) SetDbcValue(gid int, f inp.TimeFunc) (err error) {
	if !o.dbc.CondMap().Has(gid) {
		return chk.Err("DOF %d of field %q is not in the Dirichlet map", gid, o.Name)
	}
	o.dbcVals[gid] = f
	return
}

// AddDirichlet expands the Dirichlet set; required for monolithic FSI which
// prescribes interface velocities as Dirichlet internally
func (o *Field) AddDirichlet(m *cpl.DofMap) (err error) {
	o.dbc = o.dbc.WithAdded(m)
	return
}

// RemoveDirichlet contracts the Dirichlet set; exact inverse of AddDirichlet
func (o *Field) RemoveDirichlet(m *cpl.DofMap) (err error) {
	o.dbc = o.dbc.WithRemoved(m)
	for _, gid := range m.Gids() {
		delete(o.dbcVals, gid)
	}
	return
}

// predictors //////////////////////////////////////////////////////////////////////////////////////

// predict forms the initial guess for the new step
func (o *Field) predict() (err error) {
	dt := o.np.Dt
	switch o.Data.Predictor {
	case "constdisp":
		copy(o.np.Y, o.n.Y)
	case "constvel":
		for i := 0; i < len(o.np.Y); i++ {
			o.np.Y[i] = o.n.Y[i] + dt*o.n.Dydt[i]
		}
	case "constacc":
		for i := 0; i < len(o.np.Y); i++ {
			o.np.Y[i] = o.n.Y[i] + dt*o.n.Dydt[i] + dt*dt/2.0*o.n.D2ydt2[i]
		}
	case "tangent":
		return o.tangentPredict()
	default:
		return chk.Err("predictor %q is not available", o.Data.Predictor)
	}
	return
}

// tangentPredict improves the constant predictor with one linear solve about
// the converged state: K.δy = fb evaluated at tn+1 with y = yn. Dirichlet
// rows are identity rows with zero residual, so prescribed DOFs keep their
// value until Evaluate inserts the new one.
func (o *Field) tangentPredict() (err error) {
	copy(o.np.Y, o.n.Y)
	if err = o.Evaluate(nil); err != nil {
		return
	}
	nn := o.rowMap.Size()
	var kb la.Triplet
	kb.Init(nn, nn, o.kb.Nnz())
	lid := func(gid int) int { return o.rowMap.Lid(gid) }
	o.kb.AssembleTriplet(&kb, lid, lid)
	sol, err := lin.New(o.Sim.LinSol.Name)
	if err != nil {
		return
	}
	defer sol.Free()
	if err = sol.Init(&kb, o.Sim.LinSol.Symmetric, o.Sim.LinSol.Verbose, o.Sim.LinSol.Timing); err != nil {
		return
	}
	if err = sol.Fact(); err != nil {
		return
	}
	x := make([]float64, nn)
	if err = sol.Solve(x, o.fb, &lin.Params{}); err != nil {
		return
	}
	for i := range x {
		o.np.Y[i] += x[i]
	}
	return
}
