// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blk

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/ele"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
	"github.com/reginabuehler/4C-sub003/lin"
	"github.com/reginabuehler/4C-sub003/s2i"
)

// newUnitLoad returns the constant unit load function
func newUnitLoad(tst *testing.T) inp.TimeFunc {
	return &inp.Cte{C: 1}
}

// newTwoFieldProblem builds two 1-DOF stationary fields, each with K = 1 and
// a unit interface load, coupled at a single interface DOF pair.
// Structure owns GID 0, fluid owns GID 10.
func newTwoFieldProblem(tst *testing.T, scheme string) (sim *inp.Simulation, str *fld.Field, flu *fld.Fluid, mgr *cpl.Manager) {
	sim = new(inp.Simulation)
	sim.LinSol.Name = "dense"
	sim.Coupling.Scheme = scheme
	sim.Fields = []*inp.FieldData{
		{Name: "structure", Scheme: inp.SchemeData{Type: "stationary"}},
		{Name: "fluid", Scheme: inp.SchemeData{Type: "stationary"}},
	}
	sim.SetDefaults()

	load := newUnitLoad(tst)
	empty := cpl.NewDofMap(nil)

	es := &ele.Spring{Cid: 0, K: 1, F: load}
	if err := es.SetEqs([]int{0}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	str, err := fld.NewField("structure", sim, cpl.NewDofMap([]int{0}), empty, cpl.NewDofMap([]int{0}), []ele.Element{es}, false)
	if err != nil {
		tst.Fatalf("cannot allocate structure field:\n%v", err)
	}

	ef := &ele.Spring{Cid: 1, K: 1, F: load}
	if err := ef.SetEqs([]int{10}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	ff, err := fld.NewField("fluid", sim, cpl.NewDofMap([]int{10}), empty, cpl.NewDofMap([]int{10}), []ele.Element{ef}, false)
	if err != nil {
		tst.Fatalf("cannot allocate fluid field:\n%v", err)
	}
	flu, err = fld.NewFluid(ff, empty)
	if err != nil {
		tst.Fatalf("cannot allocate fluid wrapper:\n%v", err)
	}

	mgr = cpl.NewManager()
	var op *cpl.CouplingOperator
	if scheme == "monolithic_fluidsplit" {
		op, err = cpl.NewCouplingOperator([]int{10}, []int{0})
	} else {
		op, err = cpl.NewCouplingOperator([]int{0}, []int{10})
	}
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("structure/fluid", op)

	str.SetDt(1)
	flu.SetDt(1)
	return
}

// solveMonolithic performs one Newton iteration of the composed linear system
func solveMonolithic(tst *testing.T, asm *Assembler) (x []float64) {
	n := asm.DofRowMap().Size()
	f := make([]float64, n)
	if err := asm.SetupSystemMatrix(); err != nil {
		tst.Fatalf("SetupSystemMatrix failed:\n%v", err)
	}
	if err := asm.SetupRHS(f, true); err != nil {
		tst.Fatalf("SetupRHS failed:\n%v", err)
	}
	asm.ScaleSystem(f)

	var kb la.Triplet
	kb.Init(n, n, asm.SystemMatrix().Nnz())
	asm.AssembleTriplet(&kb)
	sol, err := lin.New("dense")
	if err != nil {
		tst.Fatalf("cannot allocate solver:\n%v", err)
	}
	defer sol.Free()
	if err := sol.Init(&kb, false, false, false); err != nil {
		tst.Fatalf("solver init failed:\n%v", err)
	}
	if err := sol.Fact(); err != nil {
		tst.Fatalf("factorisation failed:\n%v", err)
	}
	x = make([]float64, n)
	if err := sol.Solve(x, f, &lin.Params{}); err != nil {
		tst.Fatalf("solve failed:\n%v", err)
	}
	asm.UnscaleSolution(x, f)
	return
}

func Test_blk01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk01. stationary two-field monolithic (fluidsplit)")

	sim, str, flu, mgr := newTwoFieldProblem(tst, "monolithic_fluidsplit")
	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}
	asm.CreateSystemMatrix()

	// fluid interface DOFs are condensed away
	chk.IntAssert(asm.DofRowMap().Size(), 1)

	if err := str.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := flu.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := str.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}

	x := solveMonolithic(tst, asm)
	sx, fx, _ := asm.ExtractFieldVectors(x, true)
	chk.Array(tst, "structure increment", 1e-14, sx, []float64{1})
	chk.Array(tst, "fluid increment", 1e-14, fx, []float64{1})

	// residual must vanish at the solution
	if err := str.Evaluate(sx); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(fx); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	f := make([]float64, 1)
	if err := asm.SetupRHS(f, false); err != nil {
		tst.Fatalf("SetupRHS failed:\n%v", err)
	}
	chk.Array(tst, "monolithic residual", 1e-14, f, []float64{0})

	// block row maps must point-same the extractor maps
	for i := 0; i < asm.Extractor().NumMaps(); i++ {
		for j := 0; j < asm.Extractor().NumMaps(); j++ {
			if !asm.SystemMatrix().Matrix(i, j).RowMap().PointSameAs(asm.Extractor().Map(i)) {
				tst.Errorf("row map of block (%d,%d) does not match the partition", i, j)
			}
		}
	}
}

func Test_blk02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk02. stationary two-field monolithic (structuresplit)")

	sim, str, flu, mgr := newTwoFieldProblem(tst, "monolithic_structuresplit")
	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}
	asm.CreateSystemMatrix()

	if err := str.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := flu.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := str.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}

	x := solveMonolithic(tst, asm)
	sx, fx, _ := asm.ExtractFieldVectors(x, true)
	chk.Array(tst, "structure increment", 1e-14, sx, []float64{1})
	chk.Array(tst, "fluid increment", 1e-14, fx, []float64{1})
}

// evaluateBoth runs PrepareTimeStep and Evaluate on both fields
func evaluateBoth(tst *testing.T, str *fld.Field, flu *fld.Fluid) {
	if err := str.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := flu.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := str.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
}

// denseSystem assembles the completed block matrix into a dense matrix
func denseSystem(asm *Assembler) *la.Matrix {
	n := asm.DofRowMap().Size()
	var kb la.Triplet
	kb.Init(n, n, asm.SystemMatrix().Nnz())
	asm.AssembleTriplet(&kb)
	return kb.ToDense()
}

func Test_blk03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk03. infinity-norm scaling leaves the solution unchanged")

	sim, str, flu, mgr := newTwoFieldProblem(tst, "monolithic_fluidsplit")
	if err := str.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := flu.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := str.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}

	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}
	asm.CreateSystemMatrix()
	xPlain := solveMonolithic(tst, asm)

	sim.Coupling.Scale = true
	if err := asm.SetupSystemMatrix(); err != nil {
		tst.Fatalf("SetupSystemMatrix failed:\n%v", err)
	}
	xScaled := solveMonolithic(tst, asm)
	chk.Array(tst, "solution with scaling", 1e-13, xScaled, xPlain)
}

// newCrossCoupledProblem is the fluidsplit two-field problem with the
// structure spring additionally loaded by the fluid interface velocity:
// R_s = k.d + c.u - f(t)
func newCrossCoupledProblem(tst *testing.T, c float64) (sim *inp.Simulation, str *fld.Field, flu *fld.Fluid, mgr *cpl.Manager) {
	sim = new(inp.Simulation)
	sim.LinSol.Name = "dense"
	sim.Coupling.Scheme = "monolithic_fluidsplit"
	sim.Fields = []*inp.FieldData{
		{Name: "structure", Scheme: inp.SchemeData{Type: "stationary"}},
		{Name: "fluid", Scheme: inp.SchemeData{Type: "stationary"}},
	}
	sim.SetDefaults()

	load := newUnitLoad(tst)
	empty := cpl.NewDofMap(nil)

	es := &ele.CoupledSpring{Cid: 0, K: 1, C: c, F: load, OEq: 10}
	if err := es.SetEqs([]int{0}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	str, err := fld.NewField("structure", sim, cpl.NewDofMap([]int{0}), empty, cpl.NewDofMap([]int{0}), []ele.Element{es}, false)
	if err != nil {
		tst.Fatalf("cannot allocate structure field:\n%v", err)
	}

	ef := &ele.Spring{Cid: 1, K: 1, F: load}
	if err := ef.SetEqs([]int{10}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	ff, err := fld.NewField("fluid", sim, cpl.NewDofMap([]int{10}), empty, cpl.NewDofMap([]int{10}), []ele.Element{ef}, false)
	if err != nil {
		tst.Fatalf("cannot allocate fluid field:\n%v", err)
	}
	flu, err = fld.NewFluid(ff, empty)
	if err != nil {
		tst.Fatalf("cannot allocate fluid wrapper:\n%v", err)
	}

	mgr = cpl.NewManager()
	op, err := cpl.NewCouplingOperator([]int{10}, []int{0})
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("structure/fluid", op)

	str.SetDt(1)
	flu.SetDt(1)
	return
}

func Test_blk04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk04. cross-field tangent and residual through the condensation")

	sim, str, flu, mgr := newCrossCoupledProblem(tst, 0.5)
	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}
	asm.CreateSystemMatrix()
	evaluateBoth(tst, str, flu)

	// the coupling column sits on the condensed fluid interface, so it folds
	// onto the kept structure column with the conversion factor τ = 1:
	// K = k_s + c.τ + τ.k_f
	if err := asm.SetupSystemMatrix(); err != nil {
		tst.Fatalf("SetupSystemMatrix failed:\n%v", err)
	}
	dm := denseSystem(asm)
	chk.Float64(tst, "condensed tangent", 1e-14, dm.Get(0, 0), 2.5)

	x := solveMonolithic(tst, asm)
	chk.Array(tst, "monolithic increment", 1e-14, x, []float64{0.8})

	// single-field residuals stay nonzero at the coupled solution; only the
	// composed residual vanishes
	sx, fx, _ := asm.ExtractFieldVectors(x, true)
	chk.Array(tst, "fluid increment", 1e-14, fx, []float64{0.8})
	if err := str.Evaluate(sx); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	if err := flu.Evaluate(fx); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	f := make([]float64, 1)
	if err := asm.SetupRHS(f, false); err != nil {
		tst.Fatalf("SetupRHS failed:\n%v", err)
	}
	chk.Array(tst, "monolithic residual", 1e-14, f, []float64{0})
	chk.Float64(tst, "structure residual alone", 1e-14, str.Rhs()[0], 0.2)
}

func Test_blk05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk05. interface kinetics assembly into the block system")

	sim := new(inp.Simulation)
	sim.LinSol.Name = "dense"
	sim.Coupling.Scheme = "monolithic_fluidsplit"
	sim.Fields = []*inp.FieldData{
		{Name: "structure", Scheme: inp.SchemeData{Type: "stationary"}},
		{Name: "fluid", Scheme: inp.SchemeData{Type: "stationary"}},
	}
	sim.SetDefaults()

	// structure block carries one interface displacement DOF (gid 0) and the
	// scatra DOFs of one node pair: slave con/pot = 1/2, master con/pot = 3/4
	empty := cpl.NewDofMap(nil)
	var elems []ele.Element
	load := newUnitLoad(tst)
	for g := 0; g < 5; g++ {
		var f inp.TimeFunc
		if g == 0 {
			f = load
		}
		e := &ele.Spring{Cid: g, K: 1, F: f}
		if err := e.SetEqs([]int{g}); err != nil {
			tst.Fatalf("SetEqs failed:\n%v", err)
		}
		elems = append(elems, e)
	}
	str, err := fld.NewField("structure", sim, cpl.NewDofMapRange(0, 5), empty, cpl.NewDofMap([]int{0}), elems, false)
	if err != nil {
		tst.Fatalf("cannot allocate structure field:\n%v", err)
	}
	y := str.StateN().Y
	y[1], y[2], y[3], y[4] = 0.3, 0.2, 0.4, 0.05

	ef := &ele.Spring{Cid: 5, K: 1, F: load}
	if err := ef.SetEqs([]int{10}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	ff, err := fld.NewField("fluid", sim, cpl.NewDofMap([]int{10}), empty, cpl.NewDofMap([]int{10}), []ele.Element{ef}, false)
	if err != nil {
		tst.Fatalf("cannot allocate fluid field:\n%v", err)
	}
	flu, err := fld.NewFluid(ff, empty)
	if err != nil {
		tst.Fatalf("cannot allocate fluid wrapper:\n%v", err)
	}

	mgr := cpl.NewManager()
	fsiOp, err := cpl.NewCouplingOperator([]int{10}, []int{0})
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("structure/fluid", fsiOp)
	scOp, err := cpl.NewCouplingOperator([]int{1, 2}, []int{3, 4})
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("scatra/scatra", scOp)
	stOp, err := cpl.NewCouplingOperator(nil, nil)
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("structure/scatra", stOp)

	str.SetDt(1)
	flu.SetDt(1)

	cond := &s2i.Condition{
		Data: &inp.KineticsData{
			Model: "butlervolmerreduced", Kr: 2e-3,
			AlphaA: 0.5, AlphaC: 0.5, NumElectrons: 1, Temp: 298.15,
		},
		Pairs: []s2i.NodePair{{SlCon: 1, SlPot: 2, MaCon: 3, MaPot: 4, StrCol: 0, DareaDd: 2}},
	}

	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}
	if err := asm.SetKinetics(str, cond); err != nil {
		tst.Fatalf("SetKinetics failed:\n%v", err)
	}
	asm.CreateSystemMatrix()
	evaluateBoth(tst, str, flu)

	// reference flux at the evaluation point
	j0, err := cond.ExchangeCurrent(0.4, 0.3)
	if err != nil {
		tst.Fatalf("ExchangeCurrent failed:\n%v", err)
	}
	j, djdeta := cond.Flux(j0, cond.Overpotential(0.2, 0.05))

	if err := asm.SetupSystemMatrix(); err != nil {
		tst.Fatalf("SetupSystemMatrix failed:\n%v", err)
	}
	dm := denseSystem(asm)

	// scatra-scatra linearization on top of the unit springs
	chk.Float64(tst, "slave con / slave pot", 1e-15, dm.Get(1, 2), djdeta)
	chk.Float64(tst, "slave con / master pot", 1e-15, dm.Get(1, 4), -djdeta)
	chk.Float64(tst, "slave pot diagonal", 1e-15, dm.Get(2, 2), 1+djdeta)
	chk.Float64(tst, "master con / slave pot", 1e-15, dm.Get(3, 2), -djdeta)

	// displacement linearization: slave rows +timefac.j.da, master copy -1
	chk.Float64(tst, "slave con / displacement", 1e-18, dm.Get(1, 0), 2*j)
	chk.Float64(tst, "slave pot / displacement", 1e-18, dm.Get(2, 0), 2*j)
	chk.Float64(tst, "master con / displacement", 1e-18, dm.Get(3, 0), -2*j)
	chk.Float64(tst, "master pot / displacement", 1e-18, dm.Get(4, 0), -2*j)

	// flux leaves the slave side and enters the master side
	f := make([]float64, asm.DofRowMap().Size())
	if err := asm.SetupRHS(f, false); err != nil {
		tst.Fatalf("SetupRHS failed:\n%v", err)
	}
	chk.Float64(tst, "slave con residual", 1e-15, f[1], -0.3-j)
	chk.Float64(tst, "slave pot residual", 1e-15, f[2], -0.2-j)
	chk.Float64(tst, "master con residual", 1e-15, f[3], -0.4+j)
	chk.Float64(tst, "master pot residual", 1e-15, f[4], -0.05+j)

	// growth conditions are advanced outside the assembly
	bad := &s2i.Condition{Data: &inp.KineticsData{Model: "growth", Kr: 1e-3, Conductivity: 1}}
	if err := asm.SetKinetics(str, bad); err == nil {
		tst.Errorf("growth conditions must be rejected by SetKinetics")
	}
}

func Test_blk06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blk06. global Dirichlet rows override the interface replay")

	sim := new(inp.Simulation)
	sim.LinSol.Name = "dense"
	sim.Coupling.Scheme = "monolithic_fluidsplit"
	sim.Fields = []*inp.FieldData{
		{Name: "structure", Scheme: inp.SchemeData{Type: "stationary"}},
		{Name: "fluid", Scheme: inp.SchemeData{Type: "stationary"}},
	}
	sim.SetDefaults()

	load := newUnitLoad(tst)
	empty := cpl.NewDofMap(nil)

	// both structure DOFs are Dirichlet, including the interface one
	var elems []ele.Element
	for g := 0; g < 2; g++ {
		e := &ele.Spring{Cid: g, K: 1, F: load}
		if err := e.SetEqs([]int{g}); err != nil {
			tst.Fatalf("SetEqs failed:\n%v", err)
		}
		elems = append(elems, e)
	}
	str, err := fld.NewField("structure", sim, cpl.NewDofMapRange(0, 2), cpl.NewDofMapRange(0, 2), cpl.NewDofMap([]int{0}), elems, false)
	if err != nil {
		tst.Fatalf("cannot allocate structure field:\n%v", err)
	}

	// a partitioned startup left the fluid interface velocity as Dirichlet
	ef := &ele.Spring{Cid: 2, K: 1, F: load}
	if err := ef.SetEqs([]int{10}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	ff, err := fld.NewField("fluid", sim, cpl.NewDofMap([]int{10}), cpl.NewDofMap([]int{10}), cpl.NewDofMap([]int{10}), []ele.Element{ef}, false)
	if err != nil {
		tst.Fatalf("cannot allocate fluid field:\n%v", err)
	}
	flu, err := fld.NewFluid(ff, empty)
	if err != nil {
		tst.Fatalf("cannot allocate fluid wrapper:\n%v", err)
	}

	mgr := cpl.NewManager()
	op, err := cpl.NewCouplingOperator([]int{10}, []int{0})
	if err != nil {
		tst.Fatalf("cannot allocate coupling operator:\n%v", err)
	}
	mgr.SetOperator("structure/fluid", op)
	str.SetDt(1)
	flu.SetDt(1)

	asm, err := NewAssembler(sim, str, flu, nil, mgr)
	if err != nil {
		tst.Fatalf("cannot allocate assembler:\n%v", err)
	}

	// the fluid interface Dirichlet was stripped; the structure ones stay
	chk.IntAssert(flu.DbcMapExtractor().CondMap().Size(), 0)
	if !asm.DbcMap().Has(0) || !asm.DbcMap().Has(1) {
		tst.Errorf("structure Dirichlet DOFs must stay in the global map")
	}
	if asm.DbcMap().Has(10) {
		tst.Errorf("condensed interface DOFs cannot be Dirichlet in the global map")
	}

	asm.CreateSystemMatrix()
	evaluateBoth(tst, str, flu)
	if err := asm.SetupSystemMatrix(); err != nil {
		tst.Fatalf("SetupSystemMatrix failed:\n%v", err)
	}

	// without the global enforcement the fluid replay would add τ.k_f = 1 on
	// the Dirichlet interface row
	dm := denseSystem(asm)
	chk.Float64(tst, "Dirichlet interface row", 1e-15, dm.Get(0, 0), 1)
	chk.Float64(tst, "Dirichlet interior row", 1e-15, dm.Get(1, 1), 1)

	f := make([]float64, 2)
	if err := asm.SetupRHS(f, true); err != nil {
		tst.Fatalf("SetupRHS failed:\n%v", err)
	}
	chk.Array(tst, "Dirichlet rows carry no residual", 1e-15, f, []float64{0, 0})

	x := solveMonolithic(tst, asm)
	chk.Array(tst, "increment", 1e-15, x, []float64{0, 0})
}
