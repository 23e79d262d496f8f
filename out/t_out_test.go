// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/ele"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
)

// marchDecay advances a 1-DOF backward-Euler decay field by one step and
// writes the output file
func marchDecay(tst *testing.T, f *fld.Field) {
	if err := f.PrepareTimeStep(); err != nil {
		tst.Fatalf("PrepareTimeStep failed:\n%v", err)
	}
	if err := f.Evaluate(nil); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	k := f.DynCfs().GetBet1() + 1 // tangent of dy/dt + y = 0 under backward Euler
	inc := []float64{f.Rhs()[0] / k}
	if err := f.Evaluate(inc); err != nil {
		tst.Fatalf("Evaluate failed:\n%v", err)
	}
	f.Update()
	if err := f.Output(); err != nil {
		tst.Fatalf("Output failed:\n%v", err)
	}
}

func Test_out01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out01. time series from field result files")

	sim := new(inp.Simulation)
	sim.LinSol.Name = "dense"
	sim.DirOut = tst.TempDir()
	sim.Key = "outtest"
	sim.EncType = "gob"
	sim.Fields = []*inp.FieldData{
		{Name: "structure", Scheme: inp.SchemeData{Type: "one_step_theta", Theta: 1}},
	}
	if err := sim.SetDefaults(); err != nil {
		tst.Fatalf("SetDefaults failed:\n%v", err)
	}

	e := &ele.Decay{Cid: 0, Lam: 1}
	if err := e.SetEqs([]int{0}); err != nil {
		tst.Fatalf("SetEqs failed:\n%v", err)
	}
	empty := cpl.NewDofMap(nil)
	rowMap := cpl.NewDofMap([]int{0})
	f, err := fld.NewField("structure", sim, rowMap, empty, empty, []ele.Element{e}, false)
	if err != nil {
		tst.Fatalf("cannot allocate field:\n%v", err)
	}
	f.StateN().Y[0] = 1
	f.StateNp().Y[0] = 1
	f.SetDt(0.5)

	marchDecay(tst, f)
	marchDecay(tst, f)

	ts, err := LoadResults(sim, "structure", rowMap, []int{0}, Steps(1, 2))
	if err != nil {
		tst.Fatalf("LoadResults failed:\n%v", err)
	}
	chk.Array(tst, "times", 1e-14, ts.T, []float64{0.5, 1.0})
	chk.Array(tst, "y series", 1e-14, ts.Y[0], []float64{2.0 / 3.0, 4.0 / 9.0})
	chk.Array(tst, "rate series", 1e-14, ts.V[0], []float64{-2.0 / 3.0, -4.0 / 9.0})
	chk.IntAssert(ts.TimeIndex(1.0), 1)
	chk.IntAssert(ts.TimeIndex(0.7), -1)
}
