// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/inp"
)

func Test_coefs01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coefs01. one-step-theta and bdf2 coefficients")

	// backward Euler: θ=1
	var dc DynCoefs
	err := dc.Init(&inp.SchemeData{Type: "one_step_theta", Theta: 1})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	dc.CalcBoth(0.5, 1)
	chk.Float64(tst, "β1 (BE)", 1e-15, dc.GetBet1(), 2.0)
	chk.Float64(tst, "β2 (BE)", 1e-15, dc.GetBet2(), 0.0)
	chk.IntAssert(dc.Order(), 1)
	chk.Float64(tst, "errcoeff (BE)", 1e-15, dc.LinErrCoeff(), 0.5)

	// Crank-Nicolson: θ=1/2
	err = dc.Init(&inp.SchemeData{Type: "one_step_theta", Theta: 0.5})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	dc.CalcBoth(0.1, 1)
	chk.Float64(tst, "β1 (CN)", 1e-13, dc.GetBet1(), 20.0)
	chk.Float64(tst, "β2 (CN)", 1e-15, dc.GetBet2(), 1.0)
	chk.IntAssert(dc.Order(), 2)

	// bdf2 with one starting step
	err = dc.Init(&inp.SchemeData{Type: "bdf2", NumStSt: 1, ThetaSt: 1})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	dc.CalcBoth(0.5, 1) // startup: backward Euler
	chk.Float64(tst, "β1 (bdf2 startup)", 1e-15, dc.GetBet1(), 2.0)
	chk.IntAssert(dc.Order(), 1)
	dc.CalcBoth(0.5, 2) // regular bdf2
	chk.Float64(tst, "β1 (bdf2)", 1e-15, dc.GetBet1(), 3.0)
	chk.IntAssert(dc.Order(), 2)

	// bdf2 star variables: ψ* = (4.yn - ynm)/(2h)
	psi := make([]float64, 1)
	err = dc.CalcStar(psi, []float64{2}, []float64{0}, []float64{1})
	if err != nil {
		tst.Errorf("star computation failed:\n%v", err)
		return
	}
	chk.Array(tst, "ψ* (bdf2)", 1e-15, psi, []float64{7.0})
}

func Test_coefs02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coefs02. Newmark coefficients")

	var dc DynCoefs
	err := dc.Init(&inp.SchemeData{Type: "one_step_theta", Theta: 1})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	h := 0.5
	dc.CalcBoth(h, 1)

	// trapezoidal rule: γ=1/2 β=1/4
	chk.Float64(tst, "α1", 1e-14, dc.GetAlp1(), 1.0/(0.25*h*h))
	chk.Float64(tst, "α2", 1e-14, dc.GetAlp2(), 1.0/(0.25*h))
	chk.Float64(tst, "α3", 1e-14, dc.GetAlp3(), 1.0)
	chk.Float64(tst, "α4", 1e-14, dc.GetAlp4(), 0.5/(0.25*h))
	chk.Float64(tst, "α5", 1e-14, dc.GetAlp5(), 1.0)
	chk.Float64(tst, "α6", 1e-14, dc.GetAlp6(), 0.0)

	// the Newmark relations reproduce constant acceleration exactly:
	// y = yn + h.vn + h².an/2   v = vn + h.an  with an+1 = an
	yn, vn, an := 1.0, 2.0, 3.0
	zet := make([]float64, 1)
	chi := make([]float64, 1)
	dc.CalcStarT2(zet, chi, []float64{yn}, []float64{vn}, []float64{an})
	y := yn + h*vn + h*h*an/2.0
	a := dc.GetAlp1()*y - zet[0]
	v := dc.GetAlp4()*y - chi[0]
	chk.Float64(tst, "a(tn+1)", 1e-13, a, an)
	chk.Float64(tst, "v(tn+1)", 1e-13, v, vn+h*an)
}

func Test_decay01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("decay01. decay element with backward Euler")

	// dy/dt = -y  with y(0)=1, Δt=0.5: BE gives yn+1 = yn/1.5
	var dc DynCoefs
	err := dc.Init(&inp.SchemeData{Type: "one_step_theta", Theta: 1})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	dc.CalcBoth(0.5, 1)

	m := cpl.NewDofMapRange(0, 1)
	s := NewState(m, &dc, false)
	s.Y[0] = 1.0
	dc.CalcStar(s.Psi, s.Y, s.Dydt, nil)

	e := &Decay{Cid: 0, Lam: 1}
	err = e.SetEqs([]int{0})
	if err != nil {
		tst.Errorf("SetEqs failed:\n%v", err)
		return
	}

	// solve the linear 1x1 system by hand: K.δy = fb
	kb := cpl.NewSparseMat(m, m)
	fb := make([]float64, 1)
	err = e.AddToRhs(fb, s)
	if err != nil {
		tst.Errorf("AddToRhs failed:\n%v", err)
		return
	}
	err = e.AddToKb(kb, s, true)
	if err != nil {
		tst.Errorf("AddToKb failed:\n%v", err)
		return
	}
	kb.Complete()
	k := 0.0
	kb.Each(func(gr, gc int, v float64) { k += v })
	s.Y[0] += fb[0] / k
	chk.Float64(tst, "y1", 1e-14, s.Y[0], 1.0/1.5)

	// residual must vanish at the solution
	fb[0] = 0
	err = e.AddToRhs(fb, s)
	if err != nil {
		tst.Errorf("AddToRhs failed:\n%v", err)
		return
	}
	chk.Float64(tst, "residual", 1e-14, fb[0], 0.0)
}

func Test_cross01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cross01. coupled spring fills the off-diagonal block")

	var dc DynCoefs
	err := dc.Init(&inp.SchemeData{Type: "stationary"})
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}

	// own unknown at GID 0, other field's unknown at GID 10
	m := cpl.NewDofMap([]int{0})
	mo := cpl.NewDofMap([]int{10})
	s := NewState(m, &dc, true)
	so := NewState(mo, &dc, true)
	s.Y[0] = 2
	so.Y[0] = 3

	e := &CoupledSpring{Cid: 0, K: 4, C: 0.5, OEq: 10, What: DiffDisp}
	err = e.SetEqs([]int{0})
	if err != nil {
		tst.Errorf("SetEqs failed:\n%v", err)
		return
	}

	// cross tangent only responds to the matching differentiation type
	kd := cpl.NewSparseMat(m, mo)
	err = e.AddToCrossKb(kd, s, so, DiffTemp)
	if err != nil {
		tst.Errorf("AddToCrossKb failed:\n%v", err)
		return
	}
	kd.Complete()
	chk.IntAssert(kd.Nnz(), 0)

	kd.Start()
	err = e.AddToCrossKb(kd, s, so, DiffDisp)
	if err != nil {
		tst.Errorf("AddToCrossKb failed:\n%v", err)
		return
	}
	kd.Complete()
	chk.IntAssert(kd.Nnz(), 1)
	kd.Each(func(gr, gc int, v float64) {
		chk.IntAssert(gr, 0)
		chk.IntAssert(gc, 10)
		chk.Float64(tst, "cross stiffness", 1e-15, v, 0.5)
	})

	// residual completion with the other field's state: -(k.y + c.yo)
	fb := make([]float64, 1)
	err = e.AddToRhs(fb, s)
	if err != nil {
		tst.Errorf("AddToRhs failed:\n%v", err)
		return
	}
	err = e.AddCouplingToRhs(fb, s, so)
	if err != nil {
		tst.Errorf("AddCouplingToRhs failed:\n%v", err)
		return
	}
	chk.Float64(tst, "fb", 1e-15, fb[0], -(4.0*2.0 + 0.5*3.0))
}

func Test_factory01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("factory01. element factory")

	e, err := New("decay", 3, utl.Params{&utl.P{N: "lam", V: 2}})
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	chk.IntAssert(e.Id(), 3)
	d, ok := e.(*Decay)
	if !ok {
		tst.Errorf("factory must return a decay element")
		return
	}
	chk.Float64(tst, "λ", 1e-15, d.Lam, 2)

	_, err = New("spring", 0, utl.Params{})
	if err == nil {
		tst.Errorf("missing stiffness must be an error")
	}
	_, err = New("membrane", 0, nil)
	if err == nil {
		tst.Errorf("unknown element type must be an error")
	}
}
