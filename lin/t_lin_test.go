// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lin

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func Test_dense01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dense01. dense LU solve")

	// [2 1; 1 3] x = [3; 5]  =>  x = [0.8, 1.4]
	var kb la.Triplet
	kb.Init(2, 2, 4)
	kb.Put(0, 0, 2)
	kb.Put(0, 1, 1)
	kb.Put(1, 0, 1)
	kb.Put(1, 1, 3)

	sol, err := New("dense")
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	defer sol.Free()

	err = sol.Init(&kb, false, false, false)
	if err != nil {
		tst.Errorf("init failed:\n%v", err)
		return
	}
	err = sol.Fact()
	if err != nil {
		tst.Errorf("factorisation failed:\n%v", err)
		return
	}

	x := make([]float64, 2)
	err = sol.Solve(x, []float64{3, 5}, &Params{})
	if err != nil {
		tst.Errorf("solve failed:\n%v", err)
		return
	}
	chk.Array(tst, "x", 1e-14, x, []float64{0.8, 1.4})
}

func Test_factory01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("factory01. solver factory")

	_, err := New("nonexistent")
	if err == nil {
		tst.Errorf("unknown solver name must be rejected")
	}
	for _, name := range []string{"dense", "umfpack", "mumps"} {
		s, err := New(name)
		if err != nil || s == nil {
			tst.Errorf("cannot allocate solver %q", name)
		}
	}
}
