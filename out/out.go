// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements output handling for analyses: it loads the result
// files written by the fields during the time loop and collects time series
// of selected DOFs
package out

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
)

// TolT is the tolerance to compare times
var TolT = 1e-10

// TimeSeries holds the evolution of selected DOFs of one field
type TimeSeries struct {
	Field string            // field key
	T     []float64         // times, one entry per loaded step
	Dt    []float64         // step sizes
	Y     map[int][]float64 // gid => values @ tn
	V     map[int][]float64 // gid => rates  @ tn
}

// LoadResults reads the converged states of one field for the given steps.
// rowMap must be the row map the field was built with; gids selects the DOFs
// to collect.
func LoadResults(sim *inp.Simulation, fldname string, rowMap *cpl.DofMap, gids, steps []int) (ts *TimeSeries, err error) {
	ts = &TimeSeries{
		Field: fldname,
		Y:     make(map[int][]float64),
		V:     make(map[int][]float64),
	}
	for _, g := range gids {
		if !rowMap.Has(g) {
			return nil, chk.Err("DOF %d is not in the row map of field %q", g, fldname)
		}
	}
	for _, step := range steps {
		r, rerr := fld.ReadResult(sim.DirOut, sim.Key, fldname, sim.EncType, step)
		if rerr != nil {
			return nil, rerr
		}
		ts.T = append(ts.T, r.T)
		ts.Dt = append(ts.Dt, r.Dt)
		for _, g := range gids {
			l := rowMap.Lid(g)
			ts.Y[g] = append(ts.Y[g], r.Yn[l])
			ts.V[g] = append(ts.V[g], r.Vn[l])
		}
	}
	return
}

// TimeIndex returns the index of the entry closest to t, or -1 if none is
// within TolT
func (o *TimeSeries) TimeIndex(t float64) int {
	for i, ti := range o.T {
		if math.Abs(ti-t) < TolT {
			return i
		}
	}
	return -1
}

// Steps returns a list of contiguous step numbers; convenience for LoadResults
func Steps(first, last int) []int {
	return utl.IntRange2(first, last+1)
}
