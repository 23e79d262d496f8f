// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/reginabuehler/4C-sub003/cpl"
)

// State holds the solution data of one field @ its DOFs.
//
//  t1 variables:  dy/dt   = β1.y - ψ*     with  ψ* per scheme
//  t2 variables:  d²y/dt² = α1.y - ζ*     with  ζ* = α1.y + α2.v + α3.a
//                 dy/dt   = α4.y - χ*     with  χ* = α4.y + α5.v + α6.a
//
type State struct {

	// current state
	T      float64   // current time
	Y      []float64 // DOFs (solution variables)
	Dydt   []float64 // dy/dt
	D2ydt2 []float64 // d²y/dt²

	// auxiliary
	Dt  float64   // current time increment
	ΔY  []float64 // total increment within the current step (for nonlinear solver)
	Psi []float64 // t1 star vars
	Zet []float64 // t2 star vars
	Chi []float64 // t2 star vars

	// problem definition and constants
	Steady bool        // steady simulation
	DynCfs *DynCoefs   // coefficients for dynamics/transient simulations
	Map    *cpl.DofMap // row map of this field; Y et al are indexed by its LIDs
}

// NewState allocates a state with all vectors sized after the row map
func NewState(m *cpl.DofMap, dc *DynCoefs, steady bool) (o *State) {
	o = new(State)
	n := m.Size()
	o.Y = make([]float64, n)
	o.Dydt = make([]float64, n)
	o.D2ydt2 = make([]float64, n)
	o.ΔY = make([]float64, n)
	o.Psi = make([]float64, n)
	o.Zet = make([]float64, n)
	o.Chi = make([]float64, n)
	o.Steady = steady
	o.DynCfs = dc
	o.Map = m
	return
}

// Reset clears values
func (o *State) Reset() {
	o.T = 0
	for i := 0; i < len(o.Y); i++ {
		o.Y[i] = 0
		o.ΔY[i] = 0
	}
	if !o.Steady {
		for i := 0; i < len(o.Y); i++ {
			o.Psi[i] = 0
			o.Zet[i] = 0
			o.Chi[i] = 0
			o.Dydt[i] = 0
			o.D2ydt2[i] = 0
		}
	}
}

// CopyInto deep-copies the state values (not the map or coefficients) into tgt
func (o *State) CopyInto(tgt *State) {
	tgt.T = o.T
	tgt.Dt = o.Dt
	copy(tgt.Y, o.Y)
	copy(tgt.Dydt, o.Dydt)
	copy(tgt.D2ydt2, o.D2ydt2)
	copy(tgt.ΔY, o.ΔY)
	copy(tgt.Psi, o.Psi)
	copy(tgt.Zet, o.Zet)
	copy(tgt.Chi, o.Chi)
}

// GetCopy returns a new state with copied values sharing map and coefficients
func (o *State) GetCopy() (s *State) {
	s = NewState(o.Map, o.DynCfs, o.Steady)
	o.CopyInto(s)
	return
}
