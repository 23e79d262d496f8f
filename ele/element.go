// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ele defines the element contract consumed by the field adapters
// and the monolithic block assembler. Element integrals themselves are a
// black box: implementations return local residuals and tangents; this
// package also carries a few small concrete elements used by the tests.
package ele

import (
	"github.com/reginabuehler/4C-sub003/cpl"
)

// DiffType selects the unknowns an element linearises against when a
// cross-field (off-diagonal) block is requested
type DiffType int

const (
	DiffStd  DiffType = iota // own primary unknowns
	DiffDisp                 // structure displacements
	DiffTemp                 // temperatures
	DiffElch                 // electrochemistry unknowns (concentration + potential)
)

// Element defines what all elements must implement
type Element interface {

	// information and initialisation
	Id() int                         // returns the element Id
	SetEqs(eqs []int) (err error)    // set equation numbers (LIDs in the field map)

	// called for each iteration
	AddToRhs(fb []float64, s *State) (err error)                      // adds -R to the field residual vector fb
	AddToKb(kb *cpl.SparseMat, s *State, firstIt bool) (err error)    // adds the element tangent to the field matrix
}

// CrossElement defines elements able to linearise their residual with
// respect to the unknowns of another field. The assembler drives these to
// fill off-diagonal blocks of the monolithic system and to complete the
// residual with the coupling terms the single-field evaluation cannot see.
type CrossElement interface {
	Element
	AddToCrossKb(kb *cpl.SparseMat, s, other *State, dtype DiffType) (err error)
	AddCouplingToRhs(fb []float64, s, other *State) (err error)
}
