// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/gosl/chk"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/inp"
)

// Spring implements a single-DOF stationary element with residual
//
//	R = k.y - f(t)
//
// Equation numbers are the GIDs of the owning field map.
type Spring struct {
	Cid int          // cell/element id
	K   float64      // stiffness
	F   inp.TimeFunc // load; may be nil
	eq  int
}

// SetEqs sets equation numbers
func (o *Spring) SetEqs(eqs []int) (err error) {
	if len(eqs) != 1 {
		return chk.Err("spring element %d needs one equation number. %d is incorrect", o.Cid, len(eqs))
	}
	o.eq = eqs[0]
	return
}

// Id returns the element id
func (o *Spring) Id() int { return o.Cid }

// AddToRhs adds -R to the field residual vector
func (o *Spring) AddToRhs(fb []float64, s *State) (err error) {
	i := s.Map.Lid(o.eq)
	f := 0.0
	if o.F != nil {
		f = o.F.F(s.T, nil)
	}
	fb[i] += f - o.K*s.Y[i]
	return
}

// AddToKb adds the element tangent to the field matrix
func (o *Spring) AddToKb(kb *cpl.SparseMat, s *State, firstIt bool) (err error) {
	kb.Put(o.eq, o.eq, o.K)
	return
}

// Decay implements a single-DOF first-order rate element with residual
//
//	R = dy/dt + λ.y = (β1.y - ψ*) + λ.y
type Decay struct {
	Cid int     // cell/element id
	Lam float64 // decay rate λ
	eq  int
}

// SetEqs sets equation numbers
func (o *Decay) SetEqs(eqs []int) (err error) {
	if len(eqs) != 1 {
		return chk.Err("decay element %d needs one equation number. %d is incorrect", o.Cid, len(eqs))
	}
	o.eq = eqs[0]
	return
}

// Id returns the element id
func (o *Decay) Id() int { return o.Cid }

// AddToRhs adds -R to the field residual vector
func (o *Decay) AddToRhs(fb []float64, s *State) (err error) {
	i := s.Map.Lid(o.eq)
	if s.Steady {
		fb[i] -= o.Lam * s.Y[i]
		return
	}
	β1 := s.DynCfs.GetBet1()
	fb[i] += s.Psi[i] - (β1+o.Lam)*s.Y[i]
	return
}

// AddToKb adds the element tangent to the field matrix
func (o *Decay) AddToKb(kb *cpl.SparseMat, s *State, firstIt bool) (err error) {
	if s.Steady {
		kb.Put(o.eq, o.eq, o.Lam)
		return
	}
	kb.Put(o.eq, o.eq, s.DynCfs.GetBet1()+o.Lam)
	return
}

// CoupledSpring implements a single-DOF element whose residual also depends
// on one unknown of another field:
//
//	R = k.y + c.yo - f(t)
//
// It fills the off-diagonal block with c when asked for the cross tangent.
type CoupledSpring struct {
	Cid  int          // cell/element id
	K    float64      // stiffness w.r.t. own unknown
	C    float64      // coupling stiffness w.r.t. the other field's unknown
	F    inp.TimeFunc // load; may be nil
	OEq  int          // equation number (GID) in the other field's map
	What DiffType     // tag of the other field's unknowns
	eq   int
}

// SetEqs sets equation numbers
func (o *CoupledSpring) SetEqs(eqs []int) (err error) {
	if len(eqs) != 1 {
		return chk.Err("coupled spring element %d needs one equation number. %d is incorrect", o.Cid, len(eqs))
	}
	o.eq = eqs[0]
	return
}

// Id returns the element id
func (o *CoupledSpring) Id() int { return o.Cid }

// AddToRhs adds -R to the field residual vector
func (o *CoupledSpring) AddToRhs(fb []float64, s *State) (err error) {
	i := s.Map.Lid(o.eq)
	f := 0.0
	if o.F != nil {
		f = o.F.F(s.T, nil)
	}
	fb[i] += f - o.K*s.Y[i]
	return
}

// AddToKb adds the element tangent to the field matrix
func (o *CoupledSpring) AddToKb(kb *cpl.SparseMat, s *State, firstIt bool) (err error) {
	kb.Put(o.eq, o.eq, o.K)
	return
}

// AddToCrossKb adds the cross tangent and completes the residual with the
// other field's contribution. fb handling of the coupling term lives here so
// that a field evaluated alone (other == nil) still produces its own block.
func (o *CoupledSpring) AddToCrossKb(kb *cpl.SparseMat, s, other *State, dtype DiffType) (err error) {
	if dtype != o.What || !other.Map.Has(o.OEq) {
		return
	}
	kb.Put(o.eq, o.OEq, o.C)
	return
}

// AddCouplingToRhs subtracts c.yo from the residual vector given the other
// field's state. The assembler calls this after the single-field evaluation;
// a state not owning the partner DOF contributes nothing.
func (o *CoupledSpring) AddCouplingToRhs(fb []float64, s, other *State) (err error) {
	j := other.Map.Lid(o.OEq)
	if j < 0 {
		return
	}
	fb[s.Map.Lid(o.eq)] -= o.C * other.Y[j]
	return
}
