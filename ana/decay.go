// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions used to verify the time
// integrators and the temporal error estimates
package ana

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Decay implements the solutions of the scalar relaxation equation
//
//	dy/dt + λ.y = 0    y(0) = y0
//
// both the exact exponential and the discrete solutions of the marching
// schemes, so tests can compare against closed forms instead of hand-rolled
// loops.
type Decay struct {
	Y0  float64 // initial value
	Lam float64 // decay rate λ
}

// Y returns the exact solution y0.exp(-λ.t)
func (o *Decay) Y(t float64) float64 {
	return o.Y0 * math.Exp(-o.Lam*t)
}

// V returns the exact rate -λ.y(t)
func (o *Decay) V(t float64) float64 {
	return -o.Lam * o.Y(t)
}

// Theta returns the discrete solution after n uniform steps of size h with
// the one-step-theta scheme. θ=1 is backward Euler, θ=0.5 Crank-Nicolson.
func (o *Decay) Theta(theta, h float64, n int) (y float64, err error) {
	den := 1.0 + theta*o.Lam*h
	if den == 0 {
		return 0, chk.Err("one-step-theta amplification is singular for θ=%g λ=%g h=%g", theta, o.Lam, h)
	}
	g := (1.0 - (1.0-theta)*o.Lam*h) / den
	y = o.Y0
	for i := 0; i < n; i++ {
		y *= g
	}
	return
}

// ForwardEuler returns the discrete solution after n uniform explicit Euler
// steps of size h
func (o *Decay) ForwardEuler(h float64, n int) (y float64) {
	y = o.Y0
	for i := 0; i < n; i++ {
		y *= 1.0 - o.Lam*h
	}
	return
}

// StepError returns the local error indicator of one step of size h started
// from the exact trajectory: the difference between the one-step-theta value
// and the explicit Euler value, as used by the time step controller
func (o *Decay) StepError(theta, h, t float64) (err float64) {
	yn := o.Y(t)
	den := 1.0 + theta*o.Lam*h
	yTheta := yn * (1.0 - (1.0-theta)*o.Lam*h) / den
	yEuler := yn * (1.0 - o.Lam*h)
	return math.Abs(yTheta - yEuler)
}
