// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// TimeFunc computes a scalar prescribed value y(t,x). The space argument may
// be nil for purely time-dependent values.
type TimeFunc interface {
	F(t float64, x []float64) float64
}

// Cte implements a constant function y(t) = c
type Cte struct {
	C float64
}

// F returns y(t,x)
func (o *Cte) F(t float64, x []float64) float64 { return o.C }

// Lin implements a linear function y(t) = m.(t - ta)
type Lin struct {
	M  float64
	Ta float64
}

// F returns y(t,x)
func (o *Lin) F(t float64, x []float64) float64 { return o.M * (t - o.Ta) }

// Rmp implements a linear ramp from ca at ta to cb at tb, constant outside
type Rmp struct {
	Ca, Cb float64
	Ta, Tb float64
}

// F returns y(t,x)
func (o *Rmp) F(t float64, x []float64) float64 {
	if t <= o.Ta {
		return o.Ca
	}
	if t >= o.Tb {
		return o.Cb
	}
	return o.Ca + (o.Cb-o.Ca)*(t-o.Ta)/(o.Tb-o.Ta)
}

type zeroFunc struct{}

func (o zeroFunc) F(t float64, x []float64) float64 { return 0 }

// Zero is the zero function
var Zero zeroFunc

// NewTimeFunc allocates a function by type tag. Missing parameters are fatal
// at configuration time, not at evaluation time.
func NewTimeFunc(kind string, prms utl.Params) (fcn TimeFunc, err error) {
	need := func(names ...string) (vals []float64, err error) {
		vals = make([]float64, len(names))
		for i, n := range names {
			p := prms.Find(n)
			if p == nil {
				return nil, chk.Err("function type %q needs parameter %q", kind, n)
			}
			vals[i] = p.V
		}
		return
	}
	switch kind {
	case "cte":
		v, err := need("c")
		if err != nil {
			return nil, err
		}
		return &Cte{C: v[0]}, nil
	case "lin":
		v, err := need("m")
		if err != nil {
			return nil, err
		}
		f := &Lin{M: v[0]}
		if p := prms.Find("ta"); p != nil {
			f.Ta = p.V
		}
		return f, nil
	case "rmp":
		v, err := need("ca", "cb", "ta", "tb")
		if err != nil {
			return nil, err
		}
		return &Rmp{Ca: v[0], Cb: v[1], Ta: v[2], Tb: v[3]}, nil
	case "zero":
		return Zero, nil
	}
	return nil, chk.Err("cannot find function type named %q", kind)
}

// FuncData holds function definition
type FuncData struct {
	Name string     `json:"name"` // name of function. ex: zero, load, myfunction1, etc.
	Type string     `json:"type"` // type of function. ex: cte, rmp
	Prms utl.Params `json:"prms"` // parameters
}

// FuncsData holds functions
type FuncsData []*FuncData

// Get returns function by name
func (o FuncsData) Get(name string) (fcn TimeFunc, err error) {
	if name == "zero" || name == "none" {
		fcn = Zero
		return
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err = NewTimeFunc(f.Type, f.Prms)
			if err != nil {
				err = chk.Err("cannot get function named %q because of the following error:\n%v", name, err)
			}
			return
		}
	}
	err = chk.Err("cannot find function named %q\n", name)
	return
}

// String prints one function
func (o FuncData) String() string {
	return io.Sf("func %q: type=%q nprms=%d", o.Name, o.Type, len(o.Prms))
}
