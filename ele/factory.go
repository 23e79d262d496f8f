// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// AllocatorType defines a function that allocates an element from its cell id
// and parameters
type AllocatorType func(cid int, prms utl.Params) (Element, error)

// allocators holds all available element types
var allocators = map[string]AllocatorType{}

// New returns a new element from the factory
func New(kind string, cid int, prms utl.Params) (e Element, err error) {
	alloc, ok := allocators[kind]
	if !ok {
		return nil, chk.Err("cannot find element type named %q", kind)
	}
	return alloc(cid, prms)
}

// set factory
func init() {

	// spring: R = k.y - f(t)
	allocators["spring"] = func(cid int, prms utl.Params) (Element, error) {
		p := prms.Find("k")
		if p == nil {
			return nil, chk.Err("spring element %d needs parameter %q", cid, "k")
		}
		return &Spring{Cid: cid, K: p.V}, nil
	}

	// decay: R = dy/dt + λ.y
	allocators["decay"] = func(cid int, prms utl.Params) (Element, error) {
		p := prms.Find("lam")
		if p == nil {
			return nil, chk.Err("decay element %d needs parameter %q", cid, "lam")
		}
		return &Decay{Cid: cid, Lam: p.V}, nil
	}

	// coupled spring: R = k.y + c.yo - f(t)
	allocators["coupled_spring"] = func(cid int, prms utl.Params) (Element, error) {
		pk := prms.Find("k")
		pc := prms.Find("c")
		po := prms.Find("oeq")
		if pk == nil || pc == nil || po == nil {
			return nil, chk.Err("coupled spring element %d needs parameters %q, %q and %q", cid, "k", "c", "oeq")
		}
		return &CoupledSpring{Cid: cid, K: pk.V, C: pc.V, OEq: int(po.V)}, nil
	}
}
