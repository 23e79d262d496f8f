// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

// Solver implements the actual solver (time loop)
type Solver interface {
	Run(tf float64) (err error)
}

// allocators holds all available solvers
var allocators = make(map[string]func(dr *Driver) Solver)
