// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
)

// Main holds all data for one monolithic coupled simulation
type Main struct {
	Sim     *inp.Simulation // simulation data
	Summary *Summary        // summary structure
	Driver  *Driver         // monolithic driver
	Solver  Solver          // time loop; implicit or adaptive
	ShowMsg bool            // show messages
}

// NewMain composes the driver and the time loop for the given problem. The
// fields and coupling operators are built by the caller since they depend on
// the discretization.
func NewMain(sim *inp.Simulation, str *fld.Field, flu *fld.Fluid, ale *fld.Field, mgr *cpl.Manager, saveSummary, verbose bool) (o *Main, err error) {
	o = new(Main)
	o.Sim = sim
	o.ShowMsg = verbose
	if saveSummary {
		o.Summary = new(Summary)
	}
	o.Driver, err = NewDriver(sim, str, flu, ale, mgr)
	if err != nil {
		return nil, err
	}
	o.Driver.Sum = o.Summary
	o.Driver.ShowMsg = verbose

	// allocate solver
	name := "imp"
	if sim.Adapt.On {
		name = "ada"
	}
	o.Solver, err = o.Driver.NewSolver(name)
	if err != nil {
		return nil, err
	}
	return
}

// Run runs the simulation up to the final time and saves the summary
func (o *Main) Run() (err error) {
	cputime := time.Now()
	defer o.Driver.Free()

	err = o.Solver.Run(o.Sim.Control.Tf)
	if err != nil {
		return
	}

	// save summary and step controller report
	if o.Summary != nil {
		if err = o.Summary.Save(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType); err != nil {
			return
		}
		if o.Sim.Adapt.On {
			if err = o.Summary.SaveAdaReport(o.Sim.DirOut, o.Sim.Key); err != nil {
				return
			}
		}
	}

	// message
	if o.ShowMsg {
		io.Pf("\nfinal t  = %v\n", o.Driver.Str.StateN().T)
		io.Pfblue2("cpu time = %v\n", time.Now().Sub(cputime))
	}
	return
}
