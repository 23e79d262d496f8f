// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gofsi reads and validates a simulation (.sim) file and prints the resolved
// configuration. The time loop itself is driven through fem.Main by problem
// setups that define the discretized fields.
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/reginabuehler/4C-sub003/inp"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, false)

	// message
	if verbose {
		io.PfWhite("\nGofsi -- monolithic fluid-structure coupling core\n\n")
		io.Pf("%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"erase previous results", "erasePrev", erasePrev,
		))
	}

	// read and validate simulation input
	sim, err := inp.ReadSim(fnamepath, erasePrev)
	if err != nil {
		chk.Panic("cannot read simulation input:\n%v", err)
	}
	if verbose {
		io.Pf("%v\n", sim)
		io.Pf("results directory: %s\n", sim.DirOut)
	}
}
