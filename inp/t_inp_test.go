// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSim writes a temporary .sim file and returns its path
func writeSim(tst *testing.T, name, content string) string {
	fn := filepath.Join(tst.TempDir(), name)
	require.NoError(tst, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

// simContent returns a valid two-field configuration writing into dirout
func simContent(dirout string) string {
	return `{
  "data": {"desc": "two-field monolithic test", "dirout": "` + dirout + `"},
  "linsol": {"name": "umfpack"},
  "solver": {"nmaxit": 10, "erraction": "halve_step"},
  "adapt": {"on": true, "auxscheme": "ab2", "tol": 0.01, "dtmin": 1e-6, "dtmax": 0.1},
  "coupling": {"scheme": "monolithic_fluidsplit", "intorder": 2},
  "fields": [
    {"name": "structure", "scheme": {"type": "one_step_theta", "theta": 0.66}},
    {"name": "fluid", "scheme": {"type": "bdf2", "numstst": 1, "thetast": 1}}
  ],
  "functions": [{"name": "load", "type": "cte", "prms": [{"n": "c", "v": 2.5}]}],
  "control": {"tf": 1, "dt": 0.01}
}`
}

func Test_inp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp01. read a valid simulation file")

	dirout := filepath.Join(tst.TempDir(), "res")
	fn := writeSim(tst, "mysim01.sim", simContent(dirout))
	sim, err := ReadSim(fn, false)
	require.NoError(tst, err)

	// derived data
	assert.Equal(tst, "mysim01", sim.Key)
	assert.Equal(tst, dirout, sim.DirOut)
	assert.Equal(tst, "gob", sim.EncType)

	// defaults filled in
	assert.Equal(tst, 20, sim.Solver.NdvgMax)
	assert.Equal(tst, 0.9, sim.Adapt.Safety)
	assert.Equal(tst, "constdisp", sim.Field("structure").Predictor)
	assert.True(tst, sim.MonolithicFSI())

	// functions database
	f, err := sim.Funcs.Get("load")
	require.NoError(tst, err)
	chk.Float64(tst, "load(0)", 1e-15, f.F(0, nil), 2.5)
	z, err := sim.Funcs.Get("zero")
	require.NoError(tst, err)
	chk.Float64(tst, "zero(1)", 1e-15, z.F(1, nil), 0)
}

func Test_inp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp02. unknown keys are rejected")

	content := strings.Replace(simContent(tst.TempDir()), `"nmaxit"`, `"nmaxiter"`, 1)
	fn := writeSim(tst, "mysim02.sim", content)
	_, err := ReadSim(fn, false)
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "nmaxiter")
}

func Test_inp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp03. invalid tags are fatal at configuration time")

	for _, tc := range []struct {
		name string
		old  string
		new  string
	}{
		{"coupling scheme", `"monolithic_fluidsplit"`, `"partitioned_nonsense"`},
		{"mortar variant needs projections", `"monolithic_fluidsplit"`, `"mortar_monolithic_fluidsplit"`},
		{"time scheme", `"one_step_theta"`, `"leapfrog"`},
		{"error action", `"halve_step"`, `"ignore"`},
		{"auxiliary scheme", `"ab2"`, `"rk4"`},
	} {
		content := strings.Replace(simContent(tst.TempDir()), tc.old, tc.new, 1)
		fn := writeSim(tst, "mysim03.sim", content)
		_, err := ReadSim(fn, false)
		assert.Error(tst, err, tc.name)
	}
}

func Test_inp04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp04. stationary schemes cannot drive monolithic FSI")

	content := strings.Replace(simContent(tst.TempDir()),
		`{"type": "one_step_theta", "theta": 0.66}`, `{"type": "stationary"}`, 1)
	fn := writeSim(tst, "mysim04.sim", content)
	_, err := ReadSim(fn, false)
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "stationary")
}

func Test_inp05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp05. adaptivity validation")

	// adaptivity without an auxiliary scheme
	content := strings.Replace(simContent(tst.TempDir()), `"auxscheme": "ab2"`, `"auxscheme": "none"`, 1)
	fn := writeSim(tst, "mysim05.sim", content)
	_, err := ReadSim(fn, false)
	require.Error(tst, err)

	// growth kinetics without conductivity
	content = strings.Replace(simContent(tst.TempDir()), `"functions": [`,
		`"kinetics": [{"tag": 7, "model": "growth", "kr": 1e-4}], "functions": [`, 1)
	fn = writeSim(tst, "mysim05b.sim", content)
	_, err = ReadSim(fn, false)
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "conductivity")
}

func Test_inp06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp06. time function factory")

	// lin: y = m.(t - ta)
	f, err := NewTimeFunc("lin", utl.Params{{N: "m", V: 2}, {N: "ta", V: 1}})
	require.NoError(tst, err)
	chk.Float64(tst, "lin(3)", 1e-15, f.F(3, nil), 4)

	// rmp: constant outside [ta, tb], linear inside
	r, err := NewTimeFunc("rmp", utl.Params{{N: "ca", V: 1}, {N: "cb", V: 3}, {N: "ta", V: 0}, {N: "tb", V: 2}})
	require.NoError(tst, err)
	chk.Float64(tst, "rmp(-1)", 1e-15, r.F(-1, nil), 1)
	chk.Float64(tst, "rmp(1)", 1e-15, r.F(1, nil), 2)
	chk.Float64(tst, "rmp(5)", 1e-15, r.F(5, nil), 3)

	// missing parameters and unknown types are fatal at configuration time
	_, err = NewTimeFunc("rmp", utl.Params{{N: "ca", V: 1}})
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "cb")
	_, err = NewTimeFunc("spline", nil)
	require.Error(tst, err)
}
