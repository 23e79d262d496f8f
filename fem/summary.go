// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/reginabuehler/4C-sub003/fld"
)

// AdaRecord documents one decision of the time step controller
type AdaRecord struct {
	T        float64 // time @ end of the attempted step
	Dt       float64 // attempted step size
	DtNew    float64 // step size chosen for the next attempt/step
	Reason   string  // which candidate governed; see Ada* constants
	ErrStr   float64 // structure temporal error norm
	ErrFlu   float64 // fluid temporal error norm
	Accepted bool    // step accepted
	Rep      int     // repetition counter at decision time
}

// Summary records summary of outputs
type Summary struct {

	// main data
	OutTimes   []float64    // [nOutTimes] output times
	Resids     utl.SerialList // residuals (if Stat is on)
	AdaRecords []AdaRecord  // time step controller decisions
	Dirout     string       // directory where results are stored
	Fnkey      string       // filename key of simulation
}

// Save saves the summary to disc
func (o *Summary) Save(dirout, fnkey, enctype string) (err error) {

	// set flags before saving
	o.Dirout = dirout
	o.Fnkey = fnkey

	// buffer and encoder
	var buf bytes.Buffer
	enc := fld.GetEncoder(&buf, enctype)
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary\n%v", err)
	}

	// save file
	fn := sumPath(dirout, fnkey, enctype)
	fil, err := os.Create(fn)
	if err != nil {
		return chk.Err("cannot create summary file %q\n%v", fn, err)
	}
	defer fil.Close()
	_, err = fil.Write(buf.Bytes())
	return
}

// Read reads the summary back
func (o *Summary) Read(dirout, fnkey, enctype string) (err error) {
	fn := sumPath(dirout, fnkey, enctype)
	fil, err := os.Open(fn)
	if err != nil {
		return chk.Err("cannot open summary file %q\n%v", fn, err)
	}
	defer fil.Close()
	dec := fld.GetDecoder(fil, enctype)
	err = dec.Decode(o)
	if err != nil {
		return chk.Err("cannot decode summary\n%v", err)
	}
	return
}

// SaveAdaReport writes the step controller decisions as a plain-text (.ada)
// table next to the results
func (o *Summary) SaveAdaReport(dirout, fnkey string) (err error) {
	var buf bytes.Buffer
	io.Ff(&buf, "%13s%13s%13s%13s%13s%10s%5s%20s\n", "t", "dt", "dtnew", "errstr", "errflu", "accepted", "rep", "reason")
	for _, r := range o.AdaRecords {
		io.Ff(&buf, "%13.6e%13.6e%13.6e%13.6e%13.6e%10v%5d%20s\n", r.T, r.Dt, r.DtNew, r.ErrStr, r.ErrFlu, r.Accepted, r.Rep, r.Reason)
	}
	fn := path.Join(dirout, io.Sf("%s.ada", fnkey))
	fil, err := os.Create(fn)
	if err != nil {
		return chk.Err("cannot create ada report %q\n%v", fn, err)
	}
	defer fil.Close()
	_, err = fil.Write(buf.Bytes())
	return
}

// sumPath returns the path of the summary file
func sumPath(dirout, fnkey, enctype string) string {
	return path.Join(dirout, io.Sf("%s_sum.%s", fnkey, enctype))
}
