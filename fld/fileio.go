// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fld

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// Output writes the states of this field keyed by the current step number
func (o *Field) Output() (err error) {

	// buffer and encoder
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.Sim.EncType)

	// encode working and converged states
	for _, s := range []struct {
		label string
		vecs  [][]float64
	}{
		{"np", [][]float64{o.np.Y, o.np.Dydt, o.np.D2ydt2}},
		{"n", [][]float64{o.n.Y, o.n.Dydt, o.n.D2ydt2}},
		{"nm", [][]float64{o.nm.Y, o.nm.Dydt, o.nm.D2ydt2}},
	} {
		for _, v := range s.vecs {
			err = enc.Encode(v)
			if err != nil {
				return chk.Err("cannot encode %q state of field %q\n%v", s.label, o.Name, err)
			}
		}
	}
	err = enc.Encode(o.np.T)
	if err != nil {
		return chk.Err("cannot encode time of field %q\n%v", o.Name, err)
	}
	err = enc.Encode(o.np.Dt)
	if err != nil {
		return chk.Err("cannot encode Δt of field %q\n%v", o.Name, err)
	}

	// save file
	fn := resPath(o.Sim.DirOut, o.Sim.Key, o.Name, o.Sim.EncType, o.step)
	return saveFile(fn, &buf)
}

// ReadRestart restores the states of this field from the output of a previous
// run at the given step
func (o *Field) ReadRestart(step int) (err error) {

	// open file
	fn := resPath(o.Sim.DirOut, o.Sim.Key, o.Name, o.Sim.EncType, step)
	fil, err := os.Open(fn)
	if err != nil {
		return chk.Err("cannot open restart file %q\n%v", fn, err)
	}
	defer fil.Close()

	// decode states
	dec := GetDecoder(fil, o.Sim.EncType)
	for _, s := range []struct {
		label string
		vecs  []*[]float64
	}{
		{"np", []*[]float64{&o.np.Y, &o.np.Dydt, &o.np.D2ydt2}},
		{"n", []*[]float64{&o.n.Y, &o.n.Dydt, &o.n.D2ydt2}},
		{"nm", []*[]float64{&o.nm.Y, &o.nm.Dydt, &o.nm.D2ydt2}},
	} {
		for _, v := range s.vecs {
			err = dec.Decode(v)
			if err != nil {
				return chk.Err("cannot decode %q state of field %q\n%v", s.label, o.Name, err)
			}
		}
	}
	var t, dt float64
	err = dec.Decode(&t)
	if err != nil {
		return chk.Err("cannot decode time of field %q\n%v", o.Name, err)
	}
	err = dec.Decode(&dt)
	if err != nil {
		return chk.Err("cannot decode Δt of field %q\n%v", o.Name, err)
	}
	o.SetTimeStep(t, step)
	o.np.Dt = dt
	return
}

// Result holds the decoded output of one field at one step
type Result struct {
	Ynp, Vnp, Anp []float64 // working state @ tn+1
	Yn, Vn, An    []float64 // converged state @ tn
	Ynm, Vnm, Anm []float64 // converged state @ tn-1
	T, Dt         float64
}

// ReadResult decodes the output of one field at one step without needing the
// field itself; used by the post-processing layer
func ReadResult(dirout, fnkey, fldname, enctype string, step int) (r *Result, err error) {
	fn := resPath(dirout, fnkey, fldname, enctype, step)
	fil, err := os.Open(fn)
	if err != nil {
		return nil, chk.Err("cannot open result file %q\n%v", fn, err)
	}
	defer fil.Close()
	dec := GetDecoder(fil, enctype)
	r = new(Result)
	for _, v := range []*[]float64{&r.Ynp, &r.Vnp, &r.Anp, &r.Yn, &r.Vn, &r.An, &r.Ynm, &r.Vnm, &r.Anm} {
		if err = dec.Decode(v); err != nil {
			return nil, chk.Err("cannot decode result file %q\n%v", fn, err)
		}
	}
	if err = dec.Decode(&r.T); err != nil {
		return nil, chk.Err("cannot decode time from %q\n%v", fn, err)
	}
	if err = dec.Decode(&r.Dt); err != nil {
		return nil, chk.Err("cannot decode Δt from %q\n%v", fn, err)
	}
	return
}

// resPath returns the path of a result/restart file
func resPath(dirout, fnkey, fldname, enctype string, step int) string {
	return path.Join(dirout, io.Sf("%s_%s_%010d.%s", fnkey, fldname, step, enctype))
}

// saveFile saves a buffer to file
func saveFile(fn string, buf *bytes.Buffer) (err error) {
	fil, err := os.Create(fn)
	if err != nil {
		return chk.Err("cannot create file %q\n%v", fn, err)
	}
	defer fil.Close()
	_, err = fil.Write(buf.Bytes())
	return
}
