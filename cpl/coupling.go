// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpl

import (
	"github.com/cpmech/gosl/chk"
)

// CouplingOperator pairs a slave and a master DOF map over the same interface
// and holds the permutation between them. The i-th slave GID corresponds to
// the i-th master GID.
type CouplingOperator struct {
	slave  *DofMap
	master *DofMap
}

// NewCouplingOperator returns a new operator. Slave and master lists must
// have the same length; the bijection is positional.
func NewCouplingOperator(slaveGids, masterGids []int) (o *CouplingOperator, err error) {
	if len(slaveGids) != len(masterGids) {
		return nil, chk.Err("slave and master interface sides must have the same number of DOFs. %d ≠ %d", len(slaveGids), len(masterGids))
	}
	o = &CouplingOperator{slave: NewDofMap(slaveGids), master: NewDofMap(masterGids)}
	return
}

// SlaveDofMap returns the slave-side interface map
func (o *CouplingOperator) SlaveDofMap() *DofMap { return o.slave }

// MasterDofMap returns the master-side interface map
func (o *CouplingOperator) MasterDofMap() *DofMap { return o.master }

// SlaveToMaster permutes a slave-side vector to the master side
func (o *CouplingOperator) SlaveToMaster(v []float64) (r []float64) {
	chk.IntAssert(len(v), o.slave.Size())
	r = make([]float64, len(v))
	copy(r, v)
	return
}

// MasterToSlave permutes a master-side vector to the slave side
func (o *CouplingOperator) MasterToSlave(v []float64) (r []float64) {
	chk.IntAssert(len(v), o.master.Size())
	r = make([]float64, len(v))
	copy(r, v)
	return
}

// SlaveConverter returns the GID converter from slave to master
func (o *CouplingOperator) SlaveConverter() *Converter {
	return &Converter{src: o.slave, dst: o.master}
}

// MasterConverter returns the GID converter from master to slave
func (o *CouplingOperator) MasterConverter() *Converter {
	return &Converter{src: o.master, dst: o.slave}
}

// Converter maps DOF GIDs of one interface side onto the other, consumable
// as row or column converter by SplitAndTransform
type Converter struct {
	src *DofMap
	dst *DofMap
}

// Convert returns the GID on the destination side paired with gid
func (o *Converter) Convert(gid int) (cgid int, err error) {
	l := o.src.Lid(gid)
	if l < 0 {
		return 0, chk.Err("GID %d is not on the source side of the coupling operator", gid)
	}
	return o.dst.Gid(l), nil
}

// SrcMap returns the source-side map of this converter
func (o *Converter) SrcMap() *DofMap { return o.src }

// Manager owns the coupling operators between field pairs plus the
// slave-of-slave remaps needed when two physics pick their slave sides
// independently. Operators are logically immutable between redistributions.
type Manager struct {
	ops  map[string]*CouplingOperator
	ssts map[string]*CouplingOperator
}

// NewManager returns a new (empty) coupling map manager
func NewManager() *Manager {
	return &Manager{
		ops:  make(map[string]*CouplingOperator),
		ssts: make(map[string]*CouplingOperator),
	}
}

// SetOperator registers the coupling operator of the named interface;
// e.g. "structure/fluid" or "scatra/scatra"
func (o *Manager) SetOperator(name string, op *CouplingOperator) { o.ops[name] = op }

// Operator returns the coupling operator of the named interface
func (o *Manager) Operator(name string) (op *CouplingOperator, err error) {
	op, ok := o.ops[name]
	if !ok {
		return nil, chk.Err("coupling operator %q is missing", name)
	}
	return
}

// SetSlaveSlaveTransformation registers the operator remapping physics A's
// slave DOFs onto physics B's own slave DOFs for the named pair
func (o *Manager) SetSlaveSlaveTransformation(name string, op *CouplingOperator) { o.ssts[name] = op }

// SlaveSlaveTransformation returns the slave-of-slave operator of the named
// pair, or nil if the two physics picked coincident slave sides
func (o *Manager) SlaveSlaveTransformation(name string) *CouplingOperator { return o.ssts[name] }

// Rebuild drops all operators; they must be registered again before any
// evaluate after a mesh redistribution
func (o *Manager) Rebuild() {
	o.ops = make(map[string]*CouplingOperator)
	o.ssts = make(map[string]*CouplingOperator)
}
