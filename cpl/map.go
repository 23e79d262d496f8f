// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cpl implements the coupling primitives shared by the monolithic
// assembler and the interface kinetics: DOF maps, map extractors, sparse and
// block matrices, and the slave/master coupling operators.
package cpl

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// DofMap holds an ordered set of globally-unique DOF identifiers. In a
// distributed run each process holds its own disjoint row partition; the
// local index (lid) is the position within this process' partition.
type DofMap struct {
	gids []int
	lids map[int]int
}

// NewDofMap returns a new map from a list of global IDs. GIDs must be unique.
func NewDofMap(gids []int) (o *DofMap) {
	o = new(DofMap)
	o.gids = make([]int, len(gids))
	copy(o.gids, gids)
	o.lids = make(map[int]int, len(gids))
	for i, g := range gids {
		if _, dup := o.lids[g]; dup {
			chk.Panic("DOF map has duplicate global ID %d", g)
		}
		o.lids[g] = i
	}
	return
}

// NewDofMapRange returns a map holding the contiguous GIDs start,...,start+n-1
func NewDofMapRange(start, n int) *DofMap {
	gids := make([]int, n)
	for i := 0; i < n; i++ {
		gids[i] = start + i
	}
	return NewDofMap(gids)
}

// Size returns the number of DOFs in this map
func (o *DofMap) Size() int { return len(o.gids) }

// Gid returns the global ID at local position lid
func (o *DofMap) Gid(lid int) int { return o.gids[lid] }

// Gids returns the (read-only) list of global IDs
func (o *DofMap) Gids() []int { return o.gids }

// Lid returns the local position of gid or -1 if gid is not in this map
func (o *DofMap) Lid(gid int) int {
	if l, ok := o.lids[gid]; ok {
		return l
	}
	return -1
}

// Has tells whether gid is in this map
func (o *DofMap) Has(gid int) bool {
	_, ok := o.lids[gid]
	return ok
}

// PointSameAs tells whether m holds exactly the same GIDs in the same order
func (o *DofMap) PointSameAs(m *DofMap) bool {
	if m == nil || len(o.gids) != len(m.gids) {
		return false
	}
	for i, g := range o.gids {
		if m.gids[i] != g {
			return false
		}
	}
	return true
}

// NewVector returns a zeroed vector laid out over this map
func (o *DofMap) NewVector() []float64 { return make([]float64, len(o.gids)) }

// MergeMaps returns the union of the given maps with ascending GIDs
func MergeMaps(maps ...*DofMap) *DofMap {
	seen := make(map[int]bool)
	var gids []int
	for _, m := range maps {
		if m == nil {
			continue
		}
		for _, g := range m.gids {
			if !seen[g] {
				seen[g] = true
				gids = append(gids, g)
			}
		}
	}
	sort.Ints(gids)
	return NewDofMap(gids)
}

// IntersectMaps returns the intersection of a and b with ascending GIDs
func IntersectMaps(a, b *DofMap) *DofMap {
	var gids []int
	for _, g := range a.gids {
		if b.Has(g) {
			gids = append(gids, g)
		}
	}
	sort.Ints(gids)
	return NewDofMap(gids)
}

// DiffMaps returns a minus b, keeping the ordering of a
func DiffMaps(a, b *DofMap) *DofMap {
	var gids []int
	for _, g := range a.gids {
		if b == nil || !b.Has(g) {
			gids = append(gids, g)
		}
	}
	return NewDofMap(gids)
}
