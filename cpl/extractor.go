// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpl

import (
	"github.com/cpmech/gosl/chk"
)

// MultiMapExtractor holds an ordered list of disjoint sub-maps whose union
// equals a reference map. It indexes block matrices and splits/merges
// monolithic vectors.
type MultiMapExtractor struct {
	full *DofMap
	subs []*DofMap
}

// NewMultiMapExtractor returns a new extractor. The sub-maps must be disjoint
// and cover the full map exactly.
func NewMultiMapExtractor(full *DofMap, subs []*DofMap) (o *MultiMapExtractor, err error) {
	n := 0
	seen := make(map[int]bool, full.Size())
	for i, s := range subs {
		for _, g := range s.Gids() {
			if seen[g] {
				return nil, chk.Err("sub-maps are not disjoint: GID %d appears more than once (sub-map %d)", g, i)
			}
			if !full.Has(g) {
				return nil, chk.Err("sub-map %d has GID %d outside the reference map", i, g)
			}
			seen[g] = true
		}
		n += s.Size()
	}
	if n != full.Size() {
		return nil, chk.Err("sub-maps do not cover the reference map: %d ≠ %d", n, full.Size())
	}
	o = &MultiMapExtractor{full: full, subs: subs}
	return
}

// NumMaps returns the number of sub-maps
func (o *MultiMapExtractor) NumMaps() int { return len(o.subs) }

// Map returns the i-th sub-map
func (o *MultiMapExtractor) Map(i int) *DofMap { return o.subs[i] }

// FullMap returns the reference map
func (o *MultiMapExtractor) FullMap() *DofMap { return o.full }

// ExtractVector returns the portion of the full vector lying in sub-map i
func (o *MultiMapExtractor) ExtractVector(full []float64, i int) (sub []float64) {
	m := o.subs[i]
	sub = make([]float64, m.Size())
	for l, g := range m.Gids() {
		sub[l] = full[o.full.Lid(g)]
	}
	return
}

// InsertVector writes the sub-vector of sub-map i into the full vector
func (o *MultiMapExtractor) InsertVector(sub []float64, i int, full []float64) {
	m := o.subs[i]
	for l, g := range m.Gids() {
		full[o.full.Lid(g)] = sub[l]
	}
}

// AddVector adds scale times the sub-vector of sub-map i into the full vector
func (o *MultiMapExtractor) AddVector(sub []float64, i int, full []float64, scale float64) {
	m := o.subs[i]
	for l, g := range m.Gids() {
		full[o.full.Lid(g)] += scale * sub[l]
	}
}

// DBCMapExtractor partitions a DOF row map into Dirichlet-constrained DOFs
// and free DOFs. Union equals the row map; intersection is empty.
type DBCMapExtractor struct {
	full *DofMap
	cond *DofMap
	free *DofMap
}

// NewDBCMapExtractor returns a new extractor from the full map and the
// constrained map. GIDs of cond outside full are fatal.
func NewDBCMapExtractor(full, cond *DofMap) (o *DBCMapExtractor) {
	for _, g := range cond.Gids() {
		if !full.Has(g) {
			chk.Panic("Dirichlet map has GID %d outside the row map", g)
		}
	}
	return &DBCMapExtractor{full: full, cond: cond, free: DiffMaps(full, cond)}
}

// FullMap returns the row map
func (o *DBCMapExtractor) FullMap() *DofMap { return o.full }

// CondMap returns the map of Dirichlet-constrained DOFs
func (o *DBCMapExtractor) CondMap() *DofMap { return o.cond }

// FreeMap returns the map of free DOFs
func (o *DBCMapExtractor) FreeMap() *DofMap { return o.free }

// WithAdded returns a new extractor whose Dirichlet set additionally holds mapToAdd
func (o *DBCMapExtractor) WithAdded(mapToAdd *DofMap) *DBCMapExtractor {
	return NewDBCMapExtractor(o.full, MergeMaps(o.cond, mapToAdd))
}

// WithRemoved returns a new extractor whose Dirichlet set excludes mapToRemove
func (o *DBCMapExtractor) WithRemoved(mapToRemove *DofMap) *DBCMapExtractor {
	return NewDBCMapExtractor(o.full, DiffMaps(o.cond, mapToRemove))
}

// BlankVector zeroes the entries of v (over the full map) lying in the Dirichlet map
func (o *DBCMapExtractor) BlankVector(v []float64) {
	for _, g := range o.cond.Gids() {
		v[o.full.Lid(g)] = 0
	}
}
