// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package s2i

import (
	"github.com/reginabuehler/4C-sub003/cpl"
)

// SlaveToMasterCopy derives the master-row part of an interface off-diagonal
// linearization from its slave-row part. src holds slave scatra rows over
// structure columns; the copy lands on master scatra rows with scale -1,
// expressing that whatever flux leaves the slave side enters the master side.
//
// Columns on the slave structure interface are converted to their master
// partners; interior structure columns pass through unchanged. When the
// scatra and structure physics picked their interface slave sides
// independently, sst remaps the scatra condition's structure columns onto
// the structure physics' own slave numbering before the copy.
func SlaveToMasterCopy(src *cpl.SparseMat, scatraOp, structOp *cpl.CouplingOperator,
	sst *cpl.CouplingOperator, dst *cpl.SparseMat, addToDst bool) (err error) {

	work := src
	if sst != nil {
		ifaceCols := cpl.IntersectMaps(src.ColMap(), sst.SlaveDofMap())
		otherCols := cpl.DiffMaps(src.ColMap(), ifaceCols)
		work = cpl.NewSparseMat(src.RowMap(), cpl.MergeMaps(otherCols, sst.MasterDofMap()))
		err = cpl.SplitAndTransform(src, src.RowMap(), ifaceCols, 1, nil, sst.SlaveConverter(), work, false)
		if err != nil {
			return
		}
		err = cpl.SplitAndTransform(src, src.RowMap(), otherCols, 1, nil, nil, work, true)
		if err != nil {
			return
		}
	}

	rows := cpl.IntersectMaps(work.RowMap(), scatraOp.SlaveDofMap())
	ifaceCols := cpl.IntersectMaps(work.ColMap(), structOp.SlaveDofMap())
	otherCols := cpl.DiffMaps(work.ColMap(), ifaceCols)
	err = cpl.SplitAndTransform(work, rows, ifaceCols, -1, scatraOp.SlaveConverter(), structOp.SlaveConverter(), dst, addToDst)
	if err != nil {
		return
	}
	return cpl.SplitAndTransform(work, rows, otherCols, -1, scatraOp.SlaveConverter(), nil, dst, true)
}

// AssembleOffdiag drives the full off-diagonal assembly of one kinetic
// condition: the slave-row linearization w.r.t. the structure interface
// displacement, the slave→master copy, and the split of both into the block
// partition of dst. y and yMap give the combined scatra solution vector.
func AssembleOffdiag(cond *Condition, mgr *cpl.Manager, y []float64, yMap *cpl.DofMap,
	timefac float64, slaveRows, structCols *cpl.DofMap, dst *cpl.BlockMatrix) (err error) {

	scatraOp, err := mgr.Operator("scatra/scatra")
	if err != nil {
		return
	}
	structOp, err := mgr.Operator("structure/scatra")
	if err != nil {
		return
	}
	sst := mgr.SlaveSlaveTransformation("scatra/structure")

	kd := cpl.NewSparseMat(slaveRows, structCols)
	if err = cond.AddToOffdiagKb(kd, y, yMap, timefac); err != nil {
		return
	}
	kd.Complete()

	masterRows := scatraOp.MasterDofMap()
	masterCols := cpl.MergeMaps(cpl.DiffMaps(structCols, structOp.SlaveDofMap()), structOp.MasterDofMap())
	km := cpl.NewSparseMat(masterRows, masterCols)
	if err = SlaveToMasterCopy(kd, scatraOp, structOp, sst, km, false); err != nil {
		return
	}
	km.Complete()

	cpl.SplitSparseIntoBlocks(kd, dst)
	cpl.SplitSparseIntoBlocks(km, dst)
	return
}
