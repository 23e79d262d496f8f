// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package blk composes the monolithic residual and tangent as a block vector
// and block matrix from the per-field contributions, applying the interface
// condensation dictated by the coupling choice (fluid-split or
// structure-split).
package blk

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/reginabuehler/4C-sub003/cpl"
	"github.com/reginabuehler/4C-sub003/ele"
	"github.com/reginabuehler/4C-sub003/fld"
	"github.com/reginabuehler/4C-sub003/inp"
	"github.com/reginabuehler/4C-sub003/s2i"
)

// block indices of the monolithic system; the ALE block is absent when no ALE
// field is given
const (
	BlkStructure = 0
	BlkFluid     = 1
	BlkAle       = 2
)

// Assembler builds the global block row map from the field DOF row maps,
// assembles main-diagonal blocks from the field matrices and fills
// off-diagonal blocks through the slave→master transformation. The
// condensed-away interface DOFs of the split field are eliminated from the
// global row map. Field DOF GIDs must be globally unique across fields.
type Assembler struct {

	// configuration
	sim   *inp.Simulation
	split string // "fluidsplit" or "structuresplit"

	// fields (non-owning)
	str *fld.Field
	flu *fld.Fluid
	ale *fld.Field // may be nil

	// coupling (non-owning)
	mgr   *cpl.Manager
	fsiOp *cpl.CouplingOperator // condensed-side iface → kept-side iface
	aleOp *cpl.CouplingOperator // ale iface → kept-side iface

	// global maps
	kept      []*cpl.DofMap // per-block kept maps, field order
	dofRowMap *cpl.DofMap
	ex        *cpl.MultiMapExtractor
	dbcMap    *cpl.DofMap

	// composed system
	mat *cpl.BlockMatrix

	// scatra-scatra interface kinetics; empty unless SetKinetics was called
	kin           []*s2i.Condition
	kinHost       *fld.Field
	kinBlk        int
	kinSlaveRows  *cpl.DofMap
	kinStructCols *cpl.DofMap

	// interface force over the condensed iface map, from the previous step
	lambda []float64

	// scaling state
	scaleFactors [][]float64
}

// NewAssembler returns a new block assembler. The coupling manager must hold
// the operator "structure/fluid" mapping the condensed side's interface DOFs
// onto the kept side's ones, and "ale/fsi" mapping the ALE interface onto the
// kept side (when an ALE field is given).
func NewAssembler(sim *inp.Simulation, str *fld.Field, flu *fld.Fluid, ale *fld.Field, mgr *cpl.Manager) (o *Assembler, err error) {
	o = new(Assembler)
	o.sim = sim
	o.str = str
	o.flu = flu
	o.ale = ale
	o.mgr = mgr

	switch sim.Coupling.Scheme {
	case "monolithic_fluidsplit":
		o.split = "fluidsplit"
	case "monolithic_structuresplit":
		o.split = "structuresplit"
	default:
		return nil, chk.Err("coupling scheme %q does not use the monolithic block assembler", sim.Coupling.Scheme)
	}

	o.fsiOp, err = mgr.Operator("structure/fluid")
	if err != nil {
		return nil, err
	}
	if !o.fsiOp.SlaveDofMap().PointSameAs(o.condensedField().InterfaceMap()) {
		return nil, chk.Err("slave side of the FSI coupling operator does not match the condensed field's interface map")
	}
	if ale != nil {
		o.aleOp, err = mgr.Operator("ale/fsi")
		if err != nil {
			return nil, err
		}
	}

	// kept maps per block
	strKept := str.RowMap()
	fluKept := flu.RowMap()
	if o.split == "fluidsplit" {
		fluKept = cpl.DiffMaps(flu.RowMap(), flu.InterfaceMap())
	} else {
		strKept = cpl.DiffMaps(str.RowMap(), str.InterfaceMap())
	}
	o.kept = []*cpl.DofMap{strKept, fluKept}
	if ale != nil {
		o.kept = append(o.kept, cpl.DiffMaps(ale.RowMap(), ale.InterfaceMap()))
	}
	err = o.SetDofRowMaps(o.kept)
	if err != nil {
		return nil, err
	}

	// the interface is not Dirichlet in the monolithic system even when a
	// partitioned startup prescribed interface velocities as Dirichlet on the
	// condensed field; strip those rows so the condensation sees true rows
	cf := o.condensedField()
	if ov := cpl.IntersectMaps(cf.DbcMapExtractor().CondMap(), cf.InterfaceMap()); ov.Size() > 0 {
		if err = cf.RemoveDirichlet(ov); err != nil {
			return nil, err
		}
	}

	// global DBC map: union of field DBC maps minus the condensed interface
	dbcs := []*cpl.DofMap{str.DbcMapExtractor().CondMap(), flu.DbcMapExtractor().CondMap()}
	if ale != nil {
		dbcs = append(dbcs, ale.DbcMapExtractor().CondMap())
	}
	o.dbcMap = cpl.DiffMaps(cpl.MergeMaps(dbcs...), cf.InterfaceMap())

	o.lambda = make([]float64, o.condensedField().InterfaceMap().Size())
	return
}

// SetDofRowMaps sets the block partition from the per-field kept maps. The
// maps must be disjoint; their concatenation becomes the monolithic row map.
func (o *Assembler) SetDofRowMaps(maps []*cpl.DofMap) (err error) {
	var gids []int
	for _, m := range maps {
		gids = append(gids, m.Gids()...)
	}
	o.dofRowMap = cpl.NewDofMap(gids)
	o.ex, err = cpl.NewMultiMapExtractor(o.dofRowMap, maps)
	if err != nil {
		return
	}
	o.kept = maps
	return
}

// DofRowMap returns the monolithic DOF row map (condensed DOFs absent)
func (o *Assembler) DofRowMap() *cpl.DofMap { return o.dofRowMap }

// Extractor partitions the monolithic row map into per-field blocks
func (o *Assembler) Extractor() *cpl.MultiMapExtractor { return o.ex }

// DbcMap returns the global Dirichlet map
func (o *Assembler) DbcMap() *cpl.DofMap { return o.dbcMap }

// SystemMatrix returns the composed block matrix (nil before CreateSystemMatrix)
func (o *Assembler) SystemMatrix() *cpl.BlockMatrix { return o.mat }

// condensedField returns the field whose interface DOFs are eliminated
func (o *Assembler) condensedField() *fld.Field {
	if o.split == "fluidsplit" {
		return o.flu.Field
	}
	return o.str
}

// keptField returns the field whose interface DOFs remain in the system
func (o *Assembler) keptField() *fld.Field {
	if o.split == "fluidsplit" {
		return o.str
	}
	return o.flu.Field
}

// condensedBlock returns the block index of the condensed field
func (o *Assembler) condensedBlock() int {
	if o.split == "fluidsplit" {
		return BlkFluid
	}
	return BlkStructure
}

// keptBlock returns the block index of the kept field
func (o *Assembler) keptBlock() int {
	if o.split == "fluidsplit" {
		return BlkStructure
	}
	return BlkFluid
}

// condScale returns the factor converting a kept-side interface increment to
// a condensed-side one: τ when the fluid is condensed (Δu = τ.Δd), 1/τ when
// the structure is condensed (Δd = Δu/τ)
func (o *Assembler) condScale() float64 {
	τ := o.flu.Tau()
	if o.split == "fluidsplit" {
		return τ
	}
	return 1.0 / τ
}

// aleScale returns the factor converting a kept-side interface increment to
// an ALE interface displacement increment
func (o *Assembler) aleScale() float64 {
	if o.split == "fluidsplit" {
		return 1.0
	}
	return o.condScale()
}

// condShift returns the constant part of the condensed interface increment
// for the current step (over the condensed iface map)
func (o *Assembler) condShift() []float64 {
	zero := make([]float64, o.condensedField().InterfaceMap().Size())
	if o.split == "fluidsplit" {
		// Δu = τ.Δd - Δt.unΓ.τ
		return o.flu.DisplacementToVelocity(zero)
	}
	// Δd = Δu/τ + Δt.unΓ
	return o.flu.VelocityToDisplacement(zero)
}

// SetKinetics registers the scatra-scatra interface kinetic conditions driven
// during assembly. host is the field carrying the scatra DOFs of the node
// pairs; the displacement linearization of the flux lands in the
// host/structure off-diagonal block. Growth conditions are advanced by the
// driver instead and cannot be registered here.
func (o *Assembler) SetKinetics(host *fld.Field, conds ...*s2i.Condition) (err error) {
	switch host {
	case o.str:
		o.kinBlk = BlkStructure
	case o.flu.Field:
		o.kinBlk = BlkFluid
	case o.ale:
		o.kinBlk = BlkAle
	default:
		return chk.Err("kinetics host field %q is not part of this monolithic system", host.Name)
	}
	var srows, scols []int
	seenR := make(map[int]bool)
	seenC := make(map[int]bool)
	for _, cond := range conds {
		if cond.Data.Model == "growth" {
			return chk.Err("the %q kinetic model is advanced by the driver and cannot be assembled", cond.Data.Model)
		}
		for _, p := range cond.Pairs {
			for _, g := range []int{p.SlCon, p.SlPot} {
				if !seenR[g] {
					seenR[g] = true
					srows = append(srows, g)
				}
			}
			if !seenC[p.StrCol] {
				seenC[p.StrCol] = true
				scols = append(scols, p.StrCol)
			}
		}
	}
	o.kinHost = host
	o.kin = conds
	o.kinSlaveRows = cpl.NewDofMap(srows)
	o.kinStructCols = cpl.NewDofMap(scols)
	return
}

// fieldBlock pairs a field with its block index
type fieldBlock struct {
	f *fld.Field
	b int
}

// fieldsAndBlocks returns all fields of this system with their block indices
func (o *Assembler) fieldsAndBlocks() []fieldBlock {
	fbs := []fieldBlock{{o.str, BlkStructure}, {o.flu.Field, BlkFluid}}
	if o.ale != nil {
		fbs = append(fbs, fieldBlock{o.ale, BlkAle})
	}
	return fbs
}

// diffTag returns the linearization tag of a field's primary unknowns
func diffTag(name string) ele.DiffType {
	switch name {
	case "structure", "ale":
		return ele.DiffDisp
	case "thermo":
		return ele.DiffTemp
	case "scatra":
		return ele.DiffElch
	}
	return ele.DiffStd
}

// crossPiece is one row or column restriction of a cross-field matrix with
// its routing into the block partition
type crossPiece struct {
	m     *cpl.DofMap
	conv  *cpl.Converter
	scale float64
	blk   int
}

// crossPieces returns the routing of a field's rows (or columns, when col is
// true) into the block partition. The condensed field's interface is replayed
// onto the kept side; condensed interface columns additionally carry the
// conversion factor. ALE interface rows are dropped like in the main pass.
func (o *Assembler) crossPieces(f *fld.Field, b int, col bool) []crossPiece {
	switch f {
	case o.condensedField():
		scale := 1.0
		if col {
			scale = o.condScale()
		}
		return []crossPiece{
			{o.kept[o.condensedBlock()], nil, 1, o.condensedBlock()},
			{f.InterfaceMap(), o.fsiOp.SlaveConverter(), scale, o.keptBlock()},
		}
	case o.ale:
		pieces := []crossPiece{{o.kept[BlkAle], nil, 1, BlkAle}}
		if col {
			pieces = append(pieces, crossPiece{f.InterfaceMap(), o.aleOp.SlaveConverter(), o.aleScale(), o.keptBlock()})
		}
		return pieces
	}
	return []crossPiece{{f.RowMap(), nil, 1, b}}
}

// routeCross splits a cross-field matrix (src rows over the srcF row map, cols
// over the dstF row map) into the block partition
func (o *Assembler) routeCross(kd *cpl.SparseMat, srcF *fld.Field, srcB int, dstF *fld.Field, dstB int) (err error) {
	for _, rp := range o.crossPieces(srcF, srcB, false) {
		for _, cp := range o.crossPieces(dstF, dstB, true) {
			err = cpl.SplitAndTransform(kd, rp.m, cp.m, rp.scale*cp.scale, rp.conv, cp.conv, o.mat.Matrix(rp.blk, cp.blk), true)
			if err != nil {
				return
			}
		}
	}
	return
}

// assembleCross drives every cross-capable element against each other field
// and routes the resulting off-diagonal tangents into the block partition
func (o *Assembler) assembleCross() (err error) {
	fields := o.fieldsAndBlocks()
	for _, src := range fields {
		for _, dst := range fields {
			if src.b == dst.b {
				continue
			}
			var kd *cpl.SparseMat
			for _, e := range src.f.Elements() {
				ce, ok := e.(ele.CrossElement)
				if !ok {
					continue
				}
				if kd == nil {
					kd = cpl.NewSparseMat(src.f.RowMap(), dst.f.RowMap())
				}
				err = ce.AddToCrossKb(kd, src.f.StateNp(), dst.f.StateNp(), diffTag(dst.f.Name))
				if err != nil {
					return
				}
			}
			if kd == nil || kd.Nnz() == 0 {
				continue
			}

			// Dirichlet rows of the source field stay identity rows
			for _, g := range src.f.DbcMapExtractor().CondMap().Gids() {
				kd.BlankRow(g)
			}
			kd.Complete()
			if err = o.routeCross(kd, src.f, src.b, dst.f, dst.b); err != nil {
				return
			}
		}
	}
	return
}

// assembleKinetics adds the interface kinetic tangents: the scatra-scatra
// linearization into the host blocks and the displacement linearization into
// the host/structure off-diagonal blocks
func (o *Assembler) assembleKinetics() (err error) {
	if len(o.kin) == 0 {
		return
	}
	host := o.kinHost
	y, yMap := host.StateNp().Y, host.RowMap()
	beta1 := 0.0
	if !host.StateNp().Steady {
		beta1 = host.DynCfs().GetBet1()
	}
	for _, cond := range o.kin {
		kd := cpl.NewSparseMat(yMap, yMap)
		if err = cond.AddToKb(kd, y, yMap, 1); err != nil {
			return
		}
		if err = cond.AddCapacitanceKb(kd, 1, beta1); err != nil {
			return
		}
		if kd.Nnz() > 0 {
			kd.Complete()
			if err = o.routeCross(kd, host, o.kinBlk, host, o.kinBlk); err != nil {
				return
			}
		}
		if o.kinStructCols.Size() > 0 {
			err = s2i.AssembleOffdiag(cond, o.mgr, y, yMap, 1, o.kinSlaveRows, o.kinStructCols, o.mat)
			if err != nil {
				return
			}
		}
	}
	return
}

// CreateSystemMatrix allocates the block matrix over the current partition.
// Separate from SetupSystemMatrix so the driver can refill values without
// recomputing the graph.
func (o *Assembler) CreateSystemMatrix() {
	o.mat = cpl.NewBlockMatrix(o.ex, o.ex)
}

// SetupSystemMatrix walks the block grid and fills each block from the field
// matrices, replaying the condensation transforms on the condensed field's
// interface rows and columns
func (o *Assembler) SetupSystemMatrix() (err error) {
	if o.mat == nil {
		return chk.Err("CreateSystemMatrix must be called before SetupSystemMatrix")
	}
	o.mat.Zero()

	cb, kb := o.condensedBlock(), o.keptBlock()
	cf := o.condensedField()
	kf := o.keptField()
	τc := o.condScale()
	s2m := o.fsiOp.SlaveConverter()

	// kept field: full matrix into its diagonal block
	km := kf.SystemMatrix()
	if km == nil {
		return chk.Err("field %q returned no system matrix where a block was declared", kf.Name)
	}
	err = cpl.SplitAndTransform(km, kf.RowMap(), kf.RowMap(), 1, nil, nil, o.mat.Matrix(kb, kb), true)
	if err != nil {
		return
	}

	// condensed field: split into interior/interface pieces
	cm := cf.SystemMatrix()
	if cm == nil {
		return chk.Err("field %q returned no system matrix where a block was declared", cf.Name)
	}
	inner := o.kept[cb]
	iface := cf.InterfaceMap()
	for _, piece := range []struct {
		rows, cols       *cpl.DofMap
		rowConv, colConv *cpl.Converter
		scale            float64
		dstI, dstJ       int
	}{
		{inner, inner, nil, nil, 1, cb, cb},
		{inner, iface, nil, s2m, τc, cb, kb},
		{iface, inner, s2m, nil, 1, kb, cb},
		{iface, iface, s2m, s2m, τc, kb, kb},
	} {
		err = cpl.SplitAndTransform(cm, piece.rows, piece.cols, piece.scale,
			piece.rowConv, piece.colConv, o.mat.Matrix(piece.dstI, piece.dstJ), true)
		if err != nil {
			return
		}
	}

	// ALE field: interior rows; interface columns routed to the kept side
	if o.ale != nil {
		am := o.ale.SystemMatrix()
		if am == nil {
			return chk.Err("field %q returned no system matrix where a block was declared", o.ale.Name)
		}
		aInner := o.kept[BlkAle]
		aIface := o.ale.InterfaceMap()
		err = cpl.SplitAndTransform(am, aInner, aInner, 1, nil, nil, o.mat.Matrix(BlkAle, BlkAle), true)
		if err != nil {
			return
		}
		err = cpl.SplitAndTransform(am, aInner, aIface, o.aleScale(), nil,
			o.aleOp.SlaveConverter(), o.mat.Matrix(BlkAle, kb), true)
		if err != nil {
			return
		}
	}

	// cross-field tangents and interface kinetics
	if err = o.assembleCross(); err != nil {
		return
	}
	if err = o.assembleKinetics(); err != nil {
		return
	}

	// enforce the global Dirichlet rows: blank the whole block row, put 1 on
	// the diagonal. Condensed interface DOFs are absent from dbcMap already.
	nblk := o.ex.NumMaps()
	for _, g := range o.dbcMap.Gids() {
		for i := 0; i < nblk; i++ {
			if !o.ex.Map(i).Has(g) {
				continue
			}
			for j := 0; j < nblk; j++ {
				o.mat.Matrix(i, j).BlankRow(g)
			}
			o.mat.Matrix(i, i).SetDiagonal(g, 1)
			break
		}
	}

	return o.mat.Complete()
}

// SetupRHS composes the monolithic residual into f (over the global row map).
// On the first call of a time step it additionally folds in the interface
// force λΓ of the previous step and the predictor-related constant part of
// the interface conversion.
func (o *Assembler) SetupRHS(f []float64, firstCall bool) (err error) {
	if len(f) != o.dofRowMap.Size() {
		return chk.Err("monolithic residual vector has wrong length. %d ≠ %d", len(f), o.dofRowMap.Size())
	}
	la.Vector(f).Fill(0)

	cf := o.condensedField()
	iface := cf.InterfaceMap()

	// per-field residuals; the condensed field's interface rows land on the
	// kept side, ALE interface rows are dropped
	for _, fb := range o.fieldsAndBlocks() {
		o.addRouted(f, fb.f, fb.b, fb.f.Rhs())
	}

	// cross-field residual terms; a field evaluated alone cannot see the
	// other fields' unknowns
	if err = o.addCrossToRhs(f); err != nil {
		return
	}

	// interface kinetic fluxes on the host field's rows
	if err = o.addKineticsToRhs(f); err != nil {
		return
	}

	if firstCall {

		// λΓ of the previous step, routed to the kept side
		mlam := o.fsiOp.SlaveToMaster(o.lambda)
		for l, g := range o.fsiOp.MasterDofMap().Gids() {
			f[o.dofRowMap.Lid(g)] += mlam[l]
		}

		// constant part of the interface conversion: move K(*,Γ).shift to the rhs
		shift := o.condShift()
		cm := cf.SystemMatrix()
		cm.Complete()
		cm.Each(func(gr, gc int, v float64) {
			lc := iface.Lid(gc)
			if lc < 0 {
				return
			}
			contrib := -v * shift[lc]
			if iface.Has(gr) {
				mg, cerr := o.fsiOp.SlaveConverter().Convert(gr)
				if cerr != nil {
					chk.Panic("%v", cerr)
				}
				f[o.dofRowMap.Lid(mg)] += contrib
				return
			}
			f[o.dofRowMap.Lid(gr)] += contrib
		})
	}

	// global Dirichlet rows carry no residual, also not a replayed one
	for _, g := range o.dbcMap.Gids() {
		f[o.dofRowMap.Lid(g)] = 0
	}
	return
}

// addRouted adds a residual-like vector (over the field's full row map) into
// the monolithic f, replaying the interface condensation on the way: interior
// rows land directly, condensed interface rows on the kept side, ALE
// interface rows are dropped
func (o *Assembler) addRouted(f []float64, fd *fld.Field, b int, sub []float64) {
	for _, g := range o.kept[b].Gids() {
		f[o.dofRowMap.Lid(g)] += sub[fd.RowMap().Lid(g)]
	}
	if fd != o.condensedField() {
		return
	}
	iface := fd.InterfaceMap()
	s := make([]float64, iface.Size())
	for l, g := range iface.Gids() {
		s[l] = sub[fd.RowMap().Lid(g)]
	}
	m := o.fsiOp.SlaveToMaster(s)
	for l, g := range o.fsiOp.MasterDofMap().Gids() {
		f[o.dofRowMap.Lid(g)] += m[l]
	}
}

// addCrossToRhs appends the coupling part of the residual of every
// cross-capable element
func (o *Assembler) addCrossToRhs(f []float64) (err error) {
	fields := o.fieldsAndBlocks()
	for _, src := range fields {
		var sub []float64
		for _, e := range src.f.Elements() {
			ce, ok := e.(ele.CrossElement)
			if !ok {
				continue
			}
			if sub == nil {
				sub = make([]float64, src.f.RowMap().Size())
			}
			for _, dst := range fields {
				if dst.b == src.b {
					continue
				}
				if err = ce.AddCouplingToRhs(sub, src.f.StateNp(), dst.f.StateNp()); err != nil {
					return
				}
			}
		}
		if sub == nil {
			continue
		}
		src.f.DbcMapExtractor().BlankVector(sub)
		o.addRouted(f, src.f, src.b, sub)
	}
	return
}

// addKineticsToRhs appends the interfacial fluxes of the registered kinetic
// conditions to the host field's rows
func (o *Assembler) addKineticsToRhs(f []float64) (err error) {
	if len(o.kin) == 0 {
		return
	}
	host := o.kinHost
	sub := make([]float64, host.RowMap().Size())
	for _, cond := range o.kin {
		if err = cond.AddToRhs(sub, host.RowMap(), host.StateNp().Y, host.RowMap(), 1); err != nil {
			return
		}
	}
	host.DbcMapExtractor().BlankVector(sub)
	o.addRouted(f, host, o.kinBlk, sub)
	return
}

// Lambda returns the stored interface force over the condensed interface map
func (o *Assembler) Lambda() []float64 { return o.lambda }

// StoreLambda records the condensed field's interface force from its true
// residual; called by the driver after a converged step
func (o *Assembler) StoreLambda() {
	cf := o.condensedField()
	tr := cf.TrueResidual()
	for l, g := range cf.InterfaceMap().Gids() {
		o.lambda[l] = tr[cf.RowMap().Lid(g)]
	}
}

// ScaleSystem applies symmetric infinity-norm scaling to the main-diagonal
// blocks and scales b accordingly. No-op unless enabled in the input.
func (o *Assembler) ScaleSystem(b []float64) {
	if !o.sim.Coupling.Scale {
		return
	}
	n := o.ex.NumMaps()
	o.scaleFactors = make([][]float64, n)
	for i := 0; i < n; i++ {
		norms := o.mat.RowInfNorms(i)
		factors := make([]float64, len(norms))
		for k, v := range norms {
			factors[k] = 1.0 / math.Sqrt(v)
		}
		o.mat.ScaleDiagonalBlock(i, factors)
		for l, g := range o.ex.Map(i).Gids() {
			b[o.dofRowMap.Lid(g)] *= factors[l]
		}
		o.scaleFactors[i] = factors
	}
}

// UnscaleSolution recovers the physical solution and residual after a solve
// on the scaled system
func (o *Assembler) UnscaleSolution(x, b []float64) {
	if !o.sim.Coupling.Scale || o.scaleFactors == nil {
		return
	}
	for i := 0; i < o.ex.NumMaps(); i++ {
		factors := o.scaleFactors[i]
		for l, g := range o.ex.Map(i).Gids() {
			lid := o.dofRowMap.Lid(g)
			x[lid] *= factors[l]
			b[lid] /= factors[l]
		}
	}
}

// ExtractFieldVectors splits a monolithic increment into per-field increments
// over the full field row maps. The condensed field's interface slot and the
// ALE interface slot are reconstructed from the kept side's interface values.
// firstCall folds the constant conversion part into the condensed increment.
func (o *Assembler) ExtractFieldVectors(x []float64, firstCall bool) (sx, fx, ax []float64) {

	cf := o.condensedField()
	kf := o.keptField()

	// kept field: direct extraction
	kx := make([]float64, kf.RowMap().Size())
	for _, g := range o.kept[o.keptBlock()].Gids() {
		kx[kf.RowMap().Lid(g)] = x[o.dofRowMap.Lid(g)]
	}

	// kept-side interface values
	mIface := o.fsiOp.MasterDofMap()
	mg := make([]float64, mIface.Size())
	for l, g := range mIface.Gids() {
		mg[l] = x[o.dofRowMap.Lid(g)]
	}

	// condensed field: interior + converted interface
	cx := make([]float64, cf.RowMap().Size())
	for _, g := range o.kept[o.condensedBlock()].Gids() {
		cx[cf.RowMap().Lid(g)] = x[o.dofRowMap.Lid(g)]
	}
	sg := o.fsiOp.MasterToSlave(mg)
	τc := o.condScale()
	var shift []float64
	if firstCall {
		shift = o.condShift()
	}
	for l, g := range o.fsiOp.SlaveDofMap().Gids() {
		v := τc * sg[l]
		if shift != nil {
			v += shift[l]
		}
		cx[cf.RowMap().Lid(g)] = v
	}

	// ALE field: interior + converted interface
	if o.ale != nil {
		ax = make([]float64, o.ale.RowMap().Size())
		for _, g := range o.kept[BlkAle].Gids() {
			ax[o.ale.RowMap().Lid(g)] = x[o.dofRowMap.Lid(g)]
		}
		ag := o.aleOp.MasterToSlave(mg)
		for l, g := range o.aleOp.SlaveDofMap().Gids() {
			ax[o.ale.RowMap().Lid(g)] = o.aleScale() * ag[l]
		}
	}

	if o.split == "fluidsplit" {
		sx, fx = kx, cx
	} else {
		sx, fx = cx, kx
	}
	return
}

// AssembleTriplet copies the completed block matrix into the solver triplet
func (o *Assembler) AssembleTriplet(kb *la.Triplet) {
	o.mat.AssembleTriplet(kb)
}
