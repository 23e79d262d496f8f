// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	DirOut  string `json:"dirout"`  // directory for output; e.g. /tmp/gofsi
	Encoder string `json:"encoder"` // encoder name; e.g. "gob" or "json"
	Stat    bool   `json:"stat"`    // activate statistics
	ShowR   bool   `json:"showr"`   // show residuals during iterations
	ListBcs bool   `json:"listbcs"` // list boundary conditions
}

// LinSolData holds data for linear solvers
type LinSolData struct {
	Name      string `json:"name"`      // "umfpack", "mumps" or "dense"
	Symmetric bool   `json:"symmetric"` // use symmetric solver
	Verbose   bool   `json:"verbose"`   // verbose?
	Timing    bool   `json:"timing"`    // show timing statistics
}

// SolverData holds nonlinear (Newton) solver data
type SolverData struct {

	// nonlinear solver
	NmaxIt  int     `json:"nmaxit"`  // number of max iterations
	FbTol   float64 `json:"fbtol"`   // tolerance for relative convergence on residual
	FbMin   float64 `json:"fbmin"`   // minimum absolute value of residual norm
	Atol    float64 `json:"atol"`    // absolute tolerance for increment norm
	Rtol    float64 `json:"rtol"`    // relative tolerance for increment norm
	DvgCtrl bool    `json:"dvgctrl"` // use divergence control
	NdvgMax int     `json:"ndvgmax"` // max number of continued divergence
	CteTg   bool    `json:"ctetg"`   // use constant tangent (modified Newton) during iterations
	LnSrch  bool    `json:"lnsrch"`  // use residual-backtracking line search
	LsMaxIt int     `json:"lsmaxit"` // max number of line-search cutbacks

	// adaptive linear-solver tolerance
	AdaLinTol bool    `json:"adalintol"` // adapt the linear-solver tolerance to the Newton progress
	LinTolMin float64 `json:"lintolmin"` // lower bound for the adaptive linear tolerance
	LinTolEta float64 `json:"lintoleta"` // η₀ factor multiplying the residual reduction ratio

	// action on failure: "none", "stop", "continue_with_warning", "halve_step" or "revert_dt"
	ErrAction string `json:"erraction"`

	// derived
	Itol float64 // iterations tolerance
}

// AdaptData holds data for the time step adaptivity controller
type AdaptData struct {
	On        bool      `json:"on"`        // activate time step adaptivity
	AuxScheme string    `json:"auxscheme"` // auxiliary integrator: "none", "expleuler" or "ab2"
	Tol       float64   `json:"tol"`       // tolerance for the full-field error norm
	TolCond   float64   `json:"tolcond"`   // tolerance for the interface error norm
	TolOther  float64   `json:"tolother"`  // tolerance for the interior error norm
	Safety    float64   `json:"safety"`    // safety factor κ_safe ∈ (0,1)
	DtMin     float64   `json:"dtmin"`     // minimum time step size
	DtMax     float64   `json:"dtmax"`     // maximum time step size
	ScaleMin  float64   `json:"scalemin"`  // lower bound for Δt_new/Δt_curr per step
	ScaleMax  float64   `json:"scalemax"`  // upper bound for Δt_new/Δt_curr per step
	NmaxRep   int       `json:"nmaxrep"`   // max number of repetitions of one time step
	AvgWts    []float64 `json:"avgwts"`    // weights (newest first) for Δt averaging on increase
	GrowthDt  float64   `json:"growthdt"`  // Δt limit while interface layer growth is active
}

// CouplingData selects the FSI coupling variant
type CouplingData struct {
	Scheme   string `json:"scheme"`   // e.g. "monolithic_fluidsplit", "monolithic_structuresplit"
	IntOrder int    `json:"intorder"` // interface time-integration order: 1 or 2
	Scale    bool   `json:"scale"`    // symmetric infinity-norm scaling of diagonal blocks
}

// SchemeData holds the time-integration scheme of one field
type SchemeData struct {
	Type    string  `json:"type"`    // "stationary", "one_step_theta", "bdf2", "af_gen_alpha", "np_gen_alpha"
	Theta   float64 `json:"theta"`   // θ for one_step_theta
	AlphaF  float64 `json:"alphaf"`  // α_F for generalised-α
	AlphaM  float64 `json:"alpham"`  // α_M for generalised-α
	Gamma   float64 `json:"gamma"`   // γ for generalised-α
	NumStSt int     `json:"numstst"` // number of starting steps
	ThetaSt float64 `json:"thetast"` // θ during starting steps
}

// FieldData holds per-field input data
type FieldData struct {
	Name      string     `json:"name"`      // field key: "structure", "fluid", "ale", "scatra", "thermo"
	Scheme    SchemeData `json:"scheme"`    // time-integration scheme
	Predictor string     `json:"predictor"` // "constdisp", "constvel", "constacc" or "tangent"
	FbTol     float64    `json:"fbtol"`     // per-field residual tolerance (0 ⇒ use solver FbTol)
	ItTol     float64    `json:"ittol"`     // per-field increment tolerance (0 ⇒ use solver Itol)
}

// KineticsData holds one scatra-scatra interface kinetic condition
type KineticsData struct {
	Tag          int       `json:"tag"`          // tag of the geometric entity carrying the condition
	Model        string    `json:"model"`        // kinetic model; see KineticModels
	AlphaA       float64   `json:"alphaa"`       // anodic transfer coefficient
	AlphaC       float64   `json:"alphac"`       // cathodic transfer coefficient
	Kr           float64   `json:"kr"`           // rate constant
	Cmax         float64   `json:"cmax"`         // saturation concentration of the electrode
	Stoich       []float64 `json:"stoich"`       // stoichiometric coefficients
	NumElectrons int       `json:"nume"`         // number of electrons n_e
	Conductivity float64   `json:"conductivity"` // conductivity σ of the plated layer
	MolMass      float64   `json:"molmass"`      // molar mass M of the plated species
	Density      float64   `json:"density"`      // density ρ of the plated species
	Capacitance  float64   `json:"capacitance"`  // interface capacitance (capacitance models only)
	Temp         float64   `json:"temp"`         // temperature
}

// TimeControl holds data defining the simulation time stepping
type TimeControl struct {
	Tf    float64 `json:"tf"`    // final time
	Dt    float64 `json:"dt"`    // (initial) time step size
	DtOut float64 `json:"dtout"` // time step size for output
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data     Data            `json:"data"`      // global simulation data
	LinSol   LinSolData      `json:"linsol"`    // linear solver data
	Solver   SolverData      `json:"solver"`    // Newton solver data
	Adapt    AdaptData       `json:"adapt"`     // time adaptivity data
	Coupling CouplingData    `json:"coupling"`  // FSI coupling variant
	Fields   []*FieldData    `json:"fields"`    // all fields
	Kinetics []*KineticsData `json:"kinetics"`  // scatra-scatra interface kinetic conditions
	Funcs    FuncsData       `json:"functions"` // time functions; e.g. loads, prescribed values
	Control  TimeControl     `json:"control"`   // time control

	// derived
	DirOut  string // directory to save results
	Key     string // simulation key; e.g. mysim01.sim => mysim01
	EncType string // encoder type
}

// valid tags
var (
	// SchemeTypes holds the available time-integration scheme tags
	SchemeTypes = []string{"stationary", "one_step_theta", "bdf2", "af_gen_alpha", "np_gen_alpha"}

	// CouplingSchemes holds the available FSI coupling tags. Mortar, sliding,
	// fluid-fluid and XFEM monolithic variants are recognised but rejected at
	// configuration time since their projection operators live outside this core.
	CouplingSchemes = []string{
		"fixed_rel", "aitken_rel", "steepest_desc", "steepest_desc_force", "cheb_rel",
		"monolithic_fluidsplit", "monolithic_structuresplit",
		"mortar_monolithic_fluidsplit", "mortar_monolithic_structuresplit",
		"mortar_monolithic_fluidsplit_saddlepoint",
		"sliding_monolithic_fluidsplit", "sliding_monolithic_structuresplit",
		"fluidfluid_monolithic_fluidsplit", "fluidfluid_monolithic_structuresplit",
		"xfem_monolithic",
	}

	// KineticModels holds the available scatra-scatra interface kinetic models
	KineticModels = []string{
		"nointerfaceflux", "butlervolmer", "butlervolmerreduced",
		"butlervolmerreducedcapacitance", "growth",
	}

	// ErrActions holds the available actions on solver failure
	ErrActions = []string{"none", "stop", "continue_with_warning", "halve_step", "revert_dt"}

	// AuxSchemes holds the available auxiliary integrator tags
	AuxSchemes = []string{"none", "expleuler", "ab2"}

	// Predictors holds the available predictor tags
	Predictors = []string{"constdisp", "constvel", "constacc", "tangent"}
)

// ReadSim reads simulation data from a .sim JSON file. Unknown keys are
// rejected so that typos in the input do not silently fall back to defaults.
func ReadSim(simfilepath string, erasePrev bool) (o *Simulation, err error) {

	// open file
	f, err := os.Open(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot open simulation file %q:\n%v", simfilepath, err)
	}
	defer f.Close()

	// decode
	o = new(Simulation)
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	err = dec.Decode(o)
	if err != nil {
		return nil, chk.Err("cannot parse simulation file %q:\n%v", simfilepath, err)
	}

	// derived data
	o.Key = strings.TrimSuffix(filepath.Base(simfilepath), filepath.Ext(simfilepath))
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/gofsi/" + o.Key
	}
	o.EncType = o.Data.Encoder
	if o.EncType == "" {
		o.EncType = "gob"
	}
	if erasePrev {
		os.RemoveAll(o.DirOut)
	}
	os.MkdirAll(o.DirOut, 0777)

	// defaults and validation
	err = o.SetDefaults()
	if err != nil {
		return nil, err
	}
	err = o.Validate()
	if err != nil {
		return nil, err
	}
	return
}

// SetDefaults fills in unset values and computes derived constants
func (o *Simulation) SetDefaults() (err error) {
	s := &o.Solver
	if s.NmaxIt < 1 {
		s.NmaxIt = 20
	}
	if s.FbTol == 0 {
		s.FbTol = 1e-8
	}
	if s.FbMin == 0 {
		s.FbMin = 1e-14
	}
	if s.Atol == 0 {
		s.Atol = 1e-8
	}
	if s.Rtol == 0 {
		s.Rtol = 1e-8
	}
	if s.NdvgMax < 1 {
		s.NdvgMax = 20
	}
	if s.LsMaxIt < 1 {
		s.LsMaxIt = 10
	}
	if s.LinTolMin == 0 {
		s.LinTolMin = 1e-12
	}
	if s.LinTolEta == 0 {
		s.LinTolEta = 0.1
	}
	if s.ErrAction == "" {
		s.ErrAction = "stop"
	}
	s.Itol = calcItol(s.Atol, s.Rtol)
	a := &o.Adapt
	if a.Safety == 0 {
		a.Safety = 0.9
	}
	if a.ScaleMin == 0 {
		a.ScaleMin = 0.1
	}
	if a.ScaleMax == 0 {
		a.ScaleMax = 2.0
	}
	if a.NmaxRep < 1 {
		a.NmaxRep = 5
	}
	if a.AuxScheme == "" {
		a.AuxScheme = "none"
	}
	if o.Coupling.IntOrder == 0 {
		o.Coupling.IntOrder = 1
	}
	for _, fd := range o.Fields {
		if fd.Predictor == "" {
			fd.Predictor = "constdisp"
		}
		if fd.FbTol == 0 {
			fd.FbTol = s.FbTol
		}
		if fd.ItTol == 0 {
			fd.ItTol = s.Itol
		}
	}
	return
}

// Validate checks tags and cross-option consistency. All checks here are the
// fatal configuration errors that must be raised before the time loop starts.
func (o *Simulation) Validate() (err error) {

	// coupling scheme
	cs := o.Coupling.Scheme
	if cs != "" {
		if !hasTag(CouplingSchemes, cs) {
			return chk.Err("coupling scheme %q is invalid", cs)
		}
		switch {
		case strings.HasPrefix(cs, "mortar_"), strings.HasPrefix(cs, "sliding_"),
			strings.HasPrefix(cs, "fluidfluid_"), cs == "xfem_monolithic":
			return chk.Err("coupling scheme %q requires external projection operators and is not supported by this core", cs)
		}
	}
	if o.Coupling.IntOrder != 1 && o.Coupling.IntOrder != 2 {
		return chk.Err("interface time-integration order must be 1 or 2. %d is invalid", o.Coupling.IntOrder)
	}

	// fields and schemes
	for _, fd := range o.Fields {
		st := fd.Scheme.Type
		if !hasTag(SchemeTypes, st) {
			return chk.Err("time-integration scheme %q of field %q is invalid", st, fd.Name)
		}
		if st == "stationary" && strings.HasPrefix(cs, "monolithic_") {
			return chk.Err("stationary scheme of field %q cannot be used for monolithic FSI", fd.Name)
		}
		if !hasTag(Predictors, fd.Predictor) {
			return chk.Err("predictor %q of field %q is invalid", fd.Predictor, fd.Name)
		}
	}

	// solver
	if !hasTag(ErrActions, o.Solver.ErrAction) {
		return chk.Err("error action %q is invalid", o.Solver.ErrAction)
	}
	if o.LinSol.Name == "" {
		return chk.Err("linear solver block is undefined; set linsol.name to \"umfpack\", \"mumps\" or \"dense\"")
	}

	// adaptivity
	if !hasTag(AuxSchemes, o.Adapt.AuxScheme) {
		return chk.Err("auxiliary scheme %q is invalid", o.Adapt.AuxScheme)
	}
	if o.Adapt.On {
		if o.Adapt.AuxScheme == "none" {
			return chk.Err("time adaptivity requires an auxiliary scheme (\"expleuler\" or \"ab2\")")
		}
		if o.Adapt.DtMin <= 0 || o.Adapt.DtMax < o.Adapt.DtMin {
			return chk.Err("time adaptivity requires 0 < dtmin ≤ dtmax. dtmin=%g dtmax=%g is invalid", o.Adapt.DtMin, o.Adapt.DtMax)
		}
		if o.Adapt.Safety <= 0 || o.Adapt.Safety >= 1 {
			return chk.Err("safety factor must be within (0,1). %g is invalid", o.Adapt.Safety)
		}
	}

	// kinetics
	for _, kc := range o.Kinetics {
		if !hasTag(KineticModels, kc.Model) {
			return chk.Err("kinetic model %q of condition with tag %d is invalid", kc.Model, kc.Tag)
		}
		if kc.AlphaA < 0 || kc.AlphaC < 0 || kc.Kr < 0 {
			return chk.Err("kinetic condition with tag %d has illegal parameters: αa=%g αc=%g kr=%g", kc.Tag, kc.AlphaA, kc.AlphaC, kc.Kr)
		}
		if kc.Model == "growth" && kc.Conductivity <= 0 {
			return chk.Err("growth kinetic condition with tag %d requires positive conductivity", kc.Tag)
		}
	}
	return
}

// Field returns the data of the named field or nil
func (o *Simulation) Field(name string) *FieldData {
	for _, fd := range o.Fields {
		if fd.Name == name {
			return fd
		}
	}
	return nil
}

// MonolithicFSI tells whether the coupling variant is one of the monolithic ones
func (o *Simulation) MonolithicFSI() bool {
	return strings.HasPrefix(o.Coupling.Scheme, "monolithic_")
}

// String prints a summary of the simulation data
func (o *Simulation) String() string {
	l := io.Sf("simulation %q: %s\n", o.Key, o.Data.Desc)
	l += io.Sf("  coupling: %q (interface order %d)\n", o.Coupling.Scheme, o.Coupling.IntOrder)
	for _, fd := range o.Fields {
		l += io.Sf("  field %q: scheme=%q predictor=%q\n", fd.Name, fd.Scheme.Type, fd.Predictor)
	}
	return l
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// calcItol computes the iterations tolerance from atol and rtol
func calcItol(atol, rtol float64) float64 {
	if atol < rtol {
		return atol
	}
	return rtol
}

// hasTag tells whether tag is in the list of valid tags
func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
