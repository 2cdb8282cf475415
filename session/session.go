/*
Package session holds the mutable state a fitting run accumulates,
replacing the C sources' module-wide globals (gRefPDB, gMobPDB[],
gFitZones[], ...) with one struct threaded through every command, per
spec.md §9's no-globals design note.
*/
package session

import (
	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/deviation"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/superpose"
	"github.com/ACRMGroup/profit/zone"
)

// Structure bundles one mobile structure's atom model with its
// derived/cached fitting state.
type Structure struct {
	Model *atom.Model
	Path  string

	FitZones    []zone.Zone
	RMSZones    []zone.Zone // empty means "use FitZones"
	CentreZones []zone.Zone

	Fitted        bool
	NumFittedCoords int
	Rotation      superpose.Rotation
	FittedAtoms   []atom.Atom

	// RefCentroid is the reference centroid the last FIT/ITERATE
	// translated FittedAtoms back by. CENTRE ON subtracts it back out
	// at write time, per spec.md's "leave fitted coords centred at
	// origin (affects output only)" note.
	RefCentroid extract.Point3

	// AlignA/AlignB hold the last sequence alignment (double-deletion
	// columns already stripped) used to derive FitZones, whether from
	// ALIGN or READALIGNMENT. PRINTALIGN dumps these back out.
	AlignA, AlignB string
}

// EffectiveRMSZones returns RMSZones, falling back to FitZones when
// the user has not set an RMS-only zone list.
func (s *Structure) EffectiveRMSZones() []zone.Zone {
	if len(s.RMSZones) > 0 {
		return s.RMSZones
	}
	return s.FitZones
}

// Invalidate clears cached fit state; called whenever zones, the atom
// selection, or the atom model itself are mutated.
func (s *Structure) Invalidate() {
	s.Fitted = false
	s.NumFittedCoords = 0
	s.FittedAtoms = nil
}

// BGatePolicy mirrors extract.BGatePolicy without importing it
// directly into the session's public surface name space twice; kept
// as a type alias so callers can use either package's constants
// interchangeably.
type BGatePolicy = extract.BGatePolicy

// WeightMode selects how the superposer's weights array is derived
// from extracted per-pair B-values.
type WeightMode int

const (
	NoWeight WeightMode = iota
	Weight              // use raw B-value average as weight
	InverseBWeight       // invert the B-value average before passing to the superposer
)

// Session is the shared context threaded through every command.
type Session struct {
	Reference *atom.Model
	ReferencePath string

	Mobiles []*Structure

	NumberMode zone.Mode

	AtomSelector string
	RMSAtomSelector string

	BGate extract.BGate

	IgnoreMissing bool
	UseSymmetricAtoms bool

	UseDistCutoff bool
	DistCutoff    float64

	Weighting WeightMode

	GapOpen, GapExt int

	MaxEquivDistSq float64 // default 9.0, iterative refitter re-equivalencing gate
	IterStop       float64 // default 0.01
	MaxIter        int     // default 1000

	MultiIterStop    float64 // default 0.001
	MaxMultiIter     int     // default 100

	// Averaging selects the multi-structure driver's reference-update
	// formula (WTAVERAGE command). Defaults to IncrementalWeighted,
	// ProFit's gWtAverage default of TRUE.
	Averaging deviation.AveragingPolicy

	// MultRef, when true, makes RMS/RESIDUE/PAIRDIST compare each
	// fitted mobile against the running multi-structure averaged
	// reference (AveragedReference) instead of the static Reference
	// model, per the MULTREF command.
	MultRef             bool
	AveragedReference    []extract.Point3

	// CentreOutput selects whether WRITE leaves fitted coordinates
	// centred at the origin instead of translated into the reference
	// frame, per the CENTRE command.
	CentreOutput bool

	// OccRank is the 1-based alt-loc occupancy rank kept by loadModel
	// when a PDB record has alternate locations, per the OCCRANK
	// command.
	OccRank int

	ReferenceStructureIndex int // which mobile is currently acting as reference, for MULTI mode
}

// New returns a Session initialised with ProFit's documented defaults.
func New() *Session {
	return &Session{
		NumberMode:      zone.RESNUM,
		AtomSelector:    "*",
		RMSAtomSelector: "",
		GapOpen:         10,
		GapExt:          2,
		MaxEquivDistSq:  9.0,
		IterStop:        0.01,
		MaxIter:         1000,
		MultiIterStop:   0.001,
		MaxMultiIter:    100,
		Averaging:       deviation.IncrementalWeighted,
		OccRank:         1,
	}
}

// EffectiveRMSSelector returns RMSAtomSelector, falling back to
// AtomSelector when unset.
func (s *Session) EffectiveRMSSelector() string {
	if s.RMSAtomSelector != "" {
		return s.RMSAtomSelector
	}
	return s.AtomSelector
}

// Status is the snapshot STATUS reports: the current atom selector,
// B-value gate, distance cutoff, weighting mode and zone counts, per
// original_source/profit/main.c's STATUS command.
type Status struct {
	AtomSelector    string
	RMSAtomSelector string
	BGate           extract.BGate
	UseDistCutoff   bool
	DistCutoff      float64
	Weighting       WeightMode
	NumberMode      zone.Mode
	NumMobiles      int
	FitZoneCounts   []int
	RMSZoneCounts   []int
}

// CurrentStatus builds a Status snapshot of the session.
func (s *Session) CurrentStatus() Status {
	st := Status{
		AtomSelector:    s.AtomSelector,
		RMSAtomSelector: s.EffectiveRMSSelector(),
		BGate:           s.BGate,
		UseDistCutoff:   s.UseDistCutoff,
		DistCutoff:      s.DistCutoff,
		Weighting:       s.Weighting,
		NumberMode:      s.NumberMode,
		NumMobiles:      len(s.Mobiles),
	}
	for _, m := range s.Mobiles {
		st.FitZoneCounts = append(st.FitZoneCounts, len(m.FitZones))
		st.RMSZoneCounts = append(st.RMSZoneCounts, len(m.EffectiveRMSZones()))
	}
	return st
}
