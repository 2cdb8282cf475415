/*
Package iterate implements the iterative refitter (component I):
alternate a fit and a distance-based re-equivalencing of Cα atoms
until the RMSD change falls below a threshold, per spec.md §4.I.
*/
package iterate

import (
	"math"

	"github.com/ACRMGroup/profit/align"
	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/deviation"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/sequence"
	"github.com/ACRMGroup/profit/superpose"
	"github.com/ACRMGroup/profit/zone"
)

// Config bundles the refitter's tunables; zero values fall back to
// spec defaults via Defaults().
type Config struct {
	Sub            align.SubstitutionMatrix
	Gap            align.Scoring
	MaxEquivDistSq float64
	IterStop       float64
	MaxIter        int
}

// Defaults returns ProFit's documented defaults (max_equiv_dist_sq=9.0
// Å², iter_stop=0.01, maxiter=1000) for any zero field in cfg.
func Defaults(cfg Config) Config {
	if cfg.MaxEquivDistSq == 0 {
		cfg.MaxEquivDistSq = 9.0
	}
	if cfg.IterStop == 0 {
		cfg.IterStop = 0.01
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 1000
	}
	return cfg
}

// Result is the refitter's terminal state.
type Result struct {
	Fit          *superpose.Result
	RMSD         float64
	Iterations   int
	Zones        []zone.Zone
}

// Run performs the full iterative refit: initial sequence alignment,
// zone construction, CA extraction, fit, then repeated
// distance-driven re-equivalencing until convergence.
func Run(refModel, mobModel *atom.Model, cfg Config) (*Result, error) {
	cfg = Defaults(cfg)

	refSeq := sequence.Extract(refModel)
	mobSeq := sequence.Extract(mobModel)
	refFlat := sequence.StripChainBreaks(refSeq)
	mobFlat := sequence.StripChainBreaks(mobSeq)

	_, alignA, alignB, err := align.NeedlemanWunsch(refFlat, mobFlat, cfg.Sub, cfg.Gap)
	if err != nil {
		return nil, err
	}
	zones := zone.FromAlignment(alignA, alignB, nil)

	caOpt := extract.Options{Selector: extract.NewSelector("CA")}

	var prevRMSD float64
	var fitResult *superpose.Result
	iterations := 0

	for iterations < cfg.MaxIter {
		iterations++

		extracted, err := extract.Extract(refModel, mobModel, zones, caOpt, nil)
		if err != nil {
			return nil, err
		}

		fitResult, err = superpose.Fit(extracted.RefXYZ, extracted.MobXYZ, nil, extracted.RefCentroid, extracted.MobCentroid, mobModel.Atoms())
		if err != nil {
			return nil, err
		}

		pairs := make([]deviation.PairRecord, len(extracted.RefXYZ))
		for i := range extracted.RefXYZ {
			pairs[i] = deviation.PairRecord{
				Ref: extract.Point3{X: extracted.RefXYZ[i].X + extracted.RefCentroid.X, Y: extracted.RefXYZ[i].Y + extracted.RefCentroid.Y, Z: extracted.RefXYZ[i].Z + extracted.RefCentroid.Z},
				Mob: extract.Point3{X: extracted.MobXYZ[i].X + extracted.RefCentroid.X, Y: extracted.MobXYZ[i].Y + extracted.RefCentroid.Y, Z: extracted.MobXYZ[i].Z + extracted.RefCentroid.Z},
			}
		}
		rmsd := deviation.Overall(pairs, false, 0)

		if iterations > 1 && math.Abs(rmsd-prevRMSD) < cfg.IterStop {
			prevRMSD = rmsd
			break
		}
		prevRMSD = rmsd

		// Re-equivalence by Cα distance using the fitted mobile
		// coordinates just produced.
		refCA := caPoints(refModel)
		mobCA := fittedCAPoints(fitResult.Fitted)

		_, pairA, pairB, err := align.NeedlemanWunschByDistance(refCA, mobCA, align.Scoring{GapOpen: 0, GapExt: 0})
		if err != nil {
			return nil, err
		}
		zones = zone.FromIndexPairs(pairA, pairB, func(i, j int) bool {
			d := distSq(refCA[i], mobCA[j])
			return d <= cfg.MaxEquivDistSq
		})
		if len(zones) == 0 {
			break
		}
	}

	return &Result{Fit: fitResult, RMSD: prevRMSD, Iterations: iterations, Zones: zones}, nil
}

func caPoints(m *atom.Model) []align.Point3 {
	var pts []align.Point3
	for i := 0; i < m.NumResidues(); i++ {
		for _, a := range m.ResidueAtoms(i) {
			if a.Name == "CA" && !a.Undefined() {
				pts = append(pts, align.Point3{X: a.X, Y: a.Y, Z: a.Z})
				break
			}
		}
	}
	return pts
}

func fittedCAPoints(fitted []atom.Atom) []align.Point3 {
	var pts []align.Point3
	for _, a := range fitted {
		if a.Name == "CA" && !a.Undefined() {
			pts = append(pts, align.Point3{X: a.X, Y: a.Y, Z: a.Z})
		}
	}
	return pts
}

func distSq(a, b align.Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
