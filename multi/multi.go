/*
Package multi implements the multi-structure driver (component J):
fitting N mobile structures against a (possibly iteratively averaged)
reference, all-vs-all RMSD, auto-reference selection, order-fit, and
zone trimming to a common reference range.
*/
package multi

import (
	"math"
	"sort"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/deviation"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/superpose"
	"github.com/ACRMGroup/profit/zone"
)

// Mobile is one member of the multi-structure set.
type Mobile struct {
	Model *atom.Model
	Zones []zone.Zone // SEQUENTIAL zones relative to the current reference
}

// Driver orchestrates the repeat-until-converged loop of spec.md
// §4.J. Reference is mutated in place during non-final passes by the
// weighted-averaging reference update, and is fed back as the actual
// reference coordinates for every subsequent pass once populated —
// this is the mechanism by which the multi-structure fit converges on
// a consensus rather than refitting every mobile against the static
// starting reference on every pass.
type Driver struct {
	Reference []extract.Point3 // averaged reference coordinates, built from the first Mobile's extraction order under Opt
	Mobiles   []Mobile
	Opt       extract.Options

	MultiIterStop float64
	MaxMultiIter  int

	// Averaging selects how each pass folds a mobile's matched
	// coordinate into Reference. Defaults to IncrementalWeighted
	// (ProFit's gWtAverage default of TRUE), matching the WTAVERAGE
	// command's default.
	Averaging deviation.AveragingPolicy
}

// NewDriver builds a Driver with ProFit's documented convergence
// defaults (multi_iter_stop=0.001, maxmultiiter=100) when the zero
// value is passed for either.
func NewDriver(mobiles []Mobile, opt extract.Options, multiIterStop float64, maxMultiIter int) *Driver {
	if multiIterStop == 0 {
		multiIterStop = 0.001
	}
	if maxMultiIter == 0 {
		maxMultiIter = 100
	}
	return &Driver{Mobiles: mobiles, Opt: opt, MultiIterStop: multiIterStop, MaxMultiIter: maxMultiIter, Averaging: deviation.IncrementalWeighted}
}

// PassResult is one structure's outcome within a single driver pass.
type PassResult struct {
	Fit       *superpose.Result
	RMSD      float64
	NumCoords int
}

// Run executes the repeat loop: extract, fit, update reference,
// accumulate total RMS, until the total-RMS delta falls below
// MultiIterStop or MaxMultiIter passes elapse, then performs one final
// pass with reference updates disabled.
func (d *Driver) Run(referenceModel *atom.Model) ([]PassResult, error) {
	prevTotal := math.Inf(1)
	var results []PassResult

	for iter := 0; ; iter++ {
		var totalRMS float64
		var err error
		results, totalRMS, err = d.runPass(referenceModel, false)
		if err != nil {
			return nil, err
		}

		if math.Abs(totalRMS-prevTotal) < d.MultiIterStop || iter >= d.MaxMultiIter {
			results, _, err = d.runPass(referenceModel, true)
			if err != nil {
				return nil, err
			}
			break
		}
		prevTotal = totalRMS
	}

	return results, nil
}

// runPass performs one pass over every mobile, optionally skipping the
// reference-update step when final is true. Once d.Reference has been
// populated by a prior pass, it is fed back as the actual reference
// coordinates for every subsequent pass (in place of a fresh
// extraction from referenceModel) — this is what lets the averaged
// consensus actually influence later fits, rather than just
// accumulating write-only state.
func (d *Driver) runPass(referenceModel *atom.Model, final bool) ([]PassResult, float64, error) {
	results := make([]PassResult, len(d.Mobiles))
	totalRMS := 0.0

	for s, mob := range d.Mobiles {
		extracted, err := extract.Extract(referenceModel, mob.Model, mob.Zones, d.Opt, nil)
		if err != nil {
			return nil, 0, err
		}

		refXYZ := extracted.RefXYZ
		refCentroid := extracted.RefCentroid
		if len(d.Reference) == len(extracted.RefXYZ) {
			// d.Reference holds absolute coordinates (each entry was
			// folded in as refXYZ[i]+refCentroid by a prior pass), but
			// superpose.Fit requires centroid-subtracted input, so the
			// centroid has to be recomputed and subtracted back out
			// here rather than reusing d.Reference directly.
			refCentroid = centroidOf(d.Reference)
			refXYZ = make([]extract.Point3, len(d.Reference))
			for i, p := range d.Reference {
				refXYZ[i] = extract.Point3{X: p.X - refCentroid.X, Y: p.Y - refCentroid.Y, Z: p.Z - refCentroid.Z}
			}
		}

		fit, err := superpose.Fit(refXYZ, extracted.MobXYZ, nil, refCentroid, extracted.MobCentroid, mob.Model.Atoms())
		if err != nil {
			return nil, 0, err
		}

		// extracted.MobXYZ is centroid-subtracted relative to its own
		// MobCentroid; reconstructing the fitted position in the
		// reference frame requires applying the fit's rotation before
		// translating by refCentroid, the same transform superpose.Fit
		// applies to allAtoms. Without this, RMS here would be the
		// pre-fit distance between the raw structures, which happens to
		// read as zero for already-identical structures but is wrong
		// for any genuine fit.
		pairs := make([]deviation.PairRecord, len(refXYZ))
		for i := range refXYZ {
			pairs[i] = deviation.PairRecord{
				Ref: addPoint(refXYZ[i], refCentroid),
				Mob: addPoint(applyRotation(fit.R, extracted.MobXYZ[i]), refCentroid),
			}
		}
		rms := deviation.Overall(pairs, false, 0)
		results[s] = PassResult{Fit: fit, RMSD: rms, NumCoords: len(refXYZ)}
		totalRMS += rms

		if !final {
			// The averaged reference is the driver's own Reference
			// slice, not the read-only atom.Model (atom.Model never
			// mutates in place, per the atom package's design); each
			// matched pair's reference point is folded towards this
			// pass's fitted mobile coordinate, then read back at the
			// top of this loop (and by every subsequent pass) as
			// refXYZ.
			n := s + 1
			for i := range refXYZ {
				mobp := addPoint(applyRotation(fit.R, extracted.MobXYZ[i]), refCentroid)
				if i >= len(d.Reference) {
					d.Reference = append(d.Reference, mobp)
					continue
				}
				deviation.UpdateReference(&d.Reference[i], mobp, d.Averaging, n)
			}
		}
	}

	return results, totalRMS, nil
}

// centroidOf returns the unweighted mean of pts.
func centroidOf(pts []extract.Point3) extract.Point3 {
	var c extract.Point3
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(pts))
	if n == 0 {
		return c
	}
	c.X /= n
	c.Y /= n
	c.Z /= n
	return c
}

func addPoint(a, b extract.Point3) extract.Point3 {
	return extract.Point3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// applyRotation rotates a centroid-subtracted point by r, mirroring the
// transform superpose.Fit applies to allAtoms.
func applyRotation(r superpose.Rotation, p extract.Point3) extract.Point3 {
	return extract.Point3{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z,
	}
}

// AllVsAll computes the upper-triangular RMSD matrix by temporarily
// promoting each mobile to reference in turn and fitting every other
// mobile onto it in a single non-updating pass.
func AllVsAll(models []*atom.Model, zones [][]zone.Zone, opt extract.Options) ([][]float64, error) {
	n := len(models)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			extracted, err := extract.Extract(models[i], models[j], zones[j], opt, nil)
			if err != nil {
				return nil, err
			}
			fit, err := superpose.Fit(extracted.RefXYZ, extracted.MobXYZ, nil, extracted.RefCentroid, extracted.MobCentroid, models[j].Atoms())
			if err != nil {
				return nil, err
			}
			pairs := make([]deviation.PairRecord, len(extracted.RefXYZ))
			for k := range extracted.RefXYZ {
				pairs[k] = deviation.PairRecord{
					Ref: addPoint(extracted.RefXYZ[k], extracted.RefCentroid),
					Mob: addPoint(applyRotation(fit.R, extracted.MobXYZ[k]), extracted.RefCentroid),
				}
			}
			rms := deviation.Overall(pairs, false, 0)
			matrix[i][j] = rms
			matrix[j][i] = rms
		}
	}
	return matrix, nil
}

// AutoSelectReference picks the index whose row-sum of RMSDs in matrix
// is smallest.
func AutoSelectReference(matrix [][]float64) int {
	best := 0
	bestSum := math.Inf(1)
	for i, row := range matrix {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum < bestSum {
			bestSum = sum
			best = i
		}
	}
	return best
}

// OrderFit returns mobile indices (excluding refIndex) sorted by
// ascending pairwise-to-reference RMSD from matrix.
func OrderFit(matrix [][]float64, refIndex int) []int {
	type pair struct {
		idx int
		rms float64
	}
	var pairs []pair
	for i, rms := range matrix[refIndex] {
		if i == refIndex {
			continue
		}
		pairs = append(pairs, pair{i, rms})
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].rms < pairs[b].rms })
	out := make([]int, len(pairs))
	for i, p := range pairs {
		out[i] = p.idx
	}
	return out
}

// TrimZones restricts every mobile's zone list to the reference-residue
// intersection across all mobiles and renumbers, delegating to
// zone.TrimToCommon.
func TrimZones(lists [][]zone.Zone) [][]zone.Zone {
	return zone.TrimToCommon(lists)
}
