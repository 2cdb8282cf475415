package extract

import (
	"fmt"
	"math"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/zone"
)

// Point3 is a plain coordinate triple, shared with align.Point3's
// shape so extracted coordinates feed directly into the distance
// aligner and the superposer without conversion.
type Point3 struct {
	X, Y, Z float64
}

// MismatchError reports a zone whose reference and mobile residue
// counts differ — a fatal error for the fit under way.
type MismatchError struct {
	Zone            zone.Zone
	RefCount, MobCount int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("extract: zone %v has %d reference residues but %d mobile residues", e.Zone, e.RefCount, e.MobCount)
}

// MissingAtomError reports a reference atom with no mobile counterpart
// when the ignore-missing policy is off.
type MissingAtomError struct {
	ResName, AtomName string
}

func (e *MissingAtomError) Error() string {
	return fmt.Sprintf("extract: no mobile atom %q in residue %s", e.AtomName, e.ResName)
}

// Options bundles the extractor's configurable policy.
type Options struct {
	Selector       Selector
	Gate           BGate
	Symmetric      *SymmetricTable
	IgnoreMissing  bool
}

// Result is the extractor's output: parallel ref/mob coordinate arrays
// and per-pair weights (ref+mob B-value average), plus the two
// centroids the arrays have already been centred on.
type Result struct {
	RefXYZ, MobXYZ []Point3
	Weight         []float64
	RefCentroid    Point3
	MobCentroid    Point3
}

// Extract walks zones (already SEQUENTIAL) against refModel/mobModel
// and emits centred coordinate arrays per spec §4.F. centreZones, if
// non-nil, restricts centroid computation to the given zone subset
// instead of the full extracted set.
func Extract(refModel, mobModel *atom.Model, zones []zone.Zone, opt Options, centreZones []zone.Zone) (*Result, error) {
	refXYZ, mobXYZ, weight, err := extractRaw(refModel, mobModel, zones, opt)
	if err != nil {
		return nil, err
	}

	refC := centroid(refXYZ)
	mobC := centroid(mobXYZ)
	if len(centreZones) > 0 {
		cRef, cMob, _, err := extractRaw(refModel, mobModel, centreZones, opt)
		if err != nil {
			return nil, err
		}
		refC = centroid(cRef)
		mobC = centroid(cMob)
	}

	for i := range refXYZ {
		refXYZ[i].X -= refC.X
		refXYZ[i].Y -= refC.Y
		refXYZ[i].Z -= refC.Z
		mobXYZ[i].X -= mobC.X
		mobXYZ[i].Y -= mobC.Y
		mobXYZ[i].Z -= mobC.Z
	}

	return &Result{
		RefXYZ: refXYZ, MobXYZ: mobXYZ, Weight: weight,
		RefCentroid: refC, MobCentroid: mobC,
	}, nil
}

func extractRaw(refModel, mobModel *atom.Model, zones []zone.Zone, opt Options) (refXYZ, mobXYZ []Point3, weight []float64, err error) {
	for _, z := range zones {
		if z.Mode != zone.SEQUENTIAL {
			continue
		}
		refCount := z.Stop1Seq - z.Start1Seq + 1
		mobCount := z.Stop2Seq - z.Start2Seq + 1
		if refCount != mobCount {
			return nil, nil, nil, &MismatchError{z, refCount, mobCount}
		}

		for k := 0; k < refCount; k++ {
			refResIdx := z.Start1Seq - 1 + k
			mobResIdx := z.Start2Seq - 1 + k
			refAtoms := refModel.ResidueAtoms(refResIdx)
			mobAtoms := mobModel.ResidueAtoms(mobResIdx)

			rr, mm, ww, err := extractResiduePair(refAtoms, mobAtoms, opt)
			if err != nil {
				return nil, nil, nil, err
			}
			refXYZ = append(refXYZ, rr...)
			mobXYZ = append(mobXYZ, mm...)
			weight = append(weight, ww...)
		}
	}
	return refXYZ, mobXYZ, weight, nil
}

func findAtom(atoms []atom.Atom, raw string) (atom.Atom, bool) {
	for _, a := range atoms {
		if a.Raw == raw {
			return a, true
		}
	}
	return atom.Atom{}, false
}

func extractResiduePair(refAtoms, mobAtoms []atom.Atom, opt Options) (refXYZ, mobXYZ []Point3, weight []float64, err error) {
	resName := ""
	if len(refAtoms) > 0 {
		resName = refAtoms[0].ResName
	}

	skip := make(map[int]bool)
	for i, ra := range refAtoms {
		if skip[i] {
			continue
		}
		if !opt.Selector.Match(ra.Name) {
			continue
		}
		if ra.Undefined() {
			continue
		}
		if !opt.Gate.acceptRef(ra.BValue) {
			continue
		}

		ma, ok := findAtom(mobAtoms, ra.Raw)
		if !ok {
			if opt.IgnoreMissing {
				continue
			}
			return nil, nil, nil, &MissingAtomError{resName, ra.Name}
		}
		if ma.Undefined() {
			continue
		}
		if !opt.Gate.acceptMob(ma.BValue) {
			continue
		}

		// Symmetric-atom pairing: if ra is the first of an enabled pair
		// and the immediately following reference atom is its partner,
		// and both mobile counterparts exist, pick the arrangement
		// (unswapped or swapped) that minimises summed squared distance.
		if opt.Symmetric != nil && i+1 < len(refAtoms) {
			partnerName, isPair := opt.Symmetric.Partner(resName, ra.Name)
			nextRef := refAtoms[i+1]
			if isPair && nextRef.Name == partnerName && opt.Selector.Match(nextRef.Name) && !nextRef.Undefined() {
				nextMob, nextOK := findAtom(mobAtoms, nextRef.Raw)
				if nextOK && !nextMob.Undefined() {
					unswapped := sqDist(ra, ma) + sqDist(nextRef, nextMob)
					swapped := sqDist(ra, nextMob) + sqDist(nextRef, ma)
					if swapped < unswapped {
						ma, nextMob = nextMob, ma
					}
					refXYZ = append(refXYZ, pt(ra), pt(nextRef))
					mobXYZ = append(mobXYZ, pt(ma), pt(nextMob))
					weight = append(weight, avgB(ra, ma), avgB(nextRef, nextMob))
					skip[i+1] = true
					continue
				}
			}
		}

		refXYZ = append(refXYZ, pt(ra))
		mobXYZ = append(mobXYZ, pt(ma))
		weight = append(weight, avgB(ra, ma))
	}
	return refXYZ, mobXYZ, weight, nil
}

func pt(a atom.Atom) Point3 { return Point3{a.X, a.Y, a.Z} }

func sqDist(a, b atom.Atom) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

func avgB(a, b atom.Atom) float64 { return (a.BValue + b.BValue) / 2 }

func centroid(pts []Point3) Point3 {
	if len(pts) == 0 {
		return Point3{}
	}
	var c Point3
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(pts))
	return Point3{c.X / n, c.Y / n, c.Z / n}
}

// Dist returns the Euclidean distance between two points, exposed for
// the deviation reporter's per-atom output.
func Dist(a, b Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// MinCoordsForFit is the minimum number of coordinate pairs the
// superposer needs to proceed.
const MinCoordsForFit = 3
