/*
Package deviation implements the deviation reporter: overall, per-residue
and per-atom RMSD over a fitted coordinate set, with distance-cutoff
gating and the reference-update averaging used by the multi-structure
driver to converge on a consensus reference.

Grounded on spec.md §4.H; gonum.org/v1/gonum/floats supplies the
mean/sum-of-squares helpers, the same small-numeric-helper role it
plays in kortschak-ins/kortschak-loopy (see SPEC_FULL.md §11).
*/
package deviation

import (
	"math"

	"github.com/ACRMGroup/profit/extract"
	"gonum.org/v1/gonum/floats"
)

// ResidueID identifies a residue for per-residue reporting without
// depending on the zone/atom packages, so this package stays a pure
// numeric collaborator.
type ResidueID struct {
	Chain  string
	ResNum int
	Insert byte
}

// PairRecord is one matched reference/mobile coordinate pair plus the
// residue it belongs to, the unit the reporter walks.
type PairRecord struct {
	Residue ResidueID
	Ref     extract.Point3
	Mob     extract.Point3
}

// Overall computes the overall RMSD over pairs passing the distance
// cutoff (if useCutoff is false, cutoff is ignored).
func Overall(pairs []PairRecord, useCutoff bool, cutoff float64) float64 {
	var sq []float64
	for _, p := range pairs {
		d := extract.Dist(p.Ref, p.Mob)
		if useCutoff && d > cutoff {
			continue
		}
		sq = append(sq, d*d)
	}
	if len(sq) == 0 {
		return 0
	}
	return math.Sqrt(floats.Sum(sq) / float64(len(sq)))
}

// ResidueReport is one residue's aggregated RMSD plus its
// cutoff-exclusion status.
type ResidueReport struct {
	Residue  ResidueID
	RMSD     float64
	NumAtoms int
	// Status is "in", "partial" (some pairs over cutoff), or "out" (all
	// pairs over cutoff) when useCutoff is set; "in" unconditionally
	// otherwise.
	Status string
}

// PerResidue groups pairs by residue (in first-seen order) and
// computes each residue's RMSD, applying the same cutoff exclusion as
// Overall but additionally flagging partial/full exclusion.
func PerResidue(pairs []PairRecord, useCutoff bool, cutoff float64) []ResidueReport {
	order := make([]ResidueID, 0)
	groups := make(map[ResidueID][]PairRecord)
	for _, p := range pairs {
		if _, ok := groups[p.Residue]; !ok {
			order = append(order, p.Residue)
		}
		groups[p.Residue] = append(groups[p.Residue], p)
	}

	var out []ResidueReport
	for _, rid := range order {
		group := groups[rid]
		var sq []float64
		inCount, outCount := 0, 0
		for _, p := range group {
			d := extract.Dist(p.Ref, p.Mob)
			within := !useCutoff || d <= cutoff
			if within {
				inCount++
				sq = append(sq, d*d)
			} else {
				outCount++
			}
		}
		status := "in"
		if useCutoff {
			switch {
			case inCount == 0:
				status = "out"
			case outCount > 0:
				status = "partial"
			}
		}
		rmsd := 0.0
		if len(sq) > 0 {
			rmsd = math.Sqrt(floats.Sum(sq) / float64(len(sq)))
		}
		out = append(out, ResidueReport{Residue: rid, RMSD: rmsd, NumAtoms: len(group), Status: status})
	}
	return out
}

// AtomReport is a single pair's distance plus whether a distance
// cutoff, if active, flags it as excluded (but not dropped — per spec,
// per-atom output annotates rather than excludes).
type AtomReport struct {
	Residue  ResidueID
	Distance float64
	Flagged  bool
}

// PerAtom emits every pair's distance, flagging (not excluding) pairs
// over cutoff when useCutoff is set.
func PerAtom(pairs []PairRecord, useCutoff bool, cutoff float64) []AtomReport {
	out := make([]AtomReport, len(pairs))
	for i, p := range pairs {
		d := extract.Dist(p.Ref, p.Mob)
		out[i] = AtomReport{Residue: p.Residue, Distance: d, Flagged: useCutoff && d > cutoff}
	}
	return out
}

// AveragingPolicy selects how reference-update mode folds a new
// mobile coordinate into the running reference.
type AveragingPolicy int

const (
	// Arithmetic averages pairwise: r <- (r+m)/2.
	Arithmetic AveragingPolicy = iota
	// IncrementalWeighted computes r <- ((n-1)r + m)/n given the total
	// number of mobile structures folded in so far (n).
	IncrementalWeighted
)

// UpdateReference folds mob into ref in place per policy. n is only
// used by IncrementalWeighted and must be the 1-based count of mobile
// structures contributing to ref, including this one.
func UpdateReference(ref *extract.Point3, mob extract.Point3, policy AveragingPolicy, n int) {
	switch policy {
	case Arithmetic:
		ref.X = (ref.X + mob.X) / 2
		ref.Y = (ref.Y + mob.Y) / 2
		ref.Z = (ref.Z + mob.Z) / 2
	case IncrementalWeighted:
		if n < 1 {
			n = 1
		}
		nf := float64(n)
		ref.X = (float64(n-1)*ref.X + mob.X) / nf
		ref.Y = (float64(n-1)*ref.Y + mob.Y) / nf
		ref.Z = (float64(n-1)*ref.Z + mob.Z) / nf
	}
}
