/*
Package superpose implements weighted Kabsch/McLachlan least-squares
superposition: given centroid-subtracted reference and mobile
coordinate arrays (and optional per-pair weights), compute the proper
rotation matrix minimising the weighted sum of squared distances, then
apply it to a full copy of the original mobile atom list.

The quaternion/eigen-decomposition approach is grounded on the
computational-biology use of gonum.org/v1/gonum/mat for exactly this
kind of dense symmetric eigen-decomposition (see
_examples/other_examples manifests for kortschak-ins and
kortschak-loopy, both of which depend on gonum.org/v1/gonum); the
teacher repo itself has no linear-algebra dependency, so this is the
domain-stack addition SPEC_FULL.md calls for.
*/
package superpose

import (
	"fmt"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/extract"
	"gonum.org/v1/gonum/mat"
)

// DegenerateFitError reports a fit that could not produce a stable
// rotation (fewer than extract.MinCoordsForFit coordinate pairs, or a
// coincident/degenerate configuration gonum's eigen solver rejects).
type DegenerateFitError struct {
	NumCoords int
	Msg       string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("superpose: degenerate fit (%d coordinate pairs): %s", e.NumCoords, e.Msg)
}

// Rotation is the 3x3 proper rotation matrix (det = +1) that best
// superposes mobile onto reference.
type Rotation [3][3]float64

// Result is everything the downstream reporter needs: the rotation
// used, the two centroids it was computed relative to, and the full
// fitted mobile atom list (translated/rotated/translated back).
type Result struct {
	R           Rotation
	RefCentroid extract.Point3
	MobCentroid extract.Point3
	Fitted      []atom.Atom
}

// Fit computes the weighted Kabsch rotation from centroid-subtracted
// ref/mob arrays (weights may be nil for an unweighted fit) and
// applies it to allAtoms (the mobile structure's full, unsubsetted
// atom list) to produce the fitted coordinate set.
func Fit(ref, mob []extract.Point3, weights []float64, refCentroid, mobCentroid extract.Point3, allAtoms []atom.Atom) (*Result, error) {
	if len(ref) < extract.MinCoordsForFit {
		return nil, &DegenerateFitError{len(ref), "fewer than 3 coordinate pairs"}
	}
	if len(ref) != len(mob) {
		return nil, &DegenerateFitError{len(ref), "ref/mob length mismatch"}
	}

	h := crossCovariance(ref, mob, weights)
	r, err := rotationFromCovariance(h)
	if err != nil {
		return nil, err
	}

	fitted := make([]atom.Atom, len(allAtoms))
	for i, a := range allAtoms {
		fitted[i] = a
		if a.Undefined() {
			continue
		}
		x := a.X - mobCentroid.X
		y := a.Y - mobCentroid.Y
		z := a.Z - mobCentroid.Z
		fitted[i].X = r[0][0]*x+r[0][1]*y+r[0][2]*z + refCentroid.X
		fitted[i].Y = r[1][0]*x+r[1][1]*y+r[1][2]*z + refCentroid.Y
		fitted[i].Z = r[2][0]*x+r[2][1]*y+r[2][2]*z + refCentroid.Z
	}

	return &Result{R: r, RefCentroid: refCentroid, MobCentroid: mobCentroid, Fitted: fitted}, nil
}

// crossCovariance builds H = Σ w_i * mob_i ⊗ ref_i.
func crossCovariance(ref, mob []extract.Point3, weights []float64) *mat.Dense {
	h := mat.NewDense(3, 3, nil)
	for i := range ref {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		m := [3]float64{mob[i].X, mob[i].Y, mob[i].Z}
		r := [3]float64{ref[i].X, ref[i].Y, ref[i].Z}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				h.Set(a, b, h.At(a, b)+w*m[a]*r[b])
			}
		}
	}
	return h
}

// rotationFromCovariance builds the symmetric 4x4 quaternion key
// matrix from the 3x3 cross-covariance H (the standard Kabsch/Horn
// construction) and takes the eigenvector of its largest eigenvalue as
// the optimal rotation quaternion, converting it to a 3x3 rotation
// matrix.
func rotationFromCovariance(h *mat.Dense) (Rotation, error) {
	sxx, sxy, sxz := h.At(0, 0), h.At(0, 1), h.At(0, 2)
	syx, syy, syz := h.At(1, 0), h.At(1, 1), h.At(1, 2)
	szx, szy, szz := h.At(2, 0), h.At(2, 1), h.At(2, 2)

	k := mat.NewSymDense(4, []float64{
		sxx + syy + szz, syz - szy, szx - sxz, sxy - syx,
		0, sxx - syy - szz, sxy + syx, szx + sxz,
		0, 0, -sxx + syy - szz, syz + szy,
		0, 0, 0, -sxx - syy + szz,
	})

	var eig mat.EigenSym
	ok := eig.Factorize(k, true)
	if !ok {
		return Rotation{}, &DegenerateFitError{0, "eigen decomposition of the quaternion key matrix failed to converge"}
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	best := 0
	for i := 1; i < 4; i++ {
		if values[i] > values[best] {
			best = i
		}
	}

	q0, q1, q2, q3 := vectors.At(0, best), vectors.At(1, best), vectors.At(2, best), vectors.At(3, best)

	return Rotation{
		{q0*q0 + q1*q1 - q2*q2 - q3*q3, 2 * (q1*q2 - q0*q3), 2 * (q1*q3 + q0*q2)},
		{2 * (q1*q2 + q0*q3), q0*q0 - q1*q1 + q2*q2 - q3*q3, 2 * (q2*q3 - q0*q1)},
		{2 * (q1*q3 - q0*q2), 2 * (q2*q3 + q0*q1), q0*q0 - q1*q1 - q2*q2 + q3*q3},
	}, nil
}
