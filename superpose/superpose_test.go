package superpose_test

import (
	"math"
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/superpose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePoints() []extract.Point3 {
	return []extract.Point3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	}
}

func TestFitIdenticalPointsYieldsIdentityRotation(t *testing.T) {
	pts := samplePoints()
	atoms := make([]atom.Atom, len(pts))
	for i, p := range pts {
		atoms[i] = atom.NewAtom(" CA ", "ALA", "A", i+1, ' ', p.X, p.Y, p.Z, 1, 1, false)
	}

	res, err := superpose.Fit(pts, pts, nil, extract.Point3{}, extract.Point3{}, atoms)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, res.R[i][j], 1e-6)
		}
	}
}

func rotateZ90(p extract.Point3) extract.Point3 {
	return extract.Point3{-p.Y, p.X, p.Z}
}

func TestFitRecoversKnownRotation(t *testing.T) {
	ref := samplePoints()
	mob := make([]extract.Point3, len(ref))
	for i, p := range ref {
		mob[i] = rotateZ90(p)
	}
	atoms := make([]atom.Atom, len(mob))
	for i, p := range mob {
		atoms[i] = atom.NewAtom(" CA ", "ALA", "A", i+1, ' ', p.X, p.Y, p.Z, 1, 1, false)
	}

	res, err := superpose.Fit(ref, mob, nil, extract.Point3{}, extract.Point3{}, atoms)
	require.NoError(t, err)

	for i, p := range mob {
		fx := res.R[0][0]*p.X + res.R[0][1]*p.Y + res.R[0][2]*p.Z
		fy := res.R[1][0]*p.X + res.R[1][1]*p.Y + res.R[1][2]*p.Z
		fz := res.R[2][0]*p.X + res.R[2][1]*p.Y + res.R[2][2]*p.Z
		d := math.Sqrt((fx-ref[i].X)*(fx-ref[i].X) + (fy-ref[i].Y)*(fy-ref[i].Y) + (fz-ref[i].Z)*(fz-ref[i].Z))
		assert.Less(t, d, 1e-5)
	}
}

func TestFitRejectsTooFewCoords(t *testing.T) {
	pts := []extract.Point3{{0, 0, 0}, {1, 0, 0}}
	_, err := superpose.Fit(pts, pts, nil, extract.Point3{}, extract.Point3{}, nil)
	assert.Error(t, err)
}
