package deviation_test

import (
	"testing"

	"github.com/ACRMGroup/profit/deviation"
	"github.com/ACRMGroup/profit/extract"
	"github.com/stretchr/testify/assert"
)

func TestOverallZeroForIdenticalPairs(t *testing.T) {
	pairs := []deviation.PairRecord{
		{Residue: deviation.ResidueID{Chain: "A", ResNum: 1}, Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{0, 0, 0}},
		{Residue: deviation.ResidueID{Chain: "A", ResNum: 2}, Ref: extract.Point3{1, 0, 0}, Mob: extract.Point3{1, 0, 0}},
	}
	assert.Equal(t, 0.0, deviation.Overall(pairs, false, 0))
}

func TestOverallNonZero(t *testing.T) {
	pairs := []deviation.PairRecord{
		{Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{1, 0, 0}},
		{Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{0, 1, 0}},
	}
	assert.InDelta(t, 1.0, deviation.Overall(pairs, false, 0), 1e-9)
}

func TestOverallCutoffExcludes(t *testing.T) {
	pairs := []deviation.PairRecord{
		{Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{0.1, 0, 0}},
		{Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{10, 0, 0}},
	}
	rms := deviation.Overall(pairs, true, 1.0)
	assert.InDelta(t, 0.1, rms, 1e-9)
}

func TestPerResidueStatusFlags(t *testing.T) {
	rid := deviation.ResidueID{Chain: "A", ResNum: 1}
	pairs := []deviation.PairRecord{
		{Residue: rid, Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{0.1, 0, 0}},
		{Residue: rid, Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{10, 0, 0}},
	}
	reports := deviation.PerResidue(pairs, true, 1.0)
	assert.Len(t, reports, 1)
	assert.Equal(t, "partial", reports[0].Status)
}

func TestPerAtomFlagsWithoutExcluding(t *testing.T) {
	pairs := []deviation.PairRecord{
		{Ref: extract.Point3{0, 0, 0}, Mob: extract.Point3{10, 0, 0}},
	}
	reports := deviation.PerAtom(pairs, true, 1.0)
	assert.Len(t, reports, 1)
	assert.True(t, reports[0].Flagged)
}

func TestUpdateReferenceArithmetic(t *testing.T) {
	ref := extract.Point3{0, 0, 0}
	deviation.UpdateReference(&ref, extract.Point3{2, 0, 0}, deviation.Arithmetic, 0)
	assert.InDelta(t, 1.0, ref.X, 1e-9)
}

func TestUpdateReferenceIncrementalWeighted(t *testing.T) {
	ref := extract.Point3{0, 0, 0}
	deviation.UpdateReference(&ref, extract.Point3{3, 0, 0}, deviation.IncrementalWeighted, 3)
	// ((3-1)*0 + 3) / 3 = 1
	assert.InDelta(t, 1.0, ref.X, 1e-9)
}
