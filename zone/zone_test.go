package zone_test

import (
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/zone"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResidueSpecDotted(t *testing.T) {
	r, err := zone.ParseResidueSpec("A.123B")
	require.NoError(t, err)
	assert.Equal(t, "A", r.Chain)
	assert.Equal(t, 123, r.Num)
	assert.Equal(t, byte('B'), r.Insert)
}

func TestParseResidueSpecImplicitChain(t *testing.T) {
	r, err := zone.ParseResidueSpec("A12")
	require.NoError(t, err)
	assert.Equal(t, "A", r.Chain)
	assert.Equal(t, 12, r.Num)
	assert.Equal(t, byte(' '), r.Insert)
}

func TestParseResidueSpecNoChain(t *testing.T) {
	r, err := zone.ParseResidueSpec("45")
	require.NoError(t, err)
	assert.Equal(t, "", r.Chain)
	assert.Equal(t, 45, r.Num)
}

func TestParseResidueSpecNegativeEscaped(t *testing.T) {
	r, err := zone.ParseResidueSpec(`\-5`)
	require.NoError(t, err)
	assert.Equal(t, -5, r.Num)
}

func TestParseZoneSpecWhole(t *testing.T) {
	z, err := zone.ParseZoneSpec("*", false)
	require.NoError(t, err)
	assert.True(t, z.Whole)
}

func TestParseZoneSpecSymmetric(t *testing.T) {
	z, err := zone.ParseZoneSpec("A10-A20", false)
	require.NoError(t, err)
	assert.Equal(t, "A", z.Chain1)
	assert.Equal(t, 10, z.Start1)
	assert.Equal(t, 20, z.Stop1)
	assert.Equal(t, z.Chain1, z.Chain2)
	assert.Equal(t, z.Start1, z.Start2)
}

func TestParseZoneSpecPerStructureRejectedUnderMulti(t *testing.T) {
	_, err := zone.ParseZoneSpec("A10-A20:B10-B20", true)
	assert.Error(t, err)
}

func newModel(chain string, start, n int) *atom.Model {
	var atoms []atom.Atom
	for i := 0; i < n; i++ {
		atoms = append(atoms, atom.NewAtom(" CA ", "ALA", chain, start+i, ' ', 0, 0, 0, 1, 1, false))
	}
	return atom.New(atoms)
}

func TestToSequentialAndBack(t *testing.T) {
	m1 := newModel("A", 1, 10)
	m2 := newModel("A", 1, 10)

	z := zone.Zone{Chain1: "A", Start1: 2, Stop1: 5, Chain2: "A", Start2: 2, Stop2: 5}
	seq, err := zone.ToSequential(z, m1, m2)
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Start1Seq)
	assert.Equal(t, 5, seq.Stop1Seq)

	back, err := zone.ToResnum(seq, m1, m2)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Start1)
	assert.Equal(t, 5, back.Stop1)
}

func TestMergeAdjacent(t *testing.T) {
	zones := []zone.Zone{
		{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 3, Start2Seq: 1, Stop2Seq: 3},
		{Mode: zone.SEQUENTIAL, Start1Seq: 4, Stop1Seq: 6, Start2Seq: 4, Stop2Seq: 6},
	}
	merged := zone.MergeAdjacent(zones)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Start1Seq)
	assert.Equal(t, 6, merged[0].Stop1Seq)
}

func TestCountOverlapsClean(t *testing.T) {
	zones := []zone.Zone{
		{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 3, Start2Seq: 1, Stop2Seq: 3},
		{Mode: zone.SEQUENTIAL, Start1Seq: 5, Stop1Seq: 8, Start2Seq: 5, Stop2Seq: 8},
	}
	assert.Equal(t, 0, zone.CountOverlaps(zones))
}

func TestCountOverlapsDetected(t *testing.T) {
	zones := []zone.Zone{
		{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 5, Start2Seq: 1, Stop2Seq: 5},
		{Mode: zone.SEQUENTIAL, Start1Seq: 3, Stop1Seq: 8, Start2Seq: 3, Stop2Seq: 8},
	}
	assert.Equal(t, 1, zone.CountOverlaps(zones))
}

func TestFromAlignmentSkipsGaps(t *testing.T) {
	zones := zone.FromAlignment("AG-SHDE", "AGKS-DE", nil)
	var total int
	for _, z := range zones {
		total += z.Stop1Seq - z.Start1Seq + 1
	}
	assert.Greater(t, total, 0)
	for _, z := range zones {
		assert.Equal(t, z.Stop1Seq-z.Start1Seq, z.Stop2Seq-z.Start2Seq)
	}
}

func TestRemoveDoubleDeletions(t *testing.T) {
	a, b := zone.RemoveDoubleDeletions("AG--DE", "AG--KE")
	assert.Equal(t, "AGDE", a)
	assert.Equal(t, "AGKE", b)
}

func TestMergeAdjacentResultShape(t *testing.T) {
	zones := []zone.Zone{
		{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 3, Start2Seq: 1, Stop2Seq: 3},
		{Mode: zone.SEQUENTIAL, Start1Seq: 4, Stop1Seq: 6, Start2Seq: 4, Stop2Seq: 6},
		{Mode: zone.SEQUENTIAL, Start1Seq: 9, Stop1Seq: 11, Start2Seq: 9, Stop2Seq: 11},
	}
	want := []zone.Zone{
		{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 6, Start2Seq: 1, Stop2Seq: 6},
		{Mode: zone.SEQUENTIAL, Start1Seq: 9, Stop1Seq: 11, Start2Seq: 9, Stop2Seq: 11},
	}
	got := zone.MergeAdjacent(zones)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeAdjacent mismatch (-want +got):\n%s", diff)
	}
}

func TestTrimToCommon(t *testing.T) {
	lists := [][]zone.Zone{
		{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 10, Start2Seq: 1, Stop2Seq: 10}},
		{{Mode: zone.SEQUENTIAL, Start1Seq: 3, Stop1Seq: 12, Start2Seq: 1, Stop2Seq: 10}},
	}
	trimmed := zone.TrimToCommon(lists)
	require.Len(t, trimmed, 2)
	for _, l := range trimmed {
		require.Len(t, l, 1)
		assert.Equal(t, 3, l[0].Start1Seq)
		assert.Equal(t, 10, l[0].Stop1Seq)
	}
}
