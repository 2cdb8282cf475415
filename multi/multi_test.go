package multi_test

import (
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/multi"
	"github.com/ACRMGroup/profit/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(n int, offset float64) *atom.Model {
	var atoms []atom.Atom
	for i := 0; i < n; i++ {
		atoms = append(atoms, atom.NewAtom(" CA ", "ALA", "A", i+1, ' ', float64(i)+offset, 0, 0, 1, 1, false))
	}
	return atom.New(atoms)
}

func wholeZone(n int) []zone.Zone {
	return []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: n, Start2Seq: 1, Stop2Seq: n}}
}

func TestDriverRunProducesResultPerMobile(t *testing.T) {
	ref := chain(6, 0)
	m1 := chain(6, 0)
	m2 := chain(6, 0.01)

	d := multi.NewDriver([]multi.Mobile{
		{Model: m1, Zones: wholeZone(6)},
		{Model: m2, Zones: wholeZone(6)},
	}, extract.Options{Selector: extract.NewSelector("*")}, 0.001, 5)

	results, err := d.Run(ref)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestAllVsAllSymmetricMatrix(t *testing.T) {
	models := []*atom.Model{chain(6, 0), chain(6, 0.01), chain(6, 0.02)}
	zones := [][]zone.Zone{wholeZone(6), wholeZone(6), wholeZone(6)}

	m, err := multi.AllVsAll(models, zones, extract.Options{Selector: extract.NewSelector("*")})
	require.NoError(t, err)
	assert.InDelta(t, m[0][1], m[1][0], 1e-9)
	assert.Equal(t, 0.0, m[0][0])
}

func TestAutoSelectReferencePicksSmallestRowSum(t *testing.T) {
	matrix := [][]float64{
		{0, 1, 5},
		{1, 0, 5},
		{5, 5, 0},
	}
	assert.Equal(t, 0, multi.AutoSelectReference(matrix))
}

func TestOrderFitSortsAscending(t *testing.T) {
	matrix := [][]float64{
		{0, 3, 1, 2},
	}
	matrix = append(matrix, []float64{3, 0, 0, 0}, []float64{1, 0, 0, 0}, []float64{2, 0, 0, 0})
	order := multi.OrderFit(matrix, 0)
	assert.Equal(t, []int{2, 3, 1}, order)
}
