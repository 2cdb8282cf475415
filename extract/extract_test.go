package extract_test

import (
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorWildcards(t *testing.T) {
	s := extract.NewSelector("CA")
	assert.True(t, s.Match(" CA "))
	assert.False(t, s.Match(" CB "))

	s2 := extract.NewSelector("C?")
	assert.True(t, s2.Match(" CA "))
	assert.True(t, s2.Match(" CB "))

	s3 := extract.NewSelector("~CA")
	assert.False(t, s3.Match(" CA "))
	assert.True(t, s3.Match(" CB "))

	s4 := extract.NewSelector("*")
	assert.True(t, s4.Match(" N  "))
}

func buildResidue(chain string, resnum int, resName string, atoms []atom.Atom) []atom.Atom {
	for i := range atoms {
		atoms[i].Chain = chain
		atoms[i].ResNum = resnum
		atoms[i].ResName = resName
	}
	return atoms
}

func TestExtractBasicPair(t *testing.T) {
	ref := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 0, 0, 1, 10, false),
		atom.NewAtom(" CA ", "ALA", "A", 2, ' ', 1, 0, 0, 1, 10, false),
	})
	mob := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 1, 0, 1, 10, false),
		atom.NewAtom(" CA ", "ALA", "A", 2, ' ', 1, 1, 0, 1, 10, false),
	})

	zones := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 2, Start2Seq: 1, Stop2Seq: 2}}
	opt := extract.Options{Selector: extract.NewSelector("*")}

	res, err := extract.Extract(ref, mob, zones, opt, nil)
	require.NoError(t, err)
	assert.Len(t, res.RefXYZ, 2)
	assert.Len(t, res.MobXYZ, 2)
}

func TestExtractUndefinedAtomsDropped(t *testing.T) {
	ref := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', atom.Undefined, atom.Undefined, atom.Undefined, 1, 10, false),
	})
	mob := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 0, 0, 1, 10, false),
	})
	zones := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 1, Start2Seq: 1, Stop2Seq: 1}}
	opt := extract.Options{Selector: extract.NewSelector("*")}

	res, err := extract.Extract(ref, mob, zones, opt, nil)
	require.NoError(t, err)
	assert.Len(t, res.RefXYZ, 0)
}

func TestExtractMissingAtomErrorsWithoutIgnoreMissing(t *testing.T) {
	ref := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 0, 0, 1, 10, false),
		atom.NewAtom(" CB ", "ALA", "A", 1, ' ', 0, 0, 1, 1, 10, false),
	})
	mob := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 1, 0, 1, 10, false),
	})
	zones := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 1, Start2Seq: 1, Stop2Seq: 1}}
	opt := extract.Options{Selector: extract.NewSelector("*")}

	_, err := extract.Extract(ref, mob, zones, opt, nil)
	assert.Error(t, err)

	opt.IgnoreMissing = true
	res, err := extract.Extract(ref, mob, zones, opt, nil)
	require.NoError(t, err)
	assert.Len(t, res.RefXYZ, 1)
}

func TestExtractMismatchedZoneCounts(t *testing.T) {
	ref := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 0, 0, 1, 10, false),
		atom.NewAtom(" CA ", "ALA", "A", 2, ' ', 1, 0, 0, 1, 10, false),
	})
	mob := atom.New([]atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 1, 0, 1, 10, false),
	})
	zones := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 2, Start2Seq: 1, Stop2Seq: 1}}
	opt := extract.Options{Selector: extract.NewSelector("*")}

	_, err := extract.Extract(ref, mob, zones, opt, nil)
	assert.Error(t, err)
}

func TestExtractSymmetricSwap(t *testing.T) {
	// ASP OD1/OD2: mobile has the labels swapped relative to reference,
	// so the unswapped sum of squared distances is larger than swapped.
	ref := atom.New([]atom.Atom{
		atom.NewAtom(" OD1", "ASP", "A", 1, ' ', 0, 0, 0, 1, 10, false),
		atom.NewAtom(" OD2", "ASP", "A", 1, ' ', 1, 0, 0, 1, 10, false),
	})
	mob := atom.New([]atom.Atom{
		atom.NewAtom(" OD1", "ASP", "A", 1, ' ', 1, 0, 0, 1, 10, false),
		atom.NewAtom(" OD2", "ASP", "A", 1, ' ', 0, 0, 0, 1, 10, false),
	})
	zones := []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: 1, Start2Seq: 1, Stop2Seq: 1}}
	opt := extract.Options{
		Selector:  extract.NewSelector("*"),
		Symmetric: extract.NewSymmetricTable(extract.DefaultSymmetricPairs()),
	}

	res, err := extract.Extract(ref, mob, zones, opt, nil)
	require.NoError(t, err)
	require.Len(t, res.RefXYZ, 2)
	require.Len(t, res.MobXYZ, 2)
	// Swap-aware pairing should make the per-pair distances no worse
	// than leaving the labels as read.
	d0 := extract.Dist(res.RefXYZ[0], res.MobXYZ[0])
	d1 := extract.Dist(res.RefXYZ[1], res.MobXYZ[1])
	assert.InDelta(t, 0, d0, 1e-9)
	assert.InDelta(t, 0, d1, 1e-9)
}
