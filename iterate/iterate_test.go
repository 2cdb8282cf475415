package iterate_test

import (
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/iterate"
	"github.com/ACRMGroup/profit/submatrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallChain(chain string, n int, offset float64) *atom.Model {
	var atoms []atom.Atom
	for i := 0; i < n; i++ {
		x := float64(i) + offset
		atoms = append(atoms, atom.NewAtom(" N  ", "ALA", chain, i+1, ' ', x-0.3, 0, 0, 1, 1, false))
		atoms = append(atoms, atom.NewAtom(" CA ", "ALA", chain, i+1, ' ', x, 0, 0, 1, 1, false))
		atoms = append(atoms, atom.NewAtom(" C  ", "ALA", chain, i+1, ' ', x+0.3, 0, 0, 1, 1, false))
	}
	return atom.New(atoms)
}

func TestRunConvergesOnIdenticalStructures(t *testing.T) {
	ref := smallChain("A", 8, 0)
	mob := smallChain("A", 8, 0)

	sub, err := submatrix.Default()
	require.NoError(t, err)

	res, err := iterate.Run(ref, mob, iterate.Config{Sub: sub})
	require.NoError(t, err)
	assert.Less(t, res.RMSD, 0.1)
	assert.Greater(t, res.Iterations, 0)
}

func TestDefaultsFillsZeroFields(t *testing.T) {
	cfg := iterate.Defaults(iterate.Config{})
	assert.InDelta(t, 9.0, cfg.MaxEquivDistSq, 1e-9)
	assert.InDelta(t, 0.01, cfg.IterStop, 1e-9)
	assert.Equal(t, 1000, cfg.MaxIter)
}
