package align_test

import (
	"testing"

	"github.com/ACRMGroup/profit/align"
	"github.com/ACRMGroup/profit/submatrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedlemanWunschIdenticalSequences(t *testing.T) {
	m, err := submatrix.Default()
	require.NoError(t, err)

	score, alignA, alignB, err := align.NeedlemanWunsch("AGSHDE", "AGSHDE", m, align.NewScoring())
	require.NoError(t, err)
	assert.Equal(t, "AGSHDE", alignA)
	assert.Equal(t, "AGSHDE", alignB)
	assert.Greater(t, score, 0)
}

func TestNeedlemanWunschInsertion(t *testing.T) {
	m, err := submatrix.Default()
	require.NoError(t, err)

	// mob has an extra residue inserted in the middle relative to ref.
	score, alignA, alignB, err := align.NeedlemanWunsch("AGDE", "AGKDE", m, align.NewScoring())
	require.NoError(t, err)
	assert.Equal(t, len(alignA), len(alignB))
	assert.Contains(t, alignA, "-")
	assert.NotContains(t, alignB, "-")
	_ = score
}

func TestNeedlemanWunschOverhangDoesNotForceCornerAlignment(t *testing.T) {
	m, err := submatrix.Default()
	require.NoError(t, err)

	// seqB is a strict prefix of seqA; the boundary search should let the
	// alignment end early rather than paying gap-open cost to reach (n, m).
	score, alignA, alignB, err := align.NeedlemanWunsch("AGSHDEWW", "AGSHDE", m, align.NewScoring())
	require.NoError(t, err)
	assert.Equal(t, len(alignA), len(alignB))
	assert.Greater(t, score, 0)
}
