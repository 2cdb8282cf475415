package submatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsAndScores(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	same, err := m.Score('A', 'A')
	require.NoError(t, err)
	assert.Equal(t, 4, same)

	diff, err := m.Score('W', 'G')
	require.NoError(t, err)
	assert.Equal(t, -2, diff)

	_, err = m.Score('A', 'z')
	assert.Error(t, err)
}

func TestSymbolsIncludesCoreAlphabet(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	symbols := string(m.Symbols())
	for _, want := range "ACDEFGHIKLMNPQRSTVWY" {
		assert.Contains(t, symbols, string(want))
	}
}
