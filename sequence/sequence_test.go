package sequence

import (
	"testing"

	"github.com/ACRMGroup/profit/atom"
	"github.com/stretchr/testify/assert"
)

func twoChainModel() *atom.Model {
	atoms := []atom.Atom{
		atom.NewAtom(" CA ", "ALA", "A", 1, ' ', 0, 0, 0, 1, 1, false),
		atom.NewAtom(" CA ", "GLY", "A", 2, ' ', 1, 0, 0, 1, 1, false),
		atom.NewAtom(" CA ", "SER", "B", 1, ' ', 0, 1, 0, 1, 1, false),
	}
	return atom.New(atoms)
}

func TestExtract(t *testing.T) {
	m := twoChainModel()
	assert.Equal(t, "AG*S", Extract(m))
}

func TestExtractChain(t *testing.T) {
	m := twoChainModel()
	assert.Equal(t, "AG", ExtractChain(m, "A"))
	assert.Equal(t, "S", ExtractChain(m, "B"))
}

func TestStripChainBreaks(t *testing.T) {
	assert.Equal(t, "AGS", StripChainBreaks("AG*S"))
}

func TestChainBreaksToGaps(t *testing.T) {
	assert.Equal(t, "AG-S", ChainBreaksToGaps("AG*S"))
}

func TestDoubleDeletionRemoval(t *testing.T) {
	// scenario 5 from spec.md: "AB--CD" / "AE--FG" -> "ABCD" / "AEFG"
	ref, mob := "AB--CD", "AE--FG"
	var rOut, mOut []byte
	for i := 0; i < len(ref); i++ {
		if ref[i] == Gap && mob[i] == Gap {
			continue
		}
		rOut = append(rOut, ref[i])
		mOut = append(mOut, mob[i])
	}
	assert.Equal(t, "ABCD", string(rOut))
	assert.Equal(t, "AEFG", string(mOut))
}
