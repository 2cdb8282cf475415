/*
Package sequence derives one-letter amino-acid sequences from an
atom.Model, for consumption by the pairwise aligner and the
zone-from-alignment builder.
*/
package sequence

import "github.com/ACRMGroup/profit/atom"

// ChainBreak is the literal character inserted between chains when a
// sequence is extracted across chain boundaries.
const ChainBreak = '*'

// Gap is the alignment gap character.
const Gap = '-'

// Unknown is emitted for a residue name not found in the three-to-one
// table.
const Unknown = 'X'

var threeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLN": 'Q', "GLU": 'E', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"MSE": 'M', "SEC": 'U', "PYL": 'O',
}

// OneLetterCode returns the one-letter code for a 3-character residue
// name, or Unknown if the residue is not a recognised amino acid.
func OneLetterCode(resName string) byte {
	if c, ok := threeToOne[resName]; ok {
		return c
	}
	return Unknown
}

// Extract walks m in input order and returns one character per
// residue, inserting ChainBreak wherever the chain label changes.
func Extract(m *atom.Model) string {
	n := m.NumResidues()
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		if m.ChainBreak(i) {
			out = append(out, ChainBreak)
		}
		atoms := m.ResidueAtoms(i)
		out = append(out, OneLetterCode(atoms[0].ResName))
	}
	return string(out)
}

// ExtractChain returns the one-letter sequence of a single chain, with
// no chain-break markers (there is only one chain).
func ExtractChain(m *atom.Model, chain string) string {
	n := m.NumResidues()
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		if m.ResidueKeyAt(i).Chain != chain {
			continue
		}
		atoms := m.ResidueAtoms(i)
		out = append(out, OneLetterCode(atoms[0].ResName))
	}
	return string(out)
}

// StripChainBreaks removes all ChainBreak characters from s.
func StripChainBreaks(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ChainBreak {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ChainBreaksToGaps replaces every ChainBreak with Gap, used when
// feeding a sequence with chain markers into an aligner that only
// understands the gap character.
func ChainBreaksToGaps(s string) string {
	out := []byte(s)
	for i := range out {
		if out[i] == ChainBreak {
			out[i] = Gap
		}
	}
	return string(out)
}
