package extract

// SymmetricPair names a residue's pair of chemically-equivalent atom
// names whose reference/mobile assignment may need swapping to
// minimise squared distance (e.g. ASP OD1/OD2, whose IUPAC numbering
// is arbitrary for a freely-rotating carboxylate).
type SymmetricPair struct {
	ResName    string
	Atom1      string
	Atom2      string
	DefaultOn  bool
}

// DefaultSymmetricPairs is the table from
// original_source/fitting.c:SetSymmetricalAtomPAirs: ARG, ASP, GLU,
// PHE and TYR pairs default enabled; ASN, GLN, VAL and LEU pairs exist
// but default disabled (their "symmetry" is a matter of rotamer
// convention rather than true chemical equivalence).
func DefaultSymmetricPairs() []SymmetricPair {
	return []SymmetricPair{
		{"ARG", "NH1", "NH2", true},
		{"ASP", "OD1", "OD2", true},
		{"GLU", "OE1", "OE2", true},
		{"PHE", "CD1", "CD2", true},
		{"PHE", "CE1", "CE2", true},
		{"TYR", "CD1", "CD2", true},
		{"TYR", "CE1", "CE2", true},
		{"ASN", "OD1", "ND2", false},
		{"GLN", "OE1", "NE2", false},
		{"VAL", "CG1", "CG2", false},
		{"LEU", "CD1", "CD2", false},
	}
}

// SymmetricTable indexes DefaultSymmetricPairs (or a caller-supplied
// variant) for fast lookup by (resname, atom1), returning whether an
// enabled pair exists and the partner atom name.
type SymmetricTable struct {
	pairs []SymmetricPair
}

// NewSymmetricTable builds a table, enabling/disabling entries per the
// caller's pairs slice (Enabled entries only; pass
// DefaultSymmetricPairs() filtered to DefaultOn for ProFit's default
// behaviour, or the full table with bespoke enablement).
func NewSymmetricTable(pairs []SymmetricPair) *SymmetricTable {
	return &SymmetricTable{pairs: pairs}
}

// Partner returns the paired atom name for (resName, atomName) if an
// enabled symmetric pair names it as the first atom, and ok=true.
func (t *SymmetricTable) Partner(resName, atomName string) (partner string, ok bool) {
	for _, p := range t.pairs {
		if !p.DefaultOn {
			continue
		}
		if p.ResName == resName && p.Atom1 == atomName {
			return p.Atom2, true
		}
	}
	return "", false
}
