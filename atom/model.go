package atom

// Model is a read-only, ordered collection of atoms. It is the Atom
// Model of the fitting engine: callers never mutate a Model in place —
// a fit produces a new slice of fitted atoms (see superpose.Result).
type Model struct {
	atoms []Atom
	// residueStart[i] is the index into atoms of the first atom of the
	// i-th residue; residueStart has len(residues)+1 entries, the last
	// being len(atoms), so residue i occupies atoms[residueStart[i]:residueStart[i+1]].
	residueStart []int
}

// New builds a Model from atoms already in file order. Residue
// boundaries are detected by a change of (chain, resnum, insert).
func New(atoms []Atom) *Model {
	m := &Model{atoms: atoms}
	m.indexResidues()
	return m
}

func (m *Model) indexResidues() {
	m.residueStart = m.residueStart[:0]
	if len(m.atoms) == 0 {
		return
	}
	m.residueStart = append(m.residueStart, 0)
	prev := m.atoms[0].residueKey()
	for i := 1; i < len(m.atoms); i++ {
		key := m.atoms[i].residueKey()
		if key != prev {
			m.residueStart = append(m.residueStart, i)
			prev = key
		}
	}
	m.residueStart = append(m.residueStart, len(m.atoms))
}

// Atoms returns the full atom slice in input order. Callers must treat
// it as read-only.
func (m *Model) Atoms() []Atom { return m.atoms }

// NumResidues returns the number of residues (maximal contiguous runs
// sharing chain/resnum/insert).
func (m *Model) NumResidues() int {
	if len(m.residueStart) == 0 {
		return 0
	}
	return len(m.residueStart) - 1
}

// ResidueAtoms returns the atoms of the i-th residue (0-based, in
// input order).
func (m *Model) ResidueAtoms(i int) []Atom {
	return m.atoms[m.residueStart[i]:m.residueStart[i+1]]
}

// ResidueKeyAt returns the (chain, resnum, insert) of the i-th residue.
func (m *Model) ResidueKeyAt(i int) ResidueKey {
	return m.atoms[m.residueStart[i]].residueKey()
}

// FindResidue returns the sequential (0-based) residue index for a
// (chain, resnum, insert) triple, or ok=false if no residue matches.
func (m *Model) FindResidue(key ResidueKey) (index int, ok bool) {
	for i := 0; i < m.NumResidues(); i++ {
		if m.ResidueKeyAt(i) == key {
			return i, true
		}
	}
	return 0, false
}

// ChainBreak reports whether residue i begins a new chain relative to
// residue i-1. It returns false for i==0, so a walk that starts at the
// first residue marks no break before it.
func (m *Model) ChainBreak(i int) bool {
	if i == 0 {
		return false
	}
	return m.ResidueKeyAt(i).Chain != m.ResidueKeyAt(i-1).Chain
}

// Chains returns the distinct chain labels in input order.
func (m *Model) Chains() []string {
	var chains []string
	seen := map[string]bool{}
	for i := 0; i < m.NumResidues(); i++ {
		c := m.ResidueKeyAt(i).Chain
		if !seen[c] {
			seen[c] = true
			chains = append(chains, c)
		}
	}
	return chains
}
