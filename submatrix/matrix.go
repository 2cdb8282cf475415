/*
Package submatrix provides amino-acid substitution matrices for the
pairwise aligner. The aligner (package align) only depends on its own
SubstitutionMatrix interface, which *Matrix satisfies; this package is the external
collaborator that loads an actual 24x24 table.

Matrix adapts bebop-poly's align/matrix.SubstitutionMatrix: the same
pairing of a scores grid with an alphabet.Alphabet, generalised from
two independent alphabets to the single symmetric alphabet a mutation
matrix uses, plus a go:embed-backed default table loader in the style
of rbs_calculator's embedded lookup tables.
*/
package submatrix

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ACRMGroup/profit/alphabet"
)

//go:embed data/mdm78.csv
var embeddedData embed.FS

// Matrix is a 24x24 substitution-score lookup over the standard
// amino-acid one-letter alphabet plus B, Z, X and the stop/gap symbol
// '*'. It is what the alignment core consumes through an abstract
// lookup, per spec.
type Matrix struct {
	Alphabet *alphabet.Alphabet
	scores   [][]int
}

// NewMatrix builds a Matrix from an alphabet and a square scores grid,
// dimension-checked the way align/matrix.NewSubstitutionMatrix is.
func NewMatrix(a *alphabet.Alphabet, scores [][]int) (*Matrix, error) {
	n := len(a.Symbols())
	if len(scores) != n {
		return nil, fmt.Errorf("submatrix: scores has %d rows, want %d", len(scores), n)
	}
	for i, row := range scores {
		if len(row) != n {
			return nil, fmt.Errorf("submatrix: scores row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return &Matrix{Alphabet: a, scores: scores}, nil
}

// Score returns the substitution score for residues a and b.
func (m *Matrix) Score(a, b byte) (int, error) {
	i, err := m.Alphabet.Encode(string(a))
	if err != nil {
		return 0, fmt.Errorf("submatrix: %w", err)
	}
	j, err := m.Alphabet.Encode(string(b))
	if err != nil {
		return 0, fmt.Errorf("submatrix: %w", err)
	}
	return m.scores[i][j], nil
}

// Symbols returns the matrix's alphabet in column order.
func (m *Matrix) Symbols() []byte {
	syms := m.Alphabet.Symbols()
	out := make([]byte, len(syms))
	for i, s := range syms {
		out[i] = s[0]
	}
	return out
}

// Default loads the bundled default mutation matrix (an MDM78-style
// 24x24 table). ProFit's original defaults to MDM78; this bundles the
// same shape of table (a symmetric, BLOSUM-scale scoring matrix) so
// the aligner has a concrete default without requiring an external
// file at runtime.
func Default() (*Matrix, error) {
	f, err := embeddedData.Open("data/mdm78.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a substitution matrix from a CSV reader: the first row
// is a header of one-letter symbols, and each subsequent row starts
// with the row symbol followed by its scores against every column.
func Parse(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("submatrix: matrix file has no data rows")
	}
	header := records[0][1:]
	symbols := make([]string, len(header))
	for i, h := range header {
		if len(h) != 1 {
			return nil, fmt.Errorf("submatrix: malformed column symbol %q", h)
		}
		symbols[i] = h
	}

	scores := make([][]int, len(records)-1)
	for r := 1; r < len(records); r++ {
		row := records[r]
		if len(row)-1 != len(symbols) {
			return nil, fmt.Errorf("submatrix: row %d has %d values, want %d", r, len(row)-1, len(symbols))
		}
		vals := make([]int, len(symbols))
		for c := 1; c < len(row); c++ {
			var v int
			if _, err := fmt.Sscanf(row[c], "%d", &v); err != nil {
				return nil, fmt.Errorf("submatrix: row %d col %d: %w", r, c, err)
			}
			vals[c-1] = v
		}
		scores[r-1] = vals
	}

	return NewMatrix(alphabet.NewAlphabet(symbols), scores)
}
