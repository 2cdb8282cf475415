package align

// Scoring holds the affine-gap parameters shared by both aligner
// variants: a one-off penalty to open a gap and a smaller penalty to
// extend one. Defaults match ProFit's: open=10, ext=2.
type Scoring struct {
	GapOpen int
	GapExt  int
}

// NewScoring returns the default affine-gap scoring.
func NewScoring() Scoring {
	return Scoring{GapOpen: 10, GapExt: 2}
}

// SubstitutionMatrix is the abstract lookup the sequence-alignment
// variant reads scores from. submatrix.Matrix satisfies this; the
// aligner never depends on how the matrix was loaded.
type SubstitutionMatrix interface {
	Score(a, b byte) (int, error)
}
