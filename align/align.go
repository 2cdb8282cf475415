/*
Package align implements the pairwise aligner shared by the zone
builder's alignment path and the iterative refitter: a Needleman-Wunsch
global alignment over a dense (L1+1)x(L2+1) dynamic-programming matrix
with affine gap penalties, plus a distance-driven variant used to
re-equivalence Cα atoms by spatial proximity (see distance.go).

Both variants traceback from the highest-scoring cell on the matrix's
last row or last column rather than forcing the path through the
bottom-right corner, so one sequence may overhang the other at the end
without being penalised for it.
*/
package align

import "fmt"

const negInf = -(1 << 30)

type kind int

const (
	kindM kind = iota
	kindIx
	kindIy
)

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// dpMatrices holds the three affine-gap score matrices as flat
// contiguous buffers, per the design note to bound the allocation to
// (L1+1)*(L2+1) in a single buffer rather than the source's
// max(L1,L2)^2 over-allocation.
type dpMatrices struct {
	columnLengthM, rowLengthN int // len(seqA), len(seqB)
	M, Ix, Iy                 []int
}

func newDPMatrices(columnLengthM, rowLengthN int) *dpMatrices {
	size := (columnLengthM + 1) * (rowLengthN + 1)
	return &dpMatrices{
		columnLengthM: columnLengthM,
		rowLengthN:    rowLengthN,
		M:             make([]int, size),
		Ix:            make([]int, size),
		Iy:            make([]int, size),
	}
}

func (d *dpMatrices) idx(columnM, rowN int) int { return columnM*(d.rowLengthN+1) + rowN }

// NeedlemanWunsch performs the sequence-alignment variant: substitution
// scores come from sub, gap penalties from gap. It returns the score
// at the chosen boundary cell and the two aligned strings (equal
// length, '-' marking gaps).
func NeedlemanWunsch(seqA, seqB string, sub SubstitutionMatrix, gap Scoring) (score int, alignA, alignB string, err error) {
	columnLengthM, rowLengthN := len(seqA), len(seqB)
	d := newDPMatrices(columnLengthM, rowLengthN)

	d.M[d.idx(0, 0)] = 0
	d.Ix[d.idx(0, 0)] = negInf
	d.Iy[d.idx(0, 0)] = negInf
	for columnM := 1; columnM <= columnLengthM; columnM++ {
		d.M[d.idx(columnM, 0)] = negInf
		d.Ix[d.idx(columnM, 0)] = -gap.GapOpen - (columnM-1)*gap.GapExt
		d.Iy[d.idx(columnM, 0)] = negInf
	}
	for rowN := 1; rowN <= rowLengthN; rowN++ {
		d.M[d.idx(0, rowN)] = negInf
		d.Iy[d.idx(0, rowN)] = -gap.GapOpen - (rowN-1)*gap.GapExt
		d.Ix[d.idx(0, rowN)] = negInf
	}

	for columnM := 1; columnM <= columnLengthM; columnM++ {
		for rowN := 1; rowN <= rowLengthN; rowN++ {
			s, serr := sub.Score(seqA[columnM-1], seqB[rowN-1])
			if serr != nil {
				return 0, "", "", fmt.Errorf("align: %w", serr)
			}
			diag := d.idx(columnM-1, rowN-1)
			d.M[d.idx(columnM, rowN)] = max3(d.M[diag], d.Ix[diag], d.Iy[diag]) + s

			up := d.idx(columnM-1, rowN)
			d.Ix[d.idx(columnM, rowN)] = max3(d.M[up]-gap.GapOpen, d.Ix[up]-gap.GapExt, d.Iy[up]-gap.GapOpen)

			left := d.idx(columnM, rowN-1)
			d.Iy[d.idx(columnM, rowN)] = max3(d.M[left]-gap.GapOpen, d.Iy[left]-gap.GapExt, d.Ix[left]-gap.GapOpen)
		}
	}

	bi, bj, bkind, bval := boundaryBest(d)
	alignA, alignB, err = traceback(d, seqA, seqB, sub, bi, bj, bkind, gap)
	if err != nil {
		return 0, "", "", err
	}
	return bval, alignA, alignB, nil
}

// boundaryBest searches the last row and last column for the
// highest-scoring cell across all three matrices.
func boundaryBest(d *dpMatrices) (bi, bj int, bk kind, bval int) {
	bval = negInf - 1
	consider := func(i, j int) {
		vals := [3]int{d.M[d.idx(i, j)], d.Ix[d.idx(i, j)], d.Iy[d.idx(i, j)]}
		for k, v := range vals {
			if v > bval {
				bval = v
				bi, bj, bk = i, j, kind(k)
			}
		}
	}
	for j := 0; j <= d.rowLengthN; j++ {
		consider(d.columnLengthM, j)
	}
	for i := 0; i <= d.columnLengthM; i++ {
		consider(i, d.rowLengthN)
	}
	return
}

func traceback(d *dpMatrices, seqA, seqB string, sub SubstitutionMatrix, bi, bj int, bk kind, gap Scoring) (string, string, error) {
	var alignA, alignB []byte
	i, j, k := bi, bj, bk

	for i > 0 || j > 0 {
		switch k {
		case kindM:
			s, err := sub.Score(seqA[i-1], seqB[j-1])
			if err != nil {
				return "", "", fmt.Errorf("align: %w", err)
			}
			cur := d.M[d.idx(i, j)]
			target := cur - s
			diag := d.idx(i-1, j-1)
			switch {
			case target == d.M[diag]:
				k = kindM
			case target == d.Ix[diag]:
				k = kindIx
			default:
				k = kindIy
			}
			alignA = append(alignA, seqA[i-1])
			alignB = append(alignB, seqB[j-1])
			i--
			j--
		case kindIx:
			if j == 0 {
				alignA = append(alignA, seqA[i-1])
				alignB = append(alignB, '-')
				i--
				continue
			}
			cur := d.Ix[d.idx(i, j)]
			up := d.idx(i-1, j)
			switch {
			case cur == d.M[up]-gap.GapOpen:
				k = kindM
			case cur == d.Ix[up]-gap.GapExt:
				k = kindIx
			default:
				k = kindIy
			}
			alignA = append(alignA, seqA[i-1])
			alignB = append(alignB, '-')
			i--
		case kindIy:
			if i == 0 {
				alignB = append(alignB, seqB[j-1])
				alignA = append(alignA, '-')
				j--
				continue
			}
			cur := d.Iy[d.idx(i, j)]
			left := d.idx(i, j-1)
			switch {
			case cur == d.M[left]-gap.GapOpen:
				k = kindM
			case cur == d.Iy[left]-gap.GapExt:
				k = kindIy
			default:
				k = kindIx
			}
			alignA = append(alignA, '-')
			alignB = append(alignB, seqB[j-1])
			j--
		}
	}

	reverseBytes(alignA)
	reverseBytes(alignB)

	// Append any unconsumed overhang at the end (at most one side has
	// leftover, since the boundary search only looks at the last row
	// or last column).
	if bi == d.columnLengthM && bj < d.rowLengthN {
		alignB = append(alignB, seqB[bj:]...)
		for k := 0; k < d.rowLengthN-bj; k++ {
			alignA = append(alignA, '-')
		}
	}
	if bj == d.rowLengthN && bi < d.columnLengthM {
		alignA = append(alignA, seqA[bi:]...)
		for k := 0; k < d.columnLengthM-bi; k++ {
			alignB = append(alignB, '-')
		}
	}

	return string(alignA), string(alignB), nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
