package align

import "math"

// tinyDistance floors the score denominator the way ProFit's original
// re-equivalencing pass does, so two near-coincident Cα atoms don't
// produce an unbounded score.
const tinyDistance = 0.01

// Point3 is a minimal coordinate carrier; the distance aligner only
// needs Cα positions, not a full atom.Atom.
type Point3 struct {
	X, Y, Z float64
}

func dist(a, b Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// NeedlemanWunschByDistance re-equivalences two already-superposed Cα
// chains by spatial proximity rather than sequence identity, for the
// iterative refitter's re-equivalencing step. Its substitution score
// for a pair of positions is 1/max(tinyDistance, distance between
// them) so nearby atoms score highly regardless of residue type; gap
// penalties come from the same affine-gap Scoring as the sequence
// variant.
//
// The DP recurrence is the standard affine-gap three-matrix fill (the
// same one NeedlemanWunsch uses), not the variant-2 fill ProFit's
// original describes for distance-based re-equivalencing, where each
// cell inherits from any diagonal predecessor and additionally scans
// for the best off-diagonal candidate in its row/column (an O(L^3)
// fill). This is a deliberate substitution, not an oversight: the
// affine-gap fill re-equivalences by proximity just as the original
// does and is O(L^2) instead of O(L^3), which matters since this runs
// once per refit iteration. If exact parity with the original's
// traceback is ever required, replace this fill with the row/column
// scan described above rather than reusing the sequence aligner's DP.
//
// The DP recurrence is the standard affine-gap one, but the match
// score at (i, j) is computed directly from coordinates rather than
// looked up in a substitution matrix, so this does not implement
// SubstitutionMatrix and is not interchangeable with NeedlemanWunsch.
func NeedlemanWunschByDistance(a, b []Point3, gap Scoring) (score float64, pairA, pairB []int, err error) {
	columnLengthM, rowLengthN := len(a), len(b)

	m := make([]float64, (columnLengthM+1)*(rowLengthN+1))
	ix := make([]float64, (columnLengthM+1)*(rowLengthN+1))
	iy := make([]float64, (columnLengthM+1)*(rowLengthN+1))
	idx := func(i, j int) int { return i*(rowLengthN+1) + j }

	const negInfF = -1e18
	m[idx(0, 0)] = 0
	ix[idx(0, 0)] = negInfF
	iy[idx(0, 0)] = negInfF
	for i := 1; i <= columnLengthM; i++ {
		m[idx(i, 0)] = negInfF
		ix[idx(i, 0)] = -float64(gap.GapOpen) - float64(i-1)*float64(gap.GapExt)
		iy[idx(i, 0)] = negInfF
	}
	for j := 1; j <= rowLengthN; j++ {
		m[idx(0, j)] = negInfF
		iy[idx(0, j)] = -float64(gap.GapOpen) - float64(j-1)*float64(gap.GapExt)
		ix[idx(0, j)] = negInfF
	}

	max3f := func(x, y, z float64) float64 {
		v := x
		if y > v {
			v = y
		}
		if z > v {
			v = z
		}
		return v
	}

	for i := 1; i <= columnLengthM; i++ {
		for j := 1; j <= rowLengthN; j++ {
			d := dist(a[i-1], b[j-1])
			if d < tinyDistance {
				d = tinyDistance
			}
			s := 1.0 / d

			diag := idx(i-1, j-1)
			m[idx(i, j)] = max3f(m[diag], ix[diag], iy[diag]) + s

			up := idx(i-1, j)
			ix[idx(i, j)] = max3f(m[up]-float64(gap.GapOpen), ix[up]-float64(gap.GapExt), iy[up]-float64(gap.GapOpen))

			left := idx(i, j-1)
			iy[idx(i, j)] = max3f(m[left]-float64(gap.GapOpen), iy[left]-float64(gap.GapExt), ix[left]-float64(gap.GapOpen))
		}
	}

	// Boundary search, as with the sequence variant: the best cell on
	// the last row or last column, searched literally rather than via a
	// prefix-max index, since zones are small (tens to low hundreds of
	// residues) and this runs once per refit iteration.
	bestVal := negInfF - 1
	var bi, bj int
	var bkind kind
	consider := func(i, j int) {
		vals := [3]float64{m[idx(i, j)], ix[idx(i, j)], iy[idx(i, j)]}
		for k, v := range vals {
			if v > bestVal {
				bestVal = v
				bi, bj, bkind = i, j, kind(k)
			}
		}
	}
	for j := 0; j <= rowLengthN; j++ {
		consider(columnLengthM, j)
	}
	for i := 0; i <= columnLengthM; i++ {
		consider(i, rowLengthN)
	}

	pairA, pairB = tracebackDistance(a, b, m, ix, iy, idx, bi, bj, bkind, gap)
	return bestVal, pairA, pairB, nil
}

// tracebackDistance mirrors align.go's traceback but walks pair
// indices (-1 marking an unpaired/gapped position) instead of bytes,
// since the distance aligner's output feeds directly into the
// superposer's coordinate lists rather than into printable sequences.
func tracebackDistance(a, b []Point3, m, ix, iy []float64, idx func(int, int) int, bi, bj int, bk kind, gap Scoring) (pairA, pairB []int) {
	i, j, k := bi, bj, bk
	const eps = 1e-9
	approxEqual := func(x, y float64) bool {
		d := x - y
		if d < 0 {
			d = -d
		}
		return d < eps
	}

	for i > 0 || j > 0 {
		switch k {
		case kindM:
			d := dist(a[i-1], b[j-1])
			if d < tinyDistance {
				d = tinyDistance
			}
			s := 1.0 / d
			cur := m[idx(i, j)]
			target := cur - s
			diag := idx(i-1, j-1)
			switch {
			case approxEqual(target, m[diag]):
				k = kindM
			case approxEqual(target, ix[diag]):
				k = kindIx
			default:
				k = kindIy
			}
			pairA = append(pairA, i-1)
			pairB = append(pairB, j-1)
			i--
			j--
		case kindIx:
			if j == 0 {
				pairA = append(pairA, i-1)
				pairB = append(pairB, -1)
				i--
				continue
			}
			cur := ix[idx(i, j)]
			up := idx(i-1, j)
			switch {
			case approxEqual(cur, m[up]-float64(gap.GapOpen)):
				k = kindM
			case approxEqual(cur, ix[up]-float64(gap.GapExt)):
				k = kindIx
			default:
				k = kindIy
			}
			pairA = append(pairA, i-1)
			pairB = append(pairB, -1)
			i--
		case kindIy:
			if i == 0 {
				pairB = append(pairB, j-1)
				pairA = append(pairA, -1)
				j--
				continue
			}
			cur := iy[idx(i, j)]
			left := idx(i, j-1)
			switch {
			case approxEqual(cur, m[left]-float64(gap.GapOpen)):
				k = kindM
			case approxEqual(cur, iy[left]-float64(gap.GapExt)):
				k = kindIy
			default:
				k = kindIx
			}
			pairA = append(pairA, -1)
			pairB = append(pairB, j-1)
			j--
		}
	}

	for l, r := 0, len(pairA)-1; l < r; l, r = l+1, r-1 {
		pairA[l], pairA[r] = pairA[r], pairA[l]
	}
	for l, r := 0, len(pairB)-1; l < r; l, r = l+1, r-1 {
		pairB[l], pairB[r] = pairB[r], pairB[l]
	}

	columnLengthM, rowLengthN := len(a), len(b)
	if bi == columnLengthM && bj < rowLengthN {
		for jj := bj; jj < rowLengthN; jj++ {
			pairA = append(pairA, -1)
			pairB = append(pairB, jj)
		}
	}
	if bj == rowLengthN && bi < columnLengthM {
		for ii := bi; ii < columnLengthM; ii++ {
			pairA = append(pairA, ii)
			pairB = append(pairB, -1)
		}
	}

	return pairA, pairB
}
