package zone

// FromAlignment walks two aligned strings (equal length, '-' marking
// gaps, as produced by align.NeedlemanWunsch) and emits one-residue
// SEQUENTIAL zones for every column where neither side is a gap,
// merging adjacent zones at the end. If distGate is non-nil it is
// consulted for each candidate column with the running 1-based
// sequential positions on both sides; a false veto skips that column
// without advancing the emitted-zone state (the residue counters still
// advance).
func FromAlignment(alignA, alignB string, distGate func(posA, posB int) bool) []Zone {
	var zones []Zone
	posA, posB := 0, 0
	for i := 0; i < len(alignA); i++ {
		a, b := alignA[i], alignB[i]
		if a != '-' {
			posA++
		}
		if b != '-' {
			posB++
		}
		if a == '-' || b == '-' {
			continue
		}
		if distGate != nil && !distGate(posA, posB) {
			continue
		}
		zones = append(zones, Zone{
			Mode:      SEQUENTIAL,
			Start1Seq: posA, Stop1Seq: posA,
			Start2Seq: posB, Stop2Seq: posB,
		})
	}
	return MergeAdjacent(zones)
}

// RemoveDoubleDeletions strips alignment columns where both strings
// hold '-' (gap opposite gap), the cleanup pass performed when reading
// an alignment file before zone construction.
func RemoveDoubleDeletions(alignA, alignB string) (string, string) {
	outA := make([]byte, 0, len(alignA))
	outB := make([]byte, 0, len(alignB))
	for i := 0; i < len(alignA); i++ {
		if alignA[i] == '-' && alignB[i] == '-' {
			continue
		}
		outA = append(outA, alignA[i])
		outB = append(outB, alignB[i])
	}
	return string(outA), string(outB)
}
