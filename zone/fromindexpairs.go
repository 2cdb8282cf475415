package zone

// FromIndexPairs builds SEQUENTIAL zones from the index-pair output of
// align.NeedlemanWunschByDistance: pairA[i]/pairB[i] are 0-based
// indices into the two Cα coordinate lists, or -1 where that side is
// unpaired. gate, if non-nil, is consulted with the 0-based index pair
// and may veto a column (used for the max-equivalence-distance check
// in the iterative refitter). Indices are converted to 1-based
// sequential positions and adjacent zones are merged.
func FromIndexPairs(pairA, pairB []int, gate func(i, j int) bool) []Zone {
	var zones []Zone
	for k := range pairA {
		i, j := pairA[k], pairB[k]
		if i < 0 || j < 0 {
			continue
		}
		if gate != nil && !gate(i, j) {
			continue
		}
		zones = append(zones, Zone{
			Mode:      SEQUENTIAL,
			Start1Seq: i + 1, Stop1Seq: i + 1,
			Start2Seq: j + 1, Stop2Seq: j + 1,
		})
	}
	return MergeAdjacent(zones)
}
