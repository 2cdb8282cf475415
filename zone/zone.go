/*
Package zone implements the zone algebra shared by every command that
names a residue range: parsing a residue or zone spec out of user
text, converting between RESNUM and SEQUENTIAL numbering against a
concrete atom.Model, sorting, merging adjacent zones to a fixed point,
overlap detection, trimming N mobile zone lists to a common reference
range, and building a zone list from a pairwise alignment.

Grounded on bebop-poly's io/genbank parsing style for the typed
ParseError, generalised from genbank's line-oriented grammar to
ProFit's residue-spec grammar (original_source/src/ParseRes.c).
*/
package zone

import (
	"fmt"

	"github.com/ACRMGroup/profit/atom"
)

// Mode is a zone's numbering scheme.
type Mode int

const (
	RESNUM Mode = iota
	SEQUENTIAL
)

func (m Mode) String() string {
	if m == SEQUENTIAL {
		return "SEQUENTIAL"
	}
	return "RESNUM"
}

// ResidueSpec is a parsed `[chain[.]]num[insert]` residue address.
type ResidueSpec struct {
	Chain  string
	Num    int
	Insert byte
}

// Zone is a pair of equivalenced residue ranges across two structures.
// In RESNUM mode Start/Stop fields carry chain/resnum/insert; in
// SEQUENTIAL mode only the ordinal positions (Start1Seq etc.) are
// meaningful.
type Zone struct {
	Mode Mode

	Chain1       string
	Start1       int
	StartInsert1 byte
	Stop1        int
	StopInsert1  byte

	Chain2       string
	Start2       int
	StartInsert2 byte
	Stop2        int
	StopInsert2  byte

	// Start1Seq/Stop1Seq/Start2Seq/Stop2Seq hold 1-based sequential
	// ordinal positions once Mode == SEQUENTIAL.
	Start1Seq, Stop1Seq, Start2Seq, Stop2Seq int

	// Whole marks a zone spanning the entire structure ("*").
	Whole bool
}

// ParseError reports a malformed residue or zone spec, following the
// typed-error-with-context pattern of io/genbank's GenbankSyntaxError.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("zone: cannot parse %q: %s", e.Input, e.Msg)
}

func (e *ParseError) Unwrap() error { return nil }

// ParseResidueSpec parses `[chain[.]]num[insert]`. A dot is required
// when the chain itself looks numeric (to disambiguate "12.5" chain=12
// num=5 from plain residue 125); otherwise a leading run of non-digit,
// non-minus characters is taken as an implicit chain, matching
// original_source/src/ParseRes.c's two-pass strategy. A leading
// backslash escapes a negative residue number ("\-5" -> -5) so a
// leading '-' is never mistaken for a chain character.
func ParseResidueSpec(s string) (ResidueSpec, error) {
	if s == "" {
		return ResidueSpec{}, &ParseError{s, "empty residue spec"}
	}

	raw := s
	escaped := false
	if raw[0] == '\\' {
		escaped = true
		raw = raw[1:]
	}

	var chain string
	if dot := indexByte(raw, '.'); dot >= 0 {
		chain = raw[:dot]
		raw = raw[dot+1:]
	} else if !escaped {
		// Implicit-chain fallback: a leading run of non-digit characters
		// (excluding a leading '-') is the chain.
		i := 0
		for i < len(raw) && !isDigit(raw[i]) && raw[i] != '-' {
			i++
		}
		if i > 0 {
			chain = raw[:i]
			raw = raw[i:]
		}
	}

	if raw == "" {
		return ResidueSpec{}, &ParseError{s, "missing residue number"}
	}

	neg := false
	i := 0
	if raw[i] == '-' {
		neg = true
		i++
	}
	start := i
	for i < len(raw) && isDigit(raw[i]) {
		i++
	}
	if i == start {
		return ResidueSpec{}, &ParseError{s, "missing residue number"}
	}
	num := 0
	for _, c := range raw[start:i] {
		num = num*10 + int(c-'0')
	}
	if neg {
		num = -num
	}

	var insert byte = ' '
	if i < len(raw) {
		if i != len(raw)-1 || !isAlpha(raw[i]) {
			return ResidueSpec{}, &ParseError{s, "malformed insertion code"}
		}
		insert = raw[i]
	}

	return ResidueSpec{Chain: chain, Num: num, Insert: insert}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// ParseZoneSpec parses `spec1[:spec2]` or `*`. When spec2 is absent the
// zone is symmetric (spec1 used on both structures). multiStructure
// forbids the `:spec2` per-structure form, per spec.
func ParseZoneSpec(s string, multiStructure bool) (Zone, error) {
	if s == "*" {
		return Zone{Mode: RESNUM, Whole: true}, nil
	}

	colon := indexByte(s, ':')
	var spec1, spec2 string
	symmetric := true
	if colon >= 0 {
		spec1, spec2 = s[:colon], s[colon+1:]
		symmetric = false
		if multiStructure {
			return Zone{}, &ParseError{s, "per-structure zone spec not allowed in multi-structure mode"}
		}
	} else {
		spec1 = s
	}

	z1a, z1b, err := parseRange(spec1)
	if err != nil {
		return Zone{}, err
	}

	if symmetric {
		return Zone{
			Mode:         RESNUM,
			Chain1:       z1a.Chain,
			Start1:       z1a.Num,
			StartInsert1: z1a.Insert,
			Stop1:        z1b.Num,
			StopInsert1:  z1b.Insert,
			Chain2:       z1a.Chain,
			Start2:       z1a.Num,
			StartInsert2: z1a.Insert,
			Stop2:        z1b.Num,
			StopInsert2:  z1b.Insert,
		}, nil
	}

	z2a, z2b, err := parseRange(spec2)
	if err != nil {
		return Zone{}, err
	}

	return Zone{
		Mode:         RESNUM,
		Chain1:       z1a.Chain,
		Start1:       z1a.Num,
		StartInsert1: z1a.Insert,
		Stop1:        z1b.Num,
		StopInsert1:  z1b.Insert,
		Chain2:       z2a.Chain,
		Start2:       z2a.Num,
		StartInsert2: z2a.Insert,
		Stop2:        z2b.Num,
		StopInsert2:  z2b.Insert,
	}, nil
}

func parseRange(spec string) (start, stop ResidueSpec, err error) {
	if spec == "*" {
		return ResidueSpec{}, ResidueSpec{}, nil
	}
	dash := indexByte(spec, '-')
	// A leading escaped negative start ("\-5-10") must not confuse the
	// range dash with the sign; ParseResidueSpec handles the escape, so
	// scan for the range dash after an escaped leading sign.
	if len(spec) > 1 && spec[0] == '\\' && spec[1] == '-' {
		dash = indexByte(spec[2:], '-')
		if dash >= 0 {
			dash += 2
		}
	}
	if dash == 0 {
		// spec begins with '-': ambiguous unless escaped; require escape.
		return ResidueSpec{}, ResidueSpec{}, &ParseError{spec, "ambiguous leading '-': escape negative numbers with '\\'"}
	}
	if dash < 0 {
		return ResidueSpec{}, ResidueSpec{}, &ParseError{spec, "zone range missing '-'"}
	}
	startSpec, err := ParseResidueSpec(spec[:dash])
	if err != nil {
		return ResidueSpec{}, ResidueSpec{}, err
	}
	stopSpec, err := ParseResidueSpec(spec[dash+1:])
	if err != nil {
		return ResidueSpec{}, ResidueSpec{}, err
	}
	return startSpec, stopSpec, nil
}

// key builds the residue key at the given chain/num/insert for a
// Model lookup.
func key(chain string, num int, insert byte) atom.ResidueKey {
	return atom.ResidueKey{Chain: chain, ResNum: num, Insert: insert}
}

// ConversionError reports a zone endpoint that does not resolve to a
// residue in the given model.
type ConversionError struct {
	Zone Zone
	Msg  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("zone: conversion failed: %s", e.Msg)
}

// ToSequential converts z's RESNUM endpoints to 1-based SEQUENTIAL
// ordinals against m1 (structure 1) and m2 (structure 2). If z.Whole,
// the full model range is used. Returns an error if either endpoint
// does not resolve to a residue present in its model.
func ToSequential(z Zone, m1, m2 *atom.Model) (Zone, error) {
	out := z
	out.Mode = SEQUENTIAL

	if z.Whole {
		out.Start1Seq, out.Stop1Seq = 1, m1.NumResidues()
		out.Start2Seq, out.Stop2Seq = 1, m2.NumResidues()
		return out, nil
	}

	i1, ok := m1.FindResidue(key(z.Chain1, z.Start1, z.StartInsert1))
	if !ok {
		return z, &ConversionError{z, "start1 not found in structure 1"}
	}
	j1, ok := m1.FindResidue(key(z.Chain1, z.Stop1, z.StopInsert1))
	if !ok {
		return z, &ConversionError{z, "stop1 not found in structure 1"}
	}
	i2, ok := m2.FindResidue(key(z.Chain2, z.Start2, z.StartInsert2))
	if !ok {
		return z, &ConversionError{z, "start2 not found in structure 2"}
	}
	j2, ok := m2.FindResidue(key(z.Chain2, z.Stop2, z.StopInsert2))
	if !ok {
		return z, &ConversionError{z, "stop2 not found in structure 2"}
	}

	out.Start1Seq, out.Stop1Seq = i1+1, j1+1
	out.Start2Seq, out.Stop2Seq = i2+1, j2+1
	return out, nil
}

// ToResnum converts z's SEQUENTIAL endpoints back to RESNUM addresses
// against m1/m2. Crossing a chain break during the original
// RESNUM->SEQUENTIAL conversion means this may not recover the exact
// original chain span; callers that need to round-trip across breaks
// should fragment at chain boundaries first (see SplitAtChainBreaks).
func ToResnum(z Zone, m1, m2 *atom.Model) (Zone, error) {
	out := z
	out.Mode = RESNUM

	if z.Start1Seq < 1 || z.Stop1Seq > m1.NumResidues() || z.Start1Seq > z.Stop1Seq {
		return z, &ConversionError{z, "structure-1 sequential range out of bounds"}
	}
	if z.Start2Seq < 1 || z.Stop2Seq > m2.NumResidues() || z.Start2Seq > z.Stop2Seq {
		return z, &ConversionError{z, "structure-2 sequential range out of bounds"}
	}

	k1a := m1.ResidueKeyAt(z.Start1Seq - 1)
	k1b := m1.ResidueKeyAt(z.Stop1Seq - 1)
	k2a := m2.ResidueKeyAt(z.Start2Seq - 1)
	k2b := m2.ResidueKeyAt(z.Stop2Seq - 1)

	out.Chain1, out.Start1, out.StartInsert1 = k1a.Chain, k1a.ResNum, k1a.Insert
	out.Stop1, out.StopInsert1 = k1b.ResNum, k1b.Insert
	out.Chain2, out.Start2, out.StartInsert2 = k2a.Chain, k2a.ResNum, k2a.Insert
	out.Stop2, out.StopInsert2 = k2b.ResNum, k2b.Insert
	out.Whole = false
	return out, nil
}

// SplitAtChainBreaks fragments a SEQUENTIAL zone at every chain
// boundary m1 crosses within [Start1Seq, Stop1Seq], so a subsequent
// ToResnum recovers per-chain ranges instead of one range that
// silently spans chains.
func SplitAtChainBreaks(z Zone, m1 *atom.Model) []Zone {
	if z.Mode != SEQUENTIAL {
		return []Zone{z}
	}
	var out []Zone
	segStart := z.Start1Seq
	offset := z.Start2Seq - z.Start1Seq
	for i := z.Start1Seq; i <= z.Stop1Seq; i++ {
		last := i == z.Stop1Seq
		breaks := !last && m1.ChainBreak(i) // ChainBreak(i) = residue i (0-based) starts new chain; i here is 1-based next residue
		if breaks || last {
			seg := z
			seg.Start1Seq, seg.Stop1Seq = segStart, i
			seg.Start2Seq, seg.Stop2Seq = segStart+offset, i+offset
			out = append(out, seg)
			segStart = i + 1
		}
	}
	return out
}

// Sort orders SEQUENTIAL zones by Start1Seq ascending and moves zones
// still in RESNUM mode (never converted) to the tail, keeping their
// relative order.
func Sort(zones []Zone) {
	// Simple insertion sort: zone lists are small (tens of entries).
	for i := 1; i < len(zones); i++ {
		v := zones[i]
		j := i - 1
		for j >= 0 && lessForSort(v, zones[j]) {
			zones[j+1] = zones[j]
			j--
		}
		zones[j+1] = v
	}
}

func lessForSort(a, b Zone) bool {
	if a.Mode != SEQUENTIAL {
		return false
	}
	if b.Mode != SEQUENTIAL {
		return true
	}
	return a.Start1Seq < b.Start1Seq
}

// MergeAdjacent repeatedly fuses z and z.next when both are
// SEQUENTIAL and both structures' offsets advance by exactly one,
// until a fixed point is reached.
func MergeAdjacent(zones []Zone) []Zone {
	changed := true
	for changed {
		changed = false
		out := make([]Zone, 0, len(zones))
		i := 0
		for i < len(zones) {
			z := zones[i]
			if i+1 < len(zones) {
				n := zones[i+1]
				if z.Mode == SEQUENTIAL && n.Mode == SEQUENTIAL &&
					n.Start1Seq == z.Stop1Seq+1 && n.Start2Seq == z.Stop2Seq+1 {
					merged := z
					merged.Stop1Seq = n.Stop1Seq
					merged.Stop2Seq = n.Stop2Seq
					out = append(out, merged)
					i += 2
					changed = true
					continue
				}
			}
			out = append(out, z)
			i++
		}
		zones = out
	}
	return zones
}

// CountOverlaps returns the number of zone pairs whose SEQUENTIAL
// ranges overlap on either structure.
func CountOverlaps(zones []Zone) int {
	n := 0
	for i := 0; i < len(zones); i++ {
		if zones[i].Mode != SEQUENTIAL {
			continue
		}
		for j := i + 1; j < len(zones); j++ {
			if zones[j].Mode != SEQUENTIAL {
				continue
			}
			if overlaps(zones[i].Start1Seq, zones[i].Stop1Seq, zones[j].Start1Seq, zones[j].Stop1Seq) ||
				overlaps(zones[i].Start2Seq, zones[i].Stop2Seq, zones[j].Start2Seq, zones[j].Stop2Seq) {
				n++
			}
		}
	}
	return n
}

func overlaps(a1, a2, b1, b2 int) bool {
	return a1 <= b2 && b1 <= a2
}

// TrimToCommon computes, across all mobile zone lists (already
// SEQUENTIAL), the intersection of covered reference ranges, then
// returns a new set of zone lists renumbered so every list covers
// identical reference ranges with mobile residues correspondingly
// offset.
func TrimToCommon(lists [][]Zone) [][]Zone {
	if len(lists) == 0 {
		return lists
	}

	covered := referenceCoverage(lists[0])
	for _, l := range lists[1:] {
		covered = intersectCoverage(covered, referenceCoverage(l))
	}

	out := make([][]Zone, len(lists))
	for li, list := range lists {
		out[li] = restrictToCoverage(list, covered)
	}
	return out
}

type interval struct{ lo, hi int }

func referenceCoverage(list []Zone) []interval {
	var iv []interval
	for _, z := range list {
		if z.Mode == SEQUENTIAL {
			iv = append(iv, interval{z.Start1Seq, z.Stop1Seq})
		}
	}
	return normalizeIntervals(iv)
}

func normalizeIntervals(iv []interval) []interval {
	if len(iv) == 0 {
		return nil
	}
	for i := 1; i < len(iv); i++ {
		v := iv[i]
		j := i - 1
		for j >= 0 && iv[j].lo > v.lo {
			iv[j+1] = iv[j]
			j--
		}
		iv[j+1] = v
	}
	out := []interval{iv[0]}
	for _, v := range iv[1:] {
		last := &out[len(out)-1]
		if v.lo <= last.hi+1 {
			if v.hi > last.hi {
				last.hi = v.hi
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

func intersectCoverage(a, b []interval) []interval {
	var out []interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := max(a[i].lo, b[j].lo)
		hi := min(a[i].hi, b[j].hi)
		if lo <= hi {
			out = append(out, interval{lo, hi})
		}
		if a[i].hi < b[j].hi {
			i++
		} else {
			j++
		}
	}
	return out
}

func restrictToCoverage(list []Zone, covered []interval) []Zone {
	var out []Zone
	for _, z := range list {
		if z.Mode != SEQUENTIAL {
			continue
		}
		offset := z.Start2Seq - z.Start1Seq
		for _, iv := range covered {
			lo := max(iv.lo, z.Start1Seq)
			hi := min(iv.hi, z.Stop1Seq)
			if lo > hi {
				continue
			}
			out = append(out, Zone{
				Mode:      SEQUENTIAL,
				Start1Seq: lo, Stop1Seq: hi,
				Start2Seq: lo + offset, Stop2Seq: hi + offset,
			})
		}
	}
	return MergeAdjacent(out)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
