/*
Package pdbio is the minimal external collaborator that reads and
writes ATOM/HETATM records in the fixed-column PDB format, so cmd/profit
and the end-to-end tests have something to load. It is explicitly not
part of the fitting core under test (spec.md §4 names it a
collaborator, not a component); it exists only to turn bytes on disk
into an atom.Model and back.

Column layout follows the standard PDB ATOM/HETATM record used
throughout bioplib (original_source/src/GetPDBCoor.c builds its COOR
array from exactly this linked-list shape, just post-parse).
*/
package pdbio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ACRMGroup/profit/atom"
)

// ParseError reports a malformed ATOM/HETATM line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pdbio: line %d: %s", e.Line, e.Msg)
}

// Read parses ATOM/HETATM records from r into an atom.Model, in file
// order. Non-coordinate records are ignored.
func Read(r io.Reader) (*atom.Model, error) {
	scanner := bufio.NewScanner(r)
	var atoms []atom.Atom
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		recType := strings.TrimSpace(line[0:6])
		if recType != "ATOM" && recType != "HETATM" {
			continue
		}
		a, err := parseRecord(line, recType == "HETATM")
		if err != nil {
			return nil, &ParseError{lineNo, err.Error()}
		}
		atoms = append(atoms, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return atom.New(atoms), nil
}

// ReadOptions configures ReadOpt's filtering beyond plain Read: whether
// HETATM records are kept, and which alt-loc occupancy rank to keep
// when a residue position has alternate conformations.
type ReadOptions struct {
	IncludeHetatm bool
	OccRank       int // 1-based; 0 defaults to 1 (highest-occupancy conformation)
}

type altKey struct {
	chain  string
	resNum int
	insert byte
	name   string
}

type altRecord struct {
	atom   atom.Atom
	altLoc byte
}

// ReadOpt is Read with HETATM inclusion and alt-loc occupancy-rank
// filtering, mirroring ProFit's ReadPDBOccRank/ReadPDBAtomsOccRank
// (original_source/profit/main.c's HETATOMS/OCCRANK dispatch). Records
// sharing a (chain, residue number, insertion code, atom name) key are
// alternate locations of the same position; they are ranked by
// descending occupancy (ties broken by alt-loc letter) and only the
// opts.OccRank-th ranked one is kept. Positions with no alternates pass
// through unaffected, with AltLocRank set to 1.
func ReadOpt(r io.Reader, opts ReadOptions) (*atom.Model, error) {
	occRank := opts.OccRank
	if occRank == 0 {
		occRank = 1
	}

	scanner := bufio.NewScanner(r)
	groups := map[altKey][]altRecord{}
	var keyOrder []altKey
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		recType := strings.TrimSpace(line[0:6])
		if recType != "ATOM" && recType != "HETATM" {
			continue
		}
		isHet := recType == "HETATM"
		if isHet && !opts.IncludeHetatm {
			continue
		}
		a, altLoc, err := parseRecordAlt(line, isHet)
		if err != nil {
			return nil, &ParseError{lineNo, err.Error()}
		}
		k := altKey{a.Chain, a.ResNum, a.Insert, a.Raw}
		if _, ok := groups[k]; !ok {
			keyOrder = append(keyOrder, k)
		}
		groups[k] = append(groups[k], altRecord{atom: a, altLoc: altLoc})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var atoms []atom.Atom
	for _, k := range keyOrder {
		recs := groups[k]
		if len(recs) == 1 {
			a := recs[0].atom
			a.AltLocRank = 1
			atoms = append(atoms, a)
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].atom.Occupancy != recs[j].atom.Occupancy {
				return recs[i].atom.Occupancy > recs[j].atom.Occupancy
			}
			return recs[i].altLoc < recs[j].altLoc
		})
		if occRank > len(recs) {
			continue
		}
		a := recs[occRank-1].atom
		a.AltLocRank = occRank
		atoms = append(atoms, a)
	}

	return atom.New(atoms), nil
}

func field(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func parseRecord(line string, isHet bool) (atom.Atom, error) {
	pad := line
	for len(pad) < 80 {
		pad += " "
	}

	raw := field(pad, 12, 16)
	resName := strings.TrimSpace(field(pad, 17, 20))
	chain := strings.TrimSpace(field(pad, 21, 22))
	resNumStr := strings.TrimSpace(field(pad, 22, 26))
	insert := byte(' ')
	if ic := field(pad, 26, 27); strings.TrimSpace(ic) != "" {
		insert = ic[0]
	}

	resNum, err := strconv.Atoi(resNumStr)
	if err != nil {
		return atom.Atom{}, fmt.Errorf("bad residue number %q: %w", resNumStr, err)
	}

	x, err := parseFloat(pad, 30, 38)
	if err != nil {
		return atom.Atom{}, err
	}
	y, err := parseFloat(pad, 38, 46)
	if err != nil {
		return atom.Atom{}, err
	}
	z, err := parseFloat(pad, 46, 54)
	if err != nil {
		return atom.Atom{}, err
	}
	occ, err := parseFloatDefault(pad, 54, 60, 1.0)
	if err != nil {
		return atom.Atom{}, err
	}
	bval, err := parseFloatDefault(pad, 60, 66, 0.0)
	if err != nil {
		return atom.Atom{}, err
	}

	return atom.NewAtom(raw, resName, chain, resNum, insert, x, y, z, occ, bval, isHet), nil
}

// parseRecordAlt is parseRecord plus the alt-loc indicator at column 17
// (0-indexed 16), which plain parseRecord/Read ignore.
func parseRecordAlt(line string, isHet bool) (atom.Atom, byte, error) {
	pad := line
	for len(pad) < 80 {
		pad += " "
	}
	altLoc := byte(' ')
	if al := field(pad, 16, 17); strings.TrimSpace(al) != "" {
		altLoc = al[0]
	}
	a, err := parseRecord(line, isHet)
	if err != nil {
		return atom.Atom{}, 0, err
	}
	return a, altLoc, nil
}

func parseFloat(line string, start, end int) (float64, error) {
	s := strings.TrimSpace(field(line, start, end))
	if s == "" {
		return atom.Undefined, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return v, nil
}

func parseFloatDefault(line string, start, end int, def float64) (float64, error) {
	s := strings.TrimSpace(field(line, start, end))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad field %q: %w", s, err)
	}
	return v, nil
}

// Write emits m as fixed-column ATOM/HETATM records, serial numbers
// assigned sequentially from 1.
func Write(w io.Writer, m *atom.Model) error {
	bw := bufio.NewWriter(w)
	serial := 1
	for _, a := range m.Atoms() {
		recType := "ATOM  "
		if a.IsHet {
			recType = "HETATM"
		}
		insert := string(a.Insert)
		if a.Insert == 0 {
			insert = " "
		}
		line := fmt.Sprintf("%-6s%5d %4s %3s %1s%4d%1s   %8.3f%8.3f%8.3f%6.2f%6.2f",
			recType, serial, a.Raw, a.ResName, a.Chain, a.ResNum, insert, a.X, a.Y, a.Z, a.Occupancy, a.BValue)
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
		serial++
	}
	if _, err := bw.WriteString("END\n"); err != nil {
		return err
	}
	return bw.Flush()
}
