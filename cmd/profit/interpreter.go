package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ACRMGroup/profit/align"
	"github.com/ACRMGroup/profit/atom"
	"github.com/ACRMGroup/profit/deviation"
	"github.com/ACRMGroup/profit/extract"
	"github.com/ACRMGroup/profit/iterate"
	"github.com/ACRMGroup/profit/multi"
	"github.com/ACRMGroup/profit/pdbio"
	"github.com/ACRMGroup/profit/sequence"
	"github.com/ACRMGroup/profit/session"
	"github.com/ACRMGroup/profit/submatrix"
	"github.com/ACRMGroup/profit/superpose"
	"github.com/ACRMGroup/profit/zone"
)

// Interpreter drives the session from the §6.1 line-oriented command
// surface, reporting diagnostics through its writer rather than a
// structured logger (see SPEC_FULL.md §10's ambient-stack note).
type Interpreter struct {
	Out           io.Writer
	Session       *session.Session
	IncludeHetatm bool
	Sub           *submatrix.Matrix
	Quit          bool
}

// NewInterpreter builds an Interpreter writing diagnostics to out,
// loading the bundled default substitution matrix.
func NewInterpreter(out io.Writer) *Interpreter {
	sub, err := submatrix.Default()
	if err != nil {
		sub = nil
	}
	return &Interpreter{Out: out, Session: session.New(), Sub: sub}
}

// RunScript reads lines from r and executes each as a command until
// QUIT or EOF.
func (in *Interpreter) RunScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := in.Exec(line); err != nil {
			fmt.Fprintf(in.Out, "error: %s\n", err)
		}
		if in.Quit {
			break
		}
	}
	return scanner.Err()
}

// Exec dispatches a single command line.
func (in *Interpreter) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "REFERENCE":
		return in.cmdReference(args)
	case "MOBILE":
		return in.cmdMobile(args)
	case "MULTI":
		return in.cmdMulti(args)
	case "ATOMS":
		in.Session.AtomSelector = join(args)
		return nil
	case "RATOMS":
		in.Session.RMSAtomSelector = join(args)
		return nil
	case "ZONE":
		return in.cmdZone(args, false)
	case "RZONE":
		return in.cmdZone(args, true)
	case "DELZONE":
		return in.cmdDelZone(args, false)
	case "DELRZONE":
		return in.cmdDelZone(args, true)
	case "SETCENTRE":
		return in.cmdSetCentre(args)
	case "NUMBER":
		return in.cmdNumber(args)
	case "FIT":
		return in.cmdFit()
	case "NOFIT":
		return in.cmdNofit()
	case "RMS":
		return in.cmdRMS()
	case "RESIDUE":
		return in.cmdResidue(args)
	case "PAIRDIST":
		return in.cmdPairdist(args)
	case "MATRIX":
		return in.cmdMatrix()
	case "GAPPEN":
		return in.cmdGappen(args)
	case "BVALUE":
		return in.cmdBvalue(args)
	case "DISTCUTOFF":
		return in.cmdDistCutoff(args)
	case "WEIGHT":
		in.Session.Weighting = session.Weight
		return nil
	case "NOWEIGHT":
		in.Session.Weighting = session.NoWeight
		return nil
	case "BWEIGHT":
		in.Session.Weighting = session.InverseBWeight
		return nil
	case "IGNOREMISSING":
		in.Session.IgnoreMissing = true
		return nil
	case "NOIGNOREMISSING":
		in.Session.IgnoreMissing = false
		return nil
	case "HETATOMS":
		in.IncludeHetatm = true
		return nil
	case "NOHETATOMS":
		in.IncludeHetatm = false
		return nil
	case "SYMMATOMS":
		in.Session.UseSymmetricAtoms = true
		return nil
	case "ALIGN":
		return in.cmdAlign(args)
	case "ITERATE":
		return in.cmdIterate(args)
	case "ALLVSALL":
		return in.cmdAllVsAll()
	case "ORDERFIT":
		return in.cmdOrderFit()
	case "TRIMZONES":
		return in.cmdTrimZones()
	case "SETREF":
		return in.cmdSetRef(args)
	case "WTAVERAGE":
		return in.cmdWtAverage(args)
	case "READALIGNMENT":
		return in.cmdReadAlignment(args)
	case "PRINTALIGN":
		return in.cmdPrintAlign(args)
	case "MULTREF":
		return in.cmdMultRef(args)
	case "CENTRE":
		return in.cmdCentre(args)
	case "OCCRANK":
		return in.cmdOccRank(args)
	case "WRITE":
		return in.cmdWrite(args)
	case "STATUS":
		return in.cmdStatus()
	case "QUIT":
		in.Quit = true
		return nil
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func join(args []string) string { return strings.Join(args, " ") }

func (in *Interpreter) cmdReference(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("REFERENCE requires a path")
	}
	m, err := in.loadModel(args[0])
	if err != nil {
		return err
	}
	in.Session.Reference = m
	in.Session.ReferencePath = args[0]
	return nil
}

func (in *Interpreter) cmdMobile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("MOBILE requires a path")
	}
	m, err := in.loadModel(args[0])
	if err != nil {
		return err
	}
	in.Session.Mobiles = []*session.Structure{{Model: m, Path: args[0]}}
	return nil
}

func (in *Interpreter) cmdMulti(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("MULTI requires a listfile path")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var mobiles []*session.Structure
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		m, err := in.loadModel(path)
		if err != nil {
			return err
		}
		mobiles = append(mobiles, &session.Structure{Model: m, Path: path})
	}
	if len(mobiles) == 0 {
		return fmt.Errorf("MULTI: listfile %q named no structures", args[0])
	}
	in.Session.Reference = mobiles[0].Model
	in.Session.Mobiles = mobiles[1:]
	return nil
}

func (in *Interpreter) loadModel(path string) (*atom.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pdbio.ReadOpt(f, pdbio.ReadOptions{IncludeHetatm: in.IncludeHetatm, OccRank: in.Session.OccRank})
}

func (in *Interpreter) cmdZone(args []string, rms bool) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	structure := in.Session.Mobiles[len(in.Session.Mobiles)-1]
	if len(args) != 1 {
		return fmt.Errorf("ZONE requires a spec")
	}
	if strings.ToUpper(args[0]) == "CLEAR" {
		if rms {
			structure.RMSZones = nil
		} else {
			structure.FitZones = nil
		}
		structure.Invalidate()
		return nil
	}

	z, err := zone.ParseZoneSpec(args[0], len(in.Session.Mobiles) > 1)
	if err != nil {
		return err
	}
	seq, err := zone.ToSequential(z, in.Session.Reference, structure.Model)
	if err != nil {
		return err
	}
	if rms {
		structure.RMSZones = zone.MergeAdjacent(append(structure.RMSZones, seq))
	} else {
		structure.FitZones = zone.MergeAdjacent(append(structure.FitZones, seq))
	}
	structure.Invalidate()
	return nil
}

func (in *Interpreter) cmdDelZone(args []string, rms bool) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	structure := in.Session.Mobiles[len(in.Session.Mobiles)-1]
	if len(args) != 1 {
		return fmt.Errorf("DELZONE requires a spec or ALL")
	}
	if strings.ToUpper(args[0]) == "ALL" {
		if rms {
			structure.RMSZones = nil
		} else {
			structure.FitZones = nil
		}
		structure.Invalidate()
		return nil
	}

	z, err := zone.ParseZoneSpec(args[0], len(in.Session.Mobiles) > 1)
	if err != nil {
		return err
	}
	seq, err := zone.ToSequential(z, in.Session.Reference, structure.Model)
	if err != nil {
		return err
	}

	target := &structure.FitZones
	if rms {
		target = &structure.RMSZones
	}
	var kept []zone.Zone
	for _, existing := range *target {
		if existing != seq {
			kept = append(kept, existing)
		}
	}
	*target = kept
	structure.Invalidate()
	return nil
}

func (in *Interpreter) cmdSetCentre(args []string) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	structure := in.Session.Mobiles[len(in.Session.Mobiles)-1]
	if len(args) != 1 {
		return fmt.Errorf("SETCENTRE requires a spec")
	}
	z, err := zone.ParseZoneSpec(args[0], false)
	if err != nil {
		return err
	}
	seq, err := zone.ToSequential(z, in.Session.Reference, structure.Model)
	if err != nil {
		return err
	}
	structure.CentreZones = []zone.Zone{seq}
	return nil
}

func (in *Interpreter) cmdNumber(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("NUMBER requires R or S")
	}
	switch strings.ToUpper(args[0]) {
	case "R":
		in.Session.NumberMode = zone.RESNUM
	case "S":
		in.Session.NumberMode = zone.SEQUENTIAL
	default:
		return fmt.Errorf("NUMBER: expected R or S, got %q", args[0])
	}
	return nil
}

func (in *Interpreter) extractOptions() extract.Options {
	var symTable *extract.SymmetricTable
	if in.Session.UseSymmetricAtoms {
		symTable = extract.NewSymmetricTable(extract.DefaultSymmetricPairs())
	}
	return extract.Options{
		Selector:      extract.NewSelector(in.Session.AtomSelector),
		Gate:          in.Session.BGate,
		Symmetric:     symTable,
		IgnoreMissing: in.Session.IgnoreMissing,
	}
}

func (in *Interpreter) cmdFit() error {
	if in.Session.Reference == nil || len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("FIT requires both a reference and a mobile structure")
	}
	if len(in.Session.Mobiles) > 1 {
		return in.cmdMultiFit()
	}
	opt := in.extractOptions()
	for _, structure := range in.Session.Mobiles {
		zones := structure.FitZones
		if len(zones) == 0 {
			zones = []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: in.Session.Reference.NumResidues(), Start2Seq: 1, Stop2Seq: structure.Model.NumResidues()}}
		}
		result, err := extract.Extract(in.Session.Reference, structure.Model, zones, opt, structure.CentreZones)
		if err != nil {
			structure.Invalidate()
			return err
		}
		weights := extractWeights(result, in.Session.Weighting)
		fit, err := superpose.Fit(result.RefXYZ, result.MobXYZ, weights, result.RefCentroid, result.MobCentroid, structure.Model.Atoms())
		if err != nil {
			structure.Invalidate()
			return err
		}
		structure.Fitted = true
		structure.NumFittedCoords = len(result.RefXYZ)
		structure.Rotation = fit.R
		structure.FittedAtoms = fit.Fitted
		structure.RefCentroid = result.RefCentroid
	}
	return nil
}

// cmdMultiFit runs the §4.J repeat-fit-average consensus loop across
// every loaded mobile and folds each pass's outcome back into session
// state. This is what makes FIT genuinely multi-aware once more than
// one mobile is loaded, rather than independently fitting each mobile
// to the static reference.
func (in *Interpreter) cmdMultiFit() error {
	opt := in.extractOptions()
	mobiles := make([]multi.Mobile, len(in.Session.Mobiles))
	for i, structure := range in.Session.Mobiles {
		zones := structure.FitZones
		if len(zones) == 0 {
			zones = []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: in.Session.Reference.NumResidues(), Start2Seq: 1, Stop2Seq: structure.Model.NumResidues()}}
		}
		mobiles[i] = multi.Mobile{Model: structure.Model, Zones: zones}
	}

	d := multi.NewDriver(mobiles, opt, in.Session.MultiIterStop, in.Session.MaxMultiIter)
	d.Averaging = in.Session.Averaging
	results, err := d.Run(in.Session.Reference)
	if err != nil {
		for _, structure := range in.Session.Mobiles {
			structure.Invalidate()
		}
		return err
	}

	for i, structure := range in.Session.Mobiles {
		structure.Fitted = true
		structure.NumFittedCoords = results[i].NumCoords
		structure.Rotation = results[i].Fit.R
		structure.FittedAtoms = results[i].Fit.Fitted
		structure.RefCentroid = results[i].Fit.RefCentroid
	}
	in.Session.AveragedReference = d.Reference
	return nil
}

func extractWeights(result *extract.Result, mode session.WeightMode) []float64 {
	switch mode {
	case session.NoWeight:
		return nil
	case session.InverseBWeight:
		out := make([]float64, len(result.Weight))
		for i, w := range result.Weight {
			if w != 0 {
				out[i] = 1.0 / w
			}
		}
		return out
	default:
		return result.Weight
	}
}

func (in *Interpreter) cmdNofit() error {
	for _, structure := range in.Session.Mobiles {
		structure.Fitted = true
		structure.FittedAtoms = structure.Model.Atoms()
	}
	return nil
}

func (in *Interpreter) pairsForStructure(structure *session.Structure) ([]deviation.PairRecord, error) {
	if !structure.Fitted {
		return nil, fmt.Errorf("structure is not fitted; run FIT or NOFIT first")
	}
	zones := structure.EffectiveRMSZones()
	if len(zones) == 0 {
		zones = []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: in.Session.Reference.NumResidues(), Start2Seq: 1, Stop2Seq: structure.Model.NumResidues()}}
	}
	fittedModel := atom.New(structure.FittedAtoms)
	opt := in.extractOptions()
	opt.Selector = extract.NewSelector(in.Session.EffectiveRMSSelector())
	result, err := extract.Extract(in.Session.Reference, fittedModel, zones, opt, nil)
	if err != nil {
		return nil, err
	}
	pairs := make([]deviation.PairRecord, len(result.RefXYZ))
	for i := range result.RefXYZ {
		ref := addP(result.RefXYZ[i], result.RefCentroid)
		// MULTREF ON compares against the multi driver's averaged
		// reference instead of the static reference, when one has been
		// computed and its coordinate count happens to line up with
		// this extraction's; this is an approximation (the averaged
		// reference is indexed by the first mobile's extraction order
		// under the fit atom selector, not necessarily this structure's), acceptable because
		// MULTREF is only meaningful after a multi-structure FIT has
		// run against the same zone layout for every mobile.
		if in.Session.MultRef && i < len(in.Session.AveragedReference) {
			ref = in.Session.AveragedReference[i]
		}
		pairs[i] = deviation.PairRecord{
			Ref: ref,
			Mob: addP(result.MobXYZ[i], result.RefCentroid),
		}
	}
	return pairs, nil
}

func addP(a, b extract.Point3) extract.Point3 {
	return extract.Point3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func (in *Interpreter) cmdRMS() error {
	for i, structure := range in.Session.Mobiles {
		pairs, err := in.pairsForStructure(structure)
		if err != nil {
			return err
		}
		rms := deviation.Overall(pairs, in.Session.UseDistCutoff, in.Session.DistCutoff)
		fmt.Fprintf(in.Out, "structure %d: RMS = %.4f over %d atoms\n", i, rms, len(pairs))
	}
	return nil
}

func (in *Interpreter) cmdResidue(args []string) error {
	out := in.Out
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for i, structure := range in.Session.Mobiles {
		pairs, err := in.pairsForStructure(structure)
		if err != nil {
			return err
		}
		reports := deviation.PerResidue(pairs, in.Session.UseDistCutoff, in.Session.DistCutoff)
		fmt.Fprintf(out, "structure %d:\n", i)
		for _, r := range reports {
			fmt.Fprintf(out, "  %s%d%c  %.4f  %s\n", r.Residue.Chain, r.Residue.ResNum, r.Residue.Insert, r.RMSD, r.Status)
		}
	}
	return nil
}

func (in *Interpreter) cmdPairdist(args []string) error {
	out := in.Out
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for i, structure := range in.Session.Mobiles {
		pairs, err := in.pairsForStructure(structure)
		if err != nil {
			return err
		}
		reports := deviation.PerAtom(pairs, in.Session.UseDistCutoff, in.Session.DistCutoff)
		fmt.Fprintf(out, "structure %d:\n", i)
		for _, r := range reports {
			flag := ""
			if r.Flagged {
				flag = " *"
			}
			fmt.Fprintf(out, "  %s%d  %.4f%s\n", r.Residue.Chain, r.Residue.ResNum, r.Distance, flag)
		}
	}
	return nil
}

func (in *Interpreter) cmdMatrix() error {
	for i, structure := range in.Session.Mobiles {
		if !structure.Fitted {
			return fmt.Errorf("structure %d is not fitted", i)
		}
		fmt.Fprintf(in.Out, "structure %d rotation:\n", i)
		for _, row := range structure.Rotation {
			fmt.Fprintf(in.Out, "  %.6f %.6f %.6f\n", row[0], row[1], row[2])
		}
	}
	return nil
}

func (in *Interpreter) cmdGappen(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("GAPPEN requires an open penalty")
	}
	open, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	in.Session.GapOpen = open
	if len(args) > 1 {
		ext, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		in.Session.GapExt = ext
	}
	return nil
}

func (in *Interpreter) cmdBvalue(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("BVALUE requires a threshold")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	in.Session.BGate.Threshold = v
	in.Session.BGate.Policy = extract.BGateBoth
	if len(args) > 1 {
		switch strings.ToUpper(args[1]) {
		case "REF":
			in.Session.BGate.Policy = extract.BGateRefOnly
		case "MOB":
			in.Session.BGate.Policy = extract.BGateMobOnly
		}
	}
	return nil
}

func (in *Interpreter) cmdDistCutoff(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("DISTCUTOFF requires a value or OFF")
	}
	if strings.ToUpper(args[0]) == "OFF" {
		in.Session.UseDistCutoff = false
		return nil
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	in.Session.UseDistCutoff = true
	in.Session.DistCutoff = v
	return nil
}

func (in *Interpreter) cmdAlign(args []string) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	structure := in.Session.Mobiles[len(in.Session.Mobiles)-1]
	zones, alignA, alignB, err := in.sequenceAlignZones(structure.Model)
	if err != nil {
		return err
	}
	appendMode := len(args) > 0 && strings.ToUpper(args[len(args)-1]) == "APPEND"
	if appendMode {
		structure.FitZones = zone.MergeAdjacent(concatZones(structure.FitZones, zones))
	} else {
		structure.FitZones = zones
	}
	structure.AlignA, structure.AlignB = alignA, alignB
	structure.Invalidate()
	return nil
}

// cmdTrimZones restricts every mobile's fit zones to their common
// reference-residue intersection, per the TRIMZONES command. A mobile
// with no fit zones counts as covering its whole structure, as in FIT.
func (in *Interpreter) cmdTrimZones() error {
	if len(in.Session.Mobiles) < 2 {
		return fmt.Errorf("TRIMZONES requires at least two mobile structures")
	}
	lists := make([][]zone.Zone, len(in.Session.Mobiles))
	for i, structure := range in.Session.Mobiles {
		lists[i] = structure.FitZones
		if len(lists[i]) == 0 {
			lists[i] = []zone.Zone{{Mode: zone.SEQUENTIAL, Start1Seq: 1, Stop1Seq: in.Session.Reference.NumResidues(), Start2Seq: 1, Stop2Seq: structure.Model.NumResidues()}}
		}
	}
	trimmed := multi.TrimZones(lists)
	for i, structure := range in.Session.Mobiles {
		structure.FitZones = trimmed[i]
		structure.Invalidate()
	}
	return nil
}

// cmdSetRef promotes mobile n (1-based) to reference, or when no
// argument is given, picks automatically via all-vs-all RMSD
// (multi.AutoSelectReference). The promoted structure's atoms are
// deep-copied, not aliased, per spec.md §5's "set-mobile-as-reference
// transfers ownership by duplication, not aliasing" note.
func (in *Interpreter) cmdSetRef(args []string) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("SETREF requires at least one mobile structure")
	}

	var idx int
	switch len(args) {
	case 0:
		if len(in.Session.Mobiles) < 2 {
			return fmt.Errorf("SETREF: automatic selection requires at least two mobile structures")
		}
		models := make([]*atom.Model, len(in.Session.Mobiles))
		zones := make([][]zone.Zone, len(in.Session.Mobiles))
		for i, structure := range in.Session.Mobiles {
			models[i] = structure.Model
			zones[i] = structure.FitZones
		}
		matrix, err := multi.AllVsAll(models, zones, in.extractOptions())
		if err != nil {
			return err
		}
		idx = multi.AutoSelectReference(matrix)
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("SETREF: expected a mobile index, got %q", args[0])
		}
		idx = n - 1
		if idx < 0 || idx >= len(in.Session.Mobiles) {
			return fmt.Errorf("SETREF: mobile index %d out of range", n)
		}
	default:
		return fmt.Errorf("SETREF takes at most one argument")
	}

	chosen := in.Session.Mobiles[idx]
	in.Session.Reference = duplicateModel(chosen.Model)
	in.Session.ReferencePath = chosen.Path
	in.Session.ReferenceStructureIndex = idx
	for _, structure := range in.Session.Mobiles {
		structure.Invalidate()
	}
	return nil
}

// duplicateModel deep-copies m's atom slice into a fresh Model so the
// new reference does not alias the mobile structure it was promoted
// from.
func duplicateModel(m *atom.Model) *atom.Model {
	src := m.Atoms()
	dup := make([]atom.Atom, len(src))
	copy(dup, src)
	return atom.New(dup)
}

// cmdWtAverage selects the multi-structure driver's reference-update
// formula: IncrementalWeighted (ON, the default) or Arithmetic (OFF).
func (in *Interpreter) cmdWtAverage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("WTAVERAGE requires ON or OFF")
	}
	switch strings.ToUpper(args[0]) {
	case "ON":
		in.Session.Averaging = deviation.IncrementalWeighted
	case "OFF":
		in.Session.Averaging = deviation.Arithmetic
	default:
		return fmt.Errorf("WTAVERAGE: expected ON or OFF, got %q", args[0])
	}
	return nil
}

// cmdMultRef toggles comparing against the multi-structure driver's
// averaged reference instead of the static reference for RMS/RESIDUE/
// PAIRDIST.
func (in *Interpreter) cmdMultRef(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("MULTREF requires ON or OFF")
	}
	switch strings.ToUpper(args[0]) {
	case "ON":
		in.Session.MultRef = true
	case "OFF":
		in.Session.MultRef = false
	default:
		return fmt.Errorf("MULTREF: expected ON or OFF, got %q", args[0])
	}
	return nil
}

// cmdCentre toggles whether WRITE leaves fitted coordinates centred at
// the origin instead of translated into the reference frame.
func (in *Interpreter) cmdCentre(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("CENTRE requires ON or OFF")
	}
	switch strings.ToUpper(args[0]) {
	case "ON":
		in.Session.CentreOutput = true
	case "OFF":
		in.Session.CentreOutput = false
	default:
		return fmt.Errorf("CENTRE: expected ON or OFF, got %q", args[0])
	}
	return nil
}

// cmdOccRank sets the alt-loc occupancy rank loadModel keeps for
// subsequent REFERENCE/MOBILE/MULTI loads.
func (in *Interpreter) cmdOccRank(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("OCCRANK requires a rank")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("OCCRANK: rank must be >= 1, got %d", n)
	}
	in.Session.OccRank = n
	return nil
}

// cmdReadAlignment loads a PIR alignment file and derives FitZones for
// each loaded mobile from it, giving zone.RemoveDoubleDeletions a real
// caller outside of tests. The file's first record is the reference;
// subsequent records pair off against the session's mobiles in order.
func (in *Interpreter) cmdReadAlignment(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("READALIGNMENT requires a path")
	}
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := parsePIR(f)
	if err != nil {
		return err
	}
	if len(records)-1 < len(in.Session.Mobiles) {
		return fmt.Errorf("READALIGNMENT: alignment file has %d mobile record(s), session has %d mobile structure(s)", len(records)-1, len(in.Session.Mobiles))
	}

	refSeq := records[0].Seq
	for i, structure := range in.Session.Mobiles {
		mobSeq := records[i+1].Seq
		if len(mobSeq) != len(refSeq) {
			return fmt.Errorf("READALIGNMENT: record %d length %d does not match reference length %d", i+1, len(mobSeq), len(refSeq))
		}
		a, b := zone.RemoveDoubleDeletions(refSeq, mobSeq)
		structure.FitZones = zone.FromAlignment(a, b, nil)
		structure.AlignA, structure.AlignB = a, b
		structure.Invalidate()
	}
	return nil
}

// cmdPrintAlign dumps each mobile's last computed alignment (from
// ALIGN or READALIGNMENT) back out in PIR or FASTA format.
func (in *Interpreter) cmdPrintAlign(args []string) error {
	format := "PIR"
	rest := args
	if len(rest) > 0 {
		up := strings.ToUpper(rest[0])
		if up == "FASTA" || up == "PIR" {
			format = up
			rest = rest[1:]
		}
	}

	out := in.Out
	switch len(rest) {
	case 0:
	case 1:
		f, err := os.Create(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	default:
		return fmt.Errorf("PRINTALIGN takes at most a format and a path")
	}

	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure loaded")
	}
	for i, structure := range in.Session.Mobiles {
		if structure.AlignA == "" || structure.AlignB == "" {
			return fmt.Errorf("structure %d: no alignment computed; run ALIGN or READALIGNMENT first", i)
		}
		writeAlignmentRecord(out, format, "reference", structure.AlignA)
		writeAlignmentRecord(out, format, fmt.Sprintf("mobile_%d", i), structure.AlignB)
	}
	return nil
}

func writeAlignmentRecord(w io.Writer, format, id, seq string) {
	if format == "FASTA" {
		fmt.Fprintf(w, ">%s\n%s\n", id, seq)
		return
	}
	fmt.Fprintf(w, ">P1;%s\n%s\n%s*\n", id, id, seq)
}

func concatZones(a, b []zone.Zone) []zone.Zone {
	out := make([]zone.Zone, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func (in *Interpreter) cmdIterate(args []string) error {
	if in.Session.Reference == nil || len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("ITERATE requires both a reference and a mobile structure")
	}
	if len(args) > 0 && strings.ToUpper(args[0]) == "OFF" {
		return nil
	}
	cfg := iterate.Config{Sub: in.Sub, Gap: align.Scoring{GapOpen: in.Session.GapOpen, GapExt: in.Session.GapExt}}
	if len(args) > 0 && strings.ToUpper(args[0]) != "ON" {
		if v, err := strconv.ParseFloat(args[0], 64); err == nil {
			cfg.MaxEquivDistSq = v
		}
	}
	for i, structure := range in.Session.Mobiles {
		res, err := iterate.Run(in.Session.Reference, structure.Model, cfg)
		if err != nil {
			return err
		}
		structure.Fitted = true
		structure.FittedAtoms = res.Fit.Fitted
		structure.Rotation = res.Fit.R
		structure.RefCentroid = res.Fit.RefCentroid
		structure.FitZones = res.Zones
		fmt.Fprintf(in.Out, "structure %d: converged after %d iterations, RMS = %.4f\n", i, res.Iterations, res.RMSD)
	}
	return nil
}

func (in *Interpreter) cmdAllVsAll() error {
	if len(in.Session.Mobiles) < 2 {
		return fmt.Errorf("ALLVSALL requires at least two mobile structures")
	}
	models := make([]*atom.Model, len(in.Session.Mobiles))
	zones := make([][]zone.Zone, len(in.Session.Mobiles))
	for i, structure := range in.Session.Mobiles {
		models[i] = structure.Model
		zones[i] = structure.FitZones
	}
	matrix, err := multi.AllVsAll(models, zones, in.extractOptions())
	if err != nil {
		return err
	}
	for _, row := range matrix {
		for j, v := range row {
			if j > 0 {
				fmt.Fprint(in.Out, "\t")
			}
			fmt.Fprintf(in.Out, "%.4f", v)
		}
		fmt.Fprintln(in.Out)
	}
	return nil
}

func (in *Interpreter) cmdOrderFit() error {
	if len(in.Session.Mobiles) < 2 {
		return fmt.Errorf("ORDERFIT requires at least two mobile structures")
	}
	models := make([]*atom.Model, len(in.Session.Mobiles))
	zones := make([][]zone.Zone, len(in.Session.Mobiles))
	for i, structure := range in.Session.Mobiles {
		models[i] = structure.Model
		zones[i] = structure.FitZones
	}
	matrix, err := multi.AllVsAll(models, zones, in.extractOptions())
	if err != nil {
		return err
	}
	order := multi.OrderFit(matrix, 0)
	fmt.Fprintf(in.Out, "fit order: %v\n", order)
	return nil
}

func (in *Interpreter) cmdWrite(args []string) error {
	if len(in.Session.Mobiles) == 0 {
		return fmt.Errorf("no mobile structure to write")
	}
	writeRef := false
	rest := args
	if len(args) > 0 && strings.ToUpper(args[0]) == "REF" {
		writeRef = true
		rest = args[1:]
	}
	if len(rest) != 1 {
		return fmt.Errorf("WRITE requires a path")
	}
	f, err := os.Create(rest[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if writeRef {
		return pdbio.Write(f, in.Session.Reference)
	}
	structure := in.Session.Mobiles[len(in.Session.Mobiles)-1]
	if !structure.Fitted {
		return fmt.Errorf("structure is not fitted; run FIT or NOFIT first")
	}
	atoms := structure.FittedAtoms
	if in.Session.CentreOutput {
		atoms = centreAtoms(atoms, structure.RefCentroid)
	}
	return pdbio.Write(f, atom.New(atoms))
}

// centreAtoms subtracts c from every defined atom's coordinates,
// implementing CENTRE ON: the fit itself always translates the fitted
// mobile back into the reference frame (see superpose.Fit), so leaving
// output centred at the origin is purely a write-time transform.
func centreAtoms(atoms []atom.Atom, c extract.Point3) []atom.Atom {
	out := make([]atom.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a
		if a.Undefined() {
			continue
		}
		out[i].X -= c.X
		out[i].Y -= c.Y
		out[i].Z -= c.Z
	}
	return out
}

func (in *Interpreter) cmdStatus() error {
	st := in.Session.CurrentStatus()
	fmt.Fprintf(in.Out, "atoms: %s\nratoms: %s\nnumber mode: %s\nmobiles: %d\n", st.AtomSelector, st.RMSAtomSelector, st.NumberMode, st.NumMobiles)
	gateNames := [...]string{"off", "both", "ref", "mob"}
	weightNames := [...]string{"none", "weight", "bweight"}
	fmt.Fprintf(in.Out, "bvalue gate: %s %.3f\nweighting: %s\n", gateNames[st.BGate.Policy], st.BGate.Threshold, weightNames[st.Weighting])
	if st.UseDistCutoff {
		fmt.Fprintf(in.Out, "dist cutoff: %.3f\n", st.DistCutoff)
	}
	for i, n := range st.FitZoneCounts {
		fmt.Fprintf(in.Out, "  structure %d: %d fit zones, %d rms zones\n", i, n, st.RMSZoneCounts[i])
	}
	return nil
}

// sequenceAlignZones builds initial SEQUENTIAL zones from a sequence
// alignment between the reference and a mobile model, used by ALIGN,
// also returning the (double-deletion-stripped) alignment strings so
// PRINTALIGN can dump back out exactly what produced the zones.
func (in *Interpreter) sequenceAlignZones(mobModel *atom.Model) (zones []zone.Zone, alignA, alignB string, err error) {
	if in.Sub == nil {
		return nil, "", "", fmt.Errorf("no substitution matrix loaded")
	}
	refSeq := sequence.StripChainBreaks(sequence.Extract(in.Session.Reference))
	mobSeq := sequence.StripChainBreaks(sequence.Extract(mobModel))
	_, a, b, err := align.NeedlemanWunsch(refSeq, mobSeq, in.Sub, align.Scoring{GapOpen: in.Session.GapOpen, GapExt: in.Session.GapExt})
	if err != nil {
		return nil, "", "", err
	}
	a, b = zone.RemoveDoubleDeletions(a, b)
	return zone.FromAlignment(a, b, nil), a, b, nil
}
