/*
Command profit is the command-line front end implementing the §6.1
command surface over the fitting core: REFERENCE/MOBILE/MULTI to load
structures, ATOMS/ZONE/RZONE/... to configure a fit, FIT/RMS/RESIDUE/...
to run it and report on it.

Grounded on bebop-poly's CLI wiring (root commands.go, cmd/poly): the
same github.com/urfave/cli/v2 App, with -h/-x/-f launch flags per
spec.md §6.3 and positional reference/mobile arguments.
*/
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := application().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func application() *cli.App {
	return &cli.App{
		Name:  "profit",
		Usage: "interactive least-squares protein structure fitting",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "h", Usage: "include HETATM records on load"},
			&cli.BoolFlag{Name: "x", Usage: "XMAS input flag (accepted but ignored; structures are always read as PDB)"},
			&cli.StringFlag{Name: "f", Usage: "run script then exit"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	interp := NewInterpreter(c.App.Writer)
	interp.IncludeHetatm = c.Bool("h")

	args := c.Args().Slice()
	if len(args) > 0 {
		if err := interp.Exec("REFERENCE " + args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if err := interp.Exec("MOBILE " + args[1]); err != nil {
			return err
		}
	}

	if script := c.String("f"); script != "" {
		f, err := os.Open(script)
		if err != nil {
			return err
		}
		defer f.Close()
		return interp.RunScript(f)
	}

	return interp.RunScript(c.App.Reader)
}
