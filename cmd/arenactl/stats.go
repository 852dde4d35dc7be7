package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/arena/scenario"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <scenario.yaml>",
		Short: "Show allocator counters after a scenario",
		Long: `The stats command runs a scenario without narration and prints the
allocator's counters and the final byte budget of the arena.

Example:
  arenactl stats memtest.yaml
  arenactl stats memtest.yaml --format table
  arenactl stats memtest.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

// statsReport is the JSON shape of the stats command.
type statsReport struct {
	Scenario   string           `json:"scenario"`
	Mismatches int              `json:"mismatches"`
	Stats      alloc.Stats      `json:"stats"`
	Accounting alloc.Accounting `json:"accounting"`
}

func runStats(args []string) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	fa, err := openHeap(sc)
	if err != nil {
		return err
	}
	defer fa.Close()

	res, err := scenario.Run(fa, sc, io.Discard, scenario.DefaultOptions())
	if err != nil {
		return err
	}
	ac, err := fa.Account()
	if err != nil {
		return err
	}

	if err := printStats(sc, res, fa.Stats(), ac, f); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%s: %w", sc.Name, errMismatch)
	}
	return nil
}

func printStats(sc *scenario.Scenario, res *scenario.Result, st alloc.Stats, ac alloc.Accounting, f printer.Format) error {
	if f == printer.FormatJSON {
		return printJSON(statsReport{
			Scenario:   sc.Name,
			Mismatches: len(res.Mismatches),
			Stats:      st,
			Accounting: ac,
		})
	}

	popts := printer.DefaultOptions()
	popts.Format = f
	p := printer.New(os.Stdout, popts)
	printInfo("Scenario: %s (%d steps, %d mismatches)\n\n", sc.Name, res.Steps, len(res.Mismatches))
	if err := p.PrintStats(st); err != nil {
		return err
	}
	printInfo("\n")
	return p.PrintAccounting(ac)
}
