package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/arena/scenario"
)

var (
	runKeepGoing bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runKeepGoing, "keep-going", false, "Run remaining files after one fails to load or run")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml> [scenario.yaml...]",
		Short: "Run scenario files",
		Long: `The run command replays one or more YAML scenario files, each in a
fresh arena, and exits with status 1 if any step did not behave as
scripted.

Example:
  arenactl run testdata/memtest.yaml
  arenactl run a.yaml b.yaml --keep-going
  arenactl run memtest.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}

	results := make([]*scenario.Result, 0, len(args))
	failed := 0
	var firstErr error
	for _, path := range args {
		res, err := runFile(path, f)
		if err != nil {
			if !runKeepGoing {
				return err
			}
			printInfo("%s: %v\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
		if !res.OK() {
			failed++
		}
	}

	if f == printer.FormatJSON {
		if err := printJSON(results); err != nil {
			return err
		}
	} else if len(args) > 1 {
		printInfo("%d scenario(s), %d with mismatches\n", len(results), failed)
	}
	if firstErr != nil {
		return firstErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(args), errMismatch)
	}
	return nil
}

func runFile(path string, f printer.Format) (*scenario.Result, error) {
	printVerbose("Loading scenario: %s\n", path)
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	fa, err := openHeap(sc)
	if err != nil {
		return nil, err
	}
	defer fa.Close()
	return scenario.Run(fa, sc, narration(f), runOptions(f))
}
