package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/arena/scenario"
)

var (
	demoScenario string
	demoList     bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().StringVar(&demoScenario, "scenario", "memtest", "Built-in scenario to run")
	cmd.Flags().BoolVar(&demoList, "list", false, "List built-in scenarios and exit")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a built-in scenario",
		Long: `The demo command replays a scenario compiled into arenactl. The
default, memtest, walks through allocation, freeing, a double free,
block reuse, exhaustion and a free of an interior address.

Example:
  arenactl demo
  arenactl demo --mode sentinel
  arenactl demo --format table
  arenactl demo --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	if demoList {
		fmt.Println(strings.Join(scenario.Builtins(), "\n"))
		return nil
	}
	f, err := outputFormat()
	if err != nil {
		return err
	}
	sc, err := scenario.Builtin(demoScenario)
	if err != nil {
		return err
	}
	mode := sc.ValidationMode()
	if modeFlag != "" {
		if mode, err = alloc.ParseValidationMode(modeFlag); err != nil {
			return err
		}
	}

	// The demo maps its arena the way a program embedding the allocator
	// would: failure to obtain the region ends the process.
	a := arena.MustNew(sc.ArenaSize)
	defer a.Close()
	fa, err := alloc.New(a, &alloc.Options{Validation: mode})
	if err != nil {
		return err
	}
	printVerbose("Arena: %d bytes, mode %s\n", a.Size(), mode)

	res, err := scenario.Run(fa, sc, narration(f), runOptions(f))
	if err != nil {
		return err
	}
	if f == printer.FormatJSON {
		if err := printJSON(res); err != nil {
			return err
		}
	}
	if !res.OK() {
		return fmt.Errorf("%s: %w", sc.Name, errMismatch)
	}
	return nil
}
