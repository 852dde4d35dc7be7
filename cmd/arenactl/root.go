package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/arena/alloc"
	"github.com/joshuapare/arenakit/arena/printer"
	"github.com/joshuapare/arenakit/arena/scenario"
	"github.com/joshuapare/arenakit/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	logLevel   string
	modeFlag   string
	formatFlag string
)

// errMismatch is returned when a scenario finished but did not behave as
// scripted; execute turns it into exit status 1.
var errMismatch = errors.New("scenario reported mismatches")

var rootCmd = &cobra.Command{
	Use:   "arenactl",
	Short: "Run and inspect scripted sessions against the arena allocator",
	Long: `arenactl drives the first-fit arena allocator through scripted
scenarios, printing the free list after each dump step and reporting any
step whose outcome differs from the script.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Allocator log level on stderr (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		StringVar(&modeFlag, "mode", "", "Free validation mode: strict or sentinel (default: the scenario's own)")
	rootCmd.PersistentFlags().
		StringVar(&formatFlag, "format", "text", "Output format: text, json or table")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging routes allocator logs to stderr when --verbose or
// --log-level asks for them.
func setupLogging(_ *cobra.Command, _ []string) error {
	if logLevel == "" && !verbose {
		logger.Init(logger.Options{Enabled: false})
		return nil
	}
	lvl, ok := logger.ParseLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}
	if logLevel == "" {
		lvl, _ = logger.ParseLevel("debug")
	}
	logger.Init(logger.Options{Enabled: true, Output: os.Stderr, Level: lvl})
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputFormat validates --format.
func outputFormat() (printer.Format, error) {
	return printer.ParseFormat(formatFlag)
}

// narration returns where step-by-step output goes: nowhere in quiet or
// JSON mode.
func narration(f printer.Format) io.Writer {
	if quiet || f == printer.FormatJSON {
		return io.Discard
	}
	return os.Stdout
}

// openHeap builds the allocator for sc, honouring --mode.
func openHeap(sc *scenario.Scenario) (*alloc.Allocator, error) {
	mode := sc.ValidationMode()
	if modeFlag != "" {
		m, err := alloc.ParseValidationMode(modeFlag)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	printVerbose("Arena: %d bytes, mode %s\n", sc.ArenaSize, mode)
	return scenario.Open(sc, &alloc.Options{Validation: mode})
}

// runOptions builds scenario options for the chosen format.
func runOptions(f printer.Format) scenario.Options {
	opts := scenario.DefaultOptions()
	opts.Printer.Format = f
	opts.Printer.Trailer = f == printer.FormatText
	return opts
}
