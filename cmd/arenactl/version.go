package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/internal/format"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and arena layout information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"arenactl %s\n  commit: %s\n  built: %s\n  go: %s %s/%s\n  header: %d bytes, page: %d bytes\n",
		version, commit, date,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
		format.HeaderSize, format.PageSize)
	return err
}
