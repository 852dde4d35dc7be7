// Package printer renders allocator diagnostics for humans and tools.
//
// A free-list Report can be printed as the classic text dump, as indented
// JSON, or as a table:
//
//	r, _ := fa.Dump()
//	printer.Print(os.Stdout, r, printer.DefaultOptions())
//
// Counters from alloc.Stats and the byte budget from alloc.Accounting are
// printed with PrintStats and PrintAccounting.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"

	"github.com/joshuapare/arenakit/arena/alloc"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the line-per-node dump.
	FormatText Format = "text"

	// FormatJSON outputs indented JSON.
	FormatJSON Format = "json"

	// FormatTable outputs an ASCII table.
	FormatTable Format = "table"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or table)", s)
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json, table).
	// Default: FormatText
	Format Format

	// Language selects digit grouping for counters in PrintStats and
	// PrintAccounting (text and table formats).
	// Default: language.English
	Language language.Tag

	// Trailer appends the blank lines the text dump has always ended with.
	// Default: false
	Trailer bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		Language: language.English,
	}
}

// Printer writes diagnostics to a writer.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{writer: w, opts: opts}
}

// Print renders r to w in one call.
func Print(w io.Writer, r alloc.Report, opts Options) error {
	return New(w, opts).PrintReport(r)
}

// PrintReport renders a free-list report.
func (p *Printer) PrintReport(r alloc.Report) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.writeJSON(r)
	case FormatTable:
		return p.printReportTable(r)
	case FormatText:
		return p.printReportText(r)
	default:
		return p.printReportText(r)
	}
}

// PrintStats renders allocator counters.
func (p *Printer) PrintStats(s alloc.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.writeJSON(s)
	case FormatTable:
		return p.printPairsTable(statsPairs(s))
	default:
		return p.printPairsText(statsPairs(s))
	}
}

// PrintAccounting renders the arena byte budget.
func (p *Printer) PrintAccounting(ac alloc.Accounting) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.writeJSON(ac)
	case FormatTable:
		return p.printPairsTable(accountingPairs(ac))
	default:
		return p.printPairsText(accountingPairs(ac))
	}
}
