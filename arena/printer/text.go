package printer

import (
	"fmt"

	"golang.org/x/text/message"

	"github.com/joshuapare/arenakit/arena/alloc"
)

// printReportText prints one line per free node, then the head and the
// free-byte total.
func (p *Printer) printReportText(r alloc.Report) error {
	for _, n := range r.Nodes {
		if _, err := fmt.Fprintf(p.writer, "Free Node %d: Size: %d, Next: %s\n", n.Index, n.Size, alloc.ID(n.Next)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(p.writer, "Head: %s\n", alloc.ID(r.Head)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.writer, "Free memory: %d\n", r.FreeBytes); err != nil {
		return err
	}
	if p.opts.Trailer {
		_, err := fmt.Fprint(p.writer, "\n\n")
		return err
	}
	return nil
}

// pair is one labelled counter.
type pair struct {
	label string
	value int64
}

func statsPairs(s alloc.Stats) []pair {
	return []pair{
		{"Alloc calls", int64(s.AllocCalls)},
		{"Free calls", int64(s.FreeCalls)},
		{"Splits", int64(s.Splits)},
		{"Splices", int64(s.Splices)},
		{"Failed allocs", int64(s.FailedAllocs)},
		{"Invalid frees", int64(s.InvalidFrees)},
		{"Bytes allocated", s.BytesAllocated},
		{"Bytes freed", s.BytesFreed},
		{"Dead bytes", int64(s.DeadBytes)},
		{"Live blocks", int64(s.LiveBlocks)},
	}
}

func accountingPairs(ac alloc.Accounting) []pair {
	return []pair{
		{"Arena size", int64(ac.ArenaSize)},
		{"Free blocks", int64(ac.FreeBlocks)},
		{"Free bytes", int64(ac.FreeBytes)},
		{"Live blocks", int64(ac.LiveBlocks)},
		{"Live bytes", int64(ac.LiveBytes)},
		{"Header bytes", int64(ac.HeaderBytes)},
		{"Dead bytes", int64(ac.DeadBytes)},
	}
}

func (p *Printer) printPairsText(pairs []pair) error {
	mp := message.NewPrinter(p.opts.Language)
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv.label))
	}
	for _, kv := range pairs {
		label := fmt.Sprintf("%-*s", width+1, kv.label+":")
		if _, err := mp.Fprintf(p.writer, "%s  %d\n", label, kv.value); err != nil {
			return err
		}
	}
	return nil
}
