package printer

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/message"

	"github.com/joshuapare/arenakit/arena/alloc"
)

func (p *Printer) printReportTable(r alloc.Report) error {
	table := tablewriter.NewWriter(p.writer)
	table.SetHeader([]string{"Node", "Offset", "Size", "Next"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, n := range r.Nodes {
		table.Append([]string{
			strconv.Itoa(n.Index),
			alloc.ID(n.Offset),
			strconv.Itoa(n.Size),
			alloc.ID(n.Next),
		})
	}
	table.Render()
	_, err := fmt.Fprintf(p.writer, "Head: %s  Free memory: %d\n", alloc.ID(r.Head), r.FreeBytes)
	return err
}

func (p *Printer) printPairsTable(pairs []pair) error {
	mp := message.NewPrinter(p.opts.Language)
	table := tablewriter.NewWriter(p.writer)
	table.SetHeader([]string{"Counter", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, kv := range pairs {
		table.Append([]string{kv.label, mp.Sprintf("%d", kv.value)})
	}
	table.Render()
	return nil
}
