package main

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/wbrown/janus-paths/graph/storage"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number of nodes, edges and names in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Stats()
			if err != nil {
				return err
			}
			writeStats(a.out, st)
			return nil
		},
	}
}

func writeStats(w io.Writer, st storage.Stats) {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment([]tw.Align{tw.AlignNone, tw.AlignRight}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"index", "entries"})
	table.Append([]string{storage.NodeIndex.String(), humanize.Comma(st.Nodes)})
	table.Append([]string{storage.EdgeTable.String(), humanize.Comma(st.Edges)})
	table.Append([]string{storage.NameIndex.String(), humanize.Comma(st.Names)})
	table.Render()
}
