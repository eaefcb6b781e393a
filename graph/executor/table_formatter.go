package executor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// NamedStats labels the statistics of one check for display
type NamedStats struct {
	Name  string
	Stats PathCheckStats
}

var statsColumns = []string{"check", "runs", "found", "index probes", "edges scanned", "states visited"}

// FormatStats formats check statistics as a markdown table
func FormatStats(checks ...NamedStats) string {
	if len(checks) == 0 {
		return "_No checks_"
	}

	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(statsColumns))
	alignment[0] = tw.AlignNone
	for i := 1; i < len(alignment); i++ {
		alignment[i] = tw.AlignRight
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(statsColumns)

	for _, c := range checks {
		table.Append([]string{
			c.Name,
			formatCount(c.Stats.Runs),
			formatCount(c.Stats.ResultsFound),
			formatCount(c.Stats.IndexProbes),
			formatCount(c.Stats.EdgesScanned),
			formatCount(c.Stats.StatesVisited),
		})
	}

	table.Render()
	fmt.Fprintf(tableString, "\n_%d checks_\n", len(checks))

	return tableString.String()
}

func formatCount(n uint64) string {
	return strconv.FormatUint(n, 10)
}
