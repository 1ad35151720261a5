package history

import (
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// timeLayout formats run timestamps in the table.
const timeLayout = "2006-01-02 15:04:05"

// RenderTable formats runs as a rounded table.
func RenderTable(runs []*Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Request", "Kind", "ID", "State", "Failures", "Duration", "Links / Error"})

	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.StartedAt.Local().Format(timeLayout),
			run.RequestID,
			run.Kind,
			run.RefID,
			run.State,
			strconv.Itoa(run.Failures),
			formatDuration(run),
			outcome(run),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft}, //nolint:mnd // Failures column.
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft}, //nolint:mnd // Duration column.
	})

	return tw.Render()
}

// formatDuration returns the run duration, or "-" while the run is unfinished.
func formatDuration(run *Run) string {
	if run.FinishedAt.IsZero() || run.StartedAt.IsZero() {
		return "-"
	}

	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

// outcome returns the links of a run, or its error when it failed.
func outcome(run *Run) string {
	if run.Error != "" {
		return run.Error
	}

	return strings.Join(run.Links, "\n")
}
