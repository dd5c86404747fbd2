package cli

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/forPelevin/mediashop/internal/types"
)

func renderJobs(jobs []types.JobRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Job", "Kind", "Medium", "State", "Started", "Took", "Steps", "Result"})
	for _, j := range jobs {
		result := j.Output
		if j.State == types.JobFailed {
			result = j.Error
		}
		tw.AppendRow(table.Row{
			shortID(j.JobID),
			string(j.Kind),
			string(j.Medium),
			string(j.State),
			j.StartedAt.Local().Format("2006-01-02 15:04:05"),
			j.UpdatedAt.Sub(j.StartedAt).Round(100 * time.Millisecond).String(),
			strconv.Itoa(j.Transitions),
			text.Trim(result, 60),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
