package pipeline

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"orgtree/internal"
)

// WriteSummary renders per-category team and mention totals.
func WriteSummary(w io.Writer, doc internal.Document) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Teams", "Mentions"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range internal.Categories {
		members, ok := doc.Categories[c]
		if !ok {
			continue
		}
		mentions := 0
		for _, t := range members {
			mentions += t.MentionCount
		}
		table.Append([]string{string(c), humanize.Comma(int64(len(members))), humanize.Comma(int64(mentions))})
	}
	table.SetFooter([]string{"Total", humanize.Comma(int64(doc.Metadata.TotalTeams)), humanize.Comma(int64(doc.Metadata.TotalMentions))})
	table.Render()
}

// WriteTeams renders teams in the order given.
func WriteTeams(w io.Writer, teams []internal.TeamRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Parent", "Level", "Mentions", "Subteams", "Category"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, t := range teams {
		table.Append([]string{
			strconv.Itoa(i + 1),
			t.Name,
			t.Parent,
			strconv.Itoa(t.Level),
			humanize.Comma(int64(t.MentionCount)),
			strconv.Itoa(len(t.Children)),
			string(t.Category),
		})
	}
	table.Render()
}
