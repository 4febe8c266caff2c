package pipeline

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"orgtree/internal"
	"orgtree/internal/util"
)

const (
	minDisplayNameLen = 2
	processedAtLayout = "2006-01-02T15:04:05.000Z"
)

// Aggregate filters and orders consolidated teams into the output document.
// rawSize is the number of top-level keys in the raw input.
func Aggregate(teams []internal.TeamRecord, rawSize int, now time.Time) internal.Document {
	kept := make([]internal.TeamRecord, 0, len(teams))
	total := 0
	for _, t := range teams {
		if util.Length(t.Name) < minDisplayNameLen {
			continue
		}
		kept = append(kept, t.Clone())
		total += t.MentionCount
	}

	col := collate.New(language.English)
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.MentionCount != b.MentionCount {
			return a.MentionCount > b.MentionCount
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	return internal.NewDocument(kept, internal.Metadata{
		ProcessedAt:   now.UTC().Format(processedAtLayout),
		TotalTeams:    len(kept),
		TotalMentions: total,
		RawDataSize:   rawSize,
	})
}
