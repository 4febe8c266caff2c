package pipeline

import (
	"time"

	"orgtree/internal"
)

const (
	StageBuild       = "build"
	StageConsolidate = "consolidate"
	StageAggregate   = "aggregate"
)

// StageFunc observes one completed stage: its name, the records it produced
// and how long it took.
type StageFunc func(stage string, records int, took time.Duration)

// Run is the pure transform from a raw hierarchy to the output document.
// Every call starts from empty state.
func Run(raw internal.RawNode, now time.Time) internal.Document {
	return run(raw, now, nil)
}

func run(raw internal.RawNode, now time.Time, observe StageFunc) internal.Document {
	if observe == nil {
		observe = func(string, int, time.Duration) {}
	}

	start := time.Now()
	teams := BuildTeams(raw)
	observe(StageBuild, len(teams), time.Since(start))

	start = time.Now()
	teams = ConsolidateTeams(teams)
	observe(StageConsolidate, len(teams), time.Since(start))

	start = time.Now()
	doc := Aggregate(teams, len(raw), now)
	observe(StageAggregate, len(doc.Teams), time.Since(start))

	return doc
}
