package pipeline

import (
	"slices"

	"orgtree/internal"
	"orgtree/internal/catalog"
	"orgtree/internal/util"
)

type treeBuilder struct {
	index *catalog.Index
}

// BuildTeams walks the raw hierarchy and returns one record per distinct
// cleaned name in first-creation order. Each call starts from empty state.
func BuildTeams(raw internal.RawNode) []internal.TeamRecord {
	b := &treeBuilder{index: catalog.NewIndex()}
	b.walk(raw, "", 0, nil)
	b.index.Relevel()
	return b.index.Teams()
}

// walk skips a label that cleans to nothing or repeats a name on the current
// descent, and with it the whole subtree below.
func (b *treeBuilder) walk(node internal.RawNode, parentID string, level int, path []string) {
	for _, entry := range node {
		name := CleanTeamName(entry.Label)
		if name == "" || slices.Contains(path, name) {
			continue
		}
		id := util.TeamID(name)

		team := b.index.Get(id)
		if team == nil {
			team = b.index.Add(internal.TeamRecord{
				ID:           id,
				Name:         name,
				Level:        level,
				MentionCount: 1,
				Category:     Categorize(name),
			})
			if parentID != "" {
				b.index.Link(id, parentID)
			}
		} else {
			team.MentionCount++
			// teams live at their shallowest observed position
			if parentID != "" && (team.Parent == "" || level < team.Level) {
				if b.index.Link(id, parentID) {
					team.Level = level
				}
			}
		}

		if len(entry.Children) > 0 {
			b.walk(entry.Children, id, level+1, append(slices.Clip(path), name))
		}
	}
}
