package pipeline

import (
	"strings"

	"orgtree/internal"
	"orgtree/internal/catalog"
	"orgtree/internal/util"
)

const (
	shortWordMaxLen    = 3
	minGroupSize       = 3
	maxPrefixWords     = 3
	minPrefixLen       = 3
	minParentPrefixLen = 4
	minParentNameLen   = 2
)

type consolidator struct {
	index     *catalog.Index
	processed map[string]bool
}

// ConsolidateTeams merges near-duplicate names and files related teams under
// synthesized parents. The input slice is not modified.
//
// Passes run in order and each sees the previous one's survivors:
//  1. names one letter apart collapse into the longest variant;
//  2. teams sharing a short first word (3 letters or fewer) group under it
//     when there are at least three of them;
//  3. remaining multi-word teams group under their most frequent shared
//     leading phrase.
//
// Candidate searches are pairwise, so cost is quadratic in team count.
func ConsolidateTeams(teams []internal.TeamRecord) []internal.TeamRecord {
	c := &consolidator{index: catalog.BuildIndex(teams)}

	ids := make([]string, 0, len(teams))
	for _, t := range c.index.Teams() {
		ids = append(ids, t.ID)
	}

	survivors := c.mergeNearDuplicates(ids)
	c.processed = map[string]bool{}
	c.groupShortFirstWords(survivors)
	c.groupCommonPrefixes(survivors)

	c.index.Relevel()
	return c.index.Teams()
}

func (c *consolidator) mergeNearDuplicates(ids []string) []string {
	processed := map[string]bool{}
	survivors := make([]string, 0, len(ids))

	for _, id := range ids {
		if processed[id] {
			continue
		}
		team := c.index.Get(id)
		lower := strings.ToLower(team.Name)

		group := []*internal.TeamRecord{team}
		for _, other := range ids {
			if other == id || processed[other] {
				continue
			}
			o := c.index.Get(other)
			if util.DiffersByOneLetter(strings.ToLower(o.Name), lower) {
				group = append(group, o)
			}
		}

		best, total := group[0], 0
		for _, v := range group {
			total += v.MentionCount
			if util.Length(v.Name) > util.Length(best.Name) {
				best = v
			}
		}
		best.MentionCount = total

		for _, v := range group {
			processed[v.ID] = true
			if v.ID != best.ID {
				c.index.Merge(best.ID, v.ID)
			}
		}
		survivors = append(survivors, best.ID)
	}
	return survivors
}

func (c *consolidator) groupShortFirstWords(ids []string) {
	groups := map[string][]string{}
	var keys []string
	for _, id := range ids {
		name := c.index.Get(id).Name
		if util.WordCount(name) < 2 {
			continue
		}
		first := strings.ToLower(util.FirstWord(name))
		if util.Length(first) > shortWordMaxLen {
			continue
		}
		if _, ok := groups[first]; !ok {
			keys = append(keys, first)
		}
		groups[first] = append(groups[first], id)
	}

	for _, key := range keys {
		members := groups[key]
		if len(members) < minGroupSize {
			continue
		}
		c.attachGroup(util.FirstWord(c.index.Get(members[0]).Name), members)
	}
}

func (c *consolidator) groupCommonPrefixes(ids []string) {
	for _, id := range ids {
		if c.processed[id] {
			continue
		}
		name := c.index.Get(id).Name
		if util.WordCount(name) < 2 {
			c.processed[id] = true
			continue
		}

		firstWord := util.FirstWord(name)
		first := strings.ToLower(firstWord)
		var candidates, names []string
		for _, other := range ids {
			if c.processed[other] {
				continue
			}
			o := c.index.Get(other).Name
			if util.WordCount(o) >= 2 && strings.ToLower(util.FirstWord(o)) == first {
				candidates = append(candidates, other)
				names = append(names, o)
			}
		}

		if len(candidates) >= minGroupSize && util.Length(first) <= shortWordMaxLen &&
			!c.index.Synthesized(util.TeamID(firstWord)) {
			if c.attachGroup(util.ProperCase(firstWord), candidates) {
				continue
			}
		}

		if len(candidates) < 2 {
			c.processed[id] = true
			continue
		}
		if prefix := bestPrefix(names); util.Length(prefix) >= minParentPrefixLen {
			c.attachGroup(prefix, candidates)
			continue
		}
		for _, cand := range candidates {
			c.processed[cand] = true
		}
	}
}

// attachGroup files members under the record named name, creating it when no
// record with that id exists. Only synthesized parents accumulate their
// children's mention counts. It reports false, touching nothing, when name is
// too short to stand as a team.
func (c *consolidator) attachGroup(name string, members []string) bool {
	if util.Length(name) < minParentNameLen {
		return false
	}
	parentID := util.TeamID(name)
	parent := c.index.Get(parentID)
	if parent == nil {
		parent = c.index.Add(internal.TeamRecord{
			ID:       parentID,
			Name:     name,
			Category: Categorize(name),
		})
		c.index.MarkSynthesized(parentID)
	}
	synthesized := c.index.Synthesized(parentID)

	for _, id := range members {
		c.processed[id] = true
		if id == parentID || !c.index.Link(id, parentID) {
			continue
		}
		if synthesized {
			parent.MentionCount += c.index.Get(id).MentionCount
		}
	}
	return true
}

// bestPrefix returns the most frequent leading phrase of one to three words
// shared by names, or "" when none occurs twice. A name's full text never
// counts as its own prefix. Ties go to the phrase seen first.
func bestPrefix(names []string) string {
	counts := map[string]int{}
	var seen []string
	for _, name := range names {
		words := util.Words(name)
		for n := 1; n <= min(maxPrefixWords, len(words)-1); n++ {
			prefix := strings.Join(words[:n], " ")
			if n == 1 {
				prefix = preferPlural(prefix, names)
			}
			if _, ok := counts[prefix]; !ok {
				seen = append(seen, prefix)
			}
			counts[prefix]++
		}
	}

	best, bestCount := "", 0
	for _, p := range seen {
		if n := counts[p]; n > bestCount && n > 1 && util.Length(p) >= minPrefixLen {
			best, bestCount = p, n
		}
	}
	return best
}

// preferPlural returns word+"s" when, among multi-word names starting with
// word, those starting with the plural form are at least as many.
func preferPlural(word string, names []string) string {
	if strings.HasSuffix(word, "s") {
		return word
	}
	singular := strings.ToLower(word)
	plural := singular + "s"
	singulars, plurals := 0, 0
	for _, n := range names {
		lower := strings.ToLower(n)
		if util.WordCount(n) < 2 || !strings.HasPrefix(lower, singular) {
			continue
		}
		singulars++
		if strings.HasPrefix(lower, plural) {
			plurals++
		}
	}
	if singulars > 0 && plurals >= singulars {
		return word + "s"
	}
	return word
}
