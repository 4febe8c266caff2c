package internal

// RawEntry is one labelled node of the scraped hierarchy.
type RawEntry struct {
	Label    string
	Children RawNode
}

// RawNode is an ordered mapping from raw label to its children. Labels are
// unique within one node; order is the order the labels were first seen.
type RawNode []RawEntry

// Index returns the position of label, or -1.
func (n RawNode) Index(label string) int {
	for i, e := range n {
		if e.Label == label {
			return i
		}
	}
	return -1
}

// Put sets label's children, keeping the label's first position when it
// already exists. This mirrors JSON object semantics for repeated keys.
func (n RawNode) Put(label string, children RawNode) RawNode {
	if i := n.Index(label); i >= 0 {
		n[i].Children = children
		return n
	}
	return append(n, RawEntry{Label: label, Children: children})
}

// Merge adds label and folds children into any existing entry recursively.
func (n RawNode) Merge(label string, children RawNode) RawNode {
	i := n.Index(label)
	if i < 0 {
		return append(n, RawEntry{Label: label, Children: children})
	}
	for _, c := range children {
		n[i].Children = n[i].Children.Merge(c.Label, c.Children)
	}
	return n
}

// MergePath inserts a root-to-leaf label path.
func (n RawNode) MergePath(path []string) RawNode {
	if len(path) == 0 {
		return n
	}
	var tail RawNode
	if len(path) > 1 {
		tail = RawNode(nil).MergePath(path[1:])
	}
	return n.Merge(path[0], tail)
}

type Category string

const (
	CategoryResearch    Category = "Research & AI/ML"
	CategoryEngineering Category = "Engineering"
	CategoryMarketing   Category = "Marketing & Communications"
	CategoryOperations  Category = "Operations & Business"
	CategorySupport     Category = "Support & Quality"
	CategoryManagement  Category = "Management & Strategy"
	CategoryOther       Category = "Other"
)

// Categories lists every category in classification priority order, Other last.
var Categories = []Category{
	CategoryResearch,
	CategoryEngineering,
	CategoryMarketing,
	CategoryOperations,
	CategorySupport,
	CategoryManagement,
	CategoryOther,
}

// ParseCategory maps a label to its Category; unknown or empty labels are Other.
func ParseCategory(label string) Category {
	for _, c := range Categories {
		if string(c) == label {
			return c
		}
	}
	return CategoryOther
}

// TeamRecord is the canonical, deduplicated representation of one team.
// An empty Parent means the team is top-level.
type TeamRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Parent       string   `json:"parent,omitempty"`
	Children     []string `json:"children"`
	Level        int      `json:"level"`
	MentionCount int      `json:"mentionCount"`
	Category     Category `json:"category"`
}

// Clone returns a copy that shares no slice storage with t.
func (t TeamRecord) Clone() TeamRecord {
	out := t
	out.Children = append([]string{}, t.Children...)
	return out
}

type Metadata struct {
	ProcessedAt   string `json:"processedAt"`
	TotalTeams    int    `json:"totalTeams"`
	TotalMentions int    `json:"totalMentions"`
	RawDataSize   int    `json:"rawDataSize"`
}

// Document is the processed output consumed by the presentation layer.
type Document struct {
	Teams         []TeamRecord              `json:"teams"`
	TopLevelTeams []TeamRecord              `json:"topLevelTeams"`
	Categories    map[Category][]TeamRecord `json:"categories"`
	Metadata      Metadata                  `json:"metadata"`
}

// NewDocument derives the top-level list and category buckets from teams,
// which must already be in display order. Only categories with members
// appear in the bucket map.
func NewDocument(teams []TeamRecord, meta Metadata) Document {
	doc := Document{
		Teams:         teams,
		TopLevelTeams: []TeamRecord{},
		Categories:    map[Category][]TeamRecord{},
		Metadata:      meta,
	}
	if doc.Teams == nil {
		doc.Teams = []TeamRecord{}
	}
	for _, t := range teams {
		if t.Parent == "" {
			doc.TopLevelTeams = append(doc.TopLevelTeams, t)
		}
		c := ParseCategory(string(t.Category))
		doc.Categories[c] = append(doc.Categories[c], t)
	}
	return doc
}

type InputType string

const (
	InputJSON InputType = "json"
	InputHTML InputType = "html"
	InputXLSX InputType = "xlsx"
)
