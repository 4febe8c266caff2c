package catalog

import (
	"slices"

	"orgtree/internal"
)

// Index owns team records by id in registration order. Parent and children
// fields change only through Link, Unlink, Merge and Remove, which keep both
// sides of every edge in agreement and never introduce a cycle.
type Index struct {
	byID        map[string]*internal.TeamRecord
	order       []string
	synthesized map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		byID:        map[string]*internal.TeamRecord{},
		synthesized: map[string]struct{}{},
	}
}

// BuildIndex registers copies of teams. Later records with a repeated id are
// ignored; dangling references, one-sided edges and cycles are dropped.
func BuildIndex(teams []internal.TeamRecord) *Index {
	idx := NewIndex()
	for _, t := range teams {
		if idx.Has(t.ID) {
			continue
		}
		idx.Add(t)
	}
	idx.reconcile()
	return idx
}

func (x *Index) Len() int { return len(x.order) }

func (x *Index) Has(id string) bool {
	_, ok := x.byID[id]
	return ok
}

// Get returns the live record for id, or nil.
func (x *Index) Get(id string) *internal.TeamRecord {
	return x.byID[id]
}

// Add registers a copy of team and returns the live record. An existing
// record with the same id is returned unchanged.
func (x *Index) Add(team internal.TeamRecord) *internal.TeamRecord {
	if existing, ok := x.byID[team.ID]; ok {
		return existing
	}
	rec := team.Clone()
	x.byID[rec.ID] = &rec
	x.order = append(x.order, rec.ID)
	return &rec
}

func (x *Index) MarkSynthesized(id string) {
	x.synthesized[id] = struct{}{}
}

// Synthesized reports whether id was created to group other records.
func (x *Index) Synthesized(id string) bool {
	_, ok := x.synthesized[id]
	return ok
}

// IsAncestor reports whether ancestorID appears on id's parent chain.
func (x *Index) IsAncestor(ancestorID, id string) bool {
	seen := map[string]struct{}{}
	cur := x.byID[id]
	for cur != nil && cur.Parent != "" {
		if cur.Parent == ancestorID {
			return true
		}
		if _, loop := seen[cur.Parent]; loop {
			return false
		}
		seen[cur.Parent] = struct{}{}
		cur = x.byID[cur.Parent]
	}
	return false
}

// Link files childID under parentID, detaching it from any previous parent.
// It refuses (returns false) unknown ids and links that would form a cycle.
func (x *Index) Link(childID, parentID string) bool {
	child, parent := x.byID[childID], x.byID[parentID]
	if child == nil || parent == nil || childID == parentID || x.IsAncestor(childID, parentID) {
		return false
	}
	if child.Parent != parentID {
		x.Unlink(childID)
		child.Parent = parentID
	}
	if !slices.Contains(parent.Children, childID) {
		parent.Children = append(parent.Children, childID)
	}
	return true
}

// Unlink makes childID top-level.
func (x *Index) Unlink(childID string) {
	child := x.byID[childID]
	if child == nil || child.Parent == "" {
		return
	}
	if parent := x.byID[child.Parent]; parent != nil {
		parent.Children = slices.DeleteFunc(parent.Children, func(id string) bool { return id == childID })
	}
	child.Parent = ""
}

// Remove deletes id. Its children become top-level.
func (x *Index) Remove(id string) {
	rec := x.byID[id]
	if rec == nil {
		return
	}
	for _, c := range slices.Clone(rec.Children) {
		x.Unlink(c)
	}
	x.Unlink(id)
	delete(x.byID, id)
	delete(x.synthesized, id)
	x.order = slices.DeleteFunc(x.order, func(v string) bool { return v == id })
}

// Merge folds variantID into survivorID: the variant's children move to the
// survivor and the variant is removed. Mention counts are left to the caller.
func (x *Index) Merge(survivorID, variantID string) {
	survivor, variant := x.byID[survivorID], x.byID[variantID]
	if survivor == nil || variant == nil || survivorID == variantID {
		return
	}
	for _, c := range slices.Clone(variant.Children) {
		if c == survivorID {
			continue
		}
		if !x.Link(c, survivorID) {
			x.Unlink(c)
		}
	}
	if survivor.Parent == variantID {
		grand := variant.Parent
		if grand == "" || !x.Link(survivorID, grand) {
			x.Unlink(survivorID)
		}
	}
	x.Remove(variantID)
}

// Relevel sets every root to level 0 and each child one below its parent.
func (x *Index) Relevel() {
	for _, id := range x.order {
		if rec := x.byID[id]; rec.Parent == "" {
			x.setLevel(rec, 0)
		}
	}
}

func (x *Index) setLevel(rec *internal.TeamRecord, level int) {
	rec.Level = level
	for _, c := range rec.Children {
		if child := x.byID[c]; child != nil && child.Parent == rec.ID {
			x.setLevel(child, level+1)
		}
	}
}

// Teams returns copies of all records in registration order.
func (x *Index) Teams() []internal.TeamRecord {
	out := make([]internal.TeamRecord, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.byID[id].Clone())
	}
	return out
}

func (x *Index) reconcile() {
	for _, id := range x.order {
		rec := x.byID[id]
		var kept []string
		for _, c := range rec.Children {
			child := x.byID[c]
			if child == nil || child.Parent != id || slices.Contains(kept, c) {
				continue
			}
			kept = append(kept, c)
		}
		rec.Children = kept
	}
	for _, id := range x.order {
		rec := x.byID[id]
		if rec.Parent == "" {
			continue
		}
		parent := x.byID[rec.Parent]
		if parent == nil || rec.Parent == id {
			rec.Parent = ""
			continue
		}
		if !slices.Contains(parent.Children, id) {
			parent.Children = append(parent.Children, id)
		}
	}
	for _, id := range x.order {
		if x.IsAncestor(id, id) {
			x.Unlink(id)
		}
	}
	x.Relevel()
}
