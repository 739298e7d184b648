package main

import (
	"cmp"
	"slices"
)

// ── Resource universe ───────────────────────────────────────────────

// Universe indexes the distinct resources of the eligible items.
// It is immutable once built.
type Universe struct {
	names []string
	index map[string]int
}

func newUniverse(names []string) *Universe {
	slices.Sort(names)
	u := &Universe{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		u.index[n] = i
	}
	return u
}

// Len returns the number of indexed resources.
func (u *Universe) Len() int { return len(u.names) }

// Index returns the index of a resource name.
func (u *Universe) Index(name string) (int, bool) {
	i, ok := u.index[name]
	return i, ok
}

// Name returns the resource name at index i.
func (u *Universe) Name(i int) string { return u.names[i] }

// Names resolves every member of s to its resource name, in index order.
func (u *Universe) Names(s ResourceSet) []string {
	if s == nil {
		return nil
	}
	idx := s.Indices()
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = u.names[v]
	}
	return out
}

// ── Cost model ──────────────────────────────────────────────────────

// CandidateSet is the search input: eligible items sorted ascending by cost.
type CandidateSet struct {
	Universe *Universe
	Items    []*Item
	Filtered int
	Backend  Backend
}

// EmptySet returns an empty set of the candidate backend.
func (cs *CandidateSet) EmptySet() ResourceSet {
	return cs.Backend.NewSet(cs.Universe.Len())
}

// uniqueRequires returns the distinct, sorted requirement names of an item.
func uniqueRequires(reqs []string) []string {
	out := slices.Clone(reqs)
	slices.Sort(out)
	return slices.Compact(out)
}

// BuildCandidates filters items whose own requirement set exceeds the budget,
// indexes the remaining resources and annotates every eligible item with its
// scarcity cost: the sum of 1/cardinality over its resources, where cardinality
// counts the eligible items requiring that resource.
func BuildCandidates(raw []RawItem, budget int, backend Backend) *CandidateSet {
	type eligible struct {
		name string
		reqs []string
	}

	cardinality := make(map[string]int)
	var kept []eligible
	filtered := 0
	for _, r := range raw {
		reqs := uniqueRequires(r.Requires)
		if len(reqs) > budget {
			filtered++
			continue
		}
		for _, name := range reqs {
			cardinality[name]++
		}
		kept = append(kept, eligible{name: r.Name, reqs: reqs})
	}

	names := make([]string, 0, len(cardinality))
	for name := range cardinality {
		names = append(names, name)
	}
	u := newUniverse(names)
	backend = backend.Resolve(u.Len())

	items := make([]*Item, len(kept))
	for i, e := range kept {
		set := backend.NewSet(u.Len())
		item := &Item{Name: e.name, Requires: set}
		for _, name := range e.reqs {
			idx, _ := u.Index(name)
			set.Insert(idx)
			item.Cost += 1 / float64(cardinality[name])
			if cardinality[name] == 1 {
				item.Singular = true
			}
		}
		items[i] = item
	}

	slices.SortStableFunc(items, func(a, b *Item) int { return cmp.Compare(a.Cost, b.Cost) })
	for i, it := range items {
		it.ID = i
	}

	return &CandidateSet{
		Universe: u,
		Items:    items,
		Filtered: filtered,
		Backend:  backend,
	}
}

// ── Bounds ──────────────────────────────────────────────────────────

// singletonBound is an upper bound on how many of remaining can still be added
// with budgetLeft resources to spare. Non-singular items are assumed free;
// each singular item brings at least one resource nobody else holds, so at
// most budgetLeft of them fit.
func singletonBound(remaining []*Item, budgetLeft int) int {
	singular := 0
	for _, it := range remaining {
		if it.Singular {
			singular++
		}
	}
	return len(remaining) - singular + min(singular, budgetLeft)
}

// forbiddenCheck reports whether some excluded item already fits entirely in
// load. Any completion of such a state is dominated by the same completion
// plus that item, which the sibling include branch enumerates.
func forbiddenCheck(forbidden []*Item, load ResourceSet) bool {
	for _, it := range forbidden {
		if it.Requires.IsSubsetOf(load) {
			return true
		}
	}
	return false
}
