package main

import "time"

// RawItem is one ingested record: an item name and the resources it requires.
type RawItem struct {
	Name     string
	Requires []string
}

// Item is an eligible candidate annotated by the cost model.
// Items are shared by reference between search states and never mutated.
type Item struct {
	ID       int // position in the cost-sorted candidate list
	Name     string
	Requires ResourceSet
	Cost     float64
	Singular bool
}

// searchState is one node of the branch-and-bound frontier.
// candidates stays sorted ascending by cost; partial and forbidden are
// disjoint and neither overlaps candidates.
type searchState struct {
	candidates []*Item
	partial    []*Item
	forbidden  []*Item
	load       ResourceSet
}

type stateOutcome int

const (
	outcomeExpanded stateOutcome = iota
	outcomePrunedForbidden
	outcomePrunedCount
	outcomePrunedSingleton
)

func (o stateOutcome) String() string {
	switch o {
	case outcomeExpanded:
		return "expanded"
	case outcomePrunedForbidden:
		return "pruned_forbidden"
	case outcomePrunedCount:
		return "pruned_count"
	case outcomePrunedSingleton:
		return "pruned_singleton"
	}
	return "unknown"
}

// Stats counts what the search did.
type Stats struct {
	Popped          int
	Expanded        int
	PrunedForbidden int
	PrunedCount     int
	PrunedSingleton int
	Improvements    int
	MaxFrontier     int
	Filtered        int // items dropped before the search for exceeding the budget
	Elapsed         time.Duration
}

func (s *Stats) record(o stateOutcome) {
	switch o {
	case outcomeExpanded:
		s.Expanded++
	case outcomePrunedForbidden:
		s.PrunedForbidden++
	case outcomePrunedCount:
		s.PrunedCount++
	case outcomePrunedSingleton:
		s.PrunedSingleton++
	}
}

func (s *Stats) merge(o Stats) {
	s.Popped += o.Popped
	s.Expanded += o.Expanded
	s.PrunedForbidden += o.PrunedForbidden
	s.PrunedCount += o.PrunedCount
	s.PrunedSingleton += o.PrunedSingleton
	s.Improvements += o.Improvements
	if o.MaxFrontier > s.MaxFrontier {
		s.MaxFrontier = o.MaxFrontier
	}
}

// Improvement is reported to the observer each time a strictly larger
// feasible selection is found.
type Improvement struct {
	Score    int
	Budget   int
	LoadSize int
	Popped   int
}

// Result is the best selection found by a search.
type Result struct {
	Items    []*Item
	Size     int
	Load     ResourceSet
	Budget   int
	Complete bool // false when the context ended the search early
	Stats    Stats
}

// Names returns the selected item names in selection order.
func (r Result) Names() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Name
	}
	return out
}
