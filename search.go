package main

import (
	"context"
	"runtime"
	"slices"
	"time"
)

// cancelCheckInterval is how many pops pass between context checks.
const cancelCheckInterval = 1024

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithObserver registers a callback invoked on every new best selection.
// In parallel runs calls are serialized but may come from any worker.
func WithObserver(fn func(Improvement)) Option {
	return func(o *Optimizer) { o.observer = fn }
}

// WithWorkers sets the number of search workers. 1 runs the sequential
// engine; 0 or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Optimizer) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithMetrics records run totals into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// ── Optimizer ───────────────────────────────────────────────────────

// Optimizer runs a depth-first branch and bound over item subsets looking
// for the largest selection whose resource union fits the budget.
type Optimizer struct {
	candidates *CandidateSet
	budget     int
	workers    int
	observer   func(Improvement)
	metrics    *Metrics

	// sequential incumbent
	bestScore int
	best      []*Item
	bestLoad  ResourceSet
	stats     Stats
}

// NewOptimizer creates an optimizer over the candidates built for budget.
func NewOptimizer(candidates *CandidateSet, budget int, opts ...Option) *Optimizer {
	o := &Optimizer{
		candidates: candidates,
		budget:     budget,
		workers:    1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Optimizer) rootState() searchState {
	return searchState{
		candidates: o.candidates.Items,
		load:       o.candidates.EmptySet(),
	}
}

// evaluate processes one popped state. offer is called with the state when
// its partial selection may beat the incumbent and returns the incumbent score
// afterwards. On expansion both children are returned; the exclude branch
// must be pushed before the include branch.
func (o *Optimizer) evaluate(st searchState, offer func(searchState) int) (exclude, include searchState, outcome stateOutcome) {
	if forbiddenCheck(st.forbidden, st.load) {
		return exclude, include, outcomePrunedForbidden
	}

	score := len(st.partial)
	bestScore := offer(st)
	threshold := bestScore - score

	if len(st.candidates) <= threshold {
		return exclude, include, outcomePrunedCount
	}
	budgetLeft := o.budget - st.load.Cardinality()
	if singletonBound(st.candidates, budgetLeft) <= threshold {
		return exclude, include, outcomePrunedSingleton
	}

	last := len(st.candidates) - 1
	pick := st.candidates[last]
	rest := st.candidates[:last:last]

	newLoad := st.load.Union(pick.Requires)
	feasible := make([]*Item, 0, len(rest))
	for _, c := range rest {
		if newLoad.UnionCardinality(c.Requires) <= o.budget {
			feasible = append(feasible, c)
		}
	}

	exclude = searchState{
		candidates: rest,
		partial:    st.partial,
		forbidden:  append(slices.Clip(st.forbidden), pick),
		load:       st.load,
	}
	include = searchState{
		candidates: feasible,
		partial:    append(slices.Clip(st.partial), pick),
		forbidden:  st.forbidden,
		load:       newLoad,
	}
	return exclude, include, outcomeExpanded
}

func (o *Optimizer) offerSequential(st searchState) int {
	if score := len(st.partial); score > o.bestScore {
		o.bestScore = score
		o.best = st.partial
		o.bestLoad = st.load
		o.stats.Improvements++
		if o.observer != nil {
			o.observer(Improvement{
				Score:    score,
				Budget:   o.budget,
				LoadSize: st.load.Cardinality(),
				Popped:   o.stats.Popped,
			})
		}
	}
	return o.bestScore
}

// Optimize runs the search until the frontier is exhausted or ctx ends.
// It never fails: on cancellation the best selection found so far is
// returned with Complete unset.
func (o *Optimizer) Optimize(ctx context.Context) Result {
	start := time.Now()
	var res Result
	if o.workers > 1 {
		res = o.optimizeParallel(ctx)
	} else {
		res = o.optimizeSequential(ctx)
	}
	res.Stats.Filtered = o.candidates.Filtered
	res.Stats.Elapsed = time.Since(start)
	o.metrics.ObserveSearch(res)
	return res
}

func (o *Optimizer) optimizeSequential(ctx context.Context) Result {
	o.bestScore = 0
	o.best = nil
	o.bestLoad = nil
	o.stats = Stats{}

	stack := []searchState{o.rootState()}
	complete := true
	for len(stack) > 0 {
		if o.stats.Popped%cancelCheckInterval == 0 && ctx.Err() != nil {
			complete = false
			break
		}
		st := stack[len(stack)-1]
		stack[len(stack)-1] = searchState{}
		stack = stack[:len(stack)-1]
		o.stats.Popped++

		exclude, include, outcome := o.evaluate(st, o.offerSequential)
		o.stats.record(outcome)
		if outcome != outcomeExpanded {
			continue
		}
		stack = append(stack, exclude, include)
		if len(stack) > o.stats.MaxFrontier {
			o.stats.MaxFrontier = len(stack)
		}
	}

	return o.result(o.best, o.bestLoad, complete, o.stats)
}

func (o *Optimizer) result(best []*Item, load ResourceSet, complete bool, stats Stats) Result {
	if load == nil {
		load = o.candidates.EmptySet()
	}
	return Result{
		Items:    slices.Clone(best),
		Size:     len(best),
		Load:     load,
		Budget:   o.budget,
		Complete: complete,
		Stats:    stats,
	}
}
