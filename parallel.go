package main

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// sharedSearch is the state shared by parallel workers: a pool of donated
// frontier states and the incumbent. Each worker keeps a private stack and
// only touches the pool when it runs dry or another worker is idle.
type sharedSearch struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pool    []searchState
	waiting int
	workers int
	done    bool

	idle    atomic.Int32 // mirrors waiting for lock-free reads
	aborted atomic.Bool

	// bestScore may be read stale-low by workers; that only weakens pruning.
	bestScore atomic.Int64
	bestMu    sync.Mutex
	best      []*Item
	bestLoad  ResourceSet
	improved  int
	popped    atomic.Int64
}

func newSharedSearch(workers int, root searchState) *sharedSearch {
	s := &sharedSearch{
		pool:    []searchState{root},
		workers: workers,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// take blocks until a state is available. It returns false once the
// search is finished: every worker is waiting on an empty pool, or abort ran.
func (s *sharedSearch) take() (searchState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waiting++
	s.idle.Store(int32(s.waiting))
	for !s.done && len(s.pool) == 0 {
		if s.waiting == s.workers {
			s.done = true
			s.cond.Broadcast()
			break
		}
		s.cond.Wait()
	}
	s.waiting--
	s.idle.Store(int32(s.waiting))
	if s.done {
		return searchState{}, false
	}

	st := s.pool[len(s.pool)-1]
	s.pool[len(s.pool)-1] = searchState{}
	s.pool = s.pool[:len(s.pool)-1]
	return st, true
}

// hungry reports whether some worker is waiting for work.
func (s *sharedSearch) hungry() bool {
	return s.idle.Load() > 0
}

func (s *sharedSearch) give(st searchState) {
	s.mu.Lock()
	s.pool = append(s.pool, st)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *sharedSearch) abort() {
	s.aborted.Store(true)
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *sharedSearch) offer(o *Optimizer, st searchState) int {
	score := int64(len(st.partial))
	if score <= s.bestScore.Load() {
		return int(s.bestScore.Load())
	}

	s.bestMu.Lock()
	defer s.bestMu.Unlock()
	if score > s.bestScore.Load() {
		s.best = st.partial
		s.bestLoad = st.load
		s.improved++
		s.bestScore.Store(score)
		if o.observer != nil {
			o.observer(Improvement{
				Score:    int(score),
				Budget:   o.budget,
				LoadSize: st.load.Cardinality(),
				Popped:   int(s.popped.Load()),
			})
		}
	}
	return int(s.bestScore.Load())
}

func (o *Optimizer) optimizeParallel(ctx context.Context) Result {
	shared := newSharedSearch(o.workers, o.rootState())
	if ctx.Err() != nil {
		shared.abort()
	}
	stop := context.AfterFunc(ctx, shared.abort)
	defer stop()

	offer := func(st searchState) int { return shared.offer(o, st) }

	var (
		g       errgroup.Group
		statsMu sync.Mutex
		total   Stats
	)
	for w := 0; w < o.workers; w++ {
		g.Go(func() error {
			var stats Stats
			var stack []searchState
			defer func() {
				statsMu.Lock()
				total.merge(stats)
				statsMu.Unlock()
			}()

			for {
				if len(stack) == 0 {
					st, ok := shared.take()
					if !ok {
						return nil
					}
					stack = append(stack, st)
				}
				if shared.aborted.Load() {
					return nil
				}

				st := stack[len(stack)-1]
				stack[len(stack)-1] = searchState{}
				stack = stack[:len(stack)-1]
				stats.Popped++
				shared.popped.Add(1)

				exclude, include, outcome := o.evaluate(st, offer)
				stats.record(outcome)
				if outcome != outcomeExpanded {
					continue
				}
				if shared.hungry() {
					shared.give(exclude)
				} else {
					stack = append(stack, exclude)
				}
				stack = append(stack, include)
				if len(stack) > stats.MaxFrontier {
					stats.MaxFrontier = len(stack)
				}
			}
		})
	}
	_ = g.Wait()

	total.Improvements = shared.improved
	return o.result(slices.Clone(shared.best), shared.bestLoad, !shared.aborted.Load(), total)
}
