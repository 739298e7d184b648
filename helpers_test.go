package main

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func rawItems(pairs ...any) []RawItem {
	var out []RawItem
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, RawItem{Name: pairs[i].(string), Requires: pairs[i+1].([]string)})
	}
	return out
}

func req(rs ...string) []string { return rs }

// bruteForceOptimum enumerates every subset of the eligible items and returns
// the largest size whose resource union fits the budget.
func bruteForceOptimum(t *testing.T, raw []RawItem, budget int) int {
	t.Helper()

	bit := map[string]uint{}
	var masks []uint64
	for _, r := range raw {
		var m uint64
		for _, name := range r.Requires {
			b, ok := bit[name]
			if !ok {
				b = uint(len(bit))
				bit[name] = b
			}
			m |= 1 << b
		}
		if bits.OnesCount64(m) <= budget {
			masks = append(masks, m)
		}
	}
	require.LessOrEqual(t, len(bit), 64, "oracle supports at most 64 resources")
	require.LessOrEqual(t, len(masks), 20, "oracle supports at most 20 items")

	best := 0
	for sub := 0; sub < 1<<len(masks); sub++ {
		n := bits.OnesCount(uint(sub))
		if n <= best {
			continue
		}
		var union uint64
		for i, m := range masks {
			if sub&(1<<i) != 0 {
				union |= m
			}
		}
		if bits.OnesCount64(union) <= budget {
			best = n
		}
	}
	return best
}

// randomInstance draws up to maxItems items over a small resource pool.
func randomInstance(rng *rand.Rand, maxItems int) []RawItem {
	return randomItems(rng, rng.IntN(maxItems+1))
}

// randomItems draws exactly n items over a small resource pool.
func randomItems(rng *rand.Rand, n int) []RawItem {
	pool := 4 + rng.IntN(6)
	out := make([]RawItem, n)
	for i := range out {
		k := rng.IntN(5)
		reqs := make([]string, 0, k)
		for j := 0; j < k; j++ {
			reqs = append(reqs, fmt.Sprintf("r%d", rng.IntN(pool)))
		}
		out[i] = RawItem{Name: fmt.Sprintf("item%d", i), Requires: reqs}
	}
	return out
}

func solve(raw []RawItem, budget int, backend Backend, opts ...Option) Result {
	cs := BuildCandidates(raw, budget, backend)
	return NewOptimizer(cs, budget, opts...).Optimize(context.Background())
}

// requireFeasible checks the result against the raw input: every item is
// eligible, none repeats, and the union fits the budget.
func requireFeasible(t *testing.T, raw []RawItem, res Result) {
	t.Helper()

	byName := map[string][]string{}
	for _, r := range raw {
		byName[r.Name] = r.Requires
	}
	union := map[string]bool{}
	seen := map[string]bool{}
	for _, it := range res.Items {
		require.False(t, seen[it.Name], "item %s selected twice", it.Name)
		seen[it.Name] = true
		reqs, ok := byName[it.Name]
		require.True(t, ok, "unknown item %s", it.Name)
		for _, r := range reqs {
			union[r] = true
		}
	}
	require.LessOrEqual(t, len(union), res.Budget)
	require.Equal(t, len(union), res.Load.Cardinality())
	require.Equal(t, len(res.Items), res.Size)
}
