package main

import (
	"context"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Optimizer", func() {
	var (
		budget int
		raw    []RawItem
		res    Result
	)

	JustBeforeEach(func() {
		cs := BuildCandidates(raw, budget, BackendAuto)
		res = NewOptimizer(cs, budget).Optimize(context.Background())
	})

	Context("with one item per resource and a bundle of all of them", func() {
		BeforeEach(func() {
			raw = rawItems("A", req("x", "y", "z"), "B", req("x"), "C", req("y"), "D", req("z"))
			budget = 2
		})

		It("should pick two singles", func() {
			Expect(res.Size).To(Equal(2))
			Expect(res.Names()).NotTo(ContainElement("A"))
			Expect(res.Load.Cardinality()).To(Equal(2))
		})

		It("should report the bundle as filtered", func() {
			Expect(res.Stats.Filtered).To(Equal(1))
		})
	})

	Context("with a shared pair at budget 1", func() {
		BeforeEach(func() {
			raw = rawItems("A", req("x"), "B", req("y"), "C", req("x", "y"))
			budget = 1
		})

		It("should never exceed the budget", func() {
			Expect(res.Size).To(Equal(1))
			Expect(res.Names()).To(ConsistOf(BeElementOf("A", "B")))
		})
	})

	Context("with empty input", func() {
		BeforeEach(func() {
			raw = nil
			budget = 10
		})

		It("should return an empty complete result", func() {
			Expect(res.Size).To(BeZero())
			Expect(res.Items).To(BeEmpty())
			Expect(res.Complete).To(BeTrue())
		})
	})

	Context("with a single oversized item", func() {
		BeforeEach(func() {
			raw = rawItems("Long Island", req("vodka", "gin", "rum", "tequila"))
			budget = 3
		})

		It("should filter it before the search", func() {
			Expect(res.Size).To(BeZero())
			Expect(res.Stats.Filtered).To(Equal(1))
			Expect(res.Stats.Popped).To(Equal(1))
		})
	})
})

var _ = Describe("runSolve", func() {
	It("should report the selection with resource names", func() {
		in, err := ParseCSV(strings.NewReader("Gimlet,gin,lime\nMartini,gin,vermouth\n"), true, logr.Discard())
		Expect(err).NotTo(HaveOccurred())

		cfg := DefaultConfig()
		cfg.Budget = 3
		rep, err := runSolve(context.Background(), in, cfg, logr.Discard(), NewMetrics())
		Expect(err).NotTo(HaveOccurred())

		Expect(rep.RunID).NotTo(BeEmpty())
		Expect(rep.Size).To(Equal(2))
		Expect(rep.Resources).To(Equal([]string{"gin", "lime", "vermouth"}))
	})

	It("should reject an unknown backend without searching", func() {
		cfg := DefaultConfig()
		cfg.Backend = "simd"
		m := NewMetrics()
		_, err := runSolve(context.Background(), &Input{}, cfg, logr.Discard(), m)
		Expect(err).To(MatchError(ContainSubstring("unknown backend")))
		n, err := testutil.GatherAndCount(m.Registry(), "cocktails_search_states_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})
})
