package main

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/bits-and-blooms/bitset"
)

// ResourceSet is a set of resource indices drawn from one Universe.
// Sets handed to the search are never mutated after construction; Union
// always returns a fresh set.
type ResourceSet interface {
	Insert(i int)
	Contains(i int) bool
	Cardinality() int
	// Union returns a new set holding the elements of both sets.
	Union(o ResourceSet) ResourceSet
	// UnionCardinality is Union(o).Cardinality() without the allocation.
	UnionCardinality(o ResourceSet) int
	IsSubsetOf(o ResourceSet) bool
	IsSupersetOf(o ResourceSet) bool
	// DifferenceCardinality returns |s \ o|.
	DifferenceCardinality(o ResourceSet) int
	Clone() ResourceSet
	// Indices returns the members in ascending order.
	Indices() []int
}

// Backend selects the ResourceSet implementation.
type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendDense   Backend = "dense"
	BackendRoaring Backend = "roaring"
)

// DenseUniverseLimit is the largest universe the auto backend keeps on dense bit vectors.
const DenseUniverseLimit = 4096

// ParseBackend validates a backend name from configuration.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendAuto, BackendDense, BackendRoaring:
		return b, nil
	case "":
		return BackendAuto, nil
	}
	return "", fmt.Errorf("unknown backend %q (want auto, dense or roaring)", s)
}

// Resolve picks a concrete backend for a universe of the given size.
func (b Backend) Resolve(universe int) Backend {
	if b != BackendAuto {
		return b
	}
	if universe <= DenseUniverseLimit {
		return BackendDense
	}
	return BackendRoaring
}

// NewSet returns an empty set sized for the universe.
func (b Backend) NewSet(universe int) ResourceSet {
	if b.Resolve(universe) == BackendRoaring {
		return &roaringSet{bm: roaring.New()}
	}
	return &denseSet{bits: bitset.New(uint(universe))}
}

// ── dense bit vector ────────────────────────────────────────────────

type denseSet struct {
	bits *bitset.BitSet
}

func asDense(o ResourceSet) *denseSet {
	d, ok := o.(*denseSet)
	if !ok {
		panic(fmt.Sprintf("resource set backend mismatch: dense vs %T", o))
	}
	return d
}

func (s *denseSet) Insert(i int)        { s.bits.Set(uint(i)) }
func (s *denseSet) Contains(i int) bool { return s.bits.Test(uint(i)) }
func (s *denseSet) Cardinality() int    { return int(s.bits.Count()) }

func (s *denseSet) Union(o ResourceSet) ResourceSet {
	return &denseSet{bits: s.bits.Union(asDense(o).bits)}
}

func (s *denseSet) UnionCardinality(o ResourceSet) int {
	return int(s.bits.UnionCardinality(asDense(o).bits))
}

func (s *denseSet) IsSubsetOf(o ResourceSet) bool {
	return asDense(o).bits.IsSuperSet(s.bits)
}

func (s *denseSet) IsSupersetOf(o ResourceSet) bool {
	return s.bits.IsSuperSet(asDense(o).bits)
}

func (s *denseSet) DifferenceCardinality(o ResourceSet) int {
	return int(s.bits.DifferenceCardinality(asDense(o).bits))
}

func (s *denseSet) Clone() ResourceSet { return &denseSet{bits: s.bits.Clone()} }

func (s *denseSet) Indices() []int {
	out := make([]int, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// ── compressed bitmap ───────────────────────────────────────────────

type roaringSet struct {
	bm *roaring.Bitmap
}

func asRoaring(o ResourceSet) *roaringSet {
	r, ok := o.(*roaringSet)
	if !ok {
		panic(fmt.Sprintf("resource set backend mismatch: roaring vs %T", o))
	}
	return r
}

func (s *roaringSet) Insert(i int)        { s.bm.Add(uint32(i)) }
func (s *roaringSet) Contains(i int) bool { return s.bm.Contains(uint32(i)) }
func (s *roaringSet) Cardinality() int    { return int(s.bm.GetCardinality()) }

func (s *roaringSet) Union(o ResourceSet) ResourceSet {
	return &roaringSet{bm: roaring.Or(s.bm, asRoaring(o).bm)}
}

func (s *roaringSet) UnionCardinality(o ResourceSet) int {
	return int(s.bm.OrCardinality(asRoaring(o).bm))
}

func (s *roaringSet) IsSubsetOf(o ResourceSet) bool {
	return s.bm.AndCardinality(asRoaring(o).bm) == s.bm.GetCardinality()
}

func (s *roaringSet) IsSupersetOf(o ResourceSet) bool {
	return o.IsSubsetOf(s)
}

func (s *roaringSet) DifferenceCardinality(o ResourceSet) int {
	return int(s.bm.GetCardinality() - s.bm.AndCardinality(asRoaring(o).bm))
}

func (s *roaringSet) Clone() ResourceSet { return &roaringSet{bm: s.bm.Clone()} }

func (s *roaringSet) Indices() []int {
	arr := s.bm.ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}
