package mcmctree

import "math/rand"

// Source is a splitmix64-based math/rand.Source64. Unlike the generators
// math/rand ships (whose internal state is unexported and so cannot be
// copied), Source's entire state is the single exported uint64 field
// below — copying a Source is copying its state, which is exactly what
// spec.md §3's "snapshotable value usable for resumable runs" requires.
//
// gonum's stat/distuv distributions accept any rand.Source, so the actual
// sampling algorithms (e.g. distuv.Normal in internal/proposal) still come
// from the pack; only the bottom-of-the-stack state container is
// hand-rolled, for the reason above.
type Source struct {
	State uint64
}

// NewSource seeds a Source deterministically from seed.
func NewSource(seed uint64) *Source {
	return &Source{State: seed}
}

// Uint64 returns the next pseudo-random value and advances State.
func (s *Source) Uint64() uint64 {
	s.State += 0x9E3779B97F4A7C15
	z := s.State
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Int63 satisfies rand.Source.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Seed satisfies rand.Source.
func (s *Source) Seed(seed int64) {
	s.State = uint64(seed)
}

var _ rand.Source64 = (*Source)(nil)

// Float64 returns a uniform value in [0, 1), the same contract
// math/rand.Rand.Float64 offers, used directly for RandomDraw at node
// creation (spec.md §3) rather than through a distribution wrapper.
func (s *Source) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// RNGTriple holds the three independent generators spec.md §3 requires:
// proposal noise, tree expansion choices, and per-node uniform draws. The
// triple as a whole is the snapshot unit for Driver.GetRNGs/SetRNGs.
type RNGTriple struct {
	Proposal  *Source
	Expansion *Source
	NodeInit  *Source
}

// NewRNGTriple seeds the three generators from three independent seeds.
func NewRNGTriple(proposalSeed, expansionSeed, nodeInitSeed uint64) RNGTriple {
	return RNGTriple{
		Proposal:  NewSource(proposalSeed),
		Expansion: NewSource(expansionSeed),
		NodeInit:  NewSource(nodeInitSeed),
	}
}

// Snapshot returns a value copy of the triple's current state. Because
// Source holds its entire state inline, this is a plain struct copy with
// no hidden aliasing — Restore(Snapshot()) is a no-op, matching
// spec.md §8's round-trip law.
func (t RNGTriple) Snapshot() RNGTriple {
	return RNGTriple{
		Proposal:  &Source{State: t.Proposal.State},
		Expansion: &Source{State: t.Expansion.State},
		NodeInit:  &Source{State: t.NodeInit.State},
	}
}

// Restore overwrites t's generator states with snap's, in place.
func (t RNGTriple) Restore(snap RNGTriple) {
	t.Proposal.State = snap.Proposal.State
	t.Expansion.State = snap.Expansion.State
	t.NodeInit.State = snap.NodeInit.State
}
