package mcmctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceIsDeterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestSourceSeedResets(t *testing.T) {
	s := NewSource(1)
	first := s.Uint64()
	s.Seed(1)
	assert.Equal(t, first, s.Uint64())
}

func TestSourceFloat64Range(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 1000; i++ {
		f := s.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestRNGTripleSnapshotRestore(t *testing.T) {
	triple := NewRNGTriple(1, 2, 3)

	_ = triple.Proposal.Uint64()
	_ = triple.Expansion.Uint64()
	snap := triple.Snapshot()

	wantProposal := triple.Proposal.Uint64()
	wantExpansion := triple.Expansion.Uint64()
	wantNodeInit := triple.NodeInit.Uint64()

	triple.Restore(snap)
	assert.Equal(t, wantProposal, triple.Proposal.Uint64())
	assert.Equal(t, wantExpansion, triple.Expansion.Uint64())
	assert.Equal(t, wantNodeInit, triple.NodeInit.Uint64())
}
