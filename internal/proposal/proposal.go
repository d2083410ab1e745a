// Package proposal implements the random-walk proposal the tree modifier
// uses to extend the ground-level chain.
package proposal

import (
	"gonum.org/v2/gonum/stat/distuv"

	"github.com/entropic-labs/mtmlda/internal/mcmctree"
)

// RandomWalk draws each component of the next state independently from a
// Normal centered on the current component, with a fixed standard
// deviation shared across dimensions (spec.md §4: "fixed covariance").
type RandomWalk struct {
	StepSize float64
}

// Propose satisfies mcmctree.ProposalSampler.
func (p RandomWalk) Propose(current []float64, rng *mcmctree.Source) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: p.StepSize, Src: rng}
	next := make([]float64, len(current))
	for i, x := range current {
		next[i] = x + dist.Rand()
	}
	return next
}

var _ mcmctree.ProposalSampler = RandomWalk{}
