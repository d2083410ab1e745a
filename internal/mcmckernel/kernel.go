// Package mcmckernel implements the single-level and two-level
// Metropolis-Hastings decisions applied to proposal-tree nodes once their
// log-posteriors are known.
package mcmckernel

import (
	"errors"
	"math"

	"github.com/entropic-labs/mtmlda/internal/mcmctree"
)

// ErrUnderflow names the condition CheckUnderflow reports: a completed
// evaluation fell below the configured threshold and must be pruned rather
// than decided (spec.md §4.3). No function in this module returns it; the
// driver prunes such nodes directly when CheckUnderflow reports true.
var ErrUnderflow = errors.New("mcmckernel: logposterior below underflow threshold")

// Kernel applies MCMC accept/reject decisions and keeps the shared
// accept-rate estimator current.
type Kernel struct {
	underflowThreshold float64
	estimator          *mcmctree.AcceptRateEstimator
}

// New builds a Kernel. estimator is shared with the tree modifier, which
// reads the same running accept-rates to compute probability_reached.
func New(underflowThreshold float64, estimator *mcmctree.AcceptRateEstimator) *Kernel {
	return &Kernel{underflowThreshold: underflowThreshold, estimator: estimator}
}

// CheckUnderflow reports whether value is low enough that the node
// carrying it must be discarded rather than entered into any decision.
// spec.md §9 leaves open whether this should compare the raw logposterior
// or an acceptance ratio; this implementation takes the spec's literal
// reading (the raw value), so a very negative but finite logposterior is
// treated identically to -Inf.
func (k *Kernel) CheckUnderflow(logposterior float64) bool {
	return logposterior < k.underflowThreshold
}

// Decide applies the MCMC decision indicated by kind to node, records the
// outcome on node.Decided/Accepted, updates the accept-rate estimator for
// node.Level, and returns the accept/reject result. The caller is
// responsible for pruning the losing branch (mcmctree.Node.Detach);
// spec.md §4.3 keeps the kernel itself free of tree mutation.
func (k *Kernel) Decide(node *mcmctree.Node, kind mcmctree.DecisionKind) bool {
	var accept bool
	switch kind {
	case mcmctree.DecisionSingleLevel:
		accept = k.decideSingleLevel(node)
	case mcmctree.DecisionTwoLevel:
		accept = k.decideTwoLevel(node)
	default:
		return false
	}
	node.Decided = true
	node.Accepted = accept
	k.estimator.Update(node.Level, accept)
	return accept
}

// decideSingleLevel is standard Metropolis-Hastings against the ground
// posterior with a symmetric random-walk proposal, so no proposal-ratio
// correction is needed: accept iff random_draw < exp(logp_new - logp_old).
func (k *Kernel) decideSingleLevel(node *mcmctree.Node) bool {
	parent := mcmctree.GetSameLevelParent(node)
	logRatio := node.Logposterior - parent.Logposterior
	return node.RandomDraw < math.Exp(logRatio)
}

// decideTwoLevel is the MLDA delayed-acceptance correction:
//
//	r = (pi_ell(x_new) * pi_{ell-1}(x_old)) / (pi_ell(x_old) * pi_{ell-1}(x_new))
//
// computed in log space from the four logposteriors the readiness
// predicate guarantees are present.
func (k *Kernel) decideTwoLevel(node *mcmctree.Node) bool {
	parent := mcmctree.GetSameLevelParent(node)
	logRatio := (node.Logposterior + parent.CoarseCompanion.Logposterior) -
		(parent.Logposterior + node.CoarseCompanion.Logposterior)
	return node.RandomDraw < math.Exp(logRatio)
}
