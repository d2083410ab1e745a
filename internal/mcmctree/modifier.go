package mcmctree

// ProposalSampler draws the next ground-level state from the current one,
// consuming randomness from the shared proposal generator. The only
// implementation is internal/proposal.RandomWalk; the interface lives here
// (rather than in that package) so mcmctree never imports it back.
type ProposalSampler interface {
	Propose(current []float64, rng *Source) []float64
}

// ModifierConfig carries the per-level subsampling budget and the tree's
// structural growth bound (spec.md §4.1, §6).
type ModifierConfig struct {
	// SubsamplingRates has one entry per level; a negative entry means
	// "unbounded", used for the finest level so the outer chain never
	// stops seeking a new accepted candidate.
	SubsamplingRates []int
	MaxTreeHeight    int
}

// Modifier expands the proposal tree, resolves coarse-to-fine promotions,
// and prunes. It owns no tree state itself — root is always supplied by
// the caller (the sampler driver) — only the configuration and RNG handles
// needed to grow the tree.
type Modifier struct {
	cfg      ModifierConfig
	proposal ProposalSampler
	rngs     RNGTriple
}

// NewModifier builds a Modifier for the given levels/rates, using proposal
// for ground-level moves and rngs for both expansion choices and node-init
// draws.
func NewModifier(cfg ModifierConfig, proposal ProposalSampler, rngs RNGTriple) *Modifier {
	return &Modifier{cfg: cfg, proposal: proposal, rngs: rngs}
}

func (m *Modifier) rateExhausted(level int, attempts int) bool {
	rate := m.cfg.SubsamplingRates[level]
	if rate < 0 {
		return false
	}
	return attempts >= rate
}

func copyState(state []float64) []float64 {
	out := make([]float64, len(state))
	copy(out, state)
	return out
}

// ExpandTree walks the tree rooted at root and, for every leaf whose own
// logposterior is already known (and that is not itself awaiting
// evaluation) within the height bound, creates at most one new child
// following the MLDA expansion rule (spec.md §4.1):
//
//   - at level 0, always extend via the random-walk proposal;
//   - at a level > 0, while the subsampling budget for that level is not
//     exhausted, descend one level to start (or retry) a nested subchain
//     whose eventual accepted state becomes this node's next same-level
//     successor — see ResolvePromotions;
//   - once the budget is exhausted, the node is left as-is: it has
//     already produced whatever successors it will, and further growth
//     happens only via ResolvePromotions reacting to decisions below it.
//
// Gating expansion on HasLogposterior keeps "leaf" and "awaiting
// evaluation" the same set: a node only grows children once it has itself
// been submitted and harvested, so FindMaxProbabilityNode — which only
// ever considers leaves — is guaranteed to see every node (the root
// included) before it can be expanded out of consideration.
func (m *Modifier) ExpandTree(root *Node) {
	var leaves []*Node
	Walk(root, func(n *Node) bool {
		if n.IsLeaf() && !n.Pending && n.HasLogposterior {
			leaves = append(leaves, n)
		}
		return true
	})
	for _, leaf := range leaves {
		if leaf.Depth() >= m.cfg.MaxTreeHeight {
			continue
		}
		m.expandLeaf(leaf)
	}
}

func (m *Modifier) expandLeaf(leaf *Node) {
	if leaf.Level == 0 {
		next := m.proposal.Propose(leaf.State, m.rngs.Proposal)
		child := NewNode(next, 0, leaf.SubchainIndex+1, m.rngs.NodeInit.Float64(), nil)
		leaf.AddChild(child)
		return
	}
	if m.rateExhausted(leaf.Level, leaf.DescendAttempts) {
		return
	}
	leaf.DescendAttempts++
	helper := NewNode(copyState(leaf.State), leaf.Level-1, 0, m.rngs.NodeInit.Float64(), nil)
	leaf.AddChild(helper)
}

// ResolvePromotions scans the tree for descend-helper subtrees whose
// nested subchain has produced at least one accepted same-level step, and
// promotes the deepest such step into a same-level successor of the node
// that spawned the helper, wired with CoarseCompanion so the two-level
// kernel can later decide it. An anchor that has no CoarseCompanion of its
// own (the initial root, or a helper that later spawned its own helper)
// receives its consumed helper as CoarseCompanion, since the helper holds
// the anchor's state evaluated one level down. It is the counterpart of expand_tree's
// descend branch: expand_tree asks a coarser level for support,
// ResolvePromotions is what eventually answers.
func (m *Modifier) ResolvePromotions(root *Node) {
	var anchors []*Node
	Walk(root, func(n *Node) bool {
		anchors = append(anchors, n)
		return true
	})
	for _, anchor := range anchors {
		helper := helperChild(anchor)
		if helper == nil {
			continue
		}
		resolved, ok := compressDeepestAccepted(helper)
		if !ok || resolved == helper {
			continue
		}
		successor := NewNode(copyState(resolved.State), anchor.Level, anchor.SubchainIndex+1, m.rngs.NodeInit.Float64(), nil)
		successor.CoarseCompanion = resolved
		if anchor.CoarseCompanion == nil {
			// The helper is anchor's own state evaluated one level down,
			// which the two-level kernel needs as anchor's coarse value.
			anchor.CoarseCompanion = helper
		}
		anchor.AddChild(successor)
		helper.Detach()
	}
}

// helperChild returns n's descend-helper child (the one at level-1), if it
// still has one; nil once ResolvePromotions has already consumed it.
func helperChild(n *Node) *Node {
	for _, c := range n.Children {
		if c.Level == n.Level-1 {
			return c
		}
	}
	return nil
}

// compressDeepestAccepted follows accepted unique same-level children from
// start as far as possible, returning the deepest node reached and whether
// at least one accepted step occurred.
func compressDeepestAccepted(start *Node) (*Node, bool) {
	cur := start
	advanced := false
	for {
		next, ok := GetUniqueSameSubchainChild(cur)
		if !ok {
			return cur, advanced
		}
		cur = next
		advanced = true
	}
}

// CompressResolvedSubchains collapses linear runs of resolved same-level
// decisions below root into their deepest still-contested node. It is
// purely structural bookkeeping used by the driver's advance step; it
// never changes which states will enter the chain (spec.md §4.1).
func (m *Modifier) CompressResolvedSubchains(root *Node) *Node {
	cur := root
	for {
		next, ok := GetUniqueSameSubchainChild(cur)
		if !ok {
			return cur
		}
		cur = next
	}
}

// UpdateProbabilityReached assigns every node's probability_reached as the
// product, along the root-to-node path, of the per-edge probability that
// the corresponding proposal occurs and is accepted. Same-level edges use
// the estimator's current accept-rate for that level; descend edges (into
// a nested subchain) are certain to be explored once scheduled, so they
// contribute a factor of 1.
func (m *Modifier) UpdateProbabilityReached(root *Node, estimator *AcceptRateEstimator) {
	root.ProbabilityReached = 1
	root.HasProbabilityReached = true
	Walk(root, func(n *Node) bool {
		for _, c := range n.Children {
			p := n.ProbabilityReached
			if c.Level == n.Level {
				p *= estimator.Alpha(n.Level)
			}
			c.ProbabilityReached = p
			c.HasProbabilityReached = true
		}
		return true
	})
}

// DiscardRejectedNodes detaches the subtree rooted at node's non-chosen
// branch, per accepted (spec.md §4.1). Under the promotion scheme
// ResolvePromotions implements, the coarse-helper branch that fed a
// two-level candidate is already detached the moment the candidate is
// created, so the only branch left to discard on a decision is the
// decided node itself when it was rejected.
func DiscardRejectedNodes(node *Node, accepted bool) {
	if !accepted {
		node.Detach()
	}
}

// UpdateDescendants is intentionally vestigial. spec.md §4.1 names a step
// that propagates derived quantities down the subtree once a node's
// logposterior is known, but in this implementation nothing below node is
// cached off that value: CheckIfNodeIsAvailableForDecision re-reads
// HasLogposterior directly off each node on every scan, and
// UpdateProbabilityReached recomputes probability_reached for the whole
// tree from scratch every pass rather than incrementally from one node
// down. UpdateDescendants is kept as the named call site harvest() invokes
// per freshly-evaluated node, so that if a future derived quantity does
// need incremental propagation there is already a hook wired to the right
// place, instead of requiring a new pass over harvest() to add one.
func UpdateDescendants(node *Node) {
	_ = node
}
