package mcmctree

// DecisionKind distinguishes which MCMC kernel rule a ready node needs.
type DecisionKind int

const (
	DecisionNone DecisionKind = iota
	DecisionSingleLevel
	DecisionTwoLevel
)

// CheckIfNodeIsAvailableForDecision reports whether node has every
// logposterior its decision needs, and which kind of decision that is
// (spec.md §4.2). A node at subchain_index 0 is a placeholder copy of its
// coarser progenitor and is never itself decided.
func CheckIfNodeIsAvailableForDecision(node *Node) (ready bool, kind DecisionKind) {
	if node.SubchainIndex == 0 {
		return false, DecisionNone
	}
	parent := GetSameLevelParent(node)
	if parent == nil || !node.HasLogposterior || !parent.HasLogposterior {
		return false, DecisionNone
	}
	if node.Level == 0 {
		return true, DecisionSingleLevel
	}
	if node.CoarseCompanion == nil || parent.CoarseCompanion == nil {
		return false, DecisionNone
	}
	if !node.CoarseCompanion.HasLogposterior || !parent.CoarseCompanion.HasLogposterior {
		return false, DecisionNone
	}
	return true, DecisionTwoLevel
}

// GetSameLevelParent returns the nearest ancestor of node at node's own
// level, or nil if node is a root or every ancestor is coarser.
func GetSameLevelParent(node *Node) *Node {
	for p := node.Parent; p != nil; p = p.Parent {
		if p.Level == node.Level {
			return p
		}
	}
	return nil
}

// GetUniqueSameSubchainChild returns root's sole child when that child is
// at the same level and its decision resolved to accept — the condition
// that lets the driver advance the chain past root (spec.md §4.2).
func GetUniqueSameSubchainChild(root *Node) (*Node, bool) {
	if len(root.Children) != 1 {
		return nil, false
	}
	child := root.Children[0]
	if child.Level != root.Level {
		return nil, false
	}
	if !child.Decided || !child.Accepted {
		return nil, false
	}
	return child, true
}

// FindMaxProbabilityNode returns the undecided, unsubmitted leaf with the
// greatest probability_reached, breaking ties by shallower depth, then
// lower subchain_index, then node ID (spec.md §4.2). It returns nil if no
// such leaf exists.
func FindMaxProbabilityNode(root *Node) *Node {
	var best *Node
	Walk(root, func(n *Node) bool {
		if !n.IsLeaf() || n.Pending || n.HasLogposterior {
			return true
		}
		if best == nil || isHigherPriority(n, best) {
			best = n
		}
		return true
	})
	return best
}

func isHigherPriority(a, b *Node) bool {
	if a.ProbabilityReached != b.ProbabilityReached {
		return a.ProbabilityReached > b.ProbabilityReached
	}
	if da, db := a.Depth(), b.Depth(); da != db {
		return da < db
	}
	if a.SubchainIndex != b.SubchainIndex {
		return a.SubchainIndex < b.SubchainIndex
	}
	return a.ID.String() < b.ID.String()
}
