// Package mcmctree implements the multi-level proposal tree: nodes
// representing tentative chain states at multiple fidelity levels, the
// accepted chain they eventually feed, and the RNG triple and accept-rate
// estimator the rest of the sampler shares.
package mcmctree

import (
	"time"

	"github.com/google/uuid"
)

// Node is a candidate MCMC state at a specific fidelity level and position
// within an MLDA subchain.
//
// Invariants (see spec.md §3):
//   - the root is always at level L-1; the initial root has SubchainIndex
//     0, while a successor promoted to root by the driver's advance step
//     keeps its own (nonzero) SubchainIndex
//   - a child's Level is in {parent.Level, parent.Level - 1}
//   - SubchainIndex increments monotonically along same-level parent->child
//     edges
//   - Logposterior is set at most once, by the driver's harvest phase from
//     a job handler result
//   - ProbabilityReached is recomputed by the tree modifier, never by the
//     node itself
type Node struct {
	ID    uuid.UUID
	State []float64

	Level         int
	SubchainIndex int
	RandomDraw    float64

	HasLogposterior bool
	Logposterior    float64

	HasProbabilityReached bool
	ProbabilityReached    float64

	// Pending is true between submit_job and harvest. A node with
	// Pending == true is never a candidate for find_max_probability_node,
	// and after harvest it is never submitted again.
	Pending bool

	// Decided and Accepted record the outcome of the one MCMC decision
	// ever made against this node (nodes at subchain_index 0 are never
	// decided and keep Decided false forever). get_unique_same_subchain_child
	// and the driver's advance step both read these instead of
	// re-deriving the decision.
	Decided  bool
	Accepted bool

	// DescendAttempts counts how many nested-subchain helpers this node
	// has spawned while trying to produce one accepted coarser-level
	// candidate (mcmctree.Modifier.expandLeaf). It gates subsampling_rate
	// at levels > 0; ground-level nodes never consult it.
	DescendAttempts int

	Parent   *Node
	Children []*Node

	// CoarseCompanion is set on nodes at level > 0 that were produced by
	// promotion: it points at the resolved coarser-level node (the final
	// step of the nested subchain run one level down) whose State equals
	// this node's State, supplying the coarse logposterior the two-level
	// kernel needs. A level > 0 node not produced by promotion (the initial
	// root) gets its first consumed descend-helper, which carries its State
	// one level down. See internal/mcmctree.Modifier for how it is wired.
	CoarseCompanion *Node

	CreatedAt time.Time
}

// NewNode constructs a node with a fresh identity and no logposterior.
func NewNode(state []float64, level, subchainIndex int, randomDraw float64, parent *Node) *Node {
	return &Node{
		ID:            uuid.New(),
		State:         state,
		Level:         level,
		SubchainIndex: subchainIndex,
		RandomDraw:    randomDraw,
		Parent:        parent,
		CreatedAt:     time.Now(),
	}
}

// SetLogposterior fills in the node's log-density exactly once. Calling it
// a second time is a programmer error in the harvest phase and panics, since
// spec.md §3 makes "set at most once" an invariant rather than a best
// effort.
func (n *Node) SetLogposterior(value float64) {
	if n.HasLogposterior {
		panic("mcmctree: logposterior already set for node " + n.ID.String())
	}
	n.HasLogposterior = true
	n.Logposterior = value
	n.Pending = false
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// AddChild appends child to n's children and sets child's parent pointer.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Detach removes n from its parent's child list and clears n's parent
// pointer, dropping the entire subtree rooted at n from consideration
// (spec.md §3: "Detaching a node ... removes the entire subtree").
func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	siblings := n.Parent.Children
	for i, c := range siblings {
		if c == n {
			n.Parent.Children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Depth returns the number of edges from the root to n.
func (n *Node) Depth() int {
	depth := 0
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// Height returns the number of edges on the longest root-to-leaf path
// starting at n (a leaf has height 0).
func (n *Node) Height() int {
	if n.IsLeaf() {
		return 0
	}
	max := 0
	for _, c := range n.Children {
		if h := c.Height(); h > max {
			max = h
		}
	}
	return max + 1
}

// Walk visits every node in the subtree rooted at n in level order
// (breadth-first), calling visit on each. Walk stops early if visit
// returns false.
func Walk(root *Node, visit func(*Node) bool) {
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !visit(n) {
			return
		}
		queue = append(queue, n.Children...)
	}
}

// Leaves returns every leaf in the subtree rooted at root, in level order.
func Leaves(root *Node) []*Node {
	var leaves []*Node
	Walk(root, func(n *Node) bool {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// CountNodes returns the number of nodes in the subtree rooted at root.
func CountNodes(root *Node) int {
	count := 0
	Walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}
