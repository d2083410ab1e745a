package mcmctree

import (
	"encoding/json"
	"errors"
)

// ErrExportDepthExceeded is returned by DebugExport when the tree is
// deeper than maxDepth; the run is not aborted by it (spec.md §7).
var ErrExportDepthExceeded = errors.New("mcmctree: debug export recursion depth exceeded")

// exportNode is the JSON-serializable projection of a Node used for
// post-mortem diagnostics; it drops the parent back-reference to keep the
// encoding a tree rather than a graph.
type exportNode struct {
	ID                 string       `json:"id"`
	Level              int          `json:"level"`
	SubchainIndex      int          `json:"subchain_index"`
	State              []float64    `json:"state"`
	HasLogposterior    bool         `json:"has_logposterior"`
	Logposterior       float64      `json:"logposterior,omitempty"`
	ProbabilityReached float64      `json:"probability_reached,omitempty"`
	Decided            bool         `json:"decided"`
	Accepted           bool         `json:"accepted"`
	Children           []exportNode `json:"children,omitempty"`
}

// DebugExport renders the subtree rooted at root to JSON for post-mortem
// logging after a fatal evaluator error, bounded to maxDepth levels below
// root (nodes deeper than that make it return ErrExportDepthExceeded) so a
// pathological tree cannot recurse without limit.
func DebugExport(root *Node, maxDepth int) ([]byte, error) {
	projected, err := projectNode(root, 0, maxDepth)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(projected, "", "  ")
}

func projectNode(n *Node, depth, maxDepth int) (exportNode, error) {
	if depth > maxDepth {
		return exportNode{}, ErrExportDepthExceeded
	}
	out := exportNode{
		ID:                 n.ID.String(),
		Level:              n.Level,
		SubchainIndex:      n.SubchainIndex,
		State:              n.State,
		HasLogposterior:    n.HasLogposterior,
		Logposterior:       n.Logposterior,
		ProbabilityReached: n.ProbabilityReached,
		Decided:            n.Decided,
		Accepted:           n.Accepted,
	}
	for _, c := range n.Children {
		child, err := projectNode(c, depth+1, maxDepth)
		if err != nil {
			return exportNode{}, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}
