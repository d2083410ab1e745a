package mcmctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSetLogposteriorOnce(t *testing.T) {
	n := NewNode([]float64{1, 2}, 0, 0, 0.5, nil)
	assert.False(t, n.HasLogposterior)

	n.SetLogposterior(-3.2)
	assert.True(t, n.HasLogposterior)
	assert.Equal(t, -3.2, n.Logposterior)
	assert.False(t, n.Pending)

	assert.Panics(t, func() { n.SetLogposterior(-1.0) })
}

func TestNodeAddChildDetach(t *testing.T) {
	root := NewNode([]float64{0}, 1, 0, 0, nil)
	child := NewNode([]float64{1}, 1, 1, 0, nil)
	root.AddChild(child)

	require.Len(t, root.Children, 1)
	assert.Same(t, root, child.Parent)
	assert.True(t, root.IsLeaf() == false)

	child.Detach()
	assert.Len(t, root.Children, 0)
	assert.Nil(t, child.Parent)
}

func TestNodeDepthAndHeight(t *testing.T) {
	root := NewNode([]float64{0}, 1, 0, 0, nil)
	mid := NewNode([]float64{0}, 1, 1, 0, nil)
	leaf := NewNode([]float64{0}, 1, 2, 0, nil)
	root.AddChild(mid)
	mid.AddChild(leaf)

	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, mid.Depth())
	assert.Equal(t, 2, leaf.Depth())

	assert.Equal(t, 2, root.Height())
	assert.Equal(t, 1, mid.Height())
	assert.Equal(t, 0, leaf.Height())
}

func TestWalkAndCountNodesAndLeaves(t *testing.T) {
	root := NewNode([]float64{0}, 1, 0, 0, nil)
	a := NewNode([]float64{0}, 1, 1, 0, nil)
	b := NewNode([]float64{0}, 0, 0, 0, nil)
	root.AddChild(a)
	root.AddChild(b)

	assert.Equal(t, 3, CountNodes(root))
	assert.ElementsMatch(t, []*Node{a, b}, Leaves(root))

	var visited int
	Walk(root, func(n *Node) bool {
		visited++
		return true
	})
	assert.Equal(t, 3, visited)

	var stoppedEarly int
	Walk(root, func(n *Node) bool {
		stoppedEarly++
		return false
	})
	assert.Equal(t, 1, stoppedEarly)
}
