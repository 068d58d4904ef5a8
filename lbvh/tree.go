/*package lbvh builds a linear bounding volume hierarchy over Morton-sorted
bodies and aggregates mass information up through it.

A tree over n bodies has n-1 internal nodes, stored at indices [0, n-1), and
n leaves, stored at indices [n-1, 2n-1). Leaf n-1+k corresponds to the body
at sorted position k. Node 0 is the root.

Construction happens in two separate dispatches, Build and then Aggregate,
and nothing may read node mass information until Aggregate has returned.
*/
package lbvh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// None marks a missing parent or child link.
const None = ^uint32(0)

// Node is a single node of the hierarchy. For leaves, Left and Right are
// None.
type Node struct {
	CenterOfMass     mgl32.Vec2
	AABBMin, AABBMax mgl32.Vec2
	TotalMass        float32
	// Length is the longest side of the node's box and is the cell size used
	// by the opening-angle test.
	Length float32

	Left, Right, Parent uint32
}

// Tree holds the nodes and the per-node arrival counters used during
// aggregation. A Tree can be reused across steps and body counts.
type Tree struct {
	Nodes []Node
	// Indices maps sorted leaf position to body id. It is set by Aggregate.
	Indices []uint32

	counters []uint32
	n        int
}

// Bodies returns the number of leaves in the tree.
func (t *Tree) Bodies() int { return t.n }

// Root returns the index of the root node. For a single body the root is
// also the only leaf.
func (t *Tree) Root() uint32 { return 0 }

// IsLeaf returns true if node is a leaf.
func (t *Tree) IsLeaf(node uint32) bool { return int(node) >= t.n-1 }

// Body returns the body id stored at a leaf.
func (t *Tree) Body(leaf uint32) uint32 {
	return t.Indices[int(leaf)-(t.n-1)]
}

// resize makes room for a tree over n bodies, reusing old storage when it is
// large enough.
func (t *Tree) resize(n int) {
	t.n = n
	nodes := 2*n - 1
	if n == 0 { nodes = 0 }

	if cap(t.Nodes) < nodes {
		t.Nodes = make([]Node, nodes)
	}
	t.Nodes = t.Nodes[:nodes]

	internal := n - 1
	if internal < 0 { internal = 0 }
	if cap(t.counters) < internal {
		t.counters = make([]uint32, internal)
	}
	t.counters = t.counters[:internal]
}

// LeafRange returns the first and last sorted leaf positions under node.
func (t *Tree) LeafRange(node uint32) (first, last int) {
	lo, hi := node, node
	for !t.IsLeaf(lo) { lo = t.Nodes[lo].Left }
	for !t.IsLeaf(hi) { hi = t.Nodes[hi].Right }
	return int(lo) - (t.n - 1), int(hi) - (t.n - 1)
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t.n == 0 { return 0 }
	max := 0
	for k := 0; k < t.n; k++ {
		d := 1
		for node := uint32(t.n - 1 + k); t.Nodes[node].Parent != None; d++ {
			node = t.Nodes[node].Parent
		}
		if d > max { max = d }
	}
	return max
}
