package lbvh

import (
	"math/bits"

	"github.com/phil-mansfield/swarm/dispatch"
)

// Build constructs the topology of the tree from sorted Morton codes using
// Karras's parallel radix tree construction (Karras, 2012). Each internal
// node is handled by an independent worker that only reads codes, finds the
// range of leaves it covers and the split point within that range, and
// writes its own child links and its children's parent links.
//
// Duplicate codes are handled by treating the sorted position as a tiebreak
// suffix, so the result is deterministic for any sorted input.
func (t *Tree) Build(codes []uint32) {
	n := len(codes)
	t.resize(n)
	if n == 0 { return }

	t.Nodes[0].Parent = None
	if n == 1 {
		t.Nodes[0].Left, t.Nodes[0].Right = None, None
		return
	}

	dispatch.For(n, func(k int) {
		leaf := &t.Nodes[n-1+k]
		leaf.Left, leaf.Right = None, None
	})
	dispatch.For(n-1, func(i int) { t.buildNode(codes, i) })
}

// delta returns the length of the common prefix of the keys at sorted
// positions i and j, or -1 if j is out of range.
func delta(codes []uint32, i, j int) int {
	if j < 0 || j >= len(codes) { return -1 }
	ci, cj := codes[i], codes[j]
	if ci == cj {
		return 32 + bits.LeadingZeros32(uint32(i^j))
	}
	return bits.LeadingZeros32(ci ^ cj)
}

func (t *Tree) buildNode(codes []uint32, i int) {
	n := len(codes)

	// Direction of the range.
	d := 1
	if delta(codes, i, i+1) < delta(codes, i, i-1) { d = -1 }

	// Upper bound on the range length, then a binary search for the other
	// end.
	deltaMin := delta(codes, i, i-d)
	lMax := 2
	for delta(codes, i, i+lMax*d) > deltaMin { lMax *= 2 }

	l := 0
	for step := lMax / 2; step >= 1; step /= 2 {
		if delta(codes, i, i+(l+step)*d) > deltaMin { l += step }
	}
	j := i + l*d

	// Binary search for the split position.
	deltaNode := delta(codes, i, j)
	s := 0
	for div := 2; ; div *= 2 {
		step := (l + div - 1) / div
		if delta(codes, i, i+(s+step)*d) > deltaNode { s += step }
		if step <= 1 { break }
	}
	split := i + s*d
	if d < 0 { split-- }

	lo, hi := i, j
	if j < i { lo, hi = j, i }

	left, right := uint32(split), uint32(split+1)
	if lo == split { left = uint32(n - 1 + split) }
	if hi == split+1 { right = uint32(n - 1 + split + 1) }

	node := &t.Nodes[i]
	node.Left, node.Right = left, right
	t.Nodes[left].Parent = uint32(i)
	t.Nodes[right].Parent = uint32(i)
}
