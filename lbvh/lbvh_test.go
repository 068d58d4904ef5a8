package lbvh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/morton"
)

func randomBodies(n int, seed uint64) ([]float32, []mgl32.Vec2) {
	rnd := rand.New(rand.NewSource(seed))
	mass, pos := make([]float32, n), make([]mgl32.Vec2, n)
	for i := range pos {
		mass[i] = float32(0.5 + rnd.Float64())
		pos[i] = mgl32.Vec2{
			float32(100 * rnd.Float64()), float32(100 * rnd.Float64()),
		}
	}
	return mass, pos
}

func buildTree(mass []float32, pos []mgl32.Vec2) *Tree {
	n := len(pos)
	codes, indices := make([]uint32, n), make([]uint32, n)
	morton.Keys(pos, dispatch.Bounds(pos), codes, indices)
	morton.DefaultSorter{}.Sort(codes, indices)

	t := &Tree{}
	t.Build(codes)
	t.ResetCounters()
	t.Aggregate(mass, pos, indices)
	return t
}

func almostEq(x, y, eps float64) bool {
	return math.Abs(x-y) <= eps*math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
}

func TestLeafRangesPartition(t *testing.T) {
	sizes := []int{2, 3, 4, 5, 7, 16, 33, 100, 257, 1000}

	for _, n := range sizes {
		mass, pos := randomBodies(n, uint64(n))
		tree := buildTree(mass, pos)

		first, last := tree.LeafRange(tree.Root())
		require.Equal(t, 0, first, "n = %d", n)
		require.Equal(t, n-1, last, "n = %d", n)

		for i := 0; i < n-1; i++ {
			node := uint32(i)
			nd := &tree.Nodes[i]
			lo, hi := tree.LeafRange(node)
			lLo, lHi := tree.LeafRange(nd.Left)
			rLo, rHi := tree.LeafRange(nd.Right)

			if lLo != lo || rHi != hi || lHi+1 != rLo {
				t.Errorf("n = %d) node %d covers [%d, %d], children cover " +
					"[%d, %d] and [%d, %d].", n, i, lo, hi, lLo, lHi, rLo, rHi)
			}
			if tree.Nodes[nd.Left].Parent != node ||
				tree.Nodes[nd.Right].Parent != node {
				t.Errorf("n = %d) node %d children have wrong parents.", n, i)
			}
		}
		assert.Equal(t, None, tree.Nodes[0].Parent)
	}
}

func TestLeavesReachedOnce(t *testing.T) {
	n := 500
	mass, pos := randomBodies(n, 11)
	tree := buildTree(mass, pos)

	seen := make([]int, n)
	stack := WithLimit(StackCapacity)
	stack.Push(tree.Root())
	for {
		node, ok := stack.Pop()
		if !ok { break }
		if tree.IsLeaf(node) {
			seen[tree.Body(node)]++
			continue
		}
		stack.Push(tree.Nodes[node].Left)
		stack.Push(tree.Nodes[node].Right)
	}

	assert.Equal(t, 0, stack.Truncated)
	for i := range seen {
		assert.Equal(t, 1, seen[i], "body %d", i)
	}
}

func TestDuplicatePositions(t *testing.T) {
	// Every body on one of two points: all keys collide and the tree must
	// still be a valid partition.
	n := 64
	mass := make([]float32, n)
	pos := make([]mgl32.Vec2, n)
	for i := range pos {
		mass[i] = 1
		pos[i] = mgl32.Vec2{float32(i % 2), 0}
	}
	tree := buildTree(mass, pos)

	for i := 0; i < n-1; i++ {
		nd := &tree.Nodes[i]
		lo, hi := tree.LeafRange(uint32(i))
		lLo, lHi := tree.LeafRange(nd.Left)
		rLo, rHi := tree.LeafRange(nd.Right)
		require.True(t, lLo == lo && rHi == hi && lHi+1 == rLo, "node %d", i)
	}
	assert.True(t, tree.Depth() <= StackCapacity)
	assert.InDelta(t, float64(n), float64(tree.Nodes[0].TotalMass), 1e-4)
	assert.InDelta(t, 0.5, float64(tree.Nodes[0].CenterOfMass[0]), 1e-5)
}

func TestAggregate(t *testing.T) {
	for _, n := range []int{2, 3, 10, 128, 999} {
		mass, pos := randomBodies(n, uint64(3*n+1))
		tree := buildTree(mass, pos)

		for i := range tree.Nodes {
			node := uint32(i)
			lo, hi := tree.LeafRange(node)

			var m, cx, cy float64
			minX, minY := math.Inf(+1), math.Inf(+1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for k := lo; k <= hi; k++ {
				b := tree.Indices[k]
				mb := float64(mass[b])
				x, y := float64(pos[b][0]), float64(pos[b][1])
				m += mb
				cx += mb * x
				cy += mb * y
				minX, maxX = math.Min(minX, x), math.Max(maxX, x)
				minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			}
			cx, cy = cx/m, cy/m

			nd := &tree.Nodes[i]
			if !almostEq(float64(nd.TotalMass), m, 1e-5) {
				t.Errorf("n = %d) node %d mass %g, expected %g.",
					n, i, nd.TotalMass, m)
			}
			if !almostEq(float64(nd.CenterOfMass[0]), cx, 1e-5) ||
				!almostEq(float64(nd.CenterOfMass[1]), cy, 1e-5) {
				t.Errorf("n = %d) node %d COM %v, expected (%g, %g).",
					n, i, nd.CenterOfMass, cx, cy)
			}
			assert.Equal(t, float32(minX), nd.AABBMin[0])
			assert.Equal(t, float32(maxY), nd.AABBMax[1])

			ext := math.Max(maxX-minX, maxY-minY)
			assert.InDelta(t, ext, float64(nd.Length), 1e-4)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	defer func(n int) { dispatch.NumCores = n }(dispatch.NumCores)
	mass, pos := randomBodies(777, 5)

	dispatch.NumCores = 1
	t1 := buildTree(mass, pos)
	dispatch.NumCores = 8
	t2 := buildTree(mass, pos)

	assert.Equal(t, t1.Indices, t2.Indices)
	require.Equal(t, len(t1.Nodes), len(t2.Nodes))
	for i := range t1.Nodes {
		if t1.Nodes[i] != t2.Nodes[i] {
			t.Fatalf("Node %d differs: %+v vs %+v.", i, t1.Nodes[i], t2.Nodes[i])
		}
	}
}

func TestDegenerateTrees(t *testing.T) {
	tree := &Tree{}
	tree.Build(nil)
	tree.ResetCounters()
	tree.Aggregate(nil, nil, nil)
	assert.Equal(t, 0, len(tree.Nodes))
	assert.Equal(t, 0, tree.Depth())

	tree.Build([]uint32{42})
	tree.ResetCounters()
	tree.Aggregate([]float32{3}, []mgl32.Vec2{{1, 2}}, []uint32{0})
	require.Equal(t, 1, len(tree.Nodes))
	assert.True(t, tree.IsLeaf(tree.Root()))
	assert.Equal(t, float32(3), tree.Nodes[0].TotalMass)
	assert.Equal(t, mgl32.Vec2{1, 2}, tree.Nodes[0].CenterOfMass)
	assert.Equal(t, 1, tree.Depth())
}

func TestTreeReuse(t *testing.T) {
	tree := &Tree{}
	for _, n := range []int{300, 20, 301} {
		mass, pos := randomBodies(n, uint64(n))
		codes, indices := make([]uint32, n), make([]uint32, n)
		morton.Keys(pos, dispatch.Bounds(pos), codes, indices)
		morton.DefaultSorter{}.Sort(codes, indices)
		tree.Build(codes)
		tree.ResetCounters()
		tree.Aggregate(mass, pos, indices)

		require.Equal(t, 2*n-1, len(tree.Nodes))
		var m float64
		for _, mi := range mass { m += float64(mi) }
		assert.True(t, almostEq(m, float64(tree.Nodes[0].TotalMass), 1e-5))
	}
}

func TestStackTruncation(t *testing.T) {
	s := WithLimit(2)
	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert.Equal(t, 1, s.Truncated)

	node, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), node)
	node, _ = s.Pop()
	assert.Equal(t, uint32(1), node)
	_, ok = s.Pop()
	assert.False(t, ok)

	s.Reset()
	assert.Equal(t, 0, s.Truncated)
}

func BenchmarkBuildAggregate(b *testing.B) {
	n := 1 << 14
	mass, pos := randomBodies(n, 1)
	codes, indices := make([]uint32, n), make([]uint32, n)
	morton.Keys(pos, dispatch.Bounds(pos), codes, indices)
	morton.DefaultSorter{}.Sort(codes, indices)
	tree := &Tree{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Build(codes)
		tree.ResetCounters()
		tree.Aggregate(mass, pos, indices)
	}
}
