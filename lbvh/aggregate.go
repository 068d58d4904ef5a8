package lbvh

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/geom"
)

// ResetCounters zeroes the arrival counters. It must run as its own dispatch
// before Aggregate.
func (t *Tree) ResetCounters() {
	dispatch.For(len(t.counters), func(i int) { t.counters[i] = 0 })
}

// Aggregate computes the bounding box, total mass, center of mass, and
// length of every node from the leaves up. Build and ResetCounters must have
// returned before Aggregate is called.
//
// One worker starts at each leaf. After finishing a node, a worker
// atomically increments its parent's counter. The first child to arrive
// stops; the second is guaranteed that its sibling is complete, so it merges
// both into the parent and continues upward. Each node is therefore written
// exactly once and there is no barrier between tree levels.
func (t *Tree) Aggregate(mass []float32, pos []mgl32.Vec2, indices []uint32) {
	t.Indices = indices
	n := t.n
	if n == 0 { return }

	dispatch.For(n, func(k int) {
		node := uint32(n - 1 + k)
		t.initLeaf(node, mass, pos)

		for {
			parent := t.Nodes[node].Parent
			if parent == None { return }
			if atomic.AddUint32(&t.counters[parent], 1) == 1 { return }
			t.merge(parent)
			node = parent
		}
	})
}

func (t *Tree) initLeaf(node uint32, mass []float32, pos []mgl32.Vec2) {
	body := t.Body(node)
	nd := &t.Nodes[node]
	p := pos[body]

	nd.AABBMin, nd.AABBMax = p, p
	nd.CenterOfMass = p
	nd.TotalMass = mass[body]
	nd.Length = 0
}

func (t *Tree) merge(node uint32) {
	nd := &t.Nodes[node]
	l, r := &t.Nodes[nd.Left], &t.Nodes[nd.Right]

	box := geom.Union(
		geom.AABB{Min: l.AABBMin, Max: l.AABBMax},
		geom.AABB{Min: r.AABBMin, Max: r.AABBMax},
	)
	nd.AABBMin, nd.AABBMax = box.Min, box.Max
	nd.Length = box.MaxExtent()

	m := l.TotalMass + r.TotalMass
	nd.TotalMass = m
	if m > 0 {
		nd.CenterOfMass = l.CenterOfMass.Mul(l.TotalMass / m).Add(
			r.CenterOfMass.Mul(r.TotalMass / m),
		)
	} else {
		nd.CenterOfMass = l.CenterOfMass.Add(r.CenterOfMass).Mul(0.5)
	}
}
