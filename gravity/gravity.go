/*package gravity computes Barnes-Hut accelerations over an aggregated lbvh
tree and advances bodies with a leapfrog scheme.

Integration is split into two dispatches that must run in this order: Kick
changes velocities using the current accelerations, and Drift then moves
positions using the kicked velocities.
*/
package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/geom"
	"github.com/phil-mansfield/swarm/lbvh"
)

// Params controls the force calculation.
type Params struct {
	G float32
	// Theta is the opening angle. A node is used as a single point mass when
	// Length < Theta * distance. Theta = 0 always descends to the leaves.
	Theta float32
	// Softening is the length added in quadrature to every separation.
	Softening float32
}

// pull returns the softened acceleration per unit G that a mass m at y
// exerts on a body at x.
func pull(x, y mgl32.Vec2, m, eps2 float32) mgl32.Vec2 {
	r := y.Sub(x)
	d2 := r.Dot(r) + eps2
	if d2 == 0 { return mgl32.Vec2{} }
	inv := 1 / (d2 * float32(math.Sqrt(float64(d2))))
	return r.Mul(m * inv)
}

// Accel returns the acceleration on body using the tree. s is the caller's
// traversal stack; the number of subtrees dropped because s was full is left
// in s.Truncated.
func Accel(
	t *lbvh.Tree, body uint32, mass []float32, pos []mgl32.Vec2,
	p *Params, s *lbvh.Stack,
) mgl32.Vec2 {
	s.Reset()
	if t.Bodies() < 2 { return mgl32.Vec2{} }

	x := pos[body]
	eps2 := p.Softening * p.Softening
	theta2 := p.Theta * p.Theta
	a := mgl32.Vec2{}

	s.Push(t.Root())
	for {
		node, ok := s.Pop()
		if !ok { break }
		nd := &t.Nodes[node]

		if t.IsLeaf(node) {
			other := t.Body(node)
			if other == body { continue }
			a = a.Add(pull(x, pos[other], mass[other], eps2))
			continue
		}

		// A node containing the body is always opened so that a body never
		// feels itself through an aggregate.
		box := geom.AABB{Min: nd.AABBMin, Max: nd.AABBMax}
		if !box.Contains(x) {
			d2 := geom.DistSqr(nd.CenterOfMass, x)
			if nd.Length*nd.Length < theta2*d2 {
				a = a.Add(pull(x, nd.CenterOfMass, nd.TotalMass, eps2))
				continue
			}
		}

		s.Push(nd.Left)
		s.Push(nd.Right)
	}

	return a.Mul(p.G)
}

// AccelAll computes the acceleration of every body into acc, one worker per
// body. If truncated is non-nil, each body's stack truncation count is
// written to its slot.
func AccelAll(
	t *lbvh.Tree, mass []float32, pos []mgl32.Vec2, p *Params,
	acc []mgl32.Vec2, truncated []int32,
) {
	dispatch.For(len(pos), func(i int) {
		var s lbvh.Stack
		acc[i] = Accel(t, uint32(i), mass, pos, p, &s)
		if truncated != nil { truncated[i] = int32(s.Truncated) }
	})
}

// Kick writes vel + factor * acc into dst. dst may alias vel.
func Kick(dst, vel, acc []mgl32.Vec2, factor float32) {
	dispatch.For(len(vel), func(i int) {
		dst[i] = vel[i].Add(acc[i].Mul(factor))
	})
}

// Drift writes pos + dt * vel into dstPos and copies vel into dstVel, so
// that the destination buffers hold a complete state. The destinations may
// alias the sources.
func Drift(dstPos, dstVel, pos, vel []mgl32.Vec2, dt float32) {
	dispatch.For(len(pos), func(i int) {
		v := vel[i]
		dstPos[i] = pos[i].Add(v.Mul(dt))
		dstVel[i] = v
	})
}

// Direct computes accelerations by summing over every pair. It is the
// reference the tree is checked against.
func Direct(mass []float32, pos []mgl32.Vec2, p *Params, acc []mgl32.Vec2) {
	eps2 := p.Softening * p.Softening
	dispatch.For(len(pos), func(i int) {
		a := mgl32.Vec2{}
		for j := range pos {
			if j == i { continue }
			a = a.Add(pull(pos[i], pos[j], mass[j], eps2))
		}
		acc[i] = a.Mul(p.G)
	})
}
