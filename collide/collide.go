/*package collide resolves circle-circle collisions between bodies which all
share a single radius, using an aggregated lbvh tree as the broad phase.

Resolution is split into two dispatches. Detect reads only live state and
writes only scratch buffers. Apply then copies the scratch buffers into the
live buffers. A body in contact with several neighbors in the same step
receives the average of the responses to each of them rather than their
sum, so the result does not depend on the order in which workers run.
*/
package collide

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/geom"
	"github.com/phil-mansfield/swarm/lbvh"
)

// DefaultMinDistSqr is the squared separation below which two bodies are
// treated as coincident and left alone.
const DefaultMinDistSqr = 1e-10

// Params describes the collision response.
type Params struct {
	Radius float32
	// Restitution is the coefficient of restitution, e: 1 is perfectly
	// elastic and 0 is perfectly inelastic.
	Restitution float32
	// Correction is the fraction of the overlap removed in one step.
	Correction float32
	MinDistSqr float32
}

// CheckInit returns an error if the parameters cannot be used.
func (p *Params) CheckInit() error {
	switch {
	case !(p.Radius >= 0):
		return fmt.Errorf("Radius must be non-negative, not %g.", p.Radius)
	case !(p.Restitution >= 0 && p.Restitution <= 1):
		return fmt.Errorf("Restitution must be in [0, 1], not %g.",
			p.Restitution)
	case !(p.Correction >= 0 && p.Correction <= 1):
		return fmt.Errorf("Correction must be in [0, 1], not %g.",
			p.Correction)
	case !(p.MinDistSqr >= 0):
		return fmt.Errorf("MinDistSqr must be non-negative, not %g.",
			p.MinDistSqr)
	}
	return nil
}

// Scratch holds the outputs of Detect.
type Scratch struct {
	Pos, Vel []mgl32.Vec2
	// Contacts[i] is the number of neighbors body i was resolved against.
	Contacts []int32
	// Truncated[i] is the number of subtrees body i's traversal dropped.
	Truncated []int32
}

// Resize makes room for n bodies, reusing old storage when possible.
func (s *Scratch) Resize(n int) {
	if cap(s.Pos) < n {
		s.Pos = make([]mgl32.Vec2, n)
		s.Vel = make([]mgl32.Vec2, n)
		s.Contacts = make([]int32, n)
		s.Truncated = make([]int32, n)
	}
	s.Pos, s.Vel = s.Pos[:n], s.Vel[:n]
	s.Contacts, s.Truncated = s.Contacts[:n], s.Truncated[:n]
}

// Detect computes the post-collision position and velocity of every body
// and writes them to out. Bodies without contacts are copied through
// unchanged. mass, pos, and vel are not modified.
func Detect(
	t *lbvh.Tree, mass []float32, pos, vel []mgl32.Vec2,
	p *Params, out *Scratch,
) {
	out.Resize(len(pos))
	dispatch.For(len(pos), func(i int) {
		var s lbvh.Stack
		dp, dv, k := resolve(t, uint32(i), mass, pos, vel, p, &s)
		out.Contacts[i] = int32(k)
		out.Truncated[i] = int32(s.Truncated)
		if k == 0 {
			out.Pos[i], out.Vel[i] = pos[i], vel[i]
			return
		}
		inv := 1 / float32(k)
		out.Pos[i] = pos[i].Add(dp.Mul(inv))
		out.Vel[i] = vel[i].Add(dv.Mul(inv))
	})
}

// resolve sums the position correction and velocity change of body over
// every approaching neighbor it overlaps and returns them along with the
// number of such neighbors.
func resolve(
	t *lbvh.Tree, body uint32, mass []float32, pos, vel []mgl32.Vec2,
	p *Params, s *lbvh.Stack,
) (dp, dv mgl32.Vec2, k int) {
	s.Reset()
	if t.Bodies() < 2 { return dp, dv, 0 }

	x, v := pos[body], vel[body]
	invM := 1 / mass[body]
	reach := 2 * p.Radius
	reach2 := reach * reach

	s.Push(t.Root())
	for {
		node, ok := s.Pop()
		if !ok { break }

		if !t.IsLeaf(node) {
			nd := &t.Nodes[node]
			box := geom.AABB{Min: nd.AABBMin, Max: nd.AABBMax}
			if box.ExpandedContains(x, reach) {
				s.Push(nd.Left)
				s.Push(nd.Right)
			}
			continue
		}

		other := t.Body(node)
		if other == body { continue }

		r := x.Sub(pos[other])
		d2 := r.Dot(r)
		if d2 >= reach2 || d2 <= p.MinDistSqr { continue }

		d := float32(math.Sqrt(float64(d2)))
		n := r.Mul(1 / d)
		vn := v.Sub(vel[other]).Dot(n)
		if vn >= 0 { continue }

		invOther := 1 / mass[other]
		invSum := invM + invOther
		j := -(1 + p.Restitution) * vn / invSum

		dv = dv.Add(n.Mul(j * invM))
		dp = dp.Add(n.Mul(p.Correction * (reach - d) * invM / invSum))
		k++
	}

	return dp, dv, k
}

// Apply copies the results of Detect into the live buffers. Detect must
// have returned before Apply is called.
func Apply(pos, vel []mgl32.Vec2, in *Scratch) {
	dispatch.For(len(pos), func(i int) {
		pos[i], vel[i] = in.Pos[i], in.Vel[i]
	})
}
