/*package geom contains the small amount of planar geometry shared by the
tree builder, the force integrator, and the collision pass.
*/
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in the plane.
type AABB struct {
	Min, Max mgl32.Vec2
}

// Empty returns a box which contains nothing and which becomes a valid box
// after the first call to Extend.
func Empty() AABB {
	inf := float32(math.Inf(+1))
	return AABB{
		Min: mgl32.Vec2{inf, inf},
		Max: mgl32.Vec2{-inf, -inf},
	}
}

// Point returns the degenerate box containing only p.
func Point(p mgl32.Vec2) AABB { return AABB{p, p} }

// IsEmpty returns true if no point has been added to the box.
func (b *AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

// Extend grows the box so that it contains p.
func (b *AABB) Extend(p mgl32.Vec2) {
	for k := 0; k < 2; k++ {
		b.Min[k], b.Max[k] = fMinMax(b.Min[k], b.Max[k], p[k])
	}
}

// Union returns the smallest box containing both b1 and b2.
func Union(b1, b2 AABB) AABB {
	out := b1
	for k := 0; k < 2; k++ {
		if b2.Min[k] < out.Min[k] { out.Min[k] = b2.Min[k] }
		if b2.Max[k] > out.Max[k] { out.Max[k] = b2.Max[k] }
	}
	return out
}

// Contains returns true if p is inside the box, boundary included.
func (b *AABB) Contains(p mgl32.Vec2) bool {
	return b.Min[0] <= p[0] && p[0] <= b.Max[0] &&
		b.Min[1] <= p[1] && p[1] <= b.Max[1]
}

// ExpandedContains returns true if p is within distance r (per axis) of the
// box. This is the point-vs-expanded-box test used for broad-phase pruning.
func (b *AABB) ExpandedContains(p mgl32.Vec2, r float32) bool {
	return b.Min[0]-r <= p[0] && p[0] <= b.Max[0]+r &&
		b.Min[1]-r <= p[1] && p[1] <= b.Max[1]+r
}

// MaxExtent returns the width of the box along its longest axis.
func (b *AABB) MaxExtent() float32 {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if dx > dy { return dx }
	return dy
}

// Square returns the smallest square with the same lower corner as b that
// contains b. A degenerate box gets a unit side so that it can still be
// used to quantize coordinates.
func (b *AABB) Square() AABB {
	side := b.MaxExtent()
	if !(side > 0) { side = 1 }
	return AABB{b.Min, mgl32.Vec2{b.Min[0] + side, b.Min[1] + side}}
}

// DistSqr returns the squared distance between two points.
func DistSqr(p1, p2 mgl32.Vec2) float32 {
	d := p1.Sub(p2)
	return d.Dot(d)
}

// fMinMax returns the minimum and maximum of (min, max, x).
func fMinMax(min, max, x float32) (float32, float32) {
	if x < min { min = x }
	if x > max { max = x }
	return min, max
}
