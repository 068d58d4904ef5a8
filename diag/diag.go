/*package diag computes conserved quantities of a set of bodies. Sums are
accumulated in double precision.
*/
package diag

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/swarm/dispatch"
)

// Summary holds the quantities logged by the command.
type Summary struct {
	Kinetic, Potential float64
	Momentum, Center   mgl64.Vec2
}

// Energy returns the total energy.
func (s Summary) Energy() float64 { return s.Kinetic + s.Potential }

// Summarize computes every quantity in Summary.
func Summarize(
	mass []float32, pos, vel []mgl32.Vec2, g, eps float32,
) Summary {
	return Summary{
		Kinetic:   KineticEnergy(mass, vel),
		Potential: PotentialEnergy(mass, pos, g, eps),
		Momentum:  Momentum(mass, vel),
		Center:    CenterOfMass(mass, pos),
	}
}

func vec64(v mgl32.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{float64(v[0]), float64(v[1])}
}

// KineticEnergy returns the sum of m v^2 / 2.
func KineticEnergy(mass []float32, vel []mgl32.Vec2) float64 {
	sum := 0.0
	for i := range vel {
		v := vec64(vel[i])
		sum += 0.5 * float64(mass[i]) * v.Dot(v)
	}
	return sum
}

// PotentialEnergy returns the softened pairwise potential energy,
// -G m_i m_j / sqrt(r^2 + eps^2) summed over pairs. This is the potential
// whose gradient is the force used by the integrator.
func PotentialEnergy(mass []float32, pos []mgl32.Vec2, g, eps float32) float64 {
	n := len(pos)
	eps2 := float64(eps) * float64(eps)
	rows := make([]float64, n)

	dispatch.For(n, func(i int) {
		pi := vec64(pos[i])
		sum := 0.0
		for j := i + 1; j < n; j++ {
			d := pi.Sub(vec64(pos[j]))
			r := math.Sqrt(d.Dot(d) + eps2)
			if r == 0 { continue }
			sum -= float64(mass[j]) / r
		}
		rows[i] = float64(mass[i]) * sum
	})

	total := 0.0
	for _, x := range rows { total += x }
	return float64(g) * total
}

// Momentum returns the total momentum.
func Momentum(mass []float32, vel []mgl32.Vec2) mgl64.Vec2 {
	p := mgl64.Vec2{}
	for i := range vel {
		p = p.Add(vec64(vel[i]).Mul(float64(mass[i])))
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position. It is the origin
// when there are no bodies.
func CenterOfMass(mass []float32, pos []mgl32.Vec2) mgl64.Vec2 {
	c, m := mgl64.Vec2{}, 0.0
	for i := range pos {
		c = c.Add(vec64(pos[i]).Mul(float64(mass[i])))
		m += float64(mass[i])
	}
	if m == 0 { return c }
	return c.Mul(1 / m)
}
