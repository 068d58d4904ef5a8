/*package scenario generates initial conditions for the engine.

A scenario is selected by name. Random scenarios are fully determined by
their seed.
*/
package scenario

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/rand"
)

// Names of the built-in scenarios.
const (
	Uniform = "uniform"
	Galaxy  = "galaxy"
	Binary  = "binary"
	HeadOn  = "head-on"
)

// Names lists every scenario that Generate accepts.
var Names = []string{Uniform, Galaxy, Binary, HeadOn}

// State is a full set of initial conditions. Index i of each slice refers to
// body i.
type State struct {
	Mass     []float32
	Pos, Vel []mgl32.Vec2
}

// New returns a zeroed State for n bodies.
func New(n int) *State {
	return &State{
		Mass: make([]float32, n),
		Pos:  make([]mgl32.Vec2, n),
		Vel:  make([]mgl32.Vec2, n),
	}
}

// Len returns the number of bodies.
func (s *State) Len() int { return len(s.Mass) }

// CheckInit returns an error if the state cannot be simulated.
func (s *State) CheckInit() error {
	n := len(s.Mass)
	if len(s.Pos) != n || len(s.Vel) != n {
		return fmt.Errorf(
			"State has %d masses, %d positions, and %d velocities.",
			n, len(s.Pos), len(s.Vel),
		)
	}

	for i := 0; i < n; i++ {
		if !(s.Mass[i] > 0) || isInf(s.Mass[i]) {
			return fmt.Errorf("Body %d has non-positive mass %g.", i, s.Mass[i])
		}
		if !finite(s.Pos[i]) {
			return fmt.Errorf("Body %d has position %v.", i, s.Pos[i])
		}
		if !finite(s.Vel[i]) {
			return fmt.Errorf("Body %d has velocity %v.", i, s.Vel[i])
		}
	}
	return nil
}

func isInf(x float32) bool { return math.IsInf(float64(x), 0) }

func finite(v mgl32.Vec2) bool {
	for k := 0; k < 2; k++ {
		x := float64(v[k])
		if math.IsNaN(x) || math.IsInf(x, 0) { return false }
	}
	return true
}

// Generate returns the named scenario with n bodies. g is the gravitational
// constant and is used to put orbiting bodies on circular orbits. Binary and
// head-on always have two bodies and ignore n.
func Generate(name string, n int, seed uint64, g float32) (*State, error) {
	if n < 0 {
		return nil, fmt.Errorf("Body count must be non-negative, not %d.", n)
	}
	rnd := rand.New(rand.NewSource(seed))

	switch name {
	case Uniform:
		return uniform(n, rnd), nil
	case Galaxy:
		return galaxy(n, g, rnd), nil
	case Binary:
		return binary(g), nil
	case HeadOn:
		return headOn(), nil
	}
	return nil, fmt.Errorf("Scenario '%s' not recognized. Choose from %v.",
		name, Names)
}

// uniform scatters bodies over a square with unit number density and gives
// them small random velocities.
func uniform(n int, rnd *rand.Rand) *State {
	s := New(n)
	side := math.Sqrt(float64(n))
	for i := 0; i < n; i++ {
		s.Mass[i] = float32(0.5 + rnd.Float64())
		s.Pos[i] = mgl32.Vec2{
			float32(side * rnd.Float64()), float32(side * rnd.Float64()),
		}
		s.Vel[i] = mgl32.Vec2{
			float32(0.1 * rnd.NormFloat64()), float32(0.1 * rnd.NormFloat64()),
		}
	}
	return s
}

// galaxy puts body 0 at the origin with the mass of the rest of the disk
// and every other body on a circular orbit around the mass interior to it.
func galaxy(n int, g float32, rnd *rand.Rand) *State {
	s := New(n)
	if n == 0 { return s }

	central := float64(n)
	s.Mass[0] = float32(central)

	rMax := 4 * math.Sqrt(float64(n))
	for i := 1; i < n; i++ {
		r := 2 + float64(i)*rMax/float64(n)
		v := math.Sqrt(float64(g) * (central + float64(i-1)) / r)
		theta := 2 * math.Pi * rnd.Float64()
		sin, cos := math.Sincos(theta)

		s.Mass[i] = 1
		s.Pos[i] = mgl32.Vec2{float32(r * cos), float32(r * sin)}
		s.Vel[i] = mgl32.Vec2{float32(-v * sin), float32(v * cos)}
	}
	return s
}

// binary is two unit masses on a circular orbit with separation 10 about
// their center of mass at the origin.
func binary(g float32) *State {
	const sep = 10
	s := New(2)
	v := float32(math.Sqrt(float64(g) / (2 * sep)))
	s.Mass[0], s.Mass[1] = 1, 1
	s.Pos[0], s.Pos[1] = mgl32.Vec2{-sep / 2, 0}, mgl32.Vec2{sep / 2, 0}
	s.Vel[0], s.Vel[1] = mgl32.Vec2{0, -v}, mgl32.Vec2{0, v}
	return s
}

// headOn is two unit masses three units apart approaching each other along
// the x-axis at unit speed.
func headOn() *State {
	s := New(2)
	s.Mass[0], s.Mass[1] = 1, 1
	s.Pos[0], s.Pos[1] = mgl32.Vec2{-1.5, 0}, mgl32.Vec2{1.5, 0}
	s.Vel[0], s.Vel[1] = mgl32.Vec2{1, 0}, mgl32.Vec2{-1, 0}
	return s
}
