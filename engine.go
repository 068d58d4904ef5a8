/*package swarm advances a two-dimensional swarm of self-gravitating,
colliding bodies.

Every step rebuilds a linear BVH over the current positions, uses it to
compute Barnes-Hut accelerations and to find colliding pairs, and then moves
the bodies. Every stage is a data-parallel dispatch and each one finishes
before the next begins.

Positions and velocities live in a two-element buffer set. Step reads the
state in the buffer set named by its active argument, writes the new state
into the other one, and returns that buffer set's index:

	active := 0
	for i := 0; i < steps; i++ {
		active = e.Step(active)
	}
	pos := e.Positions(active)
*/
package swarm

import (
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phil-mansfield/swarm/collide"
	"github.com/phil-mansfield/swarm/dispatch"
	"github.com/phil-mansfield/swarm/gravity"
	"github.com/phil-mansfield/swarm/lbvh"
	"github.com/phil-mansfield/swarm/morton"
	"github.com/phil-mansfield/swarm/scenario"
)

// MaxBodies is the largest number of bodies Reseed will accept.
var MaxBodies = 1 << 26

// Engine owns the body buffers and the per-step workspace and runs the step
// pipeline over them. An Engine must not be used from more than one
// goroutine at a time.
type Engine struct {
	md, staged Metadata
	hasStaged  bool
	col        CollisionParams
	sorter     morton.Sorter

	// Body store.
	mass     []float32
	pos, vel [2][]mgl32.Vec2

	// Per-step workspace.
	acc            []mgl32.Vec2
	codes, indices []uint32
	truncated      []int32
	tree           lbvh.Tree
	scratch        collide.Scratch

	// kicked is false until the first step after a reseed has applied the
	// opening half-kick. lastDt is the time step of the most recent step,
	// whose closing half-kick is still owed.
	kicked bool
	lastDt float32
	steps  int
	stats  StepStats

	log bool
	ms  runtime.MemStats
}

// NewEngine returns an engine with no bodies. md.NumBodies is ignored; the
// body count is set by Reseed. If sorter is nil, morton.DefaultSorter is
// used.
func NewEngine(
	md Metadata, col CollisionParams, sorter morton.Sorter,
) (*Engine, error) {
	md.NumBodies = 0
	if err := md.CheckInit(); err != nil { return nil, err }
	cp := col.params()
	if err := cp.CheckInit(); err != nil { return nil, err }

	if sorter == nil { sorter = morton.DefaultSorter{} }
	return &Engine{md: md, col: col, sorter: sorter}, nil
}

func (col *CollisionParams) params() collide.Params {
	return collide.Params{
		Radius:      col.Radius,
		Restitution: col.Restitution,
		Correction:  col.Correction,
		MinDistSqr:  collide.DefaultMinDistSqr,
	}
}

// Log turns step logging on or off.
func (e *Engine) Log(flag bool) { e.log = flag }

// Metadata returns the parameters used by the most recent step.
func (e *Engine) Metadata() Metadata { return e.md }

// Stats returns statistics about the most recent step.
func (e *Engine) Stats() StepStats { return e.stats }

// Bodies returns the current number of bodies.
func (e *Engine) Bodies() int { return len(e.mass) }

// SetMetadata stages md to be used from the start of the next step. Only the
// most recently staged value is used. The body count can only be changed
// through Reseed, so md.NumBodies must match the current count.
func (e *Engine) SetMetadata(md Metadata) error {
	if int(md.NumBodies) != len(e.mass) {
		return fmt.Errorf(
			"Metadata has NumBodies = %d, but the engine has %d bodies. " +
				"Use Reseed to change the body count.",
			md.NumBodies, len(e.mass),
		)
	}
	if err := md.CheckInit(); err != nil { return err }
	e.staged, e.hasStaged = md, true
	return nil
}

// Reseed replaces every body with the contents of s. The new state is
// placed in buffer set 0. Any staged Metadata is applied first, with its
// body count replaced by s's.
func (e *Engine) Reseed(s *scenario.State) error {
	n := s.Len()
	if n > MaxBodies {
		return fmt.Errorf("Cannot simulate %d bodies, the maximum is %d.",
			n, MaxBodies)
	}
	if err := s.CheckInit(); err != nil { return err }

	if e.hasStaged { e.md, e.hasStaged = e.staged, false }
	e.md.NumBodies = uint32(n)

	e.mass = resizeFloats(e.mass, n)
	for b := 0; b < 2; b++ {
		e.pos[b] = resizeVecs(e.pos[b], n)
		e.vel[b] = resizeVecs(e.vel[b], n)
	}
	e.acc = resizeVecs(e.acc, n)
	e.codes = resizeUints(e.codes, n)
	e.indices = resizeUints(e.indices, n)
	e.truncated = resizeInts(e.truncated, n)
	e.scratch.Resize(n)

	copy(e.mass, s.Mass)
	copy(e.pos[0], s.Pos)
	copy(e.vel[0], s.Vel)

	e.kicked, e.lastDt = false, 0
	e.steps = 0
	e.stats = StepStats{}

	if e.log {
		runtime.ReadMemStats(&e.ms)
		log.Printf(
			"Reseeded with %d bodies. Alloc: %5d MB, Sys: %5d MB",
			n, e.ms.Alloc>>20, e.ms.Sys>>20,
		)
	}
	return nil
}

// Positions returns the positions stored in buffer set active. The slice
// is owned by the engine and must not be modified.
func (e *Engine) Positions(active int) []mgl32.Vec2 { return e.pos[active] }

// Velocities returns the velocities stored in buffer set active. After a
// step these are half a step ahead of the positions (see Step); use
// SyncedVelocities for a state that can be measured or written out. The
// slice is owned by the engine and must not be modified.
func (e *Engine) Velocities(active int) []mgl32.Vec2 { return e.vel[active] }

// SyncedVelocities writes the velocities at the same time as
// Positions(active) into out and returns it, resizing out if needed. It
// applies the closing half-kick of the most recent step, so active must be
// the index returned by that step. The stored state is not changed, and a
// state made of Positions(active) and these velocities can be passed to
// Reseed to continue the run.
func (e *Engine) SyncedVelocities(active int, out []mgl32.Vec2) []mgl32.Vec2 {
	n := len(e.mass)
	out = resizeVecs(out, n)
	vel := e.vel[active]
	if !e.kicked || n < 2 {
		copy(out, vel)
		return out
	}

	pos := e.pos[active]
	e.buildTree(pos)
	gp := e.gravityParams()
	gravity.AccelAll(&e.tree, e.mass, pos, &gp, e.acc, nil)
	gravity.Kick(out, vel, e.acc, e.lastDt/2)
	return out
}

// Masses returns the body masses. The slice is owned by the engine and must
// not be modified.
func (e *Engine) Masses() []float32 { return e.mass }

// Step advances the bodies in buffer set active by one time step, writes the
// result to the other buffer set, and returns its index. Buffer set active
// is only read, so it still holds the pre-step state afterwards.
//
// The integrator is kick-drift-kick leapfrog with the closing half-kick of
// one step merged into the opening half-kick of the next. The first step
// after Reseed kicks by DeltaTime/2, and every later step kicks by the mean
// of its own DeltaTime and the previous step's, so velocities are stored
// half a step ahead of positions.
//
// Collisions are resolved after the kick and before the drift, against the
// same positions the tree was built from.
func (e *Engine) Step(active int) int {
	if e.hasStaged { e.md, e.hasStaged = e.staged, false }

	n := len(e.mass)
	e.stats = StepStats{Step: e.steps}
	if n == 0 { return active }

	next := 1 - active
	pos, vel := e.pos[active], e.vel[active]
	dt := e.md.DeltaTime

	if n >= 2 {
		e.buildTree(pos)

		gp := e.gravityParams()
		gravity.AccelAll(&e.tree, e.mass, pos, &gp, e.acc, e.truncated)

		kick := dt / 2
		if e.kicked { kick = (e.lastDt + dt) / 2 }
		gravity.Kick(e.vel[next], vel, e.acc, kick)
		vel = e.vel[next]

		e.stats.Truncated = sumInts(e.truncated)

		if e.col.Radius > 0 {
			cp := e.col.params()
			collide.Detect(&e.tree, e.mass, pos, vel, &cp, &e.scratch)
			collide.Apply(e.pos[next], e.vel[next], &e.scratch)
			pos = e.pos[next]

			e.stats.Contacts = sumInts(e.scratch.Contacts)
			e.stats.Truncated += sumInts(e.scratch.Truncated)
		}
		if e.log { e.stats.Depth = e.tree.Depth() }
	}
	e.kicked, e.lastDt = true, dt

	gravity.Drift(e.pos[next], e.vel[next], pos, vel, dt)
	e.steps++

	if e.log && e.stats.Truncated > 0 {
		log.Printf(
			"Step %d: tree depth %d, %d subtrees skipped by full " +
				"traversal stacks.",
			e.stats.Step, e.stats.Depth, e.stats.Truncated,
		)
	}

	return next
}

func (e *Engine) gravityParams() gravity.Params {
	return gravity.Params{
		G:         e.md.GravConstant,
		Theta:     e.md.BHTheta,
		Softening: e.md.EpsilonMultiplier * e.col.Radius,
	}
}

// buildTree runs the key, sort, build, and aggregate dispatches.
func (e *Engine) buildTree(pos []mgl32.Vec2) {
	bounds := dispatch.Bounds(pos)
	morton.Keys(pos, bounds, e.codes, e.indices)
	e.sorter.Sort(e.codes, e.indices)

	e.tree.Build(e.codes)
	e.tree.ResetCounters()
	e.tree.Aggregate(e.mass, pos, e.indices)
}

func sumInts(xs []int32) int {
	sum := 0
	for _, x := range xs { sum += int(x) }
	return sum
}

func resizeVecs(xs []mgl32.Vec2, n int) []mgl32.Vec2 {
	if cap(xs) < n { return make([]mgl32.Vec2, n) }
	return xs[:n]
}

func resizeFloats(xs []float32, n int) []float32 {
	if cap(xs) < n { return make([]float32, n) }
	return xs[:n]
}

func resizeUints(xs []uint32, n int) []uint32 {
	if cap(xs) < n { return make([]uint32, n) }
	return xs[:n]
}

func resizeInts(xs []int32, n int) []int32 {
	if cap(xs) < n { return make([]int32, n) }
	return xs[:n]
}
