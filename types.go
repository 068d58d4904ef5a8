package swarm

import (
	"fmt"
	"math"
)

// Metadata is the set of per-step simulation parameters. A new Metadata
// takes effect at the start of the next step and never changes during one.
type Metadata struct {
	NumBodies    uint32
	GravConstant float32
	DeltaTime    float32
	// EpsilonMultiplier sets the softening length in units of the body
	// radius.
	EpsilonMultiplier float32
	BHTheta           float32
}

// CheckInit returns an error if md cannot be used to run a step.
func (md *Metadata) CheckInit() error {
	switch {
	case !(md.DeltaTime > 0) || isInf(md.DeltaTime):
		return fmt.Errorf("Need to specify a positive DeltaTime, not %g.",
			md.DeltaTime)
	case !(md.GravConstant >= 0) || isInf(md.GravConstant):
		return fmt.Errorf("GravConstant must be non-negative, not %g.",
			md.GravConstant)
	case !(md.EpsilonMultiplier >= 0):
		return fmt.Errorf("EpsilonMultiplier must be non-negative, not %g.",
			md.EpsilonMultiplier)
	case !(md.BHTheta >= 0):
		return fmt.Errorf("BHTheta must be non-negative, not %g.", md.BHTheta)
	}
	return nil
}

func isInf(x float32) bool { return math.IsInf(float64(x), 0) }

// CollisionParams describes the shared body radius and the collision
// response. A zero Radius turns collisions off.
type CollisionParams struct {
	Radius      float32
	Restitution float32
	Correction  float32
}

// StepStats summarizes the most recent step.
type StepStats struct {
	Step int
	// Contacts is the number of (body, neighbor) pairs resolved by the
	// collision pass. Each colliding pair is counted once from each side.
	Contacts int
	// Truncated is the number of subtrees skipped because a traversal stack
	// was full, summed over the force and collision passes.
	Truncated int
	// Depth is the depth of the tree. It is only computed when logging is on.
	Depth int
}
