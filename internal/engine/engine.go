// Package engine provides the simulation capability behind a routine
// session: time integration, state resets and the forward/inverse dynamics
// passes. The [Engine] interface is what the command dispatcher talks to;
// [Dynamics] is the builtin lumped-parameter implementation.
package engine

import "errors"

// Engine is the capability a loaded model exposes to the dispatcher.
// Implementations own the model's Data exclusively and are not safe for
// concurrent use.
type Engine interface {
	// Step advances the simulation by one model timestep.
	Step() error
	// Reset restores the reference pose and zeroes engine time.
	Reset()
	// Forward recomputes derived quantities from current qpos/qvel
	// without advancing time.
	Forward()
	// Inverse computes the generalized forces required to produce the
	// current accelerations. qpos and qvel are not mutated.
	Inverse()
	// Time reports the engine's accumulated simulation time.
	Time() float64
}

// ErrUnstable indicates integration produced NaN or Inf state.
var ErrUnstable = errors.New("engine: simulation unstable (state diverged)")
