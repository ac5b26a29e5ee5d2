// Package sim defines the simulator contract the round controller drives
// and two built-in reference simulators.
package sim

import (
	"context"
	"fmt"

	"github.com/adaptivemd/asmd/internal/traj"
)

// #region seed
// Seed is one starting point for a trajectory: a discrete state index, a
// continuous structure, or both (a cluster state plus its centroid).
type Seed struct {
	State int       `json:"state"`
	Point []float64 `json:"point,omitempty"`
}

// #endregion seed

// #region result
// Result is the trajectory produced for one seed, in exactly one of the two
// frame representations.
type Result struct {
	Kind     traj.Kind
	Discrete traj.Discrete
	Vector   traj.Vector
}

// Frames returns the frame count regardless of representation.
func (r Result) Frames() int {
	if r.Kind == traj.KindDiscrete {
		return len(r.Discrete)
	}
	return len(r.Vector)
}

// #endregion result

// #region simulator-interface
// Simulator produces one trajectory of spt steps from a seed. A failure is
// fatal for the round; retry policy, if any, lives inside the
// implementation.
type Simulator interface {
	Simulate(ctx context.Context, seed Seed, spt int) (Result, error)

	// Kind reports which frame representation this simulator produces, so
	// the controller can pick the matching modeller and storage encoding.
	Kind() traj.Kind
}

// #endregion simulator-interface

// #region simulation-error
// SimulationError wraps a simulator failure with its seed for reporting.
type SimulationError struct {
	Seed Seed
	Err  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulate from state %d: %v", e.Seed.State, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

// #endregion simulation-error
