// Package model reduces accumulated trajectories to transition-count models
// for adaptive seed selection.
package model

import (
	"errors"
	"fmt"

	"github.com/adaptivemd/asmd/internal/traj"
)

// #region errors
var (
	// ErrNotBuilt is returned by accessors called before a successful Model.
	ErrNotBuilt = errors.New("model not built")
	// ErrInsufficientData is returned when the trajectory set cannot support
	// even a single transition estimate.
	ErrInsufficientData = errors.New("insufficient data to estimate transitions")
)

// #endregion errors

// #region trajectory-set
// Trajectories is the cumulative trajectory set handed to a modeller:
// everything produced in rounds 0 through the current round, in one of the
// two frame representations.
type Trajectories struct {
	Discrete []traj.Discrete
	Vector   []traj.Vector
}

// TotalFrames counts frames across both representations.
func (ts Trajectories) TotalFrames() int {
	var n int
	for _, t := range ts.Discrete {
		n += len(t)
	}
	for _, t := range ts.Vector {
		n += len(t)
	}
	return n
}

// #endregion trajectory-set

// #region modeller-interface
// Modeller builds a transition-count model from the cumulative trajectory
// set. Model is idempotent for identical input and always rebuilds from
// scratch; nothing is carried over between rounds.
type Modeller interface {
	// Model consumes all trajectories from rounds 0..current at the given
	// lag. It fails with ErrInsufficientData when fewer than 2 frames exist
	// in total or any trajectory is shorter than the lag.
	Model(ts Trajectories, lag int) error

	// Counts returns the transition-count matrix, or ErrNotBuilt before the
	// first successful Model call.
	Counts() (*Counts, error)
}

// StateRestricter is implemented by modellers that know which states carry
// transition evidence; adapters must not seed from states outside this set.
type StateRestricter interface {
	FoundStates() []int
}

// CentroidSource is implemented by modellers whose states correspond to
// points in the original continuous space.
type CentroidSource interface {
	Centroid(state int) []float64
}

// #endregion modeller-interface

// #region validation
// validateDiscrete applies the shared input checks for discrete trajectories.
func validateDiscrete(trajs []traj.Discrete, lag int) error {
	if lag < 1 {
		return fmt.Errorf("lag must be positive, got %d", lag)
	}
	var frames int
	for i, t := range trajs {
		if len(t) < lag {
			return fmt.Errorf("%w: trajectory of %d frames shorter than lag %d", ErrInsufficientData, len(t), lag)
		}
		// Remote simulators and decoded blobs are untrusted; a negative
		// index would land outside the count matrix.
		for j, s := range t {
			if s < 0 {
				return fmt.Errorf("trajectory %d: negative state index %d at frame %d", i, s, j)
			}
		}
		frames += len(t)
	}
	if frames < 2 {
		return fmt.Errorf("%w: %d total frames", ErrInsufficientData, frames)
	}
	return nil
}

// #endregion validation
