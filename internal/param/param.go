// Package param holds the immutable configuration bundle for an adaptive
// run and the round-indexed namespace layout.
package param

import (
	"fmt"

	"github.com/google/uuid"
)

// #region params
// Params is the per-run configuration bundle. Everything except the round
// pointer is fixed at run start; only the round controller advances the
// pointer, once per completed round.
type Params struct {
	// SPT is the number of simulation steps per trajectory.
	SPT int
	// TPR is the number of trajectories started each round.
	TPR int
	// LagTime is the transition-counting lag for model building.
	LagTime int
	// RunID namespaces all storage for this run.
	RunID string
	// MaxRounds, when positive, terminates the run after that many rounds.
	MaxRounds int
	// Workers bounds concurrent simulations within a round; 0 means TPR.
	Workers int

	round int
}

// New validates the core knobs and assigns a fresh RunID when none is given.
func New(spt, tpr, lagTime int, runID string) (*Params, error) {
	if spt < 1 {
		return nil, fmt.Errorf("spt must be positive, got %d", spt)
	}
	if tpr < 1 {
		return nil, fmt.Errorf("tpr must be positive, got %d", tpr)
	}
	if lagTime < 1 {
		return nil, fmt.Errorf("lag_time must be positive, got %d", lagTime)
	}
	if runID == "" {
		runID = uuid.New().String()
	}
	return &Params{SPT: spt, TPR: tpr, LagTime: lagTime, RunID: runID}, nil
}

// #endregion params

// #region round-pointer
// Round returns the current round index.
func (p *Params) Round() int { return p.round }

// AdvanceRound moves the round pointer forward by exactly one. Reserved for
// the round controller.
func (p *Params) AdvanceRound() { p.round++ }

// SetRound positions the pointer when resuming a partially completed run.
func (p *Params) SetRound(i int) error {
	if i < 0 {
		return fmt.Errorf("round must be non-negative, got %d", i)
	}
	p.round = i
	return nil
}

// #endregion round-pointer

// #region description
// Desc is a short human-readable tag used in logs and report titles.
func (p *Params) Desc() string {
	return fmt.Sprintf("lt-%d_spt-%d_tpr-%d", p.LagTime, p.SPT, p.TPR)
}

// #endregion description
