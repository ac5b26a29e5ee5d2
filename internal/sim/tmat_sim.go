package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/adaptivemd/asmd/internal/traj"
)

// #region tmat-simulator
// TMatSimulator samples a discrete Markov chain from a row-stochastic
// transition probability matrix. It is the reference simulator for
// discrete-state adaptive runs and for testing the control loop without a
// physics engine.
type TMatSimulator struct {
	p [][]float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTMatSimulator validates that p is square and row-stochastic and seeds
// the sampler for reproducible runs.
func NewTMatSimulator(p [][]float64, seed int64) (*TMatSimulator, error) {
	n := len(p)
	if n == 0 {
		return nil, fmt.Errorf("empty transition matrix")
	}
	for i, row := range p {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(row), n)
		}
		var sum float64
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("negative probability at (%d,%d)", i, j)
			}
			sum += v
		}
		if sum < 1-1e-9 || sum > 1+1e-9 {
			return nil, fmt.Errorf("row %d sums to %v, want 1", i, sum)
		}
	}
	return &TMatSimulator{p: p, rng: rand.New(rand.NewSource(seed))}, nil
}

// NStates returns the size of the chain's state space.
func (s *TMatSimulator) NStates() int { return len(s.p) }

// Kind reports that this simulator emits discrete-state trajectories.
func (s *TMatSimulator) Kind() traj.Kind { return traj.KindDiscrete }

// #endregion tmat-simulator

// #region simulate
// Simulate walks the chain for spt steps starting at seed.State. The
// returned trajectory has spt+1 frames including the seed frame. Safe for
// concurrent use: each call draws an independent sub-generator.
func (s *TMatSimulator) Simulate(ctx context.Context, seed Seed, spt int) (Result, error) {
	if seed.State < 0 || seed.State >= len(s.p) {
		return Result{}, &SimulationError{Seed: seed, Err: fmt.Errorf("state out of range [0,%d)", len(s.p))}
	}
	if spt < 1 {
		return Result{}, &SimulationError{Seed: seed, Err: fmt.Errorf("spt must be positive, got %d", spt)}
	}

	s.mu.Lock()
	sub := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	t := make(traj.Discrete, 0, spt+1)
	state := seed.State
	t = append(t, state)
	for i := 0; i < spt; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, &SimulationError{Seed: seed, Err: err}
		}
		state = step(s.p[state], sub.Float64())
		t = append(t, state)
	}
	return Result{Kind: traj.KindDiscrete, Discrete: t}, nil
}

// step inverts the CDF of one probability row.
func step(row []float64, u float64) int {
	var cum float64
	for j, v := range row {
		cum += v
		if u < cum {
			return j
		}
	}
	return len(row) - 1
}

// #endregion simulate
