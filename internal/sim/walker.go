package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/adaptivemd/asmd/internal/traj"
)

// #region walker
// WalkerSimulator is a continuous toy system: overdamped Langevin dynamics
// on a 2-D double-well potential. It exists so the clustering path of the
// pipeline can be exercised without any molecular machinery.
type WalkerSimulator struct {
	// StepSize scales the deterministic drift per step.
	StepSize float64
	// Noise scales the random kick per step.
	Noise float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWalkerSimulator seeds a walker with sane defaults.
func NewWalkerSimulator(seed int64) *WalkerSimulator {
	return &WalkerSimulator{
		StepSize: 0.01,
		Noise:    0.15,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Kind reports that this simulator emits feature-vector trajectories.
func (s *WalkerSimulator) Kind() traj.Kind { return traj.KindVector }

// #endregion walker

// #region simulate
// Simulate integrates spt steps from seed.Point (origin when nil). The
// returned trajectory has spt+1 two-dimensional frames including the start.
func (s *WalkerSimulator) Simulate(ctx context.Context, seed Seed, spt int) (Result, error) {
	if spt < 1 {
		return Result{}, &SimulationError{Seed: seed, Err: fmt.Errorf("spt must be positive, got %d", spt)}
	}
	x, y := 0.0, 0.0
	if len(seed.Point) >= 2 {
		x, y = seed.Point[0], seed.Point[1]
	} else if len(seed.Point) != 0 {
		return Result{}, &SimulationError{Seed: seed, Err: fmt.Errorf("want 2-dimensional seed point, got %d", len(seed.Point))}
	}

	s.mu.Lock()
	sub := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	t := make(traj.Vector, 0, spt+1)
	t = append(t, []float64{x, y})
	for i := 0; i < spt; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, &SimulationError{Seed: seed, Err: err}
		}
		gx, gy := gradDoubleWell(x, y)
		x += -s.StepSize*gx + s.Noise*sub.NormFloat64()*math.Sqrt(s.StepSize)
		y += -s.StepSize*gy + s.Noise*sub.NormFloat64()*math.Sqrt(s.StepSize)
		t = append(t, []float64{x, y})
	}
	return Result{Kind: traj.KindVector, Vector: t}, nil
}

// gradDoubleWell is the gradient of V(x,y) = (x²-1)² + y².
func gradDoubleWell(x, y float64) (float64, float64) {
	return 4 * x * (x*x - 1), 2 * y
}

// #endregion simulate
