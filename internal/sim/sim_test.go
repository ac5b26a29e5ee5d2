package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/adaptivemd/asmd/internal/traj"
)

func TestTMatSimulatorValidation(t *testing.T) {
	if _, err := NewTMatSimulator(nil, 0); err == nil {
		t.Fatal("expected error for empty matrix")
	}
	if _, err := NewTMatSimulator([][]float64{{0.5, 0.5}, {1.0}}, 0); err == nil {
		t.Fatal("expected error for ragged matrix")
	}
	if _, err := NewTMatSimulator([][]float64{{0.5, 0.4}, {0.5, 0.5}}, 0); err == nil {
		t.Fatal("expected error for non-stochastic row")
	}
	if _, err := NewTMatSimulator([][]float64{{1.5, -0.5}, {0.5, 0.5}}, 0); err == nil {
		t.Fatal("expected error for negative probability")
	}
}

func TestTMatSimulatorTrajectoryShape(t *testing.T) {
	s, err := NewTMatSimulator([][]float64{
		{0.5, 0.5},
		{0.5, 0.5},
	}, 1)
	if err != nil {
		t.Fatalf("NewTMatSimulator: %v", err)
	}
	if s.Kind() != traj.KindDiscrete {
		t.Fatalf("Kind = %v", s.Kind())
	}

	res, err := s.Simulate(context.Background(), Seed{State: 0}, 50)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Frames() != 51 {
		t.Fatalf("expected 51 frames (seed + 50 steps), got %d", res.Frames())
	}
	if res.Discrete[0] != 0 {
		t.Fatalf("trajectory must start at the seed state, got %d", res.Discrete[0])
	}
	for i, st := range res.Discrete {
		if st < 0 || st > 1 {
			t.Fatalf("state %d out of range at frame %d", st, i)
		}
	}
}

func TestTMatSimulatorAbsorbing(t *testing.T) {
	// Identity matrix: the chain never leaves its seed state.
	s, err := NewTMatSimulator([][]float64{
		{1, 0},
		{0, 1},
	}, 3)
	if err != nil {
		t.Fatalf("NewTMatSimulator: %v", err)
	}
	res, err := s.Simulate(context.Background(), Seed{State: 1}, 10)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for _, st := range res.Discrete {
		if st != 1 {
			t.Fatalf("absorbing chain left state 1: %v", res.Discrete)
		}
	}
}

func TestTMatSimulatorReproducible(t *testing.T) {
	p := [][]float64{
		{0.9, 0.1, 0},
		{0.1, 0.8, 0.1},
		{0, 0.1, 0.9},
	}
	a, _ := NewTMatSimulator(p, 42)
	b, _ := NewTMatSimulator(p, 42)

	ra, err := a.Simulate(context.Background(), Seed{State: 0}, 100)
	if err != nil {
		t.Fatalf("Simulate a: %v", err)
	}
	rb, err := b.Simulate(context.Background(), Seed{State: 0}, 100)
	if err != nil {
		t.Fatalf("Simulate b: %v", err)
	}
	if !reflect.DeepEqual(ra.Discrete, rb.Discrete) {
		t.Fatal("same seed produced different trajectories")
	}
}

func TestTMatSimulatorBadSeed(t *testing.T) {
	s, _ := NewTMatSimulator([][]float64{{1}}, 0)
	_, err := s.Simulate(context.Background(), Seed{State: 5}, 10)
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Seed.State != 5 {
		t.Fatalf("error carries seed state %d, want 5", simErr.Seed.State)
	}
}

func TestTMatSimulatorCancellation(t *testing.T) {
	s, _ := NewTMatSimulator([][]float64{{1}}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Simulate(ctx, Seed{State: 0}, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWalkerSimulatorTrajectoryShape(t *testing.T) {
	s := NewWalkerSimulator(7)
	if s.Kind() != traj.KindVector {
		t.Fatalf("Kind = %v", s.Kind())
	}

	res, err := s.Simulate(context.Background(), Seed{Point: []float64{1.5, -0.5}}, 30)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Frames() != 31 {
		t.Fatalf("expected 31 frames, got %d", res.Frames())
	}
	if res.Vector[0][0] != 1.5 || res.Vector[0][1] != -0.5 {
		t.Fatalf("trajectory must start at the seed point, got %v", res.Vector[0])
	}
	for i, f := range res.Vector {
		if len(f) != 2 {
			t.Fatalf("frame %d has dimension %d, want 2", i, len(f))
		}
	}
}

func TestWalkerSimulatorDefaultsToOrigin(t *testing.T) {
	s := NewWalkerSimulator(7)
	res, err := s.Simulate(context.Background(), Seed{}, 5)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Vector[0][0] != 0 || res.Vector[0][1] != 0 {
		t.Fatalf("expected origin start, got %v", res.Vector[0])
	}
}

func TestWalkerSimulatorBadPoint(t *testing.T) {
	s := NewWalkerSimulator(7)
	if _, err := s.Simulate(context.Background(), Seed{Point: []float64{1}}, 5); err == nil {
		t.Fatal("expected error for 1-dimensional seed point")
	}
}
