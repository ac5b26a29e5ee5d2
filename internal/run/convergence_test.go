package run

import (
	"testing"

	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/traj"
)

func TestMinCountPerState(t *testing.T) {
	pred := MinCountPerState(5)

	if pred(model.Summary{}) {
		t.Fatal("empty summary must not converge")
	}
	if pred(model.Summary{Found: []int{0, 1}, CountsPerState: []int{5, 3, 0}}) {
		t.Fatal("under-sampled state must block convergence")
	}
	if !pred(model.Summary{Found: []int{0, 1}, CountsPerState: []int{5, 7, 0}}) {
		t.Fatal("all found states at threshold should converge")
	}
	// A state can be found with zero outgoing counts when it was only ever
	// visited at a trajectory end; it is the least-sampled state and must
	// keep the run going.
	if pred(model.Summary{Found: []int{0, 1, 2}, CountsPerState: []int{5, 7, 0}}) {
		t.Fatal("zero-count found state must block convergence")
	}
	// Unfound zero-count states are matrix padding and carry no evidence.
	if !pred(model.Summary{Found: []int{1, 2}, CountsPerState: []int{0, 6, 9}}) {
		t.Fatal("zero-count unfound state should not block convergence")
	}
}

func TestMinCountPerStateEndToEnd(t *testing.T) {
	// State 2 appears only as the final frame of the trajectory, so it is
	// found but has no outgoing transitions.
	m := model.NewTMatModeller()
	ts := model.Trajectories{Discrete: []traj.Discrete{{0, 1, 0, 1, 2}}}
	if err := m.Model(ts, 1); err != nil {
		t.Fatalf("Model: %v", err)
	}
	s, err := model.Summarize(m, 0)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if MinCountPerState(1)(s) {
		t.Fatal("boundary state with zero counts must block convergence")
	}
}

func TestMinTotalCounts(t *testing.T) {
	pred := MinTotalCounts(100)
	if pred(model.Summary{TotalCounts: 99}) {
		t.Fatal("below threshold must not converge")
	}
	if !pred(model.Summary{TotalCounts: 100}) {
		t.Fatal("at threshold must converge")
	}
}

func TestAllStatesFound(t *testing.T) {
	pred := AllStatesFound(3)
	if pred(model.Summary{FoundStates: 2}) {
		t.Fatal("missing states must not converge")
	}
	if !pred(model.Summary{FoundStates: 3}) {
		t.Fatal("all states found must converge")
	}
}
