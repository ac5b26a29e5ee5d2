package report

import (
	"os"
	"strings"
	"testing"

	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/sim"
	"github.com/adaptivemd/asmd/internal/store"
	"github.com/adaptivemd/asmd/internal/traj"
)

func testGenerator(t *testing.T) (*Generator, *store.Store) {
	t.Helper()

	p, err := param.New(10, 2, 1, "rep-run")
	if err != nil {
		t.Fatalf("param.New: %v", err)
	}
	layout := param.NewLayout(t.TempDir(), p.RunID)
	if _, err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	st, err := store.NewStore(layout.DBPath())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.EnsureRun(p.RunID, "{}"); err != nil {
		t.Fatalf("EnsureRun: %v", err)
	}

	return &Generator{
		Store:       st,
		Layout:      layout,
		Params:      p,
		Kind:        traj.KindDiscrete,
		NewModeller: func() model.Modeller { return model.NewTMatModeller() },
	}, st
}

func put(t *testing.T, st *store.Store, round, seed int, states ...int) {
	t.Helper()
	res := sim.Result{Kind: traj.KindDiscrete, Discrete: states}
	if err := st.PutTrajectory("rep-run", round, seed, res, true); err != nil {
		t.Fatalf("PutTrajectory: %v", err)
	}
}

func TestSummariesAreCumulative(t *testing.T) {
	g, st := testGenerator(t)
	put(t, st, 0, 0, 0, 1, 0)
	put(t, st, 1, 0, 1, 2, 1)

	summaries, err := g.Summaries(1)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].TotalCounts != 2 {
		t.Fatalf("round 0 counts = %d, want 2", summaries[0].TotalCounts)
	}
	// Round 1's model includes round 0's trajectories.
	if summaries[1].TotalCounts != 4 {
		t.Fatalf("round 1 counts = %d, want 4", summaries[1].TotalCounts)
	}
	if summaries[1].TotalCounts < summaries[0].TotalCounts {
		t.Fatal("cumulative counts decreased across rounds")
	}
}

func TestGenerateWritesPerRoundReports(t *testing.T) {
	g, st := testGenerator(t)
	put(t, st, 0, 0, 0, 1, 1, 0)
	put(t, st, 1, 0, 1, 2, 2, 1)

	if err := g.Generate(1); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for round := 0; round <= 1; round++ {
		data, err := os.ReadFile(g.Layout.ReportPath(round))
		if err != nil {
			t.Fatalf("report round %d missing: %v", round, err)
		}
		if !strings.Contains(string(data), "state counts (ascending):") {
			t.Fatalf("report round %d lacks counts section:\n%s", round, data)
		}
	}
}

func TestRenderOrdersAscending(t *testing.T) {
	out := Render(model.Summary{
		Round:          2,
		NStates:        3,
		TotalCounts:    11,
		FoundStates:    3,
		CountsPerState: []int{5, 5, 1},
	}, "demo")

	i2 := strings.Index(out, "state 2: 1")
	i0 := strings.Index(out, "state 0: 5")
	i1 := strings.Index(out, "state 1: 5")
	if i2 < 0 || i0 < 0 || i1 < 0 {
		t.Fatalf("missing state lines:\n%s", out)
	}
	// Least-sampled first; ties by index.
	if !(i2 < i0 && i0 < i1) {
		t.Fatalf("states out of order:\n%s", out)
	}
}

func TestSummariesPropagateModelErrors(t *testing.T) {
	g, _ := testGenerator(t)
	// No trajectories stored at all.
	if _, err := g.Summaries(0); err == nil {
		t.Fatal("expected error when a round has no data")
	}
}
