// Package report renders per-round summaries from a completed (or
// in-flight) run. It only consumes the model's public summary and never
// feeds back into the algorithm.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/adaptivemd/asmd/internal/model"
	"github.com/adaptivemd/asmd/internal/param"
	"github.com/adaptivemd/asmd/internal/store"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region generator
// Generator rebuilds the model for every round from the stored cumulative
// trajectories and writes one report per round into the figures namespace.
// Rebuilding rather than trusting caches keeps reports valid even when a
// run crashed between modeling and summary caching.
type Generator struct {
	Store  *store.Store
	Layout param.Layout
	Params *param.Params
	Kind   traj.Kind

	// NewModeller returns a fresh modeller per round; models are never
	// merged across rounds.
	NewModeller func() model.Modeller
}

// #endregion generator

// #region summaries
// Summaries rebuilds and summarizes the model for rounds 0..throughRound.
func (g *Generator) Summaries(throughRound int) ([]model.Summary, error) {
	out := make([]model.Summary, 0, throughRound+1)
	for round := 0; round <= throughRound; round++ {
		m := g.NewModeller()
		ts, err := g.load(round)
		if err != nil {
			return nil, err
		}
		if err := m.Model(ts, g.Params.LagTime); err != nil {
			return nil, fmt.Errorf("model round %d: %w", round, err)
		}
		s, err := model.Summarize(m, round)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (g *Generator) load(round int) (model.Trajectories, error) {
	var ts model.Trajectories
	if g.Kind == traj.KindVector {
		trajs, err := g.Store.LoadVector(g.Params.RunID, round)
		if err != nil {
			return ts, err
		}
		ts.Vector = trajs
		return ts, nil
	}
	trajs, err := g.Store.LoadDiscrete(g.Params.RunID, round)
	if err != nil {
		return ts, err
	}
	ts.Discrete = trajs
	return ts, nil
}

// #endregion summaries

// #region generate
// Generate writes one plain-text report per round under the figures key.
func (g *Generator) Generate(throughRound int) error {
	summaries, err := g.Summaries(throughRound)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		path := g.Layout.ReportPath(s.Round)
		if err := os.WriteFile(path, []byte(Render(s, g.Params.Desc())), 0o644); err != nil {
			return fmt.Errorf("write report round %d: %w", s.Round, err)
		}
	}
	return nil
}

// Render formats one round summary, least-sampled states first.
func Render(s model.Summary, desc string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s round %d\n", desc, s.Round)
	fmt.Fprintf(&b, "states: %d  found: %d  total counts: %d\n", s.NStates, s.FoundStates, s.TotalCounts)

	order := make([]int, len(s.CountsPerState))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := s.CountsPerState[order[i]], s.CountsPerState[order[j]]
		if ci != cj {
			return ci < cj
		}
		return order[i] < order[j]
	})

	b.WriteString("state counts (ascending):\n")
	for _, st := range order {
		fmt.Fprintf(&b, "  state %d: %d\n", st, s.CountsPerState[st])
	}
	return b.String()
}

// #endregion generate
