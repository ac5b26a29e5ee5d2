// Package adapt selects the states new trajectories should start from,
// biased toward the least-sampled regions of the model.
package adapt

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/adaptivemd/asmd/internal/model"
)

// #region errors
// ErrModelNotBuilt is returned when Select runs against a model whose
// counts are unavailable. Always an ordering bug in the caller.
var ErrModelNotBuilt = errors.New("adapter: model not built")

// #endregion errors

// #region adapter-interface
// Adapter chooses the starting states for the next round from a built model.
type Adapter interface {
	// Select returns at most tpr state indices, ordered by selection
	// priority.
	Select(m model.Modeller, tpr int) ([]int, error)
}

// #endregion adapter-interface

// #region sort-counts
// SortCountsAdapter picks the states with the fewest observed outgoing
// transitions: the least statistically characterized states give the most
// information per newly simulated frame.
type SortCountsAdapter struct {
	// Logger receives selection summaries; nil falls back to log.Default().
	Logger *log.Logger
}

// Select ranks candidate states ascending by total outgoing counts, ties
// broken by ascending state index, and returns the first min(tpr, n)
// candidates. When the model restricts candidates to its found states,
// states outside that set are never returned.
func (a *SortCountsAdapter) Select(m model.Modeller, tpr int) ([]int, error) {
	if tpr < 1 {
		return nil, fmt.Errorf("tpr must be positive, got %d", tpr)
	}
	counts, err := m.Counts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotBuilt, err)
	}

	perState := counts.PerState()

	// Only consider states we know something about.
	var candidates []int
	if r, ok := m.(model.StateRestricter); ok {
		candidates = append([]int(nil), r.FoundStates()...)
	} else {
		candidates = make([]int, counts.NStates())
		for i := range candidates {
			candidates[i] = i
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := perState[candidates[i]], perState[candidates[j]]
		if ci != cj {
			return ci < cj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > tpr {
		candidates = candidates[:tpr]
	}

	a.logger().Printf("[ADAPT] selected %d starting states %v", len(candidates), candidates)
	return candidates, nil
}

func (a *SortCountsAdapter) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.Default()
}

// #endregion sort-counts
