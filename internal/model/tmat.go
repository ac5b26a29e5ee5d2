package model

import (
	"fmt"
	"sort"
)

// #region tmat-modeller
// TMatModeller builds transition counts from trajectories that are already
// sequences of discrete-state indices; no clustering step.
type TMatModeller struct {
	counts *Counts
	found  []int
}

// NewTMatModeller returns an unbuilt discrete-trajectory modeller.
func NewTMatModeller() *TMatModeller {
	return &TMatModeller{}
}

// #endregion tmat-modeller

// #region model
// Model counts transitions at the given lag and records which states carry
// any transition evidence.
func (m *TMatModeller) Model(ts Trajectories, lag int) error {
	if len(ts.Discrete) == 0 {
		return fmt.Errorf("%w: no discrete trajectories", ErrInsufficientData)
	}
	if err := validateDiscrete(ts.Discrete, lag); err != nil {
		return err
	}

	n := maxState(ts.Discrete) + 1
	counts := countTransitions(ts.Discrete, lag, n)

	// Found states: any state with at least one transition to OR from it.
	// States with zero outgoing counts may still have been visited at the
	// end of a trajectory; those boundary states matter for exploration and
	// must not be discarded.
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if counts.At(i, j) > 0 {
				seen[i] = true
				seen[j] = true
			}
		}
	}
	found := make([]int, 0, len(seen))
	for s := range seen {
		found = append(found, s)
	}
	sort.Ints(found)

	m.counts = counts
	m.found = found
	return nil
}

// #endregion model

// #region accessors
// Counts returns the transition-count matrix built by Model.
func (m *TMatModeller) Counts() (*Counts, error) {
	if m.counts == nil {
		return nil, ErrNotBuilt
	}
	return m.counts, nil
}

// FoundStates returns, in ascending order, every state that participates in
// at least one observed transition.
func (m *TMatModeller) FoundStates() []int {
	return m.found
}

// #endregion accessors
