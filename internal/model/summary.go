package model

// #region summary
// Summary is the read-only view of a built model consumed by convergence
// predicates and reporting. It carries no reference back into the model.
type Summary struct {
	Round          int   `json:"round"`
	NStates        int   `json:"n_states"`
	TotalCounts    int   `json:"total_counts"`
	CountsPerState []int `json:"counts_per_state"`
	// Found lists, in ascending order, the states with transition evidence.
	// It can include states with zero outgoing counts: a state visited only
	// at a trajectory end is found but unsampled, and convergence checks
	// must see it.
	Found       []int `json:"found"`
	FoundStates int   `json:"found_states"`
}

// Summarize snapshots a built model's public counts. It fails with
// ErrNotBuilt when Model has not run.
func Summarize(m Modeller, round int) (Summary, error) {
	counts, err := m.Counts()
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Round:          round,
		NStates:        counts.NStates(),
		TotalCounts:    counts.Total(),
		CountsPerState: counts.PerState(),
	}
	if r, ok := m.(StateRestricter); ok {
		s.Found = append([]int(nil), r.FoundStates()...)
	} else {
		// Every cluster contains at least one frame, so all states count
		// as found.
		s.Found = make([]int, counts.NStates())
		for i := range s.Found {
			s.Found[i] = i
		}
	}
	s.FoundStates = len(s.Found)
	return s, nil
}

// #endregion summary
