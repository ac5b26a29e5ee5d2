package run

import "github.com/adaptivemd/asmd/internal/model"

// #region predicates
// MinCountPerState converges once every found state has at least threshold
// outgoing transitions: the least-sampled state is the binding constraint
// under the sort-counts policy, so this is its natural stopping rule.
func MinCountPerState(threshold int) ConvergencePredicate {
	return func(s model.Summary) bool {
		if len(s.Found) == 0 {
			return false
		}
		// Threshold over the found set, not the matrix domain: a found
		// state with zero outgoing counts (visited only at a trajectory
		// end) is the least-sampled state of all and must block.
		for _, state := range s.Found {
			if state < 0 || state >= len(s.CountsPerState) {
				return false
			}
			if s.CountsPerState[state] < threshold {
				return false
			}
		}
		return true
	}
}

// MinTotalCounts converges once the cumulative transition count reaches
// threshold. Mostly useful as a coarse budget cap in tests and demos.
func MinTotalCounts(threshold int) ConvergencePredicate {
	return func(s model.Summary) bool {
		return s.TotalCounts >= threshold
	}
}

// AllStatesFound converges when the model has evidence for at least
// nStates states. Only meaningful for discrete systems whose state-space
// size is known up front.
func AllStatesFound(nStates int) ConvergencePredicate {
	return func(s model.Summary) bool {
		return s.FoundStates >= nStates
	}
}

// #endregion predicates
