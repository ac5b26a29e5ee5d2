package model

import "github.com/adaptivemd/asmd/internal/traj"

// #region counts-struct
// Counts is a square transition-count matrix over discrete states.
// Entry (i,j) is the number of observed i→j transitions at the build lag.
type Counts struct {
	m [][]int
}

// NewCounts allocates an n×n zero matrix.
func NewCounts(n int) *Counts {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return &Counts{m: m}
}

// CountsFrom copies a square slice matrix into a Counts.
func CountsFrom(m [][]int) *Counts {
	c := NewCounts(len(m))
	for i, row := range m {
		copy(c.m[i], row)
	}
	return c
}

// #endregion counts-struct

// #region accessors
// NStates returns the matrix dimension.
func (c *Counts) NStates() int { return len(c.m) }

// At returns the count for the i→j transition.
func (c *Counts) At(i, j int) int { return c.m[i][j] }

// RowSum returns the total outgoing count from state i.
func (c *Counts) RowSum(i int) int {
	var sum int
	for _, v := range c.m[i] {
		sum += v
	}
	return sum
}

// PerState returns the outgoing count for every state.
func (c *Counts) PerState() []int {
	out := make([]int, len(c.m))
	for i := range c.m {
		out[i] = c.RowSum(i)
	}
	return out
}

// Total returns the sum of all entries.
func (c *Counts) Total() int {
	var sum int
	for i := range c.m {
		sum += c.RowSum(i)
	}
	return sum
}

// #endregion accessors

// #region count-transitions
// countTransitions tallies transitions at the given lag across all
// trajectories into an nStates×nStates matrix.
func countTransitions(trajs []traj.Discrete, lag, nStates int) *Counts {
	c := NewCounts(nStates)
	for _, t := range trajs {
		for i := 0; i+lag < len(t); i++ {
			c.m[t[i]][t[i+lag]]++
		}
	}
	return c
}

// maxState returns the largest state index present, or -1 when empty.
func maxState(trajs []traj.Discrete) int {
	max := -1
	for _, t := range trajs {
		for _, s := range t {
			if s > max {
				max = s
			}
		}
	}
	return max
}

// #endregion count-transitions
