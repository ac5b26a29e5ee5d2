package model

import (
	"fmt"
	"math"

	"github.com/adaptivemd/asmd/internal/cluster"
	"github.com/adaptivemd/asmd/internal/traj"
)

// #region cluster-modeller
// ClusterModeller discretizes continuous trajectories with k-means and then
// counts transitions over the resulting label sequences. The cluster count
// follows the sqrt(n/2) rule of thumb and is recomputed every round as the
// cumulative frame count grows.
type ClusterModeller struct {
	// ClusterSeed fixes the k-means initialization for reproducibility.
	ClusterSeed int64

	clusterer *cluster.KMeans
	counts    *Counts
}

// NewClusterModeller returns an unbuilt continuous-trajectory modeller.
func NewClusterModeller(clusterSeed int64) *ClusterModeller {
	return &ClusterModeller{ClusterSeed: clusterSeed}
}

// #endregion cluster-modeller

// #region n-clusters
// NClustersFor applies the rule-of-thumb cluster count for a cumulative
// frame total, clamped to at least 1.
func NClustersFor(totalFrames int) int {
	k := int(math.Sqrt(float64(totalFrames) / 2))
	if k < 1 {
		k = 1
	}
	return k
}

// #endregion n-clusters

// #region model
// Model clusters all frames across all trajectories, converts each
// trajectory to its per-frame label sequence, and counts transitions at the
// given lag.
func (m *ClusterModeller) Model(ts Trajectories, lag int) error {
	if len(ts.Vector) == 0 {
		return fmt.Errorf("%w: no vector trajectories", ErrInsufficientData)
	}
	if lag < 1 {
		return fmt.Errorf("lag must be positive, got %d", lag)
	}

	var frames [][]float64
	for _, t := range ts.Vector {
		if len(t) < lag {
			return fmt.Errorf("%w: trajectory of %d frames shorter than lag %d", ErrInsufficientData, len(t), lag)
		}
		frames = append(frames, t...)
	}
	if len(frames) < 2 {
		return fmt.Errorf("%w: %d total frames", ErrInsufficientData, len(frames))
	}

	km := cluster.New(NClustersFor(len(frames)), m.ClusterSeed)
	if err := km.Fit(frames); err != nil {
		return fmt.Errorf("fit clusterer: %w", err)
	}

	labelled := make([]traj.Discrete, len(ts.Vector))
	for i, t := range ts.Vector {
		labelled[i] = km.Labels(t)
	}

	m.clusterer = km
	m.counts = countTransitions(labelled, lag, km.NCentroids())
	return nil
}

// #endregion model

// #region accessors
// Counts returns the transition-count matrix over cluster-label space.
func (m *ClusterModeller) Counts() (*Counts, error) {
	if m.counts == nil {
		return nil, ErrNotBuilt
	}
	return m.counts, nil
}

// Centroid returns the continuous-space centroid for a cluster state, used
// to turn selected states back into simulator starting structures.
func (m *ClusterModeller) Centroid(state int) []float64 {
	return m.clusterer.Centroid(state)
}

// NClusters returns the fitted cluster count.
func (m *ClusterModeller) NClusters() int {
	if m.clusterer == nil {
		return 0
	}
	return m.clusterer.NCentroids()
}

// #endregion accessors
