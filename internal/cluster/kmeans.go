// Package cluster provides the deterministic k-means used to discretize
// continuous trajectories before transition counting.
package cluster

import (
	"fmt"
	"math"
	"math/rand"
)

// #region constants
const defaultMaxIter = 100

// #endregion constants

// #region kmeans-struct
// KMeans partitions feature vectors into K groups by iterative centroid
// refinement. Given the same seed and input order it always produces the
// same assignment.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64

	centroids [][]float64
}

// New creates a clusterer with k centroids and a fixed random seed.
func New(k int, seed int64) *KMeans {
	return &KMeans{K: k, MaxIter: defaultMaxIter, Seed: seed}
}

// #endregion kmeans-struct

// #region fit
// Fit runs Lloyd iterations over frames until assignments stop changing or
// MaxIter is reached. K is clamped to the number of distinct frames available.
func (km *KMeans) Fit(frames [][]float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("kmeans: no frames to cluster")
	}
	k := km.K
	if k < 1 {
		k = 1
	}
	if k > len(frames) {
		k = len(frames)
	}

	rng := rand.New(rand.NewSource(km.Seed))
	perm := rng.Perm(len(frames))

	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), frames[perm[i]]...)
	}

	labels := make([]int, len(frames))
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, f := range frames {
			l := nearest(centroids, f)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; a cluster that lost all members keeps its
		// previous centroid so label indices stay stable.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, len(frames[0]))
		}
		for i, f := range frames {
			l := labels[i]
			counts[l]++
			for j, v := range f {
				sums[l][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	km.centroids = centroids
	return nil
}

// #endregion fit

// #region accessors
// NCentroids returns the number of fitted centroids.
func (km *KMeans) NCentroids() int { return len(km.centroids) }

// Centroid returns the fitted centroid for cluster c.
func (km *KMeans) Centroid(c int) []float64 {
	return km.centroids[c]
}

// Predict returns the index of the centroid nearest to frame.
func (km *KMeans) Predict(frame []float64) int {
	return nearest(km.centroids, frame)
}

// Labels assigns every frame to its nearest centroid.
func (km *KMeans) Labels(frames [][]float64) []int {
	labels := make([]int, len(frames))
	for i, f := range frames {
		labels[i] = nearest(km.centroids, f)
	}
	return labels
}

// #endregion accessors

// #region helpers
func nearest(centroids [][]float64, frame []float64) int {
	best, bestD := 0, math.Inf(1)
	for c, cent := range centroids {
		d := sqDist(cent, frame)
		if d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

// #endregion helpers
