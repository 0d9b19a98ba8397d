// Package cluster provides the built-in partition-producing algorithms: a
// fuzzy c-means default and a hard k-means alternative. Both are
// deterministic given the seed carried in ClusterParams.
package cluster

import (
	"gonum.org/v1/gonum/floats"
)

// DistanceFunc measures dissimilarity between two measurement vectors
type DistanceFunc func(a, b []float64) float64

// EuclideanDistance is the L2 distance used by both built-in methods
var EuclideanDistance DistanceFunc = func(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}
