package cluster

import (
	"context"
	"math"
	"math/rand"

	"goclue/domain/core"
	"goclue/domain/partition"
	"goclue/ports"
)

// KMeansClusterer implements Lloyd's algorithm with k-means++ seeding. It is
// a hard method: no native membership matrix, the caller derives one from
// centroid correlation when soft weights are needed.
type KMeansClusterer struct {
	distance DistanceFunc
}

// NewKMeansClusterer creates a k-means clusterer with Euclidean distance
func NewKMeansClusterer() *KMeansClusterer {
	return &KMeansClusterer{distance: EuclideanDistance}
}

// Name returns the method identifier
func (c *KMeansClusterer) Name() string { return "kmeans" }

// Fuzzy reports that k-means emits hard assignments only
func (c *KMeansClusterer) Fuzzy() bool { return false }

// Cluster partitions the rows of data into params.K clusters. A cluster left
// empty by a degenerate run keeps its previous centroid and simply receives
// no members; that outcome is tolerated, not an error. Hitting the iteration
// cap returns the current partition with Converged=false.
func (c *KMeansClusterer) Cluster(ctx context.Context, entities []core.EntityID, data [][]float64, params ports.ClusterParams) (*partition.Partition, error) {
	if err := validateParams(entities, data, params); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(params.Seed))
	k := params.K
	dim := len(data[0])

	centers := c.seedCenters(data, k, rng)
	assignment := make([]int, len(data))
	for i := range assignment {
		assignment[i] = -1
	}

	converged := false
	for iter := 0; iter < params.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changes := 0
		for i, row := range data {
			best, bestDist := 0, math.MaxFloat64
			for j := 0; j < k; j++ {
				if d := c.distance(row, centers[j]); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changes++
			}
		}

		// Recompute centroids; empty clusters keep their old centroid
		sums := make([][]float64, k)
		counts := make([]int, k)
		for j := range sums {
			sums[j] = make([]float64, dim)
		}
		for i, row := range data {
			j := assignment[i]
			counts[j]++
			for d, v := range row {
				sums[j][d] += v
			}
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				continue
			}
			for d := range sums[j] {
				centers[j][d] = sums[j][d] / float64(counts[j])
			}
		}

		if changes == 0 {
			converged = true
			break
		}
	}

	p, err := partition.New(k, entities, assignment, centers)
	if err != nil {
		return nil, err
	}
	p.Converged = converged
	return p, nil
}

// seedCenters picks initial centroids with the k-means++ rule: the first
// uniformly, each next with probability proportional to squared distance from
// the nearest centroid chosen so far.
func (c *KMeansClusterer) seedCenters(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, k)
	centers[0] = append([]float64(nil), data[rng.Intn(len(data))]...)

	dists := make([]float64, len(data))
	for i := 1; i < k; i++ {
		total := 0.0
		for j, row := range data {
			nearest := math.MaxFloat64
			for g := 0; g < i; g++ {
				if d := c.distance(row, centers[g]); d < nearest {
					nearest = d
				}
			}
			dists[j] = nearest * nearest
			total += dists[j]
		}

		if total == 0 {
			// all points coincide with chosen centers
			centers[i] = append([]float64(nil), data[rng.Intn(len(data))]...)
			continue
		}

		target := rng.Float64() * total
		idx := 0
		for acc := dists[0]; acc < target && idx < len(data)-1; {
			idx++
			acc += dists[idx]
		}
		centers[i] = append([]float64(nil), data[idx]...)
	}
	return centers
}

func validateParams(entities []core.EntityID, data [][]float64, params ports.ClusterParams) error {
	if len(data) == 0 {
		return core.ErrEmptyMatrix
	}
	if len(entities) != len(data) {
		return core.NewValidationError("entities", "identifier count does not match row count")
	}
	if params.K < 2 {
		return core.NewValidationError("k", "must be at least 2")
	}
	if params.K > len(data) {
		return core.ErrTooFewRows
	}
	if params.MaxIterations < 1 {
		return core.NewValidationError("max_iterations", "must be at least 1")
	}
	return nil
}
