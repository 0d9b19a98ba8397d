package cluster

import (
	"context"
	"math"
	"math/rand"

	"goclue/domain/core"
	"goclue/domain/partition"
	"goclue/ports"
)

const (
	// fuzzifier exponent; m=2 gives the squared-ratio membership update
	cmeansFuzzifier = 2.0
	// membership change below this ends the iteration
	cmeansEpsilon = 1e-6
)

// CMeansClusterer implements fuzzy c-means, the default method. It natively
// produces the membership matrix, so nothing has to be derived post hoc.
type CMeansClusterer struct {
	distance DistanceFunc
}

// NewCMeansClusterer creates a fuzzy c-means clusterer with Euclidean distance
func NewCMeansClusterer() *CMeansClusterer {
	return &CMeansClusterer{distance: EuclideanDistance}
}

// Name returns the method identifier
func (c *CMeansClusterer) Name() string { return "cmeans" }

// Fuzzy reports that c-means natively emits a membership matrix
func (c *CMeansClusterer) Fuzzy() bool { return true }

// Cluster partitions the rows of data into params.K fuzzy clusters. The hard
// assignment is the argmax of each membership row. Hitting the iteration cap
// returns the current partition with Converged=false.
func (c *CMeansClusterer) Cluster(ctx context.Context, entities []core.EntityID, data [][]float64, params ports.ClusterParams) (*partition.Partition, error) {
	if err := validateParams(entities, data, params); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(params.Seed))
	k := params.K
	n := len(data)
	dim := len(data[0])

	u := c.seedMembership(n, k, rng)
	centers := make([][]float64, k)
	for j := range centers {
		centers[j] = make([]float64, dim)
	}

	converged := false
	for iter := 0; iter < params.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Centroids: weighted mean with weights u^m
		for j := 0; j < k; j++ {
			var weight float64
			sum := make([]float64, dim)
			for i := 0; i < n; i++ {
				w := math.Pow(u[i][j], cmeansFuzzifier)
				weight += w
				for d, v := range data[i] {
					sum[d] += w * v
				}
			}
			if weight == 0 {
				continue
			}
			for d := range sum {
				centers[j][d] = sum[d] / weight
			}
		}

		// Membership update: u_ij = 1 / sum_g (d_ij/d_ig)^(2/(m-1))
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			dists := make([]float64, k)
			zero := -1
			for j := 0; j < k; j++ {
				dists[j] = c.distance(data[i], centers[j])
				if dists[j] == 0 {
					zero = j
				}
			}

			for j := 0; j < k; j++ {
				var next float64
				if zero >= 0 {
					// point sits on a centroid: full weight there
					if j == zero {
						next = 1
					}
				} else {
					denom := 0.0
					for g := 0; g < k; g++ {
						ratio := dists[j] / dists[g]
						denom += math.Pow(ratio, 2/(cmeansFuzzifier-1))
					}
					next = 1 / denom
				}
				if delta := math.Abs(next - u[i][j]); delta > maxDelta {
					maxDelta = delta
				}
				u[i][j] = next
			}
		}

		if maxDelta < cmeansEpsilon {
			converged = true
			break
		}
	}

	assignment := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestWeight := 0, u[i][0]
		for j := 1; j < k; j++ {
			if u[i][j] > bestWeight {
				bestWeight = u[i][j]
				best = j
			}
		}
		assignment[i] = best
	}

	p, err := partition.New(k, entities, assignment, centers)
	if err != nil {
		return nil, err
	}
	p.Membership = u
	p.Converged = converged
	return p, nil
}

// seedMembership draws a random row-stochastic membership matrix
func (c *CMeansClusterer) seedMembership(n, k int, rng *rand.Rand) [][]float64 {
	u := make([][]float64, n)
	for i := range u {
		row := make([]float64, k)
		total := 0.0
		for j := range row {
			row[j] = rng.Float64() + 1e-9
			total += row[j]
		}
		for j := range row {
			row[j] /= total
		}
		u[i] = row
	}
	return u
}
