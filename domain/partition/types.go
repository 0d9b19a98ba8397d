package partition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"goclue/domain/core"
)

// Partition is one clustering outcome at a fixed k: a hard assignment of
// every entity to a cluster index in [0, k), cluster centroids, and a soft
// membership weight per entity per cluster. Rows of the membership matrix
// need not sum to one - weights express similarity, not probability.
//
// k-means can leave clusters empty in degenerate runs, so the number of
// distinct indices present may be smaller than K.
type Partition struct {
	K          int             `json:"k"`
	Entities   []core.EntityID `json:"entities"`
	Assignment []int           `json:"assignment"`
	Centers    [][]float64     `json:"centers"`
	Membership [][]float64     `json:"membership,omitempty"`
	Converged  bool            `json:"converged"`
}

// New validates and wraps a clustering outcome
func New(k int, entities []core.EntityID, assignment []int, centers [][]float64) (*Partition, error) {
	if k < 2 {
		return nil, core.NewValidationError("k", "must be at least 2")
	}
	if len(entities) != len(assignment) {
		return nil, core.NewValidationError("assignment",
			fmt.Sprintf("%d assignments for %d entities", len(assignment), len(entities)))
	}
	for i, c := range assignment {
		if c < 0 || c >= k {
			return nil, core.NewValidationError("assignment",
				fmt.Sprintf("entity %s assigned to cluster %d outside [0,%d)", entities[i], c, k))
		}
	}
	return &Partition{K: k, Entities: entities, Assignment: assignment, Centers: centers, Converged: true}, nil
}

// Cluster returns the entity identifiers assigned to cluster c
func (p *Partition) Cluster(c int) []core.EntityID {
	var members []core.EntityID
	for i, a := range p.Assignment {
		if a == c {
			members = append(members, p.Entities[i])
		}
	}
	return members
}

// ClusterSizes returns the number of entities per cluster index
func (p *Partition) ClusterSizes() []int {
	sizes := make([]int, p.K)
	for _, a := range p.Assignment {
		sizes[a]++
	}
	return sizes
}

// DeriveMembership fills in a soft membership matrix for partitions produced
// by hard clustering methods. The membership of entity i in cluster c is the
// Pearson correlation between the entity's measurement vector and the cluster
// centroid, rescaled from [-1,1] into [0,1]. Clusters left empty by the
// clustering run get zero weight for every entity.
func (p *Partition) DeriveMembership(data [][]float64) {
	membership := make([][]float64, len(data))
	for i, row := range data {
		weights := make([]float64, p.K)
		for c := 0; c < p.K; c++ {
			if c >= len(p.Centers) || p.Centers[c] == nil {
				continue
			}
			r := stat.Correlation(row, p.Centers[c], nil)
			if math.IsNaN(r) {
				// flat centroid, correlation undefined
				continue
			}
			weights[c] = (r + 1) / 2
		}
		membership[i] = weights
	}
	p.Membership = membership
}
