// Package enrichment scores partitions against an annotation reference: a
// one-sided Fisher exact test per (cluster, group) pair, a p-value cutoff,
// and Fisher's combined probability over everything that passed.
package enrichment

import (
	"sort"

	"goclue/domain/annotation"
	"goclue/domain/core"
	domain "goclue/domain/enrichment"
	"goclue/domain/evaluation"
	"goclue/domain/partition"
	"goclue/internal/stats"
)

// Options configure one scoring pass. Universe is the background entity set
// enrichment is judged against; nil means every entity in the partition.
type Options struct {
	EffectiveSize evaluation.SizeRange
	PValueCutoff  float64
	Universe      map[core.EntityID]struct{}
}

// Scorer computes enrichment results for partitions
type Scorer struct{}

// NewScorer creates an enrichment scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score evaluates every cluster of p against the filtered annotation set.
// Groups outside the effective-size bound are skipped before testing; pairs
// with p-value above the cutoff are discarded. All surviving p-values, across
// all clusters, combine into one partition-level p-value. When nothing
// survives anywhere - including the empty-annotation case - the combined
// p-value is 1: a valid "no evidence of enrichment" outcome, never an error.
// Inputs are not modified.
func (s *Scorer) Score(p *partition.Partition, ann annotation.Set, opts Options) *domain.Result {
	universe := opts.Universe
	if universe == nil {
		universe = make(map[core.EntityID]struct{}, len(p.Entities))
		for _, id := range p.Entities {
			universe[id] = struct{}{}
		}
	}
	total := len(universe)

	// restrict each group to the universe once, up front
	groups := ann.Groups()
	groupMembers := make(map[core.GroupID]map[core.EntityID]struct{}, len(groups))
	for _, g := range groups {
		members := make(map[core.EntityID]struct{})
		for id := range ann[g] {
			if _, ok := universe[id]; ok {
				members[id] = struct{}{}
			}
		}
		groupMembers[g] = members
	}

	var combined []float64
	clusters := make([]domain.ClusterEnrichment, p.K)

	for c := 0; c < p.K; c++ {
		inCluster := make(map[core.EntityID]struct{})
		for i, a := range p.Assignment {
			if a != c {
				continue
			}
			if _, ok := universe[p.Entities[i]]; ok {
				inCluster[p.Entities[i]] = struct{}{}
			}
		}

		result := domain.ClusterEnrichment{Cluster: c, Size: len(inCluster)}

		for _, g := range groups {
			members := groupMembers[g]
			if !opts.EffectiveSize.Contains(len(members)) {
				continue
			}

			overlap := 0
			for id := range members {
				if _, ok := inCluster[id]; ok {
					overlap++
				}
			}

			a := overlap
			b := len(inCluster) - overlap
			cc := len(members) - overlap
			d := total - a - b - cc

			pv, err := stats.FisherExact(a, b, cc, d)
			if err != nil {
				// counts are non-negative by construction
				continue
			}
			if pv <= opts.PValueCutoff {
				result.Groups = append(result.Groups, domain.GroupScore{
					Group:     g,
					PValue:    pv,
					Overlap:   overlap,
					GroupSize: len(members),
				})
				combined = append(combined, pv)
			}
		}

		sort.Slice(result.Groups, func(i, j int) bool {
			if result.Groups[i].PValue != result.Groups[j].PValue {
				return result.Groups[i].PValue < result.Groups[j].PValue
			}
			return result.Groups[i].Group < result.Groups[j].Group
		})
		clusters[c] = result
	}

	return &domain.Result{
		Clusters:  clusters,
		CombinedP: stats.CombinePValues(combined),
		Tests:     len(combined),
	}
}
