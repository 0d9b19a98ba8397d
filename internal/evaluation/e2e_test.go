package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"goclue/adapters/cluster"
	"goclue/domain/annotation"
	"goclue/domain/core"
	domain "goclue/domain/evaluation"
	"goclue/domain/matrix"
)

// TestEndToEnd_ThreeProfileShapes runs the full pipeline on a 120x4 synthetic
// matrix built from three distinct profile shapes (40 rows each, small
// additive noise), annotated with one exact group per shape plus 20 random
// noise groups. The selected k must be 3 and each cluster's enriched-group
// report must contain exactly its matching true-shape group.
func TestEndToEnd_ThreeProfileShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	shapes := [][]float64{
		{0, 1, 2, 3}, // rising
		{3, 2, 1, 0}, // falling
		{0, 3, 0, 0}, // early peak
	}

	entities := make([]core.EntityID, 0, 120)
	data := make([][]float64, 0, 120)
	trueGroups := map[string][]string{"rising": nil, "falling": nil, "peak": nil}
	names := []string{"rising", "falling", "peak"}

	for s, shape := range shapes {
		for i := 0; i < 40; i++ {
			id := fmt.Sprintf("e%03d", len(entities))
			row := make([]float64, len(shape))
			for j, v := range shape {
				row[j] = v + rng.NormFloat64()*0.1
			}
			entities = append(entities, core.EntityID(id))
			data = append(data, row)
			trueGroups[names[s]] = append(trueGroups[names[s]], id)
		}
	}

	groups := make(map[string][]string, 23)
	for name, members := range trueGroups {
		groups[name] = members
	}
	for g := 0; g < 20; g++ {
		var members []string
		for i := 0; i < 5; i++ {
			members = append(members, fmt.Sprintf("e%03d", rng.Intn(120)))
		}
		groups[fmt.Sprintf("noise%02d", g)] = members
	}

	raw, err := matrix.New(entities, data)
	if err != nil {
		t.Fatalf("matrix.New: %v", err)
	}
	standardized, err := matrix.Standardize(raw)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	ann := annotation.NewSet(groups).Filter(standardized.EntitySet())

	params := domain.Params{
		Repeats:       3,
		KRange:        []int{2, 3, 4, 5, 6},
		Method:        "kmeans",
		EffectiveSize: domain.SizeRange{Min: 3, Max: 1000},
		PValueCutoff:  1e-3,
		Alpha:         1,
		Seed:          42,
		MaxIterations: 100,
	}

	registry := cluster.NewRegistry()
	loop := NewLoop(registry, nil)
	eval, err := loop.Run(context.Background(), standardized, ann, params)
	if err != nil {
		t.Fatalf("evaluation loop: %v", err)
	}

	k, err := SelectK(eval.Scores)
	if err != nil {
		t.Fatalf("SelectK: %v", err)
	}
	if k != 3 {
		t.Fatalf("selected k = %d, want 3", k)
	}
	eval.SelectedK = k

	selector := NewOptimalSelector(registry, nil)
	best, result, err := selector.Best(context.Background(), eval, 0, domain.Params{Seed: 43})
	if err != nil {
		t.Fatalf("optimal selection: %v", err)
	}
	if best.K != 3 {
		t.Fatalf("best partition k = %d, want 3", best.K)
	}
	if best.Membership == nil {
		t.Error("hard method partition must carry a derived membership matrix")
	}

	// Each cluster reports exactly its true-shape group: the noise groups
	// are too small to reach the cutoff even on full overlap.
	seen := make(map[core.GroupID]bool)
	for _, ce := range result.Clusters {
		if len(ce.Groups) != 1 {
			t.Fatalf("cluster %d reports %d enriched groups, want exactly 1", ce.Cluster, len(ce.Groups))
		}
		gs := ce.Groups[0]
		if seen[gs.Group] {
			t.Fatalf("group %s enriched in more than one cluster", gs.Group)
		}
		seen[gs.Group] = true
		if gs.Overlap != 40 || gs.GroupSize != 40 {
			t.Errorf("cluster %d group %s overlap=%d size=%d, want 40/40", ce.Cluster, gs.Group, gs.Overlap, gs.GroupSize)
		}
	}
	for _, name := range names {
		if !seen[core.GroupID(name)] {
			t.Errorf("true group %s missing from the enrichment report", name)
		}
	}
}
