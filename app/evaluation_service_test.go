package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclue/adapters/cluster"
	"goclue/domain/core"
	domain "goclue/domain/evaluation"
	"goclue/internal/testkit"
	"goclue/ports"
)

// memoryRepository collects saved records for assertions
type memoryRepository struct {
	mu      sync.Mutex
	records map[core.RunID]*ports.RunRecord
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[core.RunID]*ports.RunRecord)}
}

func (r *memoryRepository) Save(_ context.Context, record *ports.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.RunID] = record
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id core.RunID) (*ports.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		return record, nil
	}
	return nil, core.ErrRunNotFound
}

func (r *memoryRepository) List(_ context.Context, _, _ int) ([]*ports.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ports.RunRecord
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

func TestEvaluationService_FullRun(t *testing.T) {
	ds, err := testkit.Generate(testkit.GeneratorConfig{
		Profiles:    testkit.DefaultProfiles(40),
		Noise:       0.1,
		NoiseGroups: 10,
		Seed:        3,
	})
	require.NoError(t, err)

	repo := newMemoryRepository()
	service := NewEvaluationService(cluster.NewRegistry(), repo, nil)

	record, err := service.Evaluate(context.Background(), EvaluateRequest{
		Matrix:     ds.Matrix,
		Annotation: ds.Annotation,
		Params: domain.Params{
			Repeats:       3,
			KRange:        []int{2, 3, 4, 5},
			Method:        "kmeans",
			EffectiveSize: domain.SizeRange{Min: 3, Max: 1000},
			PValueCutoff:  1e-3,
			Alpha:         1,
			Seed:          11,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, record.Evaluation.SelectedK, "three planted shapes must select k=3")
	require.NotNil(t, record.Best)
	require.NotNil(t, record.Enrichment)
	assert.True(t, record.Enrichment.Enriched())
	assert.NotNil(t, record.Best.Membership, "hard method must get a derived membership matrix")

	saved, err := repo.GetByID(context.Background(), record.RunID)
	require.NoError(t, err)
	assert.Equal(t, record.Evaluation.SelectedK, saved.Evaluation.SelectedK)
}

func TestEvaluationService_SkipOptimal(t *testing.T) {
	ds, err := testkit.Generate(testkit.GeneratorConfig{
		Profiles: testkit.DefaultProfiles(20),
		Noise:    0.1,
		Seed:     5,
	})
	require.NoError(t, err)

	service := NewEvaluationService(cluster.NewRegistry(), nil, nil)

	record, err := service.Evaluate(context.Background(), EvaluateRequest{
		Matrix:     ds.Matrix,
		Annotation: ds.Annotation,
		Params: domain.Params{
			Repeats:       2,
			KRange:        []int{2, 3, 4},
			Method:        "kmeans",
			EffectiveSize: domain.SizeRange{Min: 3, Max: 1000},
			PValueCutoff:  1e-3,
			Alpha:         1,
			Seed:          17,
		},
		SkipOptimal: true,
	})
	require.NoError(t, err)
	assert.Nil(t, record.Best)
	assert.Nil(t, record.Enrichment)
	assert.NotZero(t, record.Evaluation.SelectedK)
}

func TestEvaluationService_OptimizeDataset(t *testing.T) {
	ds, err := testkit.Generate(testkit.GeneratorConfig{
		Profiles: testkit.DefaultProfiles(20),
		Noise:    0.1,
		Seed:     9,
	})
	require.NoError(t, err)

	service := NewEvaluationService(cluster.NewRegistry(), nil, nil)

	record, err := service.OptimizeDataset(context.Background(), OptimizeRequest{
		Matrix:     ds.Matrix,
		Annotation: ds.Annotation,
		K:          3,
		Params: domain.Params{
			Repeats:       2,
			Method:        "kmeans",
			EffectiveSize: domain.SizeRange{Min: 3, Max: 1000},
			PValueCutoff:  1e-3,
			Seed:          23,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, record.Best)
	assert.Equal(t, 3, record.Best.K)
	assert.True(t, record.Enrichment.Enriched())

	_, err = service.OptimizeDataset(context.Background(), OptimizeRequest{
		Matrix:     ds.Matrix,
		Annotation: ds.Annotation,
		K:          1,
	})
	require.Error(t, err, "k below 2 must be rejected")
}

func TestEvaluationService_FailsOnDegenerateRow(t *testing.T) {
	ds, err := testkit.Generate(testkit.GeneratorConfig{
		Profiles: []testkit.Profile{{Name: "flat", Shape: []float64{1, 1, 1, 1}, Rows: 10}},
		Noise:    0, // zero variance rows
		Seed:     1,
	})
	require.NoError(t, err)

	service := NewEvaluationService(cluster.NewRegistry(), nil, nil)
	_, err = service.Evaluate(context.Background(), EvaluateRequest{
		Matrix:     ds.Matrix,
		Annotation: ds.Annotation,
		Params: domain.Params{
			Repeats:       1,
			KRange:        []int{2},
			EffectiveSize: domain.SizeRange{Min: 3, Max: 100},
			PValueCutoff:  0.05,
		},
	})
	require.Error(t, err)
}
