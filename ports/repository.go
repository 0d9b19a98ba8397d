package ports

import (
	"context"

	"goclue/domain/core"
	"goclue/domain/enrichment"
	"goclue/domain/evaluation"
	"goclue/domain/partition"
)

// RunRecord is the persisted shape of a completed run: the evaluation
// settings and score matrix, plus the optimal partition and its enrichment
// report when the optimization stage ran.
type RunRecord struct {
	RunID      core.RunID             `json:"run_id"`
	Evaluation *evaluation.Evaluation `json:"evaluation"`
	Best       *partition.Partition   `json:"best,omitempty"`
	Enrichment *enrichment.Result     `json:"enrichment,omitempty"`
	CreatedAt  core.Timestamp         `json:"created_at"`
}

// RunRepository stores completed evaluation runs
type RunRepository interface {
	Save(ctx context.Context, record *RunRecord) error
	GetByID(ctx context.Context, id core.RunID) (*RunRecord, error)
	List(ctx context.Context, limit, offset int) ([]*RunRecord, error)
}
