package app

import (
	"context"

	"goclue/domain/annotation"
	"goclue/domain/core"
	domain "goclue/domain/evaluation"
	"goclue/domain/matrix"
	"goclue/internal"
	"goclue/internal/errors"
	"goclue/internal/evaluation"
	"goclue/ports"
)

// EvaluationService orchestrates a full run: standardization, annotation
// filtering, the repeated-clustering evaluation loop, k selection, and the
// optimal-partition stage. The core stays thin orchestration-free; this is
// the layer that strings it together and hands records to the repository.
type EvaluationService struct {
	loop     *evaluation.Loop
	selector *evaluation.OptimalSelector
	repo     ports.RunRepository
	logger   *internal.Logger
}

// NewEvaluationService creates the orchestration service. repo may be nil,
// in which case completed runs are not persisted.
func NewEvaluationService(resolver ports.MethodResolver, repo ports.RunRepository, logger *internal.Logger) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{
		loop:     evaluation.NewLoop(resolver, logger),
		selector: evaluation.NewOptimalSelector(resolver, logger),
		repo:     repo,
		logger:   logger,
	}
}

// EvaluateRequest is one end-to-end run specification. KOverride, when set,
// replaces the selected k for the optimal-partition stage; SkipOptimal stops
// after k selection.
type EvaluateRequest struct {
	Matrix      *matrix.TimeCourseMatrix
	Annotation  annotation.Set
	Params      domain.Params
	KOverride   int
	SkipOptimal bool
}

// Evaluate runs the full pipeline and returns the completed run record
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluateRequest) (*ports.RunRecord, error) {
	standardized, err := matrix.Standardize(req.Matrix)
	if err != nil {
		return nil, errors.Wrap(err, "standardization failed")
	}

	filtered := req.Annotation.Filter(standardized.EntitySet())
	if len(filtered) == 0 {
		s.logger.Warn("[EvaluationService] annotation is empty after filtering; run proceeds without enrichment evidence")
	}

	eval, err := s.loop.Run(ctx, standardized, filtered, req.Params)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation loop failed")
	}

	selected, err := evaluation.SelectK(eval.Scores)
	if err != nil {
		return nil, errors.Wrap(err, "k selection failed")
	}
	eval.SelectedK = selected
	s.logger.Info("[EvaluationService] run %s selected k=%d over %d repeats", eval.RunID, selected, eval.Repeats)

	record := &ports.RunRecord{
		RunID:      eval.RunID,
		Evaluation: eval,
		CreatedAt:  core.Now(),
	}

	if !req.SkipOptimal {
		best, result, err := s.selector.Best(ctx, eval, req.KOverride, req.Params)
		if err != nil {
			return nil, errors.Wrap(err, "optimal partition selection failed")
		}
		record.Best = best
		record.Enrichment = result
		s.logger.Info("[EvaluationService] run %s best partition combined p=%.3g", eval.RunID, result.CombinedP)
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			// persistence is optional infrastructure; the run result stands
			s.logger.Error("[EvaluationService] failed to persist run %s: %v", record.RunID, err)
		}
	}
	return record, nil
}

// OptimizeRequest runs only the optimal-partition stage on a raw dataset at a
// fixed cluster count, without the evaluation loop or k selection.
type OptimizeRequest struct {
	Matrix     *matrix.TimeCourseMatrix
	Annotation annotation.Set
	K          int
	Params     domain.Params
}

// OptimizeDataset standardizes and filters the inputs, then selects the best
// of R' repeated partitions at the requested k
func (s *EvaluationService) OptimizeDataset(ctx context.Context, req OptimizeRequest) (*ports.RunRecord, error) {
	if req.K < 2 {
		return nil, errors.InvalidInput("optimization needs a cluster count of at least 2")
	}

	standardized, err := matrix.Standardize(req.Matrix)
	if err != nil {
		return nil, errors.Wrap(err, "standardization failed")
	}
	filtered := req.Annotation.Filter(standardized.EntitySet())

	eval := &domain.Evaluation{
		RunID:         core.RunID(core.NewID()),
		Matrix:        standardized,
		Annotation:    filtered,
		Method:        req.Params.Method,
		EffectiveSize: req.Params.EffectiveSize,
		PValueCutoff:  req.Params.PValueCutoff,
		Alpha:         req.Params.Alpha,
		Repeats:       req.Params.Repeats,
		SelectedK:     req.K,
		CreatedAt:     core.Now(),
	}
	return s.Optimize(ctx, eval, req.K, req.Params)
}

// Optimize reruns only the optimal-partition stage of a finished evaluation,
// optionally at an overridden k
func (s *EvaluationService) Optimize(ctx context.Context, eval *domain.Evaluation, k int, params domain.Params) (*ports.RunRecord, error) {
	best, result, err := s.selector.Best(ctx, eval, k, params)
	if err != nil {
		return nil, errors.Wrap(err, "optimal partition selection failed")
	}
	record := &ports.RunRecord{
		RunID:      eval.RunID,
		Evaluation: eval,
		Best:       best,
		Enrichment: result,
		CreatedAt:  core.Now(),
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			s.logger.Error("[EvaluationService] failed to persist run %s: %v", record.RunID, err)
		}
	}
	return record, nil
}
