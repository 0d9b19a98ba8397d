package evaluation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"goclue/domain/core"
	enrichdomain "goclue/domain/enrichment"
	domain "goclue/domain/evaluation"
	"goclue/domain/partition"
	"goclue/internal"
	"goclue/internal/enrichment"
	"goclue/ports"
)

// OptimalSelector repeats clustering at a fixed k and retains the instance
// with the strongest enrichment signal.
type OptimalSelector struct {
	resolver ports.MethodResolver
	scorer   *enrichment.Scorer
	logger   *internal.Logger
}

// NewOptimalSelector creates an optimal-partition selector
func NewOptimalSelector(resolver ports.MethodResolver, logger *internal.Logger) *OptimalSelector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &OptimalSelector{resolver: resolver, scorer: enrichment.NewScorer(), logger: logger}
}

// Best clusters eval's standardized matrix repeats times at k and returns the
// partition with the smallest combined p-value plus its enrichment report.
// Optional zero-valued fields of params coalesce against the settings stored
// on eval; a zero k takes eval.SelectedK. Repeats run as independent parallel
// tasks, and the keep-best comparison is a single sequential reduction over
// their results afterwards - first minimum wins ties, so one repeat always
// wins even when every combined p-value is 1. Partitions from hard methods
// get their membership matrix derived from centroid correlation. eval is
// never modified.
func (s *OptimalSelector) Best(ctx context.Context, eval *domain.Evaluation, k int, params domain.Params) (*partition.Partition, *enrichdomain.Result, error) {
	if eval == nil || eval.Matrix == nil {
		return nil, nil, core.ErrEmptyMatrix
	}
	params = params.Coalesce(eval)
	if k == 0 {
		k = eval.SelectedK
	}
	if k < 2 {
		return nil, nil, core.NewValidationError("k", "must be at least 2")
	}
	if params.Repeats < 1 {
		return nil, nil, core.NewValidationError("repeats", "must be at least 1")
	}

	clusterer, fellBack := s.resolver.ForMethod(params.Method)
	if fellBack {
		s.logger.Warn("[OptimalSelector] unknown clustering method %q, falling back to %q", params.Method, clusterer.Name())
	}

	maxIter := params.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}

	opts := enrichment.Options{
		EffectiveSize: params.EffectiveSize,
		PValueCutoff:  params.PValueCutoff,
		Universe:      params.Universe,
	}

	type repeatResult struct {
		part   *partition.Partition
		result *enrichdomain.Result
		err    error
	}
	results := make([]repeatResult, params.Repeats)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r := 0; r < params.Repeats; r++ {
		g.Go(func() error {
			part, err := clusterer.Cluster(gctx, eval.Matrix.Entities, eval.Matrix.Data, ports.ClusterParams{
				K:             k,
				MaxIterations: maxIter,
				Seed:          repeatSeed(params.Seed, r, k),
			})
			if err != nil {
				results[r] = repeatResult{err: err}
				return nil
			}
			if !part.Converged {
				s.logger.Warn("[OptimalSelector] repeat %d hit the iteration cap without converging", r)
			}
			if part.Membership == nil {
				part.DeriveMembership(eval.Matrix.Data)
			}
			results[r] = repeatResult{part: part, result: s.scorer.Score(part, eval.Annotation, opts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// sequential keep-best reduction in repeat order
	var (
		best     *partition.Partition
		bestRes  *enrichdomain.Result
		firstErr error
	)
	for r := range results {
		if results[r].err != nil {
			if firstErr == nil {
				firstErr = results[r].err
			}
			s.logger.Error("[OptimalSelector] repeat %d failed: %v", r, results[r].err)
			continue
		}
		if best == nil || results[r].result.CombinedP < bestRes.CombinedP {
			best = results[r].part
			bestRes = results[r].result
		}
	}
	if best == nil {
		return nil, nil, firstErr
	}
	return best, bestRes, nil
}
