// Package evaluation holds the evaluation-and-selection engine: the repeated
// clustering loop that builds the score matrix over a k-range, the k
// selector, and the optimal-partition selector.
package evaluation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"goclue/domain/annotation"
	"goclue/domain/core"
	domain "goclue/domain/evaluation"
	"goclue/domain/matrix"
	"goclue/internal"
	"goclue/internal/enrichment"
	"goclue/ports"
)

// DefaultMaxIterations bounds one clustering invocation when the caller does
// not say otherwise.
const DefaultMaxIterations = 100

// Loop runs R independent repeats over a candidate k-range and assembles the
// repeats x k score matrix of regularized enrichment scores.
type Loop struct {
	resolver ports.MethodResolver
	scorer   *enrichment.Scorer
	logger   *internal.Logger
}

// NewLoop creates an evaluation loop
func NewLoop(resolver ports.MethodResolver, logger *internal.Logger) *Loop {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loop{resolver: resolver, scorer: enrichment.NewScorer(), logger: logger}
}

// Run executes the evaluation: for each repeat and each candidate k it
// clusters the standardized matrix, scores the partition against the filtered
// annotation, and records score = -log10(combined p) - alpha*k.
//
// Repeats are embarrassingly parallel and run as independent tasks bounded by
// hardware parallelism; each repeat derives its own seeds from the base seed
// and repeat index, so results are reproducible regardless of scheduling. A
// failed repeat is logged and excluded (its row stays nil) without aborting
// the others. Structural input problems fail fast before anything runs.
func (l *Loop) Run(ctx context.Context, m *matrix.TimeCourseMatrix, ann annotation.Set, params domain.Params) (*domain.Evaluation, error) {
	kRange, err := validateRun(m, params)
	if err != nil {
		return nil, err
	}

	if len(ann) == 0 {
		// non-fatal: every partition will score a combined p of 1
		l.logger.Warn("[Loop] no annotation group survives filtering; enrichment will report no evidence")
	}

	clusterer, fellBack := l.resolver.ForMethod(params.Method)
	if fellBack {
		l.logger.Warn("[Loop] unknown clustering method %q, falling back to %q", params.Method, clusterer.Name())
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

	rows := make([][]float64, params.Repeats)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for r := 0; r < params.Repeats; r++ {
		g.Go(func() error {
			row := make([]float64, len(kRange))
			for j, k := range kRange {
				seed := repeatSeed(params.Seed, r, k)
				part, err := clusterer.Cluster(gctx, m.Entities, m.Data, ports.ClusterParams{
					K:             k,
					MaxIterations: maxIter,
					Seed:          seed,
				})
				if err != nil {
					// abandon the whole repeat; partial rows are not meaningful
					l.logger.Error("[Loop] repeat %d failed at k=%d: %v", r, k, err)
					return nil
				}
				if !part.Converged {
					l.logger.Warn("[Loop] repeat %d k=%d hit the iteration cap without converging", r, k)
				}

				result := l.scorer.Score(part, ann, opts)
				row[j] = -math.Log10(result.CombinedP) - params.Alpha*float64(k)
			}
			rows[r] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := &domain.ScoreMatrix{KRange: kRange, Rows: rows}
	if len(scores.CompletedRows()) == 0 {
		return nil, fmt.Errorf("all %d repeats failed", params.Repeats)
	}

	return &domain.Evaluation{
		RunID:         core.RunID(core.NewID()),
		Matrix:        m,
		Annotation:    ann,
		Method:        clusterer.Name(),
		EffectiveSize: params.EffectiveSize,
		PValueCutoff:  params.PValueCutoff,
		Alpha:         params.Alpha,
		Repeats:       params.Repeats,
		Scores:        scores,
		CreatedAt:     core.Now(),
	}, nil
}

// repeatSeed derives the seed for one clustering invocation from the base
// seed, the repeat index and the candidate k, replacing the shared global
// generator the repeats would otherwise race on.
func repeatSeed(base int64, repeat, k int) int64 {
	return base + int64(repeat)*1_000_003 + int64(k)
}

func validateRun(m *matrix.TimeCourseMatrix, params domain.Params) ([]int, error) {
	if m == nil || m.Rows() == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if params.Repeats < 1 {
		return nil, core.NewValidationError("repeats", "must be at least 1")
	}
	if len(params.KRange) == 0 {
		return nil, core.NewValidationError("k_range", "must not be empty")
	}
	if params.PValueCutoff <= 0 || params.PValueCutoff > 1 {
		return nil, core.NewValidationError("p_value_cutoff", "must be in (0,1]")
	}

	kRange := append([]int(nil), params.KRange...)
	sort.Ints(kRange)
	var dedup []int
	for _, k := range kRange {
		if k < 2 {
			return nil, core.NewValidationError("k_range", "candidate k must be at least 2")
		}
		if k > m.Rows() {
			return nil, core.ErrTooFewRows
		}
		if len(dedup) > 0 && k == dedup[len(dedup)-1] {
			continue
		}
		dedup = append(dedup, k)
	}
	return dedup, nil
}
