package ports

import (
	"context"

	"goclue/domain/core"
	"goclue/domain/partition"
)

// ClusterParams configures one clustering invocation. Seed fully determines
// the random initialization, so the same (data, params) pair always yields
// the same partition - parallel repeats derive their own seeds instead of
// sharing a global generator.
type ClusterParams struct {
	K             int
	MaxIterations int
	Seed          int64
}

// ClustererPort produces a partition of the rows of a numeric matrix.
// Implementations must tolerate degenerate outcomes (empty clusters) and
// return a usable partition with Converged=false when the iteration cap is
// hit, never an error for that case.
type ClustererPort interface {
	// Name is the method identifier used for selection ("cmeans", "kmeans")
	Name() string

	// Fuzzy reports whether the method natively emits a membership matrix.
	// Hard methods get one derived post hoc from centroid correlation.
	Fuzzy() bool

	Cluster(ctx context.Context, entities []core.EntityID, data [][]float64, params ClusterParams) (*partition.Partition, error)
}

// MethodResolver maps a clustering-method name to an implementation.
// Unrecognized names resolve to the default method with fellBack=true so the
// caller can surface a warning instead of failing the run.
type MethodResolver interface {
	ForMethod(name string) (clusterer ClustererPort, fellBack bool)
}
