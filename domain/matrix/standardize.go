package matrix

import (
	"github.com/montanaflynn/stats"

	"goclue/domain/core"
)

// Standardize transforms each row to zero mean and unit sample standard
// deviation across its own measurements, returning a new matrix of identical
// shape. The input is never modified.
//
// Policy for zero-variance rows: fail fast with ErrDegenerateRow naming the
// offending entity. A flat profile carries no time-course signal and silently
// mapping it to zeros would let it land in an arbitrary cluster.
func Standardize(m *TimeCourseMatrix) (*TimeCourseMatrix, error) {
	if m == nil || len(m.Data) == 0 {
		return nil, core.ErrEmptyMatrix
	}

	out := make([][]float64, len(m.Data))
	for i, row := range m.Data {
		mean, err := stats.Mean(row)
		if err != nil {
			return nil, core.NewValidationError("data", err.Error())
		}
		sd, err := stats.StandardDeviationSample(row)
		if err != nil {
			return nil, core.NewValidationError("data", err.Error())
		}
		if sd == 0 {
			return nil, core.NewDegenerateRowError(m.Entities[i])
		}

		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - mean) / sd
		}
		out[i] = z
	}

	entities := make([]core.EntityID, len(m.Entities))
	copy(entities, m.Entities)

	return &TimeCourseMatrix{Entities: entities, Data: out}, nil
}
