package matrix

import (
	"fmt"
	"math"

	"goclue/domain/core"
)

// TimeCourseMatrix holds one numeric measurement series per entity. Row order
// is significant and shared with every Partition derived from the matrix.
type TimeCourseMatrix struct {
	Entities []core.EntityID `json:"entities"`
	Data     [][]float64     `json:"data"`
}

// New creates a validated time-course matrix. Every row must carry the same
// number of measurements, entity identifiers must be unique, and missing
// values (NaN) are rejected - resolving them is the caller's job.
func New(entities []core.EntityID, data [][]float64) (*TimeCourseMatrix, error) {
	if len(entities) == 0 || len(data) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if len(entities) != len(data) {
		return nil, core.NewValidationError("entities",
			fmt.Sprintf("%d identifiers for %d rows", len(entities), len(data)))
	}

	width := len(data[0])
	if width == 0 {
		return nil, core.NewValidationError("data", "rows have no measurements")
	}

	seen := make(map[core.EntityID]struct{}, len(entities))
	for i, id := range entities {
		if id == "" {
			return nil, core.NewValidationError("entities", fmt.Sprintf("row %d has empty identifier", i))
		}
		if _, dup := seen[id]; dup {
			return nil, core.NewValidationError("entities", fmt.Sprintf("duplicate identifier %s", id))
		}
		seen[id] = struct{}{}

		if len(data[i]) != width {
			return nil, core.ErrRaggedMatrix
		}
		for j, v := range data[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewValidationError("data",
					fmt.Sprintf("row %s has non-finite value at column %d", id, j))
			}
		}
	}

	return &TimeCourseMatrix{Entities: entities, Data: data}, nil
}

// Rows returns the number of entities
func (m *TimeCourseMatrix) Rows() int {
	return len(m.Data)
}

// Cols returns the number of measurements per entity
func (m *TimeCourseMatrix) Cols() int {
	if len(m.Data) == 0 {
		return 0
	}
	return len(m.Data[0])
}

// EntitySet returns the set of row identifiers, used to filter annotations
func (m *TimeCourseMatrix) EntitySet() map[core.EntityID]struct{} {
	set := make(map[core.EntityID]struct{}, len(m.Entities))
	for _, id := range m.Entities {
		set[id] = struct{}{}
	}
	return set
}

// Row returns the measurement vector for an entity index
func (m *TimeCourseMatrix) Row(i int) []float64 {
	return m.Data[i]
}
