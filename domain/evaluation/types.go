package evaluation

import (
	"goclue/domain/annotation"
	"goclue/domain/core"
	"goclue/domain/matrix"
)

// SizeRange is the inclusive group-size bound for enrichment testing. Groups
// smaller than Min are statistically unreliable, groups larger than Max are
// uninformative; both are skipped by the scorer.
type SizeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether a group size falls inside the bound
func (r SizeRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// ScoreMatrix is the repeats x candidate-k table of regularized enrichment
// scores. KRange is ascending and shared by every row. Rows of failed repeats
// are nil; consumers must tolerate the resulting ragged shape.
type ScoreMatrix struct {
	KRange []int       `json:"k_range"`
	Rows   [][]float64 `json:"rows"`
}

// CompletedRows returns the rows of repeats that finished
func (m *ScoreMatrix) CompletedRows() [][]float64 {
	var rows [][]float64
	for _, row := range m.Rows {
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows
}

// Column collects the scores of one candidate k across completed repeats
func (m *ScoreMatrix) Column(j int) []float64 {
	var col []float64
	for _, row := range m.Rows {
		if row != nil && j < len(row) {
			col = append(col, row[j])
		}
	}
	return col
}

// Evaluation is the aggregate outcome of one evaluation run: the inputs the
// loop actually used (standardized matrix, filtered annotation, effective
// settings) plus the score matrix and the selected k. It is the sole input to
// the optimal-partition stage and is read-only from that point.
type Evaluation struct {
	RunID         core.RunID               `json:"run_id"`
	Matrix        *matrix.TimeCourseMatrix `json:"-"`
	Annotation    annotation.Set           `json:"-"`
	Method        string                   `json:"method"`
	EffectiveSize SizeRange                `json:"effective_size"`
	PValueCutoff  float64                  `json:"p_value_cutoff"`
	Alpha         float64                  `json:"alpha"`
	Repeats       int                      `json:"repeats"`
	Scores        *ScoreMatrix             `json:"scores"`
	SelectedK     int                      `json:"selected_k"`
	CreatedAt     core.Timestamp           `json:"created_at"`
}

// Params are the knobs of the evaluation and optimization stages. Optional
// overrides at the optimization stage are resolved against the values stored
// on the Evaluation by a single coalescing rule per parameter, replacing the
// branching dispatch a presence/absence API would need.
type Params struct {
	Repeats       int                        `json:"repeats,omitempty"`
	KRange        []int                      `json:"k_range,omitempty"`
	Method        string                     `json:"method,omitempty"`
	EffectiveSize SizeRange                  `json:"effective_size,omitempty"`
	PValueCutoff  float64                    `json:"p_value_cutoff,omitempty"`
	Alpha         float64                    `json:"alpha,omitempty"`
	Universe      map[core.EntityID]struct{} `json:"universe,omitempty"` // nil means all entities in the partition
	Seed          int64                      `json:"seed,omitempty"`
	MaxIterations int                        `json:"max_iterations,omitempty"`
}

// Coalesce resolves optional overrides against the settings recorded on an
// evaluation: each zero-valued field takes the evaluation's stored value.
func (p Params) Coalesce(eval *Evaluation) Params {
	out := p
	if out.Repeats == 0 {
		out.Repeats = eval.Repeats
	}
	if out.Method == "" {
		out.Method = eval.Method
	}
	if out.EffectiveSize == (SizeRange{}) {
		out.EffectiveSize = eval.EffectiveSize
	}
	if out.PValueCutoff == 0 {
		out.PValueCutoff = eval.PValueCutoff
	}
	if out.Alpha == 0 {
		out.Alpha = eval.Alpha
	}
	return out
}
