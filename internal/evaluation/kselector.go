package evaluation

import (
	"github.com/montanaflynn/stats"

	"goclue/domain/core"
	domain "goclue/domain/evaluation"
)

// SelectK picks the best number of clusters from a score matrix: every score
// is min-max normalized into [0,1] against the global minimum and maximum of
// the whole matrix, each candidate k gets the median of its normalized column
// across completed repeats, and the k with the maximal median wins. Ties
// break toward the smaller k. Rows of failed repeats (nil) are skipped, so a
// ragged matrix is fine; a constant matrix is not, since the normalization is
// undefined - that fails with ErrDegenerateMatrix.
func SelectK(m *domain.ScoreMatrix) (int, error) {
	if m == nil || len(m.KRange) == 0 {
		return 0, core.NewValidationError("scores", "empty score matrix")
	}
	rows := m.CompletedRows()
	if len(rows) == 0 {
		return 0, core.NewValidationError("scores", "no completed repeats")
	}

	min, max := rows[0][0], rows[0][0]
	for _, row := range rows {
		for _, v := range row {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if min == max {
		return 0, core.ErrDegenerateMatrix
	}

	span := max - min
	bestK, bestMedian := 0, -1.0
	for j, k := range m.KRange {
		col := m.Column(j)
		for i, v := range col {
			col[i] = (v - min) / span
		}
		median, err := stats.Median(col)
		if err != nil {
			continue
		}
		// strict improvement only: equal medians keep the smaller k
		if median > bestMedian {
			bestMedian = median
			bestK = k
		}
	}
	if bestK == 0 {
		return 0, core.NewValidationError("scores", "no candidate k has any score")
	}
	return bestK, nil
}
