package matrix

import (
	"errors"
	"math"
	"testing"

	"github.com/montanaflynn/stats"

	"goclue/domain/core"
)

func TestStandardize_RowsHaveZeroMeanUnitSD(t *testing.T) {
	m, err := New(
		[]core.EntityID{"a", "b", "c"},
		[][]float64{
			{1, 2, 3, 4},
			{-10, 0, 10, 20},
			{0.1, 0.5, 0.2, 0.9},
		},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	z, err := Standardize(m)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}

	for i, row := range z.Data {
		mean, _ := stats.Mean(row)
		sd, _ := stats.StandardDeviationSample(row)
		if math.Abs(mean) > 1e-9 {
			t.Errorf("row %d mean = %g, want 0", i, mean)
		}
		if math.Abs(sd-1) > 1e-9 {
			t.Errorf("row %d sd = %g, want 1", i, sd)
		}
	}
}

func TestStandardize_DoesNotMutateInput(t *testing.T) {
	m, err := New([]core.EntityID{"a"}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := Standardize(m); err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	if m.Data[0][0] != 1 || m.Data[0][2] != 3 {
		t.Error("input matrix was modified")
	}
}

func TestStandardize_DegenerateRowFailsFast(t *testing.T) {
	m, err := New(
		[]core.EntityID{"a", "flat"},
		[][]float64{{1, 2, 3}, {5, 5, 5}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = Standardize(m)
	if !errors.Is(err, core.ErrDegenerateRow) {
		t.Fatalf("zero-variance row returned %v, want ErrDegenerateRow", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, core.ErrEmptyMatrix) {
		t.Errorf("empty input returned %v, want ErrEmptyMatrix", err)
	}

	_, err := New([]core.EntityID{"a", "b"}, [][]float64{{1, 2}, {1}})
	if !errors.Is(err, core.ErrRaggedMatrix) {
		t.Errorf("ragged rows returned %v, want ErrRaggedMatrix", err)
	}

	_, err = New([]core.EntityID{"a", "a"}, [][]float64{{1, 2}, {3, 4}})
	if err == nil {
		t.Error("expected error for duplicate identifiers")
	}

	_, err = New([]core.EntityID{"a"}, [][]float64{{1, math.NaN()}})
	if err == nil {
		t.Error("expected error for missing values")
	}
}
