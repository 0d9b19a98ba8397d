package evaluation

import (
	"errors"
	"testing"

	"goclue/domain/core"
	domain "goclue/domain/evaluation"
)

func TestSelectK_MedianArgmax(t *testing.T) {
	// global min 0, max 10; normalized column medians are
	// k=2: 0.1, k=3: 0.9, k=4: 0.8, k=5: 0.2, k=6: 0.4
	m := &domain.ScoreMatrix{
		KRange: []int{2, 3, 4, 5, 6},
		Rows: [][]float64{
			{0, 10, 8, 2, 4},
			{1, 9, 7, 3, 5},
			{2, 8, 9, 1, 3},
		},
	}
	k, err := SelectK(m)
	if err != nil {
		t.Fatalf("SelectK: %v", err)
	}
	if k != 3 {
		t.Errorf("SelectK = %d, want 3", k)
	}
}

func TestSelectK_TieBreaksToLowerK(t *testing.T) {
	// columns k=3 and k=4 both have median 9
	m := &domain.ScoreMatrix{
		KRange: []int{2, 3, 4},
		Rows: [][]float64{
			{0, 9, 10},
			{1, 8, 9},
			{2, 10, 8},
		},
	}
	k, err := SelectK(m)
	if err != nil {
		t.Fatalf("SelectK: %v", err)
	}
	if k != 3 {
		t.Errorf("tie resolved to k=%d, want the lower k=3", k)
	}
}

func TestSelectK_DegenerateMatrix(t *testing.T) {
	m := &domain.ScoreMatrix{
		KRange: []int{2, 3},
		Rows:   [][]float64{{4, 4}, {4, 4}},
	}
	if _, err := SelectK(m); !errors.Is(err, core.ErrDegenerateMatrix) {
		t.Errorf("constant matrix returned %v, want ErrDegenerateMatrix", err)
	}
}

func TestSelectK_ToleratesFailedRepeats(t *testing.T) {
	m := &domain.ScoreMatrix{
		KRange: []int{2, 3, 4},
		Rows: [][]float64{
			{1, 5, 2},
			nil, // failed repeat
			{2, 6, 3},
		},
	}
	k, err := SelectK(m)
	if err != nil {
		t.Fatalf("SelectK with ragged matrix: %v", err)
	}
	if k != 3 {
		t.Errorf("SelectK = %d, want 3", k)
	}
}

func TestSelectK_NoCompletedRepeats(t *testing.T) {
	m := &domain.ScoreMatrix{KRange: []int{2, 3}, Rows: [][]float64{nil, nil}}
	if _, err := SelectK(m); err == nil {
		t.Error("expected error when every repeat failed")
	}
}
