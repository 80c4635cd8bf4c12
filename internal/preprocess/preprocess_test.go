package preprocess

import (
	"encoding/json"
	"math"
	"testing"
)

func nan() float64 { return math.NaN() }

func TestImputerFillsEveryNaN(t *testing.T) {
	train := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, nan()},
	}
	im := NewKNNImputer(2)
	if err := im.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out := im.Transform(train)
	for i, row := range out {
		for j, v := range row {
			if math.IsNaN(v) {
				t.Errorf("cell (%d,%d) still NaN after transform", i, j)
			}
		}
	}
}

func TestImputerUsesNearestDonors(t *testing.T) {
	train := [][]float64{
		{1, 100},
		{2, 200},
		{50, 900},
	}
	im := NewKNNImputer(2)
	if err := im.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// row near the first cluster: the two nearest donors have 100 and 200
	out := im.Transform([][]float64{{1.5, nan()}})
	if out[0][1] != 150 {
		t.Errorf("imputed %v, want 150 (mean of nearest donors)", out[0][1])
	}
}

func TestImputerFallsBackToMedian(t *testing.T) {
	train := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	im := NewKNNImputer(2)
	if err := im.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// fully missing row shares no observed dimension with any donor
	out := im.Transform([][]float64{{nan(), nan()}})
	if out[0][0] != 2 {
		t.Errorf("column 0 fallback = %v, want train median 2", out[0][0])
	}
	if out[0][1] != 20 {
		t.Errorf("column 1 fallback = %v, want train median 20", out[0][1])
	}
}

func TestImputerDoesNotMutateInput(t *testing.T) {
	train := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	im := NewKNNImputer(1)
	if err := im.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	input := [][]float64{{1, nan()}}
	_ = im.Transform(input)
	if !math.IsNaN(input[0][1]) {
		t.Error("Transform mutated its input")
	}
}

func TestScalerRobustStatistics(t *testing.T) {
	train := [][]float64{{1}, {2}, {3}, {4}, {5}}
	s := NewRobustScaler()
	if err := s.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if s.Centers[0] != 3 {
		t.Errorf("center = %v, want median 3", s.Centers[0])
	}
	out := s.Transform([][]float64{{3}})
	if out[0][0] != 0 {
		t.Errorf("median value scaled to %v, want 0", out[0][0])
	}
}

func TestScalerConstantColumn(t *testing.T) {
	train := [][]float64{{7}, {7}, {7}}
	s := NewRobustScaler()
	if err := s.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if s.Scales[0] != 1 {
		t.Errorf("degenerate IQR scale = %v, want 1", s.Scales[0])
	}
	out := s.Transform([][]float64{{7}, {8}})
	if out[0][0] != 0 || out[1][0] != 1 {
		t.Errorf("constant column scaling wrong: %v", out)
	}
}

func TestScalerPassesNaNThrough(t *testing.T) {
	train := [][]float64{{1}, {2}, {3}}
	s := NewRobustScaler()
	if err := s.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out := s.Transform([][]float64{{nan()}})
	if !math.IsNaN(out[0][0]) {
		t.Errorf("NaN should pass through the scaler, got %v", out[0][0])
	}
}

// TestStatisticsFrozenAfterFit is the no-leakage property: transforming
// other partitions must not change what the preprocessor learned from train.
func TestStatisticsFrozenAfterFit(t *testing.T) {
	train := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	}
	p := NewPreprocessor(2)
	if err := p.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	before, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// extreme rows from a pretend test partition
	p.Transform([][]float64{{1e9, nan()}, {-1e9, 5}})

	after, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("fitted statistics changed after transforming non-train rows")
	}
}

func TestPreprocessorRoundTrip(t *testing.T) {
	train := [][]float64{
		{1, 10},
		{2, nan()},
		{3, 30},
		{4, 40},
	}
	p := NewPreprocessor(2)
	transformed, err := p.FitTransform(train)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	payload, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	restored, err := UnmarshalPreprocessor(payload)
	if err != nil {
		t.Fatalf("UnmarshalPreprocessor failed: %v", err)
	}

	again := restored.Transform(train)
	for i := range transformed {
		for j := range transformed[i] {
			if transformed[i][j] != again[i][j] {
				t.Fatalf("cell (%d,%d) differs after round trip: %v != %v", i, j, transformed[i][j], again[i][j])
			}
		}
	}

	var check map[string]json.RawMessage
	if err := json.Unmarshal(payload, &check); err != nil {
		t.Fatalf("payload is not a JSON object: %v", err)
	}
}
