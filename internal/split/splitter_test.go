package split

import (
	"errors"
	"fmt"
	"testing"

	"stabcast/domain/core"
	"stabcast/domain/feature"
	"stabcast/domain/split"
)

func plan() split.Plan {
	return split.Plan{
		TrainYears:      core.YearRange{Start: 1990, End: 2010},
		ValidationYears: core.YearRange{Start: 2011, End: 2016},
		TestYears:       core.YearRange{Start: 2017, End: 2023},
	}
}

func matrixForYears(years []core.Year) *feature.Matrix {
	var records []feature.EngineeredRecord
	for i, y := range years {
		records = append(records, feature.EngineeredRecord{
			Country: "USA",
			Year:    y,
			Target:  float64(i),
			Features: map[core.FeatureKey]float64{
				"f": float64(i),
			},
		})
	}
	return feature.Assemble(records, []feature.ColumnMeta{{Key: "f", Family: feature.FamilyLag}})
}

func TestNewSplitterRejectsOverlap(t *testing.T) {
	bad := plan()
	bad.ValidationYears.Start = 2005 // reaches back into train

	_, err := NewSplitter(bad)
	if err == nil {
		t.Fatal("expected error for overlapping ranges")
	}
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestNewSplitterRejectsDisorder(t *testing.T) {
	bad := split.Plan{
		TrainYears:      core.YearRange{Start: 2017, End: 2023},
		ValidationYears: core.YearRange{Start: 2011, End: 2016},
		TestYears:       core.YearRange{Start: 1990, End: 2010},
	}
	if _, err := NewSplitter(bad); err == nil {
		t.Fatal("expected error for reversed chronology")
	}
}

// TestEveryRowExactlyOnePartition is the partition property: labels cover
// all in-range rows, counts add up, out-of-range rows are dropped.
func TestEveryRowExactlyOnePartition(t *testing.T) {
	var years []core.Year
	for y := core.Year(1985); y <= 2025; y++ {
		years = append(years, y)
	}
	m := matrixForYears(years)

	s, err := NewSplitter(plan())
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}
	result := s.Partition(m)

	total := 0
	for _, label := range split.Labels() {
		total += result.Counts[label]
	}
	if total+result.Dropped != m.NumRows() {
		t.Errorf("counts %d + dropped %d != rows %d", total, result.Dropped, m.NumRows())
	}
	// 1985-1989 and 2024-2025 fall outside every range
	if result.Dropped != 7 {
		t.Errorf("dropped = %d, want 7", result.Dropped)
	}
	if len(result.Labels) != total {
		t.Errorf("label map has %d entries, counts say %d", len(result.Labels), total)
	}
}

func TestChronologicalBoundaries(t *testing.T) {
	m := matrixForYears([]core.Year{2010, 2011, 2016, 2017})
	s, _ := NewSplitter(plan())
	result := s.Partition(m)

	want := map[string]split.Label{
		"USA/2010": split.Train,
		"USA/2011": split.Validation,
		"USA/2016": split.Validation,
		"USA/2017": split.Test,
	}
	for key, label := range want {
		if result.Labels[key] != label {
			t.Errorf("%s assigned %s, want %s", key, result.Labels[key], label)
		}
	}
}

func TestSubsetIsIndependentCopy(t *testing.T) {
	m := matrixForYears([]core.Year{2000, 2001, 2012, 2020})
	s, _ := NewSplitter(plan())
	result := s.Partition(m)

	train := s.Subset(m, result, split.Train)
	if train.NumRows() != 2 {
		t.Fatalf("train rows = %d, want 2", train.NumRows())
	}

	original := m.Data[0][0]
	train.Data[0][0] = 999
	if m.Data[0][0] != original {
		t.Error("mutating the subset changed the source matrix")
	}
}

func TestSubsetMaxTrainYearBelowMinTestYear(t *testing.T) {
	var years []core.Year
	for y := core.Year(1990); y <= 2023; y++ {
		years = append(years, y)
	}
	m := matrixForYears(years)
	s, _ := NewSplitter(plan())
	result := s.Partition(m)

	train := s.Subset(m, result, split.Train)
	test := s.Subset(m, result, split.Test)

	maxTrain := train.Years[0]
	for _, y := range train.Years {
		if y > maxTrain {
			maxTrain = y
		}
	}
	minTest := test.Years[0]
	for _, y := range test.Years {
		if y < minTest {
			minTest = y
		}
	}
	if !(maxTrain < minTest) {
		t.Errorf("max train year %d not before min test year %d", maxTrain, minTest)
	}
	if err := VerifyChronology(train, test); err != nil {
		t.Errorf("chronology check rejected a clean split: %v", err)
	}
}

func TestVerifyChronologyDetectsFutureRows(t *testing.T) {
	train := matrixForYears([]core.Year{1990, 1991, 2020})
	test := matrixForYears([]core.Year{2017, 2018})

	err := VerifyChronology(train, test)
	if !errors.Is(err, core.ErrFutureData) {
		t.Errorf("expected ErrFutureData, got %v", err)
	}
	if !errors.Is(err, core.ErrLeakage) {
		t.Errorf("future-data violations are leakage, got %v", err)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	m := matrixForYears([]core.Year{1995, 2005, 2012, 2019})
	s, _ := NewSplitter(plan())

	a := s.Partition(m)
	b := s.Partition(m)
	if fmt.Sprintf("%v", a.Labels) != fmt.Sprintf("%v", b.Labels) {
		t.Error("partition not deterministic")
	}
}
