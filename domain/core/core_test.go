package core

import (
	"errors"
	"testing"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("NewID returned empty identifier")
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestParseCountryCode(t *testing.T) {
	tests := []struct {
		input   string
		want    CountryCode
		wantErr bool
	}{
		{"USA", "USA", false},
		{" DEU ", "DEU", false},
		{"usa", "", true},
		{"US", "", true},
		{"USAX", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseCountryCode(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCountryCode(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCountryCode(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCountryCode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestYearRange(t *testing.T) {
	r := YearRange{Start: 1990, End: 2010}

	if !r.Contains(1990) || !r.Contains(2010) {
		t.Error("bounds are inclusive")
	}
	if r.Contains(1989) || r.Contains(2011) {
		t.Error("years outside the range must not be contained")
	}
	if r.Span() != 21 {
		t.Errorf("Span() = %d, want 21", r.Span())
	}
	if !r.Overlaps(YearRange{Start: 2010, End: 2015}) {
		t.Error("ranges sharing a single year overlap")
	}
	if r.Overlaps(YearRange{Start: 2011, End: 2015}) {
		t.Error("adjacent ranges do not overlap")
	}
	if (YearRange{Start: 2010, End: 1990}).Valid() {
		t.Error("inverted range must be invalid")
	}
}

func TestComputeConfigHashDeterministic(t *testing.T) {
	a := ComputeConfigHash(map[string]interface{}{"window": 3, "epsilon": 1e-6})
	b := ComputeConfigHash(map[string]interface{}{"epsilon": 1e-6, "window": 3})
	if a != b {
		t.Error("map iteration order must not affect the hash")
	}

	c := ComputeConfigHash(map[string]interface{}{"window": 4, "epsilon": 1e-6})
	if a == c {
		t.Error("different field values must produce different hashes")
	}
}

func TestComputeMatrixHash(t *testing.T) {
	cols := []string{"gdp_growth", "trade_openness"}

	a := ComputeMatrixHash([]string{"USA/2000", "DEU/2001"}, cols)
	b := ComputeMatrixHash([]string{"DEU/2001", "USA/2000"}, cols)
	if a != b {
		t.Error("row key order must not affect the hash")
	}

	c := ComputeMatrixHash([]string{"USA/2000", "DEU/2001"}, []string{"trade_openness", "gdp_growth"})
	if a == c {
		t.Error("column order is part of the fingerprint")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !errors.Is(ErrDuplicateKey, ErrDataIntegrity) {
		t.Error("duplicate key is an integrity violation")
	}
	if !errors.Is(ErrSplitOrdering, ErrConfiguration) {
		t.Error("split ordering is a configuration error")
	}
	if !errors.Is(ErrDiverged, ErrModelTraining) {
		t.Error("divergence is a training error")
	}
	if !IsFatal(NewDuplicateKeyError("USA", 2000)) {
		t.Error("integrity violations are fatal")
	}
	if IsFatal(NewTrainingError("ridge", ErrDiverged)) {
		t.Error("training failures are isolated, never fatal")
	}
	if !IsFatal(NewConfigurationError("window_size", "must be at least 2")) {
		t.Error("configuration errors are fatal")
	}
}
