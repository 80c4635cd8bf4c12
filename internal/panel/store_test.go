package panel

import (
	"context"
	"errors"
	"testing"

	"stabcast/domain/core"
	"stabcast/domain/panel"
	"stabcast/internal/testkit"
)

func obs(country core.CountryCode, year core.Year, growth float64) panel.Observation {
	return panel.Observation{
		Country: country,
		Year:    year,
		Indicators: map[core.FeatureKey]float64{
			panel.IndGDPGrowth: growth,
		},
	}
}

func TestDuplicateKeyIsFatal(t *testing.T) {
	_, err := NewStoreFromObservations([]panel.Observation{
		obs("USA", 2000, 3.0),
		obs("USA", 2000, 3.1),
	})
	if err == nil {
		t.Fatal("expected error for duplicate (country, year)")
	}
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if !core.IsFatal(err) {
		t.Error("duplicate key must be fatal")
	}
}

func TestSameYearDifferentCountriesAllowed(t *testing.T) {
	store, err := NewStoreFromObservations([]panel.Observation{
		obs("USA", 2000, 3.0),
		obs("GBR", 2000, 2.0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
}

func TestObservationsSortedAndDeterministic(t *testing.T) {
	store, err := NewStoreFromObservations([]panel.Observation{
		obs("USA", 2002, 1),
		obs("GBR", 2001, 2),
		obs("USA", 2000, 3),
		obs("GBR", 2003, 4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	series := store.Observations()
	if len(series) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(series))
	}
	if series[0].Country != "GBR" || series[1].Country != "USA" {
		t.Errorf("countries not in sorted order: %v, %v", series[0].Country, series[1].Country)
	}
	for _, s := range series {
		for i := 1; i < s.Len(); i++ {
			if s.Observations[i].Year <= s.Observations[i-1].Year {
				t.Errorf("%s observations not ascending by year", s.Country)
			}
		}
	}
}

func TestStoreHandsOutCopies(t *testing.T) {
	store, _ := NewStoreFromObservations([]panel.Observation{obs("USA", 2000, 3.0)})

	first, _ := store.Series("USA")
	first.Observations[0].Indicators[panel.IndGDPGrowth] = -99

	second, _ := store.Series("USA")
	if v, _ := second.Observations[0].Indicator(panel.IndGDPGrowth); v != 3.0 {
		t.Errorf("store state mutated through a handed-out copy: %v", v)
	}
}

func TestYearBounds(t *testing.T) {
	store, _ := NewStoreFromObservations([]panel.Observation{
		obs("USA", 1995, 1),
		obs("GBR", 2020, 2),
		obs("FRA", 2005, 3),
	})
	lo, hi := store.YearBounds()
	if lo != 1995 || hi != 2020 {
		t.Errorf("YearBounds = (%d, %d), want (1995, 2020)", lo, hi)
	}
}

func TestNewStoreFromSource(t *testing.T) {
	source := testkit.StableVsVolatileSource()
	store, err := NewStore(context.Background(), source)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	// 3 countries x 34 years
	if store.Len() != 102 {
		t.Errorf("Len = %d, want 102", store.Len())
	}
}

func TestQualityReportScoring(t *testing.T) {
	var observations []panel.Observation
	// complete country over the span
	for y := core.Year(1990); y <= 1999; y++ {
		observations = append(observations, obs("USA", y, 2.0))
	}
	// sparse country: two years only
	observations = append(observations, obs("NZL", 1990, 1.0), obs("NZL", 1991, 1.0))

	store, err := NewStoreFromObservations(observations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := AssessQuality(store, core.YearRange{Start: 1990, End: 1999}, nil, QualityCriteria{
		MinYearCoverage: 0.8,
		MinCompleteness: 0.05,
	})

	if len(report.Countries) != 2 {
		t.Fatalf("expected 2 countries in report, got %d", len(report.Countries))
	}
	// best first
	if report.Countries[0].Country != "USA" {
		t.Errorf("expected USA ranked first, got %s", report.Countries[0].Country)
	}
	if report.Countries[0].YearCoverage != 1.0 {
		t.Errorf("USA year coverage = %v, want 1.0", report.Countries[0].YearCoverage)
	}
	if report.Countries[0].Group != panel.GroupDevelopedOECD {
		t.Errorf("USA group = %q, want developed_oecd", report.Countries[0].Group)
	}

	passing := report.Passing()
	if len(passing) != 1 || passing[0] != "USA" {
		t.Errorf("expected only USA to pass, got %v", passing)
	}
}
