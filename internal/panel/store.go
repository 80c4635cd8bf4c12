package panel

import (
	"context"
	"sort"

	"stabcast/domain/core"
	"stabcast/domain/panel"
	"stabcast/ports"
)

// Store is the in-memory table of (country, year) observations. It is built
// once from a PanelSource and is read-only afterwards: consumers receive
// copies grouped by country and sorted by year.
type Store struct {
	series map[core.CountryCode][]panel.Observation
	count  int
}

// NewStore ingests every observation from the source, enforcing uniqueness
// of (country, year) keys. A duplicate key is a fatal integrity violation.
func NewStore(ctx context.Context, source ports.PanelSource) (*Store, error) {
	observations, err := source.ReadObservations(ctx)
	if err != nil {
		return nil, err
	}
	return NewStoreFromObservations(observations)
}

// NewStoreFromObservations builds a store directly from rows already in memory
func NewStoreFromObservations(observations []panel.Observation) (*Store, error) {
	s := &Store{series: make(map[core.CountryCode][]panel.Observation)}
	seen := make(map[string]bool, len(observations))

	for _, obs := range observations {
		key := obs.Key()
		if seen[key] {
			return nil, core.NewDuplicateKeyError(string(obs.Country), int(obs.Year))
		}
		seen[key] = true
		s.series[obs.Country] = append(s.series[obs.Country], obs.Clone())
		s.count++
	}

	for country := range s.series {
		obs := s.series[country]
		sort.Slice(obs, func(i, j int) bool { return obs[i].Year < obs[j].Year })
	}

	return s, nil
}

// Observations returns every country's series, grouped by country and sorted
// by year, with countries in deterministic order.
func (s *Store) Observations() []panel.CountrySeries {
	countries := s.Countries()
	out := make([]panel.CountrySeries, 0, len(countries))
	for _, country := range countries {
		src := s.series[country]
		obs := make([]panel.Observation, len(src))
		for i, o := range src {
			obs[i] = o.Clone()
		}
		out = append(out, panel.CountrySeries{Country: country, Observations: obs})
	}
	return out
}

// Countries returns the sorted country codes present in the panel
func (s *Store) Countries() []core.CountryCode {
	countries := make([]core.CountryCode, 0, len(s.series))
	for c := range s.series {
		countries = append(countries, c)
	}
	sort.Slice(countries, func(i, j int) bool { return countries[i] < countries[j] })
	return countries
}

// Series returns one country's year-sorted observations, ok=false if absent
func (s *Store) Series(country core.CountryCode) (panel.CountrySeries, bool) {
	src, ok := s.series[country]
	if !ok {
		return panel.CountrySeries{}, false
	}
	obs := make([]panel.Observation, len(src))
	for i, o := range src {
		obs[i] = o.Clone()
	}
	return panel.CountrySeries{Country: country, Observations: obs}, true
}

// Len returns the total number of observations
func (s *Store) Len() int { return s.count }

// YearBounds returns the earliest and latest year across all countries
func (s *Store) YearBounds() (core.Year, core.Year) {
	first := true
	var lo, hi core.Year
	for _, obs := range s.series {
		for _, o := range obs {
			if first || o.Year < lo {
				lo = o.Year
			}
			if first || o.Year > hi {
				hi = o.Year
			}
			first = false
		}
	}
	return lo, hi
}
