package panel

import (
	"fmt"

	"stabcast/domain/core"
)

// Observation is one (country, year) row of raw macroeconomic indicators.
// Indicators map snake_case indicator names to numeric values; a missing
// indicator is simply absent from the map. Observations are immutable once
// ingested - the store hands out copies, never shared mutable state.
type Observation struct {
	Country    core.CountryCode            `json:"country_code"`
	Year       core.Year                   `json:"year"`
	Indicators map[core.FeatureKey]float64 `json:"indicators"`
	Era        string                      `json:"era,omitempty"`
}

// Key returns the unique (country, year) identity of the observation
func (o Observation) Key() string {
	return fmt.Sprintf("%s/%d", o.Country, int(o.Year))
}

// Indicator returns the named indicator value and whether it is present
func (o Observation) Indicator(key core.FeatureKey) (float64, bool) {
	v, ok := o.Indicators[key]
	return v, ok
}

// Clone returns a deep copy safe for the caller to hold
func (o Observation) Clone() Observation {
	ind := make(map[core.FeatureKey]float64, len(o.Indicators))
	for k, v := range o.Indicators {
		ind[k] = v
	}
	return Observation{Country: o.Country, Year: o.Year, Indicators: ind, Era: o.Era}
}

// CountrySeries is one country's observations sorted ascending by year
type CountrySeries struct {
	Country      core.CountryCode
	Observations []Observation
}

// Years returns the sorted year values of the series
func (s CountrySeries) Years() []core.Year {
	years := make([]core.Year, len(s.Observations))
	for i, o := range s.Observations {
		years[i] = o.Year
	}
	return years
}

// Len returns the number of observations in the series
func (s CountrySeries) Len() int { return len(s.Observations) }

// CountryGroup tags a set of countries for analysis breakdowns
type CountryGroup string

const (
	GroupDevelopedOECD    CountryGroup = "developed_oecd"
	GroupEmergingMarkets  CountryGroup = "emerging_markets"
	GroupAsianTigers      CountryGroup = "asian_tigers"
	GroupEuropeanEmerging CountryGroup = "european_emerging"
	GroupLatinAmerica     CountryGroup = "latin_america"
)

// CountryGroups maps analysis groups to their member countries. Mirrors the
// focus-country selection of the underlying study: OECD core plus major
// emerging markets with reliable 1990+ coverage.
var CountryGroups = map[CountryGroup][]core.CountryCode{
	GroupDevelopedOECD: {
		"USA", "GBR", "FRA", "DEU", "JPN", "CAN", "AUS", "ITA", "ESP", "NLD",
		"BEL", "CHE", "SWE", "NOR", "DNK", "FIN", "AUT", "IRL", "NZL", "PRT",
	},
	GroupEmergingMarkets: {
		"CHN", "IND", "BRA", "RUS", "MEX", "IDN", "TUR", "KOR", "THA", "MYS",
		"PHL", "ZAF", "POL", "CZE", "HUN", "CHL", "COL", "ARG",
	},
	GroupAsianTigers:      {"KOR", "THA", "MYS", "PHL"},
	GroupEuropeanEmerging: {"POL", "CZE", "HUN"},
	GroupLatinAmerica:     {"BRA", "MEX", "CHL", "COL", "ARG"},
}

// FocusCountries returns the union of the OECD core and emerging-market groups
func FocusCountries() []core.CountryCode {
	out := make([]core.CountryCode, 0, 38)
	out = append(out, CountryGroups[GroupDevelopedOECD]...)
	out = append(out, CountryGroups[GroupEmergingMarkets]...)
	return out
}

// GroupOf returns the primary analysis group for a country: developed vs
// emerging. The regional sub-groups overlap the emerging set and are not
// primary. Countries outside the focus list get an empty group.
func GroupOf(country core.CountryCode) CountryGroup {
	for _, c := range CountryGroups[GroupDevelopedOECD] {
		if c == country {
			return GroupDevelopedOECD
		}
	}
	for _, c := range CountryGroups[GroupEmergingMarkets] {
		if c == country {
			return GroupEmergingMarkets
		}
	}
	return ""
}
