package panel

import "stabcast/domain/core"

// ShockSeverity grades how hard a crisis period hit
type ShockSeverity string

const (
	SeverityMedium   ShockSeverity = "medium"
	SeverityHigh     ShockSeverity = "high"
	SeverityVeryHigh ShockSeverity = "very_high"
)

// ShockType classifies the crisis mechanism
type ShockType string

const (
	ShockFinancial     ShockType = "financial"
	ShockSovereignDebt ShockType = "sovereign_debt"
	ShockHealth        ShockType = "health_economic"
)

// ShockPeriod is one predefined historical crisis range. RegionalFocus lists
// countries at the epicenter; empty means the shock was global.
type ShockPeriod struct {
	Name          string             `json:"name" toml:"name"`
	Years         core.YearRange     `json:"years" toml:"years"`
	Type          ShockType          `json:"type" toml:"type"`
	Severity      ShockSeverity      `json:"severity" toml:"severity"`
	RegionalFocus []core.CountryCode `json:"regional_focus,omitempty" toml:"regional_focus"`
	GlobalImpact  bool               `json:"global_impact" toml:"global_impact"`
}

// AffectsRegion reports whether the country sits in the shock's epicenter
func (s ShockPeriod) AffectsRegion(country core.CountryCode) bool {
	for _, c := range s.RegionalFocus {
		if c == country {
			return true
		}
	}
	return false
}

// DefaultShockCalendar returns the fixed external crisis calendar used when
// the pipeline configuration does not override shock periods. Ordered by
// start year.
func DefaultShockCalendar() []ShockPeriod {
	return []ShockPeriod{
		{
			Name:          "asian_financial_crisis_1997",
			Years:         core.YearRange{Start: 1997, End: 1999},
			Type:          ShockFinancial,
			Severity:      SeverityHigh,
			RegionalFocus: []core.CountryCode{"THA", "MYS", "PHL", "IDN", "KOR"},
			GlobalImpact:  true,
		},
		{
			Name:          "dotcom_recession_2001",
			Years:         core.YearRange{Start: 2001, End: 2002},
			Type:          ShockFinancial,
			Severity:      SeverityMedium,
			RegionalFocus: []core.CountryCode{"USA", "GBR", "DEU", "JPN"},
			GlobalImpact:  true,
		},
		{
			Name:          "global_financial_crisis_2008",
			Years:         core.YearRange{Start: 2008, End: 2010},
			Type:          ShockFinancial,
			Severity:      SeverityVeryHigh,
			RegionalFocus: []core.CountryCode{"USA", "GBR", "ESP", "IRL", "GRC"},
			GlobalImpact:  true,
		},
		{
			Name:          "european_debt_crisis_2010",
			Years:         core.YearRange{Start: 2010, End: 2013},
			Type:          ShockSovereignDebt,
			Severity:      SeverityHigh,
			RegionalFocus: []core.CountryCode{"ESP", "ITA", "PRT", "IRL", "GRC"},
			GlobalImpact:  false,
		},
		{
			Name:         "covid_pandemic_2020",
			Years:        core.YearRange{Start: 2020, End: 2022},
			Type:         ShockHealth,
			Severity:     SeverityVeryHigh,
			GlobalImpact: true,
		},
	}
}
