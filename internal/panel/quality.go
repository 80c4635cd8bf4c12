package panel

import (
	"sort"

	"github.com/montanaflynn/stats"

	"stabcast/domain/core"
	"stabcast/domain/panel"
)

// CountryQuality holds per-country data quality metrics. The quality score
// is a weighted blend: 0.3 year coverage + 0.5 completeness + 0.2 shock
// coverage rate.
type CountryQuality struct {
	Country       core.CountryCode   `json:"country_code"`
	Group         panel.CountryGroup `json:"group,omitempty"`
	TotalYears    int                `json:"total_years"`
	YearCoverage  float64            `json:"year_coverage"`
	Completeness  float64            `json:"overall_completeness"`
	ShockCoverage int                `json:"shock_coverage"`
	ShockRate     float64            `json:"shock_coverage_rate"`
	QualityScore  float64            `json:"quality_score"`
	MeetsCriteria bool               `json:"meets_criteria"`
}

// QualityCriteria are the thresholds for MeetsCriteria
type QualityCriteria struct {
	MinYearCoverage  float64
	MinCompleteness  float64
	MinShockCoverage int
}

// QualityReport ranks countries by quality score, best first
type QualityReport struct {
	Countries []CountryQuality `json:"countries"`
	MeanScore float64          `json:"mean_score"`
}

// Passing returns the countries that meet all criteria
func (r QualityReport) Passing() []core.CountryCode {
	var out []core.CountryCode
	for _, c := range r.Countries {
		if c.MeetsCriteria {
			out = append(out, c.Country)
		}
	}
	return out
}

// AssessQuality scores every country in the store against the expected year
// span and shock calendar. Countries failing the criteria can be filtered
// out before feature derivation; the caller decides.
func AssessQuality(store *Store, span core.YearRange, shocks []panel.ShockPeriod, criteria QualityCriteria) QualityReport {
	expectedYears := span.Span()
	indicators := panel.AllIndicators()

	var report QualityReport
	var scores []float64

	for _, series := range store.Observations() {
		totalYears := series.Len()
		yearCoverage := 0.0
		if expectedYears > 0 {
			yearCoverage = float64(totalYears) / float64(expectedYears)
		}

		// Completeness: fraction of expected indicator cells that are present
		present := 0
		for _, obs := range series.Observations {
			for _, ind := range indicators {
				if _, ok := obs.Indicator(ind); ok {
					present++
				}
			}
		}
		completeness := 0.0
		if totalYears > 0 {
			completeness = float64(present) / float64(totalYears*len(indicators))
		}

		// Shock coverage: how many calendar shocks have at least one
		// observation year inside their range
		shockCoverage := 0
		for _, shock := range shocks {
			for _, obs := range series.Observations {
				if shock.Years.Contains(obs.Year) {
					shockCoverage++
					break
				}
			}
		}
		shockRate := 0.0
		if len(shocks) > 0 {
			shockRate = float64(shockCoverage) / float64(len(shocks))
		}

		score := 0.3*yearCoverage + 0.5*completeness + 0.2*shockRate
		scores = append(scores, score)

		report.Countries = append(report.Countries, CountryQuality{
			Country:       series.Country,
			Group:         panel.GroupOf(series.Country),
			TotalYears:    totalYears,
			YearCoverage:  yearCoverage,
			Completeness:  completeness,
			ShockCoverage: shockCoverage,
			ShockRate:     shockRate,
			QualityScore:  score,
			MeetsCriteria: yearCoverage >= criteria.MinYearCoverage &&
				completeness >= criteria.MinCompleteness &&
				shockCoverage >= criteria.MinShockCoverage,
		})
	}

	sort.Slice(report.Countries, func(i, j int) bool {
		if report.Countries[i].QualityScore != report.Countries[j].QualityScore {
			return report.Countries[i].QualityScore > report.Countries[j].QualityScore
		}
		return report.Countries[i].Country < report.Countries[j].Country
	})

	if mean, err := stats.Mean(scores); err == nil {
		report.MeanScore = mean
	}
	return report
}
