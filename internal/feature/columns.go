package feature

import (
	"fmt"

	"stabcast/domain/core"
	"stabcast/domain/feature"
	"stabcast/domain/panel"
)

// Engineered column names that are not lag-derived
const (
	ColGrowthRollMean        core.FeatureKey = "gdp_growth_roll_mean"
	ColGrowthVolatility      core.FeatureKey = "gdp_growth_volatility"
	ColGrowthMomentum        core.FeatureKey = "growth_momentum"
	ColGrowthAcceleration    core.FeatureKey = "growth_acceleration"
	ColShockCountPrior       core.FeatureKey = "shock_count_prior"
	ColInShock               core.FeatureKey = "in_shock"
	ColYearsSinceShock       core.FeatureKey = "years_since_last_shock"
	ColRegionalShockExposure core.FeatureKey = "regional_shock_exposure"
	ColTradeOpenness         core.FeatureKey = "trade_openness"
	ColFDIIntensity          core.FeatureKey = "fdi_intensity"
	ColCreditToInvestment    core.FeatureKey = "credit_to_investment"
	ColInvestmentEfficiency  core.FeatureKey = "investment_efficiency"
	ColInnovationIndex       core.FeatureKey = "innovation_index"
)

func lagKey(ind core.FeatureKey, depth int) core.FeatureKey {
	return core.FeatureKey(fmt.Sprintf("%s_lag%d", ind, depth))
}

// Columns returns the engineered column order for this configuration.
// The order is deterministic so matrix fingerprints are stable across runs.
func (e *Engine) Columns() []feature.ColumnMeta {
	var cols []feature.ColumnMeta

	for _, ind := range panel.CoreIndicators() {
		for _, depth := range e.cfg.LagDepths {
			cols = append(cols, feature.ColumnMeta{Key: lagKey(ind, depth), Family: feature.FamilyLag})
		}
	}

	cols = append(cols,
		feature.ColumnMeta{Key: ColGrowthRollMean, Family: feature.FamilyRolling},
		feature.ColumnMeta{Key: ColGrowthVolatility, Family: feature.FamilyRolling},
		feature.ColumnMeta{Key: ColGrowthMomentum, Family: feature.FamilyMomentum},
		feature.ColumnMeta{Key: ColGrowthAcceleration, Family: feature.FamilyMomentum},
		feature.ColumnMeta{Key: ColShockCountPrior, Family: feature.FamilyShock},
		feature.ColumnMeta{Key: ColInShock, Family: feature.FamilyShock},
		feature.ColumnMeta{Key: ColYearsSinceShock, Family: feature.FamilyShock},
		feature.ColumnMeta{Key: ColRegionalShockExposure, Family: feature.FamilyShock},
		feature.ColumnMeta{Key: ColTradeOpenness, Family: feature.FamilyComplexity},
		feature.ColumnMeta{Key: ColFDIIntensity, Family: feature.FamilyComplexity},
		feature.ColumnMeta{Key: ColCreditToInvestment, Family: feature.FamilyComplexity},
		feature.ColumnMeta{Key: ColInvestmentEfficiency, Family: feature.FamilyComplexity},
		feature.ColumnMeta{Key: ColInnovationIndex, Family: feature.FamilyComplexity},
	)

	return cols
}
