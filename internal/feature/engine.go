package feature

import (
	"math"

	"github.com/montanaflynn/stats"

	"stabcast/domain/core"
	"stabcast/domain/feature"
	"stabcast/domain/panel"
	"stabcast/internal"
	"stabcast/internal/config"
)

// Engine derives the stability target and all engineered feature columns
// from raw country series, respecting temporal order. Each country is
// processed independently over an arena of year-indexed arrays so that no
// computation can reach past the current year's position.
type Engine struct {
	cfg config.PipelineConfig
	log *internal.Logger
}

// NewEngine creates a feature engine bound to an immutable configuration
func NewEngine(cfg config.PipelineConfig) *Engine {
	return &Engine{cfg: cfg, log: internal.DefaultLogger}
}

// CountryExclusion records a country dropped during derivation
type CountryExclusion struct {
	Country core.CountryCode
	Reason  string
}

// Result is the output of one derivation pass
type Result struct {
	Records  []feature.EngineeredRecord
	Columns  []feature.ColumnMeta
	Excluded []CountryExclusion

	// DroppedRows counts years skipped because the target was undefined
	DroppedRows int
}

// Derive produces engineered records for every country series. A country
// with insufficient history contributes zero records and an exclusion entry;
// it never aborts the run.
func (e *Engine) Derive(series []panel.CountrySeries) (*Result, error) {
	result := &Result{Columns: e.Columns()}

	for _, s := range series {
		if s.Len() < e.cfg.WindowSize {
			err := core.NewInsufficientHistoryError(string(s.Country), s.Len(), e.cfg.WindowSize)
			e.log.Warn("excluding country %s: %v", s.Country, err)
			result.Excluded = append(result.Excluded, CountryExclusion{
				Country: s.Country,
				Reason:  err.Error(),
			})
			continue
		}

		records, dropped := e.deriveCountry(s)
		result.Records = append(result.Records, records...)
		result.DroppedRows += dropped

		if len(records) == 0 {
			err := core.NewInsufficientHistoryError(string(s.Country), s.Len(), e.cfg.WindowSize)
			e.log.Warn("country %s produced no records: %v", s.Country, err)
			result.Excluded = append(result.Excluded, CountryExclusion{
				Country: s.Country,
				Reason:  "no year with a complete target window",
			})
		}
	}

	e.log.Info("feature derivation: %d records, %d countries excluded, %d target-undefined rows dropped",
		len(result.Records), len(result.Excluded), result.DroppedRows)
	return result, nil
}

// deriveCountry walks one country's arena from oldest to newest year,
// emitting a record for every year whose target window is complete.
func (e *Engine) deriveCountry(s panel.CountrySeries) ([]feature.EngineeredRecord, int) {
	arena := buildArena(s)
	var records []feature.EngineeredRecord
	dropped := 0

	for pos := range arena.years {
		year := arena.years[pos]

		target, ok := e.stabilityTarget(arena, year)
		if !ok {
			dropped++
			continue
		}

		features := make(map[core.FeatureKey]float64)
		e.lagFeatures(arena, year, features)
		e.rollingFeatures(arena, year, features)
		e.momentumFeatures(arena, year, features)
		e.shockFeatures(s.Country, year, features)
		e.complexityFeatures(arena, year, features)

		records = append(records, feature.EngineeredRecord{
			Country:  s.Country,
			Year:     year,
			Target:   target,
			Features: features,
		})
	}

	return records, dropped
}

// stabilityTarget computes 1 / (std(g)/|mean(g)| + epsilon) over the trailing
// window ending at year. The window requires exactly WindowSize consecutive
// years of non-missing growth; otherwise the target is undefined and the
// record is dropped here, never reaching any downstream stage.
func (e *Engine) stabilityTarget(a *arena, year core.Year) (float64, bool) {
	window, ok := a.consecutiveWindow(panel.IndGDPGrowth, year, e.cfg.WindowSize)
	if !ok {
		return 0, false
	}

	mean, err := stats.Mean(window)
	if err != nil {
		return 0, false
	}
	sd, err := stats.StandardDeviationSample(window)
	if err != nil {
		return 0, false
	}

	cv := sd / math.Abs(mean)
	if math.IsNaN(cv) {
		// zero std over a zero mean: coefficient of variation is undefined
		return 0, false
	}
	return 1.0 / (cv + e.cfg.Epsilon), true
}

// lagFeatures carries indicator values from year-k when that historical
// observation exists for the same country; otherwise the feature stays
// missing (NaN) for later imputation, never zero-filled.
func (e *Engine) lagFeatures(a *arena, year core.Year, out map[core.FeatureKey]float64) {
	for _, ind := range panel.CoreIndicators() {
		for _, depth := range e.cfg.LagDepths {
			key := lagKey(ind, depth)
			if v, ok := a.valueAt(ind, year-core.Year(depth)); ok {
				out[key] = v
			} else {
				out[key] = math.NaN()
			}
		}
	}
}

// rollingFeatures computes trailing mean and volatility of growth over the
// configured window; NaN when the window is incomplete.
func (e *Engine) rollingFeatures(a *arena, year core.Year, out map[core.FeatureKey]float64) {
	out[ColGrowthRollMean] = math.NaN()
	out[ColGrowthVolatility] = math.NaN()

	window, ok := a.consecutiveWindow(panel.IndGDPGrowth, year, e.cfg.WindowSize)
	if !ok {
		return
	}
	if mean, err := stats.Mean(window); err == nil {
		out[ColGrowthRollMean] = mean
	}
	if sd, err := stats.StandardDeviationSample(window); err == nil {
		out[ColGrowthVolatility] = sd
	}
}

// momentumFeatures takes first and second differences of the rolling mean.
// Undefined (NaN) at series boundaries where the prior windows are missing.
func (e *Engine) momentumFeatures(a *arena, year core.Year, out map[core.FeatureKey]float64) {
	m0 := a.rollingMean(panel.IndGDPGrowth, year, e.cfg.WindowSize)
	m1 := a.rollingMean(panel.IndGDPGrowth, year-1, e.cfg.WindowSize)
	m2 := a.rollingMean(panel.IndGDPGrowth, year-2, e.cfg.WindowSize)

	out[ColGrowthMomentum] = m0 - m1
	out[ColGrowthAcceleration] = (m0 - m1) - (m1 - m2)
}

// shockFeatures encodes the country's crisis history as of this year.
// Counts and flags only look backwards: a shock period contributes once its
// start year has been reached.
func (e *Engine) shockFeatures(country core.CountryCode, year core.Year, out map[core.FeatureKey]float64) {
	count := 0.0
	inShock := 0.0
	regional := 0.0
	lastEnd := core.Year(0)
	haveEnded := false

	for _, shock := range e.cfg.ShockPeriods {
		if shock.Years.Start > year {
			continue
		}
		count++
		if shock.Years.Contains(year) {
			inShock = 1
			if shock.AffectsRegion(country) {
				regional = 1
			}
		}
		if shock.Years.End < year && shock.Years.End > lastEnd {
			lastEnd = shock.Years.End
			haveEnded = true
		}
	}

	out[ColShockCountPrior] = count
	out[ColInShock] = inShock
	out[ColRegionalShockExposure] = regional
	if haveEnded {
		out[ColYearsSinceShock] = float64(year - lastEnd)
	} else {
		out[ColYearsSinceShock] = math.NaN()
	}
}

// complexityFeatures derives same-year ratios and normalized indices from
// raw indicators. No temporal lookback: defined whenever sources are present.
func (e *Engine) complexityFeatures(a *arena, year core.Year, out map[core.FeatureKey]float64) {
	exports, okE := a.valueAt(panel.IndExportsGDP, year)
	imports, okI := a.valueAt(panel.IndImportsGDP, year)
	trade, okT := a.valueAt(panel.IndTradeGDP, year)

	openness := math.NaN()
	switch {
	case okE && okI:
		openness = exports + imports
	case okT:
		openness = trade
	}
	out[ColTradeOpenness] = openness

	fdi, okF := a.valueAt(panel.IndFDINetInflows, year)
	if okF && !math.IsNaN(openness) && openness != 0 {
		out[ColFDIIntensity] = fdi / openness
	} else {
		out[ColFDIIntensity] = math.NaN()
	}

	credit, okC := a.valueAt(panel.IndDomesticCredit, year)
	invest, okV := a.valueAt(panel.IndGrossInvestment, year)
	if okC && okV && invest != 0 {
		out[ColCreditToInvestment] = credit / invest
	} else {
		out[ColCreditToInvestment] = math.NaN()
	}

	growth, okG := a.valueAt(panel.IndGDPGrowth, year)
	if okG && okV && invest != 0 {
		out[ColInvestmentEfficiency] = growth / invest
	} else {
		out[ColInvestmentEfficiency] = math.NaN()
	}

	rd, okR := a.valueAt(panel.IndResearchDevelopment, year)
	net, okN := a.valueAt(panel.IndInternetUsers, year)
	if okR && okN {
		// blend of R&D share (typical ceiling ~5% of GDP) and internet adoption
		out[ColInnovationIndex] = 0.5*(rd/5.0) + 0.5*(net/100.0)
	} else {
		out[ColInnovationIndex] = math.NaN()
	}
}
