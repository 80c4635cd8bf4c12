package feature

import (
	"math"

	"github.com/montanaflynn/stats"

	"stabcast/domain/core"
	"stabcast/domain/panel"
)

// arena is one country's observations laid out as year-indexed arrays.
// Index = position in the country's sorted year sequence. All window and lag
// lookups go through the arena, which makes the no-look-ahead invariant a
// property of the data layout rather than of caller discipline: a window
// ending at year y can only touch positions at or before y's index.
type arena struct {
	country core.CountryCode
	years   []core.Year
	index   map[core.Year]int
	values  map[core.FeatureKey][]float64 // aligned with years, NaN = missing
}

func buildArena(s panel.CountrySeries) *arena {
	a := &arena{
		country: s.Country,
		years:   s.Years(),
		index:   make(map[core.Year]int, s.Len()),
		values:  make(map[core.FeatureKey][]float64),
	}
	for i, y := range a.years {
		a.index[y] = i
	}
	for _, ind := range panel.AllIndicators() {
		col := make([]float64, len(a.years))
		for i, obs := range s.Observations {
			if v, ok := obs.Indicator(ind); ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		a.values[ind] = col
	}
	return a
}

// valueAt returns the indicator value for an exact year; ok is false when
// the year has no observation or the indicator is missing there.
func (a *arena) valueAt(ind core.FeatureKey, year core.Year) (float64, bool) {
	pos, ok := a.index[year]
	if !ok {
		return math.NaN(), false
	}
	col, ok := a.values[ind]
	if !ok {
		return math.NaN(), false
	}
	v := col[pos]
	if math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// consecutiveWindow returns the indicator values for the size consecutive
// years ending at end. All size years must be present in the series and
// carry non-missing values; otherwise ok is false.
func (a *arena) consecutiveWindow(ind core.FeatureKey, end core.Year, size int) ([]float64, bool) {
	window := make([]float64, 0, size)
	for y := end - core.Year(size-1); y <= end; y++ {
		v, ok := a.valueAt(ind, y)
		if !ok {
			return nil, false
		}
		window = append(window, v)
	}
	return window, true
}

// rollingMean returns the trailing mean over a complete consecutive window,
// NaN when the window is incomplete.
func (a *arena) rollingMean(ind core.FeatureKey, end core.Year, size int) float64 {
	window, ok := a.consecutiveWindow(ind, end, size)
	if !ok {
		return math.NaN()
	}
	mean, err := stats.Mean(window)
	if err != nil {
		return math.NaN()
	}
	return mean
}
