package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"stabcast/domain/core"
	"stabcast/domain/panel"
	"stabcast/domain/split"
	"stabcast/internal/errors"
)

// PipelineConfig is the immutable analytical configuration for one run.
// It is threaded explicitly through every component call; nothing reads
// process-wide mutable state, so runs stay reproducible.
type PipelineConfig struct {
	// Feature engineering
	WindowSize int     `toml:"window_size"`
	LagDepths  []int   `toml:"lag_depths"`
	Epsilon    float64 `toml:"epsilon"`

	ShockPeriods []panel.ShockPeriod `toml:"shock_periods"`

	// Split boundaries: train = [data start .. TrainEnd],
	// validation = [TrainEnd+1 .. ValidationEnd], test = [ValidationEnd+1 .. TestEnd]
	SplitYears SplitYears `toml:"split_years"`

	// Model bank
	Roster            []RosterEntry `toml:"model_roster"`
	ModelTimeout      Duration      `toml:"model_timeout"`
	MaxConcurrentCost int64         `toml:"max_concurrent_cost"`
	Seed              int64         `toml:"seed"`

	// Preprocessing
	ImputeNeighbors int `toml:"impute_neighbors"`

	// Optional data-quality gate applied before feature derivation
	Quality QualityConfig `toml:"quality"`
}

// SplitYears are the inclusive partition boundaries
type SplitYears struct {
	TrainEnd      core.Year `toml:"train_end"`
	ValidationEnd core.Year `toml:"validation_end"`
	TestEnd       core.Year `toml:"test_end"`
}

// RosterEntry is one algorithm plus its hyperparameter grid
type RosterEntry struct {
	Name string               `toml:"name"`
	Grid map[string][]float64 `toml:"grid"`
}

// QualityConfig gates countries on data quality before derivation.
// FocusOnly additionally restricts the panel to the study's focus-country
// list regardless of measured quality.
type QualityConfig struct {
	Enabled          bool    `toml:"enabled"`
	FocusOnly        bool    `toml:"focus_only"`
	MinYearCoverage  float64 `toml:"min_year_coverage"`
	MinCompleteness  float64 `toml:"min_completeness"`
	MinShockCoverage int     `toml:"min_shock_coverage"`
}

// Duration wraps time.Duration for TOML string parsing ("2m", "90s")
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

// DefaultPipelineConfig returns the configuration used when no TOML file is
// supplied: the 1990-2023 study defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WindowSize:   3,
		LagDepths:    []int{1, 2},
		Epsilon:      1e-6,
		ShockPeriods: panel.DefaultShockCalendar(),
		SplitYears: SplitYears{
			TrainEnd:      2010,
			ValidationEnd: 2016,
			TestEnd:       2023,
		},
		Roster:            DefaultRoster(),
		ModelTimeout:      Duration(2 * time.Minute),
		MaxConcurrentCost: 8,
		Seed:              42,
		ImputeNeighbors:   5,
		Quality: QualityConfig{
			Enabled:          false,
			MinYearCoverage:  0.8,
			MinCompleteness:  0.6,
			MinShockCoverage: 3,
		},
	}
}

// DefaultRoster is the full built-in algorithm comparison with small grids
func DefaultRoster() []RosterEntry {
	return []RosterEntry{
		{Name: "mean_baseline"},
		{Name: "ols"},
		{Name: "ridge", Grid: map[string][]float64{"alpha": {0.1, 1.0, 10.0}}},
		{Name: "lasso", Grid: map[string][]float64{"alpha": {0.01, 0.1, 1.0}}},
		{Name: "elastic_net", Grid: map[string][]float64{"alpha": {0.01, 0.1, 1.0}, "l1_ratio": {0.2, 0.5, 0.8}}},
		{Name: "knn", Grid: map[string][]float64{"k": {3, 5, 9}}},
		{Name: "decision_tree", Grid: map[string][]float64{"max_depth": {3, 5, 8}}},
		{Name: "random_forest", Grid: map[string][]float64{"num_trees": {100}, "max_depth": {6, 10}}},
		{Name: "extra_trees", Grid: map[string][]float64{"num_trees": {100}, "max_depth": {6, 10}}},
		{Name: "gradient_boosting", Grid: map[string][]float64{"num_trees": {100}, "learning_rate": {0.05, 0.1}, "max_depth": {2, 3}}},
	}
}

// LoadPipelineConfig reads a TOML pipeline file over the defaults. An empty
// path returns the defaults unchanged.
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read pipeline config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse pipeline config")
	}
	return cfg, nil
}

// Validate checks every structural invariant that can be checked without
// data. Fatal configuration errors surface here, before any training.
func (c PipelineConfig) Validate() error {
	if c.WindowSize < 2 {
		return core.NewConfigurationError("window_size", "must be at least 2")
	}
	if c.Epsilon <= 0 {
		return core.NewConfigurationError("epsilon", "must be positive")
	}
	if len(c.LagDepths) == 0 {
		return core.NewConfigurationError("lag_depths", "at least one lag depth required")
	}
	for _, d := range c.LagDepths {
		if d < 1 {
			return core.NewConfigurationError("lag_depths", fmt.Sprintf("lag depth %d is not positive", d))
		}
	}
	if len(c.Roster) == 0 {
		return core.ErrEmptyRoster
	}
	seen := make(map[string]bool, len(c.Roster))
	for _, entry := range c.Roster {
		if entry.Name == "" {
			return core.NewConfigurationError("model_roster", "entry with empty algorithm name")
		}
		if seen[entry.Name] {
			return core.NewConfigurationError("model_roster", "duplicate algorithm "+entry.Name)
		}
		seen[entry.Name] = true
	}
	if !(c.SplitYears.TrainEnd < c.SplitYears.ValidationEnd && c.SplitYears.ValidationEnd < c.SplitYears.TestEnd) {
		return core.ErrSplitOrdering
	}
	if c.ImputeNeighbors < 1 {
		return core.NewConfigurationError("impute_neighbors", "must be at least 1")
	}
	if c.MaxConcurrentCost < 1 {
		return core.NewConfigurationError("max_concurrent_cost", "must be at least 1")
	}
	for _, s := range c.ShockPeriods {
		if !s.Years.Valid() {
			return core.NewConfigurationError("shock_periods", "invalid year range for "+s.Name)
		}
	}
	return nil
}

// SplitPlan materializes the year ranges given the earliest engineered year
func (c PipelineConfig) SplitPlan(dataStart core.Year) split.Plan {
	return split.Plan{
		TrainYears:      core.YearRange{Start: dataStart, End: c.SplitYears.TrainEnd},
		ValidationYears: core.YearRange{Start: c.SplitYears.TrainEnd + 1, End: c.SplitYears.ValidationEnd},
		TestYears:       core.YearRange{Start: c.SplitYears.ValidationEnd + 1, End: c.SplitYears.TestEnd},
	}
}

// Fingerprint builds a deterministic hash of the analytical configuration
// so reports can prove which settings produced them.
func (c PipelineConfig) Fingerprint() core.ConfigHash {
	fields := map[string]interface{}{
		"window_size":      c.WindowSize,
		"lag_depths":       c.LagDepths,
		"epsilon":          c.Epsilon,
		"split_years":      c.SplitYears,
		"impute_neighbors": c.ImputeNeighbors,
		"seed":             c.Seed,
	}
	for _, s := range c.ShockPeriods {
		fields["shock_"+s.Name] = s.Years
	}
	for _, r := range c.Roster {
		fields["roster_"+r.Name] = r.Grid
	}
	return core.ComputeConfigHash(fields)
}
