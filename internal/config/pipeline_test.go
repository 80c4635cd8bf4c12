package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stabcast/domain/core"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultPipelineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
	if len(cfg.Roster) != 10 {
		t.Errorf("default roster has %d entries, want 10", len(cfg.Roster))
	}
	if len(cfg.ShockPeriods) != 5 {
		t.Errorf("default shock calendar has %d periods, want 5", len(cfg.ShockPeriods))
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"window too small", func(c *PipelineConfig) { c.WindowSize = 1 }},
		{"non-positive epsilon", func(c *PipelineConfig) { c.Epsilon = 0 }},
		{"no lag depths", func(c *PipelineConfig) { c.LagDepths = nil }},
		{"negative lag depth", func(c *PipelineConfig) { c.LagDepths = []int{1, -2} }},
		{"empty roster", func(c *PipelineConfig) { c.Roster = nil }},
		{"duplicate roster entry", func(c *PipelineConfig) {
			c.Roster = []RosterEntry{{Name: "ols"}, {Name: "ols"}}
		}},
		{"split disorder", func(c *PipelineConfig) { c.SplitYears.ValidationEnd = 2005 }},
		{"bad impute neighbors", func(c *PipelineConfig) { c.ImputeNeighbors = 0 }},
		{"bad concurrency", func(c *PipelineConfig) { c.MaxConcurrentCost = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !core.IsConfigurationError(err) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

func TestLoadPipelineConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	content := `
window_size = 4
epsilon = 1e-5
model_timeout = "90s"

[split_years]
train_end = 2008
validation_end = 2015
test_end = 2022
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPipelineConfig(path)
	if err != nil {
		t.Fatalf("LoadPipelineConfig failed: %v", err)
	}
	if cfg.WindowSize != 4 {
		t.Errorf("window_size = %d, want 4", cfg.WindowSize)
	}
	if cfg.SplitYears.TrainEnd != 2008 || cfg.SplitYears.TestEnd != 2022 {
		t.Errorf("split years not overlaid: %+v", cfg.SplitYears)
	}
	if cfg.ModelTimeout.Duration() != 90*time.Second {
		t.Errorf("model_timeout = %v, want 90s", cfg.ModelTimeout.Duration())
	}
	// untouched fields keep defaults
	if cfg.ImputeNeighbors != 5 {
		t.Errorf("impute_neighbors = %d, want default 5", cfg.ImputeNeighbors)
	}
	if len(cfg.Roster) != 10 {
		t.Errorf("roster should keep defaults, got %d entries", len(cfg.Roster))
	}
}

func TestLoadPipelineConfigEmptyPath(t *testing.T) {
	cfg, err := LoadPipelineConfig("")
	if err != nil {
		t.Fatalf("empty path should yield defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestSplitPlanFromBoundaries(t *testing.T) {
	cfg := DefaultPipelineConfig()
	plan := cfg.SplitPlan(1992)

	if plan.TrainYears.Start != 1992 || plan.TrainYears.End != 2010 {
		t.Errorf("train range = %v", plan.TrainYears)
	}
	if plan.ValidationYears.Start != 2011 || plan.ValidationYears.End != 2016 {
		t.Errorf("validation range = %v", plan.ValidationYears)
	}
	if plan.TestYears.Start != 2017 || plan.TestYears.End != 2023 {
		t.Errorf("test range = %v", plan.TestYears)
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("derived plan must validate: %v", err)
	}
}

func TestFingerprintStability(t *testing.T) {
	a := DefaultPipelineConfig()
	b := DefaultPipelineConfig()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical configurations must fingerprint identically")
	}

	b.WindowSize = 4
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("changed window size must change the fingerprint")
	}

	c := DefaultPipelineConfig()
	c.Seed = 7
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("changed seed must change the fingerprint")
	}
}

func TestSplitOrderingError(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.SplitYears = SplitYears{TrainEnd: 2016, ValidationEnd: 2010, TestEnd: 2023}
	err := cfg.Validate()
	if !errors.Is(err, core.ErrSplitOrdering) {
		t.Errorf("expected ErrSplitOrdering, got %v", err)
	}
}
