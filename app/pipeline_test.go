package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stabcast/adapters/fs"
	"stabcast/domain/core"
	"stabcast/internal/config"
	"stabcast/internal/testkit"
)

func testPipelineConfig() config.PipelineConfig {
	cfg := config.DefaultPipelineConfig()
	// small roster keeps the end-to-end test fast while still covering
	// baseline, a linear model, a grid search, and a tree ensemble
	cfg.Roster = []config.RosterEntry{
		{Name: "mean_baseline"},
		{Name: "ols"},
		{Name: "ridge", Grid: map[string][]float64{"alpha": {0.1, 1.0}}},
		{Name: "random_forest", Grid: map[string][]float64{"num_trees": {25}, "max_depth": {6}}},
	}
	cfg.ModelTimeout = config.Duration(time.Minute)
	return cfg
}

func TestPipelineEndToEnd(t *testing.T) {
	store, err := fs.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	service, err := NewPipelineService(testPipelineConfig(), testkit.StableVsVolatileSource(), store, nil)
	require.NoError(t, err)

	report, err := service.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, report.RunID)
	require.NotEmpty(t, report.ConfigFingerprint)
	require.Len(t, report.Ranking, 4)
	require.Contains(t, report.Ranking, "mean_baseline")
	require.Equal(t, report.Ranking[0], report.TopModel)

	// partitions follow the default 2010/2016/2023 boundaries over the
	// synthetic 1990-2023 panel
	require.Greater(t, report.PartitionCounts["train"], report.PartitionCounts["validation"])
	require.Greater(t, report.PartitionCounts["validation"], 0)
	require.Greater(t, report.PartitionCounts["test"], 0)

	for _, name := range report.Ranking {
		ev := report.EvaluationFor(name)
		require.NotNil(t, ev, "missing evaluation for %s", name)
		require.False(t, ev.Train.R2 != ev.Train.R2, "%s train r2 is NaN", name)
	}
}

func TestPipelinePersistsAndReloads(t *testing.T) {
	store, err := fs.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	service, err := NewPipelineService(testPipelineConfig(), testkit.StableVsVolatileSource(), store, nil)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := service.Run(ctx)
	require.NoError(t, err)

	loaded, err := store.LoadReport(ctx, report.RunID)
	require.NoError(t, err)
	require.Equal(t, report.TopModel, loaded.TopModel)
	require.Equal(t, report.Ranking, loaded.Ranking)
	require.Equal(t, report.ConfigFingerprint, loaded.ConfigFingerprint)

	reg, prep, err := service.ReloadModel(ctx, report.RunID, "ols")
	require.NoError(t, err)
	require.NotNil(t, prep)

	// a reloaded model scores raw-shaped rows without refitting
	rows := prep.Transform([][]float64{make([]float64, 27)})
	pred, err := reg.Predict(rows)
	require.NoError(t, err)
	require.Len(t, pred, 1)
}

func TestPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.SplitYears.ValidationEnd = 2005 // behind train end

	_, err := NewPipelineService(cfg, testkit.StableVsVolatileSource(), nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrSplitOrdering)
}

func TestPipelineQualityGate(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.Quality.Enabled = true
	cfg.Quality.MinYearCoverage = 0.9
	cfg.Quality.MinCompleteness = 0.0
	cfg.Quality.MinShockCoverage = 0

	// one country with a heavily truncated series fails year coverage
	gen := testkit.DefaultGeneratorConfig()
	source := testkit.NewGenerator(gen)

	service, err := NewPipelineService(cfg, source, nil, nil)
	require.NoError(t, err)

	report, err := service.Run(context.Background())
	require.NoError(t, err)
	// full synthetic series all pass the gate
	for _, ex := range report.Exclusions {
		require.NotEqual(t, "country", string(ex.Kind), "no country should fail the gate: %+v", ex)
	}
}

func TestPipelineFocusCountryFilter(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.Quality.FocusOnly = true

	gen := testkit.DefaultGeneratorConfig()
	gen.Profiles = []testkit.CountryProfile{
		{Country: "USA", GrowthMean: 2.5, GrowthStd: 0.3},
		{Country: "DEU", GrowthMean: 2.0, GrowthStd: 0.8},
		{Country: "BRA", GrowthMean: 3.0, GrowthStd: 2.0},
		{Country: "XKX", GrowthMean: 3.0, GrowthStd: 1.0}, // not on the focus list
	}
	service, err := NewPipelineService(cfg, testkit.NewGenerator(gen), nil, nil)
	require.NoError(t, err)

	report, err := service.Run(context.Background())
	require.NoError(t, err)

	excluded := make(map[string]string)
	for _, ex := range report.Exclusions {
		excluded[ex.Unit] = ex.Reason
	}
	require.Contains(t, excluded, "XKX")
	require.Equal(t, "outside the focus country list", excluded["XKX"])
	require.NotContains(t, excluded, "USA")
}
