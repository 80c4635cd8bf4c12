// Package app wires the pipeline stages into one run: ingest, quality gate,
// feature derivation, chronological split, preprocessing, the model bank,
// evaluation, and artifact persistence.
package app

import (
	"context"
	"fmt"
	"time"

	"stabcast/domain/core"
	"stabcast/domain/feature"
	"stabcast/domain/model"
	"stabcast/domain/panel"
	"stabcast/domain/split"
	"stabcast/internal"
	"stabcast/internal/config"
	"stabcast/internal/evaluate"
	featureeng "stabcast/internal/feature"
	"stabcast/internal/modelbank"
	"stabcast/internal/modelbank/regressors"
	panelstore "stabcast/internal/panel"
	"stabcast/internal/preprocess"
	splitter "stabcast/internal/split"
	"stabcast/ports"
)

// PipelineService runs the full experiment. Construction validates the
// configuration; Run is then deterministic for a fixed config and input.
type PipelineService struct {
	cfg       config.PipelineConfig
	source    ports.PanelSource
	artifacts ports.ArtifactStore
	log       *internal.Logger
}

func NewPipelineService(cfg config.PipelineConfig, source ports.PanelSource, artifacts ports.ArtifactStore, log *internal.Logger) (*PipelineService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, core.NewConfigurationError("panel source", "not set")
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &PipelineService{cfg: cfg, source: source, artifacts: artifacts, log: log}, nil
}

// Run executes one end-to-end pipeline pass and persists the artifacts.
// Fatal errors (bad input data, bad configuration) abort the run; country
// and model failures are isolated into report exclusions.
func (s *PipelineService) Run(ctx context.Context) (*model.EvaluationReport, error) {
	runID := core.RunID(core.NewID())
	started := time.Now()
	s.log.Info("pipeline run %s starting", runID)

	store, err := panelstore.NewStore(ctx, s.source)
	if err != nil {
		return nil, err
	}
	s.log.Info("panel loaded: %d observations, %d countries", store.Len(), len(store.Countries()))

	series, exclusions := s.applyQualityGate(store)

	engine := featureeng.NewEngine(s.cfg)
	derived, err := engine.Derive(series)
	if err != nil {
		return nil, err
	}
	for _, ex := range derived.Excluded {
		exclusions = append(exclusions, model.Exclusion{
			Kind:   model.ExcludedCountry,
			Unit:   string(ex.Country),
			Reason: ex.Reason,
		})
	}
	if len(derived.Records) == 0 {
		return nil, fmt.Errorf("%w: no country produced engineered records", core.ErrFeatureDerivation)
	}

	matrix := feature.Assemble(derived.Records, derived.Columns)

	train, validation, test, err := s.partition(matrix)
	if err != nil {
		return nil, err
	}

	prep := preprocess.NewPreprocessor(s.cfg.ImputeNeighbors)
	trainX, err := prep.FitTransform(train.Data)
	if err != nil {
		return nil, err
	}
	valX := prep.Transform(validation.Data)
	testX := prep.Transform(test.Data)

	bank, err := modelbank.New(s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	trained, modelExclusions, err := bank.TrainAll(ctx, trainX, train.Target, valX, validation.Target)
	if err != nil {
		return nil, err
	}
	exclusions = append(exclusions, modelExclusions...)

	candidates := make([]evaluate.Candidate, len(trained))
	for i, t := range trained {
		candidates[i] = evaluate.Candidate{Algorithm: t.Algorithm, Regressor: t.Regressor}
	}
	evaluator := evaluate.NewEvaluator(s.log)
	report, err := evaluator.Report(runID, s.cfg.Fingerprint(), candidates,
		evaluate.Partition{X: trainX, Y: train.Target},
		evaluate.Partition{X: valX, Y: validation.Target},
		evaluate.Partition{X: testX, Y: test.Target},
		matrix.ColumnKeys(), exclusions)
	if err != nil {
		return nil, err
	}

	if s.artifacts != nil {
		if err := s.persist(ctx, runID, report, trained, prep, train.Fingerprint); err != nil {
			return nil, err
		}
	}

	s.log.Info("pipeline run %s finished in %s: top model %s", runID, time.Since(started).Round(time.Millisecond), report.TopModel)
	return report, nil
}

// applyQualityGate filters countries through the quality criteria and the
// optional focus-country list; with the gate disabled every series passes
// through untouched.
func (s *PipelineService) applyQualityGate(store *panelstore.Store) ([]panel.CountrySeries, []model.Exclusion) {
	series := store.Observations()
	if !s.cfg.Quality.Enabled && !s.cfg.Quality.FocusOnly {
		return series, nil
	}

	passing := func(core.CountryCode) bool { return true }
	if s.cfg.Quality.Enabled {
		lo, hi := store.YearBounds()
		report := panelstore.AssessQuality(store, core.YearRange{Start: lo, End: hi}, s.cfg.ShockPeriods, panelstore.QualityCriteria{
			MinYearCoverage:  s.cfg.Quality.MinYearCoverage,
			MinCompleteness:  s.cfg.Quality.MinCompleteness,
			MinShockCoverage: s.cfg.Quality.MinShockCoverage,
		})
		ok := make(map[core.CountryCode]bool)
		for _, c := range report.Passing() {
			ok[c] = true
		}
		passing = func(c core.CountryCode) bool { return ok[c] }
	}

	inFocus := func(core.CountryCode) bool { return true }
	if s.cfg.Quality.FocusOnly {
		focus := make(map[core.CountryCode]bool)
		for _, c := range panel.FocusCountries() {
			focus[c] = true
		}
		inFocus = func(c core.CountryCode) bool { return focus[c] }
	}

	var kept []panel.CountrySeries
	var exclusions []model.Exclusion
	for _, sr := range series {
		reason := ""
		switch {
		case !inFocus(sr.Country):
			reason = "outside the focus country list"
		case !passing(sr.Country):
			reason = "failed data quality criteria"
		}
		if reason == "" {
			kept = append(kept, sr)
			continue
		}
		s.log.Warn("quality gate excluding %s: %s", sr.Country, reason)
		exclusions = append(exclusions, model.Exclusion{
			Kind:   model.ExcludedCountry,
			Unit:   string(sr.Country),
			Reason: reason,
		})
	}
	return kept, exclusions
}

// partition splits the assembled matrix chronologically. Empty partitions
// are fatal: a comparison with no validation or test rows proves nothing.
func (s *PipelineService) partition(matrix *feature.Matrix) (train, validation, test *feature.Matrix, err error) {
	dataStart := matrix.Years[0]
	for _, y := range matrix.Years {
		if y < dataStart {
			dataStart = y
		}
	}

	sp, err := splitter.NewSplitter(s.cfg.SplitPlan(dataStart))
	if err != nil {
		return nil, nil, nil, err
	}
	result := sp.Partition(matrix)

	for _, label := range split.Labels() {
		if result.Counts[label] == 0 {
			return nil, nil, nil, core.NewConfigurationError("split_years", fmt.Sprintf("%s partition is empty", label))
		}
	}

	train = sp.Subset(matrix, result, split.Train)
	validation = sp.Subset(matrix, result, split.Validation)
	test = sp.Subset(matrix, result, split.Test)
	if err := splitter.VerifyChronology(train, test); err != nil {
		return nil, nil, nil, err
	}
	return train, validation, test, nil
}

// persist saves the report and one trained-model envelope per algorithm.
// Every envelope carries the fitted preprocessing transform so a reloaded
// model can score raw feature rows identically.
func (s *PipelineService) persist(ctx context.Context, runID core.RunID, report *model.EvaluationReport, trained []modelbank.Trained, prep *preprocess.Preprocessor, trainFingerprint core.MatrixHash) error {
	if err := s.artifacts.SaveReport(ctx, report); err != nil {
		return err
	}

	prepPayload, err := prep.Marshal()
	if err != nil {
		return err
	}
	for _, t := range trained {
		params, err := t.Regressor.Params()
		if err != nil {
			return err
		}
		envelope := &model.TrainedModel{
			ID:               core.ModelID(core.NewID()),
			RunID:            runID,
			Algorithm:        t.Algorithm,
			Hyperparams:      t.Hyperparams,
			Params:           params,
			Preprocess:       prepPayload,
			TrainFingerprint: trainFingerprint,
			TrainedAt:        time.Now().UTC(),
		}
		if err := s.artifacts.SaveModel(ctx, envelope); err != nil {
			return err
		}
	}
	return nil
}

// ReloadModel restores a persisted model and its preprocessing transform.
// The returned regressor predicts identically to the one trained in the
// original run.
func (s *PipelineService) ReloadModel(ctx context.Context, runID core.RunID, algorithm string) (ports.Regressor, *preprocess.Preprocessor, error) {
	if s.artifacts == nil {
		return nil, nil, core.NewConfigurationError("artifact store", "not set")
	}
	envelope, err := s.artifacts.LoadModel(ctx, runID, algorithm)
	if err != nil {
		return nil, nil, err
	}

	reg, err := regressors.New(envelope.Algorithm, envelope.Hyperparams)
	if err != nil {
		return nil, nil, err
	}
	if err := reg.LoadParams(envelope.Params); err != nil {
		return nil, nil, err
	}
	prep, err := preprocess.UnmarshalPreprocessor(envelope.Preprocess)
	if err != nil {
		return nil, nil, err
	}
	return reg, prep, nil
}
