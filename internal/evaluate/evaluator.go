// Package evaluate scores trained regressors across the chronological
// partitions and assembles the run's evaluation report.
package evaluate

import (
	"fmt"
	"sort"
	"time"

	"stabcast/domain/core"
	"stabcast/domain/model"
	"stabcast/internal"
	"stabcast/ports"
)

// Candidate pairs an algorithm name with its fitted regressor. The evaluator
// depends only on the predict capability, not on how training was organized.
type Candidate struct {
	Algorithm string
	Regressor ports.Regressor
}

// Partition is one split's preprocessed design matrix and targets
type Partition struct {
	X [][]float64
	Y []float64
}

// Evaluator scores candidates and ranks them. Test rows are seen here for
// the first and only time in the pipeline.
type Evaluator struct {
	log *internal.Logger
}

func NewEvaluator(log *internal.Logger) *Evaluator {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Evaluator{log: log}
}

// Report scores every candidate on all three partitions and builds the
// immutable run artifact. A candidate whose prediction fails becomes an
// exclusion; prior exclusions (countries, failed training) are carried into
// the report unchanged.
func (e *Evaluator) Report(runID core.RunID, fingerprint core.ConfigHash, candidates []Candidate, train, validation, test Partition, columns []core.FeatureKey, exclusions []model.Exclusion) (*model.EvaluationReport, error) {
	report := &model.EvaluationReport{
		RunID:             runID,
		CreatedAt:         time.Now().UTC(),
		ConfigFingerprint: fingerprint,
		Exclusions:        append([]model.Exclusion(nil), exclusions...),
		PartitionCounts: map[string]int{
			"train":      len(train.Y),
			"validation": len(validation.Y),
			"test":       len(test.Y),
		},
	}

	scored := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		ev, err := e.scoreOne(c, train, validation, test)
		if err != nil {
			e.log.Warn("excluding %s from report: %v", c.Algorithm, err)
			report.Exclusions = append(report.Exclusions, model.Exclusion{
				Kind:   model.ExcludedModel,
				Unit:   c.Algorithm,
				Reason: err.Error(),
			})
			continue
		}
		report.Models = append(report.Models, ev)
		scored[c.Algorithm] = c
	}

	if len(report.Models) == 0 {
		return nil, fmt.Errorf("%w: no model could be evaluated", core.ErrModelTraining)
	}

	rankModels(report.Models)
	report.Ranking = make([]string, len(report.Models))
	for i, ev := range report.Models {
		report.Ranking[i] = ev.Algorithm
	}
	report.TopModel = report.Ranking[0]

	if top, ok := scored[report.TopModel]; ok {
		report.Importances, report.ImportancesAvailable = importancesFor(top, columns)
	}

	e.log.Info("evaluation complete: top model %s (test r2=%.4f)", report.TopModel, report.Models[0].Test.R2)
	return report, nil
}

func (e *Evaluator) scoreOne(c Candidate, train, validation, test Partition) (model.Evaluation, error) {
	ev := model.Evaluation{Algorithm: c.Algorithm}

	parts := []struct {
		data Partition
		dst  *model.Metrics
	}{
		{train, &ev.Train},
		{validation, &ev.Validation},
		{test, &ev.Test},
	}
	for _, p := range parts {
		pred, err := c.Regressor.Predict(p.data.X)
		if err != nil {
			return model.Evaluation{}, err
		}
		p.dst.R2 = RSquared(p.data.Y, pred)
		p.dst.MAE = MAE(p.data.Y, pred)
	}
	ev.OverfitGap = ev.Train.R2 - ev.Test.R2
	return ev, nil
}

// rankModels orders evaluations best-first: test R2, then validation R2,
// then the smaller overfit gap, then name for a stable total order.
func rankModels(models []model.Evaluation) {
	sort.Slice(models, func(i, j int) bool {
		a, b := models[i], models[j]
		if a.Test.R2 != b.Test.R2 {
			return a.Test.R2 > b.Test.R2
		}
		if a.Validation.R2 != b.Validation.R2 {
			return a.Validation.R2 > b.Validation.R2
		}
		if a.OverfitGap != b.OverfitGap {
			return a.OverfitGap < b.OverfitGap
		}
		return a.Algorithm < b.Algorithm
	})
}

// importancesFor maps the regressor's per-column scores onto feature names,
// normalized to sum to 1. Algorithms without importances (baseline, knn)
// report none rather than a fabricated attribution.
func importancesFor(c Candidate, columns []core.FeatureKey) ([]model.FeatureImportance, bool) {
	scores, ok := c.Regressor.Importances()
	if !ok || len(scores) != len(columns) {
		return nil, false
	}
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		return nil, false
	}
	out := make([]model.FeatureImportance, len(columns))
	for i, key := range columns {
		out[i] = model.FeatureImportance{Feature: key, Score: scores[i] / total}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out, true
}
