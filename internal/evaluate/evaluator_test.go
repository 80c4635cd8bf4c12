package evaluate

import (
	"context"
	"math"
	"testing"

	"stabcast/domain/core"
	"stabcast/domain/model"
	"stabcast/internal/modelbank/regressors"
)

func TestRSquaredPerfectFit(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	if r2 := RSquared(actual, actual); r2 != 1 {
		t.Errorf("perfect fit r2 = %v, want 1", r2)
	}
}

func TestRSquaredMeanPredictionIsZero(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	pred := []float64{2.5, 2.5, 2.5, 2.5}
	if r2 := RSquared(actual, pred); math.Abs(r2) > 1e-12 {
		t.Errorf("mean prediction r2 = %v, want 0", r2)
	}
}

func TestRSquaredWorseThanMeanGoesNegative(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	pred := []float64{4, 3, 2, 1}
	if r2 := RSquared(actual, pred); r2 >= 0 {
		t.Errorf("anti-correlated prediction r2 = %v, want negative", r2)
	}
}

func TestRSquaredDegenerateTarget(t *testing.T) {
	actual := []float64{5, 5, 5}
	pred := []float64{4, 5, 6}
	if r2 := RSquared(actual, pred); r2 != 0 {
		t.Errorf("zero-variance target r2 = %v, want 0", r2)
	}
}

func TestMAE(t *testing.T) {
	actual := []float64{1, 2, 3}
	pred := []float64{2, 2, 5}
	if got := MAE(actual, pred); got != 1 {
		t.Errorf("MAE = %v, want 1", got)
	}
}

func TestRankingOrder(t *testing.T) {
	models := []model.Evaluation{
		{Algorithm: "b", Train: model.Metrics{R2: 0.9}, Test: model.Metrics{R2: 0.5}},
		{Algorithm: "a", Train: model.Metrics{R2: 0.9}, Test: model.Metrics{R2: 0.8}},
		{Algorithm: "c", Train: model.Metrics{R2: 0.9}, Test: model.Metrics{R2: 0.8}, Validation: model.Metrics{R2: 0.9}},
	}
	rankModels(models)

	// c beats a on validation at equal test score; b is last
	if models[0].Algorithm != "c" || models[1].Algorithm != "a" || models[2].Algorithm != "b" {
		t.Errorf("ranking order wrong: %s, %s, %s", models[0].Algorithm, models[1].Algorithm, models[2].Algorithm)
	}
}

func TestRankingNameTieBreak(t *testing.T) {
	models := []model.Evaluation{
		{Algorithm: "zeta"},
		{Algorithm: "alpha"},
	}
	rankModels(models)
	if models[0].Algorithm != "alpha" {
		t.Error("identical metrics must fall back to name ordering")
	}
}

func evalData(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i)
		x[i] = []float64{v, -v}
		y[i] = 3 + 2*v
	}
	return x, y
}

func TestReportBuildsRankingAndImportances(t *testing.T) {
	trainX, trainY := evalData(20)
	valX, valY := evalData(10)
	testX, testY := evalData(8)
	ctx := context.Background()

	ols := regressors.NewOLS()
	if err := ols.Fit(ctx, trainX, trainY); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	baseline := regressors.NewMeanBaseline()
	if err := baseline.Fit(ctx, trainX, trainY); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	columns := []core.FeatureKey{"up", "down"}
	ev := NewEvaluator(nil)
	report, err := ev.Report(
		core.RunID("run-1"), core.ConfigHash("cfg"),
		[]Candidate{
			{Algorithm: "mean_baseline", Regressor: baseline},
			{Algorithm: "ols", Regressor: ols},
		},
		Partition{X: trainX, Y: trainY},
		Partition{X: valX, Y: valY},
		Partition{X: testX, Y: testY},
		columns, nil,
	)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if report.TopModel != "ols" {
		t.Errorf("top model = %s, want ols over the baseline on a linear signal", report.TopModel)
	}
	if len(report.Ranking) != 2 || report.Ranking[0] != "ols" {
		t.Errorf("ranking = %v", report.Ranking)
	}

	olsEval := report.EvaluationFor("ols")
	if olsEval == nil {
		t.Fatal("missing ols evaluation")
	}
	if olsEval.Test.R2 < 0.999 {
		t.Errorf("ols test r2 = %v, want near-perfect on noiseless linear data", olsEval.Test.R2)
	}

	if !report.ImportancesAvailable {
		t.Fatal("ols exposes importances; report should carry them")
	}
	sum := 0.0
	for _, imp := range report.Importances {
		sum += imp.Score
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("importances sum = %v, want 1", sum)
	}
	if report.PartitionCounts["train"] != 20 || report.PartitionCounts["test"] != 8 {
		t.Errorf("partition counts wrong: %v", report.PartitionCounts)
	}
}

func TestReportCarriesExclusions(t *testing.T) {
	trainX, trainY := evalData(10)
	ctx := context.Background()

	baseline := regressors.NewMeanBaseline()
	if err := baseline.Fit(ctx, trainX, trainY); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	prior := []model.Exclusion{{Kind: model.ExcludedCountry, Unit: "ARG", Reason: "insufficient history"}}
	ev := NewEvaluator(nil)
	report, err := ev.Report(
		core.RunID("run-2"), core.ConfigHash("cfg"),
		[]Candidate{{Algorithm: "mean_baseline", Regressor: baseline}},
		Partition{X: trainX, Y: trainY},
		Partition{X: trainX, Y: trainY},
		Partition{X: trainX, Y: trainY},
		[]core.FeatureKey{"up", "down"}, prior,
	)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(report.Exclusions) != 1 || report.Exclusions[0].Unit != "ARG" {
		t.Errorf("prior exclusions not carried: %v", report.Exclusions)
	}
	if report.ImportancesAvailable {
		t.Error("baseline top model has no importances")
	}
}
