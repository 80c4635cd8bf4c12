package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// coordinateDescent fits an elastic-net penalized linear model:
// minimize 0.5/n * ||y - Xb||^2 + alpha * (l1Ratio*||b||_1 + 0.5*(1-l1Ratio)*||b||_2^2)
// The intercept is the target mean over centered data and is unpenalized.
// Checks ctx between sweeps so an expired training budget stops the solver.
func coordinateDescent(ctx context.Context, x [][]float64, y []float64, alpha, l1Ratio float64, maxIter int, tol float64) (*linearModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("invalid training shape: %d rows, %d targets", n, len(y))
	}
	p := len(x[0])

	// center target; features arrive scaled from preprocessing
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - yMean
	}

	// per-feature squared norms
	sqNorm := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			sqNorm[j] += x[i][j] * x[i][j]
		}
	}

	coef := make([]float64, p)
	l1 := alpha * l1Ratio * float64(n)
	l2 := alpha * (1 - l1Ratio) * float64(n)

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if sqNorm[j] == 0 {
				continue
			}
			// partial residual correlation with feature j
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += x[i][j] * (resid[i] + coef[j]*x[i][j])
			}
			updated := softThreshold(rho, l1) / (sqNorm[j] + l2)
			if delta := updated - coef[j]; delta != 0 {
				for i := 0; i < n; i++ {
					resid[i] -= delta * x[i][j]
				}
				if math.Abs(delta) > maxDelta {
					maxDelta = math.Abs(delta)
				}
				coef[j] = updated
			}
		}
		if maxDelta < tol {
			break
		}
		if math.IsNaN(maxDelta) || math.IsInf(maxDelta, 0) {
			return nil, fmt.Errorf("coordinate descent diverged at iteration %d", iter)
		}
	}

	return &linearModel{Intercept: yMean, Coef: coef, fitted: true}, nil
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	}
	return 0
}

// Lasso is L1-regularized least squares fit by coordinate descent
type Lasso struct {
	linearModel
	Alpha   float64 `json:"alpha"`
	MaxIter int     `json:"max_iter"`
	Tol     float64 `json:"tol"`
}

// NewLasso creates a lasso regressor; alpha defaults to 0.1
func NewLasso(h map[string]float64) *Lasso {
	return &Lasso{
		Alpha:   hp(h, "alpha", 0.1),
		MaxIter: int(hp(h, "max_iter", 1000)),
		Tol:     hp(h, "tol", 1e-6),
	}
}

func (l *Lasso) Name() string { return NameLasso }

func (l *Lasso) Fit(ctx context.Context, x [][]float64, y []float64) error {
	fitted, err := coordinateDescent(ctx, x, y, l.Alpha, 1.0, l.MaxIter, l.Tol)
	if err != nil {
		return err
	}
	l.linearModel = *fitted
	return nil
}

func (l *Lasso) Predict(x [][]float64) ([]float64, error) { return l.predict(x) }

func (l *Lasso) Importances() ([]float64, bool) { return l.importances() }

type lassoParams struct {
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (l *Lasso) Params() (json.RawMessage, error) {
	return json.Marshal(lassoParams{Alpha: l.Alpha, Intercept: l.Intercept, Coef: l.Coef})
}

func (l *Lasso) LoadParams(raw json.RawMessage) error {
	var p lassoParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	l.Alpha = p.Alpha
	l.Intercept = p.Intercept
	l.Coef = p.Coef
	l.fitted = true
	return nil
}

// ElasticNet blends L1 and L2 penalties
type ElasticNet struct {
	linearModel
	Alpha   float64 `json:"alpha"`
	L1Ratio float64 `json:"l1_ratio"`
	MaxIter int     `json:"max_iter"`
	Tol     float64 `json:"tol"`
}

// NewElasticNet creates an elastic-net regressor; alpha 0.1, l1_ratio 0.5
func NewElasticNet(h map[string]float64) *ElasticNet {
	return &ElasticNet{
		Alpha:   hp(h, "alpha", 0.1),
		L1Ratio: hp(h, "l1_ratio", 0.5),
		MaxIter: int(hp(h, "max_iter", 1000)),
		Tol:     hp(h, "tol", 1e-6),
	}
}

func (e *ElasticNet) Name() string { return NameElasticNet }

func (e *ElasticNet) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if e.L1Ratio < 0 || e.L1Ratio > 1 {
		return fmt.Errorf("l1_ratio must be in [0,1], got %f", e.L1Ratio)
	}
	fitted, err := coordinateDescent(ctx, x, y, e.Alpha, e.L1Ratio, e.MaxIter, e.Tol)
	if err != nil {
		return err
	}
	e.linearModel = *fitted
	return nil
}

func (e *ElasticNet) Predict(x [][]float64) ([]float64, error) { return e.predict(x) }

func (e *ElasticNet) Importances() ([]float64, bool) { return e.importances() }

type elasticNetParams struct {
	Alpha     float64   `json:"alpha"`
	L1Ratio   float64   `json:"l1_ratio"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (e *ElasticNet) Params() (json.RawMessage, error) {
	return json.Marshal(elasticNetParams{Alpha: e.Alpha, L1Ratio: e.L1Ratio, Intercept: e.Intercept, Coef: e.Coef})
}

func (e *ElasticNet) LoadParams(raw json.RawMessage) error {
	var p elasticNetParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	e.Alpha = p.Alpha
	e.L1Ratio = p.L1Ratio
	e.Intercept = p.Intercept
	e.Coef = p.Coef
	e.fitted = true
	return nil
}
