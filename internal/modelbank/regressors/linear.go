package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// linearModel is the shared fitted state of the linear family: an intercept
// plus one coefficient per feature.
type linearModel struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	fitted    bool
}

func (m *linearModel) predict(x [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("predict before fit")
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("feature count mismatch: got %d, want %d", len(row), len(m.Coef))
		}
		v := m.Intercept
		for j, c := range m.Coef {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}

// importances are normalized absolute coefficients, intercept excluded
func (m *linearModel) importances() ([]float64, bool) {
	if !m.fitted {
		return nil, false
	}
	total := 0.0
	for _, c := range m.Coef {
		total += math.Abs(c)
	}
	if total == 0 {
		return nil, false
	}
	scores := make([]float64, len(m.Coef))
	for j, c := range m.Coef {
		scores[j] = math.Abs(c) / total
	}
	return scores, true
}

// solveRidge solves the L2-penalized normal equations
// (XtX + alpha*I) beta = Xty with an unpenalized intercept column.
func (m *linearModel) solveRidge(x [][]float64, y []float64, alpha float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", n, len(y))
	}
	p := len(x[0])

	// design matrix with leading ones column for the intercept
	design := mat.NewDense(n, p+1, nil)
	for i, row := range x {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	for j := 1; j <= p; j++ { // intercept stays unpenalized
		xtx.Set(j, j, xtx.At(j, j)+alpha)
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), target)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("normal equations are singular: %w", err)
	}

	m.Intercept = beta.AtVec(0)
	m.Coef = make([]float64, p)
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j + 1)
	}
	m.fitted = true
	return nil
}

// OLS is ordinary least squares
type OLS struct {
	linearModel
}

// NewOLS creates an unfitted OLS regressor
func NewOLS() *OLS {
	return &OLS{}
}

func (o *OLS) Name() string { return NameOLS }

func (o *OLS) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// tiny jitter keeps collinear economic indicators solvable
	return o.solveRidge(x, y, 1e-10)
}

func (o *OLS) Predict(x [][]float64) ([]float64, error) { return o.predict(x) }

func (o *OLS) Importances() ([]float64, bool) { return o.importances() }

func (o *OLS) Params() (json.RawMessage, error) { return json.Marshal(&o.linearModel) }

func (o *OLS) LoadParams(raw json.RawMessage) error {
	if err := json.Unmarshal(raw, &o.linearModel); err != nil {
		return err
	}
	o.fitted = true
	return nil
}

// Ridge is L2-regularized least squares
type Ridge struct {
	linearModel
	Alpha float64 `json:"alpha"`
}

// NewRidge creates a ridge regressor; hyperparameter alpha defaults to 1.0
func NewRidge(h map[string]float64) *Ridge {
	return &Ridge{Alpha: hp(h, "alpha", 1.0)}
}

func (r *Ridge) Name() string { return NameRidge }

func (r *Ridge) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Alpha < 0 {
		return fmt.Errorf("alpha must be non-negative, got %f", r.Alpha)
	}
	return r.solveRidge(x, y, r.Alpha)
}

func (r *Ridge) Predict(x [][]float64) ([]float64, error) { return r.predict(x) }

func (r *Ridge) Importances() ([]float64, bool) { return r.importances() }

type ridgeParams struct {
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (r *Ridge) Params() (json.RawMessage, error) {
	return json.Marshal(ridgeParams{Alpha: r.Alpha, Intercept: r.Intercept, Coef: r.Coef})
}

func (r *Ridge) LoadParams(raw json.RawMessage) error {
	var p ridgeParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	r.Alpha = p.Alpha
	r.Intercept = p.Intercept
	r.Coef = p.Coef
	r.fitted = true
	return nil
}
