package regressors

import (
	"context"
	"encoding/json"
	"fmt"
)

// MeanBaseline predicts the train-set target mean for every input. It anchors
// the roster: any model ranking below it has learned nothing.
type MeanBaseline struct {
	Mean   float64 `json:"mean"`
	fitted bool
}

// NewMeanBaseline creates an unfitted baseline
func NewMeanBaseline() *MeanBaseline {
	return &MeanBaseline{}
}

func (m *MeanBaseline) Name() string { return NameMeanBaseline }

func (m *MeanBaseline) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(y) == 0 {
		return fmt.Errorf("empty training set")
	}
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	m.Mean = sum / float64(len(y))
	m.fitted = true
	return nil
}

func (m *MeanBaseline) Predict(x [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("%s: predict before fit", m.Name())
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = m.Mean
	}
	return out, nil
}

// Importances are meaningless for a constant predictor
func (m *MeanBaseline) Importances() ([]float64, bool) { return nil, false }

func (m *MeanBaseline) Params() (json.RawMessage, error) {
	return json.Marshal(m)
}

func (m *MeanBaseline) LoadParams(raw json.RawMessage) error {
	if err := json.Unmarshal(raw, m); err != nil {
		return err
	}
	m.fitted = true
	return nil
}
