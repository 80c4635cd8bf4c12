package preprocess

import (
	"encoding/json"
)

// Preprocessor chains imputation and scaling. The API is deliberately
// narrow: a single Fit restricted to the train matrix, then Transform
// applied to every partition. There is no way to refit from non-train rows,
// which makes the no-leakage invariant structurally impossible to violate
// rather than a convention to remember.
type Preprocessor struct {
	Imputer *KNNImputer   `json:"imputer"`
	Scaler  *RobustScaler `json:"scaler"`
}

// NewPreprocessor creates an unfitted preprocessing stage
func NewPreprocessor(imputeNeighbors int) *Preprocessor {
	return &Preprocessor{
		Imputer: NewKNNImputer(imputeNeighbors),
		Scaler:  NewRobustScaler(),
	}
}

// Fit derives all statistics from the train matrix alone: imputer donors and
// medians first, then scaler centers and spreads over the imputed train rows.
func (p *Preprocessor) Fit(train [][]float64) error {
	if err := p.Imputer.Fit(train); err != nil {
		return err
	}
	imputed := p.Imputer.Transform(train)
	return p.Scaler.Fit(imputed)
}

// Transform imputes then scales a copy of the input rows
func (p *Preprocessor) Transform(x [][]float64) [][]float64 {
	return p.Scaler.Transform(p.Imputer.Transform(x))
}

// FitTransform fits on the train matrix and returns its transformed rows
func (p *Preprocessor) FitTransform(train [][]float64) ([][]float64, error) {
	if err := p.Fit(train); err != nil {
		return nil, err
	}
	return p.Transform(train), nil
}

// Marshal serializes the fitted stage for the trained-model envelope
func (p *Preprocessor) Marshal() (json.RawMessage, error) {
	return json.Marshal(p)
}

// UnmarshalPreprocessor restores a fitted stage from an envelope payload
func UnmarshalPreprocessor(raw json.RawMessage) (*Preprocessor, error) {
	var p Preprocessor
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
