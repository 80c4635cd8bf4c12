package ports

import (
	"context"
	"encoding/json"
)

// Regressor is the polymorphic capability every roster algorithm implements.
// The "train many, pick best" comparison works entirely through this
// interface; a new algorithm joins the roster by implementing it, never by
// branching on type elsewhere.
//
// Fit must honor ctx cancellation: a model whose budget expires returns the
// context error and is excluded from ranking without affecting other models.
type Regressor interface {
	// Name returns the stable algorithm identifier used in rosters and reports
	Name() string

	// Fit trains on the preprocessed train matrix (rows x features)
	Fit(ctx context.Context, x [][]float64, y []float64) error

	// Predict returns one prediction per input row. Only valid after Fit
	// or a successful LoadParams.
	Predict(x [][]float64) ([]float64, error)

	// Importances returns per-feature relative contribution scores summing
	// to 1.0, or ok=false when the algorithm exposes no such scores.
	Importances() (scores []float64, ok bool)

	// Params serializes the fitted state; LoadParams restores it. A restored
	// regressor must predict identically to the original.
	Params() (json.RawMessage, error)
	LoadParams(raw json.RawMessage) error
}

// RegressorFactory builds a fresh regressor configured with the given
// hyperparameters. Grid search calls this once per candidate.
type RegressorFactory func(hyperparams map[string]float64) (Regressor, error)
