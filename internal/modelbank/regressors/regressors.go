// Package regressors holds the closed set of roster algorithms. Every entry
// implements ports.Regressor, so the bank compares algorithms purely through
// the fit/predict capability; adding an algorithm means registering a
// factory here, never branching on type elsewhere.
package regressors

import (
	"fmt"

	"stabcast/domain/core"
	"stabcast/ports"
)

// Names of the built-in algorithms
const (
	NameMeanBaseline     = "mean_baseline"
	NameOLS              = "ols"
	NameRidge            = "ridge"
	NameLasso            = "lasso"
	NameElasticNet       = "elastic_net"
	NameKNN              = "knn"
	NameDecisionTree     = "decision_tree"
	NameRandomForest     = "random_forest"
	NameExtraTrees       = "extra_trees"
	NameGradientBoosting = "gradient_boosting"
)

// registry maps algorithm names to factories
var registry = map[string]ports.RegressorFactory{
	NameMeanBaseline:     func(h map[string]float64) (ports.Regressor, error) { return NewMeanBaseline(), nil },
	NameOLS:              func(h map[string]float64) (ports.Regressor, error) { return NewOLS(), nil },
	NameRidge:            func(h map[string]float64) (ports.Regressor, error) { return NewRidge(h), nil },
	NameLasso:            func(h map[string]float64) (ports.Regressor, error) { return NewLasso(h), nil },
	NameElasticNet:       func(h map[string]float64) (ports.Regressor, error) { return NewElasticNet(h), nil },
	NameKNN:              func(h map[string]float64) (ports.Regressor, error) { return NewKNN(h), nil },
	NameDecisionTree:     func(h map[string]float64) (ports.Regressor, error) { return NewDecisionTree(h), nil },
	NameRandomForest:     func(h map[string]float64) (ports.Regressor, error) { return NewRandomForest(h), nil },
	NameExtraTrees:       func(h map[string]float64) (ports.Regressor, error) { return NewExtraTrees(h), nil },
	NameGradientBoosting: func(h map[string]float64) (ports.Regressor, error) { return NewGradientBoosting(h), nil },
}

// trainingCost weights concurrent scheduling: heavier algorithms hold more
// of the bank's weighted semaphore while fitting.
var trainingCost = map[string]int64{
	NameMeanBaseline:     1,
	NameOLS:              1,
	NameRidge:            1,
	NameLasso:            2,
	NameElasticNet:       2,
	NameKNN:              1,
	NameDecisionTree:     2,
	NameRandomForest:     4,
	NameExtraTrees:       4,
	NameGradientBoosting: 4,
}

// New builds a fresh regressor for the named algorithm
func New(name string, hyperparams map[string]float64) (ports.Regressor, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownAlgorithm, name)
	}
	return factory(hyperparams)
}

// Known reports whether the algorithm name is registered
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Cost returns the scheduling weight for an algorithm (default 2)
func Cost(name string) int64 {
	if c, ok := trainingCost[name]; ok {
		return c
	}
	return 2
}

// hyperparameter lookup with default
func hp(h map[string]float64, key string, def float64) float64 {
	if h == nil {
		return def
	}
	if v, ok := h[key]; ok {
		return v
	}
	return def
}
