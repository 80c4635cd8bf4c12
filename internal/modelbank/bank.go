// Package modelbank trains the configured algorithm roster concurrently and
// selects hyperparameters by validation score. Test rows never reach this
// package; the evaluator alone touches them.
package modelbank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"stabcast/domain/core"
	"stabcast/domain/model"
	"stabcast/internal"
	"stabcast/internal/config"
	"stabcast/internal/evaluate"
	"stabcast/internal/modelbank/regressors"
	"stabcast/ports"
)

// Trained is one roster algorithm after grid search: the winning regressor,
// its hyperparameters, and the validation score that selected them.
type Trained struct {
	Algorithm    string
	Regressor    ports.Regressor
	Hyperparams  map[string]float64
	ValidationR2 float64
}

// Bank coordinates training across the roster with a weighted semaphore so
// heavy ensembles don't all fit at once.
type Bank struct {
	cfg config.PipelineConfig
	log *internal.Logger
}

// New validates the roster against the registry before any training starts
func New(cfg config.PipelineConfig, log *internal.Logger) (*Bank, error) {
	if len(cfg.Roster) == 0 {
		return nil, core.ErrEmptyRoster
	}
	for _, entry := range cfg.Roster {
		if !regressors.Known(entry.Name) {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownAlgorithm, entry.Name)
		}
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Bank{cfg: cfg, log: log}, nil
}

// TrainAll fits every roster algorithm on the train partition, selecting
// hyperparameters by validation R2. Algorithms run concurrently; a failing
// algorithm becomes an exclusion, never an aborted run. The returned slice
// follows roster order. An error is returned only when configuration is bad
// or every single algorithm failed.
func (b *Bank) TrainAll(ctx context.Context, trainX [][]float64, trainY []float64, valX [][]float64, valY []float64) ([]Trained, []model.Exclusion, error) {
	if len(trainX) == 0 {
		return nil, nil, core.NewConfigurationError("train partition", "no rows to train on")
	}
	if len(valX) == 0 {
		return nil, nil, core.NewConfigurationError("validation partition", "no rows to score on")
	}

	sem := semaphore.NewWeighted(b.cfg.MaxConcurrentCost)

	// private result slot per roster entry; no shared mutable state
	type slot struct {
		trained *Trained
		err     error
	}
	slots := make([]slot, len(b.cfg.Roster))

	var wg sync.WaitGroup
	for i, entry := range b.cfg.Roster {
		wg.Add(1)
		go func(i int, entry config.RosterEntry) {
			defer wg.Done()

			cost := regressors.Cost(entry.Name)
			if cost > b.cfg.MaxConcurrentCost {
				cost = b.cfg.MaxConcurrentCost
			}
			if err := sem.Acquire(ctx, cost); err != nil {
				slots[i].err = core.NewTrainingError(entry.Name, err)
				return
			}
			defer sem.Release(cost)

			trained, err := b.trainOne(ctx, entry, trainX, trainY, valX, valY)
			if err != nil {
				slots[i].err = err
				return
			}
			slots[i].trained = trained
		}(i, entry)
	}
	wg.Wait()

	var results []Trained
	var exclusions []model.Exclusion
	for i, entry := range b.cfg.Roster {
		if slots[i].err != nil {
			b.log.Warn("excluding %s from run: %v", entry.Name, slots[i].err)
			exclusions = append(exclusions, model.Exclusion{
				Kind:   model.ExcludedModel,
				Unit:   entry.Name,
				Reason: slots[i].err.Error(),
			})
			continue
		}
		results = append(results, *slots[i].trained)
	}

	if len(results) == 0 {
		return nil, exclusions, fmt.Errorf("%w: all %d roster algorithms failed", core.ErrModelTraining, len(b.cfg.Roster))
	}
	return results, exclusions, nil
}

// trainOne runs the hyperparameter grid for a single algorithm under the
// per-model training budget. Every candidate fits on train rows only and is
// scored on validation; the best candidate's fitted regressor is returned
// as-is, no refit.
func (b *Bank) trainOne(ctx context.Context, entry config.RosterEntry, trainX [][]float64, trainY []float64, valX [][]float64, valY []float64) (*Trained, error) {
	modelCtx, cancel := context.WithTimeout(ctx, b.cfg.ModelTimeout.Duration())
	defer cancel()

	var best *Trained
	var lastErr error

	for _, combo := range expandGrid(entry.Grid) {
		if combo == nil {
			combo = map[string]float64{}
		}
		if _, ok := combo["seed"]; !ok {
			combo["seed"] = float64(b.cfg.Seed)
		}

		reg, err := regressors.New(entry.Name, combo)
		if err != nil {
			return nil, err
		}
		if err := reg.Fit(modelCtx, trainX, trainY); err != nil {
			if modelCtx.Err() != nil {
				lastErr = fmt.Errorf("%w: %s", core.ErrTrainingBudget, entry.Name)
				break
			}
			lastErr = core.NewTrainingError(entry.Name, err)
			continue
		}
		pred, err := reg.Predict(valX)
		if err != nil {
			lastErr = core.NewTrainingError(entry.Name, err)
			continue
		}
		r2 := evaluate.RSquared(valY, pred)
		if math.IsNaN(r2) || math.IsInf(r2, 0) {
			lastErr = fmt.Errorf("%w: %s produced a non-finite validation score", core.ErrDiverged, entry.Name)
			continue
		}

		b.log.Debug("%s candidate %v scored validation r2=%.4f", entry.Name, combo, r2)
		if best == nil || r2 > best.ValidationR2 {
			best = &Trained{
				Algorithm:    entry.Name,
				Regressor:    reg,
				Hyperparams:  combo,
				ValidationR2: r2,
			}
		}
	}

	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, core.NewTrainingError(entry.Name, fmt.Errorf("empty hyperparameter grid"))
	}
	b.log.Info("trained %s: validation r2=%.4f with %v", entry.Name, best.ValidationR2, best.Hyperparams)
	return best, nil
}

// expandGrid enumerates the cartesian product of the grid in a deterministic
// order (sorted keys, values in listed order). A nil or empty grid yields a
// single empty combination so gridless algorithms still train once.
func expandGrid(grid map[string][]float64) []map[string]float64 {
	if len(grid) == 0 {
		return []map[string]float64{{}}
	}

	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]float64{{}}
	for _, k := range keys {
		values := grid[k]
		if len(values) == 0 {
			continue
		}
		next := make([]map[string]float64, 0, len(combos)*len(values))
		for _, base := range combos {
			for _, v := range values {
				combo := make(map[string]float64, len(base)+1)
				for bk, bv := range base {
					combo[bk] = bv
				}
				combo[k] = v
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}
