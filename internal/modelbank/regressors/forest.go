package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
)

// ensemble averages a bag of regression trees. RandomForest and ExtraTrees
// share it and differ only in how each tree samples rows and thresholds.
type ensemble struct {
	Trees []*cart `json:"trees"`
}

func (e *ensemble) predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		sum := 0.0
		for _, t := range e.Trees {
			sum += t.predictOne(row)
		}
		out[i] = sum / float64(len(e.Trees))
	}
	return out
}

func (e *ensemble) importances(p int) ([]float64, bool) {
	sums := make([]float64, p)
	for _, t := range e.Trees {
		for j, v := range t.ImportanceSums {
			sums[j] += v
		}
	}
	return normalizeImportances(sums)
}

// numFeatures returns the feature count the ensemble was fitted on.
func (e *ensemble) numFeatures() int {
	for _, t := range e.Trees {
		return len(t.ImportanceSums)
	}
	return 0
}

// defaultMtry is the regression convention of p/3, floored at 1.
func defaultMtry(p int) int {
	m := p / 3
	if m < 1 {
		m = 1
	}
	return m
}

// RandomForest bags bootstrap-sampled CART trees with per-split feature
// subsampling.
type RandomForest struct {
	NumTrees int       `json:"num_trees"`
	MaxDepth int       `json:"max_depth"`
	MinLeaf  int       `json:"min_leaf"`
	Mtry     int       `json:"mtry"`
	Seed     int64     `json:"seed"`
	Ensemble *ensemble `json:"ensemble,omitempty"`
}

func NewRandomForest(h map[string]float64) *RandomForest {
	return &RandomForest{
		NumTrees: int(hp(h, "num_trees", 100)),
		MaxDepth: int(hp(h, "max_depth", 8)),
		MinLeaf:  int(hp(h, "min_leaf", 2)),
		Mtry:     int(hp(h, "mtry", 0)),
		Seed:     int64(hp(h, "seed", 42)),
	}
}

func (f *RandomForest) Name() string { return NameRandomForest }

func (f *RandomForest) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", len(x), len(y))
	}
	rng := rand.New(rand.NewSource(f.Seed))
	mtry := f.Mtry
	if mtry <= 0 {
		mtry = defaultMtry(len(x[0]))
	}

	ens := &ensemble{Trees: make([]*cart, 0, f.NumTrees)}
	for b := 0; b < f.NumTrees; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}
		tree, err := growTree(ctx, x, y, sample, treeOptions{
			maxDepth: f.MaxDepth,
			minLeaf:  f.MinLeaf,
			mtry:     mtry,
			rng:      rng,
		})
		if err != nil {
			return err
		}
		ens.Trees = append(ens.Trees, tree)
	}
	f.Ensemble = ens
	return nil
}

func (f *RandomForest) Predict(x [][]float64) ([]float64, error) {
	if f.Ensemble == nil || len(f.Ensemble.Trees) == 0 {
		return nil, fmt.Errorf("%s: predict before fit", f.Name())
	}
	return f.Ensemble.predict(x), nil
}

func (f *RandomForest) Importances() ([]float64, bool) {
	if f.Ensemble == nil {
		return nil, false
	}
	return f.Ensemble.importances(f.Ensemble.numFeatures())
}

func (f *RandomForest) Params() (json.RawMessage, error) { return json.Marshal(f) }

func (f *RandomForest) LoadParams(raw json.RawMessage) error {
	return json.Unmarshal(raw, f)
}

// ExtraTrees grows the full sample with random split thresholds, trading a
// little bias for much lower variance per tree.
type ExtraTrees struct {
	NumTrees int       `json:"num_trees"`
	MaxDepth int       `json:"max_depth"`
	MinLeaf  int       `json:"min_leaf"`
	Mtry     int       `json:"mtry"`
	Seed     int64     `json:"seed"`
	Ensemble *ensemble `json:"ensemble,omitempty"`
}

func NewExtraTrees(h map[string]float64) *ExtraTrees {
	return &ExtraTrees{
		NumTrees: int(hp(h, "num_trees", 100)),
		MaxDepth: int(hp(h, "max_depth", 8)),
		MinLeaf:  int(hp(h, "min_leaf", 2)),
		Mtry:     int(hp(h, "mtry", 0)),
		Seed:     int64(hp(h, "seed", 42)),
	}
}

func (f *ExtraTrees) Name() string { return NameExtraTrees }

func (f *ExtraTrees) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", len(x), len(y))
	}
	rng := rand.New(rand.NewSource(f.Seed))
	mtry := f.Mtry
	if mtry <= 0 {
		mtry = defaultMtry(len(x[0]))
	}

	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = i
	}

	ens := &ensemble{Trees: make([]*cart, 0, f.NumTrees)}
	for b := 0; b < f.NumTrees; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tree, err := growTree(ctx, x, y, sample, treeOptions{
			maxDepth:        f.MaxDepth,
			minLeaf:         f.MinLeaf,
			mtry:            mtry,
			randomThreshold: true,
			rng:             rng,
		})
		if err != nil {
			return err
		}
		ens.Trees = append(ens.Trees, tree)
	}
	f.Ensemble = ens
	return nil
}

func (f *ExtraTrees) Predict(x [][]float64) ([]float64, error) {
	if f.Ensemble == nil || len(f.Ensemble.Trees) == 0 {
		return nil, fmt.Errorf("%s: predict before fit", f.Name())
	}
	return f.Ensemble.predict(x), nil
}

func (f *ExtraTrees) Importances() ([]float64, bool) {
	if f.Ensemble == nil {
		return nil, false
	}
	return f.Ensemble.importances(f.Ensemble.numFeatures())
}

func (f *ExtraTrees) Params() (json.RawMessage, error) { return json.Marshal(f) }

func (f *ExtraTrees) LoadParams(raw json.RawMessage) error {
	return json.Unmarshal(raw, f)
}
