package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
)

// GradientBoosting fits shallow trees to residuals with a shrinkage factor.
// Squared-error loss, so each stage's pseudo-residual is just y - F(x).
type GradientBoosting struct {
	NumTrees     int     `json:"num_trees"`
	MaxDepth     int     `json:"max_depth"`
	MinLeaf      int     `json:"min_leaf"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`
	Init         float64 `json:"init"`
	Trees        []*cart `json:"trees,omitempty"`
}

func NewGradientBoosting(h map[string]float64) *GradientBoosting {
	return &GradientBoosting{
		NumTrees:     int(hp(h, "num_trees", 100)),
		MaxDepth:     int(hp(h, "max_depth", 3)),
		MinLeaf:      int(hp(h, "min_leaf", 2)),
		LearningRate: hp(h, "learning_rate", 0.1),
		Seed:         int64(hp(h, "seed", 42)),
	}
}

func (g *GradientBoosting) Name() string { return NameGradientBoosting }

func (g *GradientBoosting) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", len(x), len(y))
	}

	rng := rand.New(rand.NewSource(g.Seed))

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	g.Init = sum / float64(len(y))

	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = i
	}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.Init
	}
	residual := make([]float64, len(y))

	g.Trees = make([]*cart, 0, g.NumTrees)
	for m := 0; m < g.NumTrees; m++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree, err := growTree(ctx, x, residual, sample, treeOptions{
			maxDepth: g.MaxDepth,
			minLeaf:  g.MinLeaf,
			rng:      rng,
		})
		if err != nil {
			return err
		}
		g.Trees = append(g.Trees, tree)
		for i, row := range x {
			pred[i] += g.LearningRate * tree.predictOne(row)
		}
	}
	return nil
}

func (g *GradientBoosting) Predict(x [][]float64) ([]float64, error) {
	if len(g.Trees) == 0 {
		return nil, fmt.Errorf("%s: predict before fit", g.Name())
	}
	out := make([]float64, len(x))
	for i, row := range x {
		f := g.Init
		for _, t := range g.Trees {
			f += g.LearningRate * t.predictOne(row)
		}
		out[i] = f
	}
	return out, nil
}

func (g *GradientBoosting) Importances() ([]float64, bool) {
	if len(g.Trees) == 0 {
		return nil, false
	}
	sums := make([]float64, len(g.Trees[0].ImportanceSums))
	for _, t := range g.Trees {
		for j, v := range t.ImportanceSums {
			sums[j] += v
		}
	}
	return normalizeImportances(sums)
}

func (g *GradientBoosting) Params() (json.RawMessage, error) { return json.Marshal(g) }

func (g *GradientBoosting) LoadParams(raw json.RawMessage) error {
	return json.Unmarshal(raw, g)
}
