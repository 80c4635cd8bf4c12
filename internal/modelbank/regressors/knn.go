package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// KNN predicts the mean target of the k nearest train rows (Euclidean
// distance over the preprocessed feature space).
type KNN struct {
	K      int         `json:"k"`
	TrainX [][]float64 `json:"train_x"`
	TrainY []float64   `json:"train_y"`
	fitted bool
}

// NewKNN creates a k-nearest-neighbors regressor; k defaults to 5
func NewKNN(h map[string]float64) *KNN {
	return &KNN{K: int(hp(h, "k", 5))}
}

func (k *KNN) Name() string { return NameKNN }

func (k *KNN) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", len(x), len(y))
	}
	if k.K < 1 {
		return fmt.Errorf("k must be at least 1, got %d", k.K)
	}

	k.TrainX = make([][]float64, len(x))
	for i, row := range x {
		k.TrainX[i] = append([]float64(nil), row...)
	}
	k.TrainY = append([]float64(nil), y...)
	k.fitted = true
	return nil
}

func (k *KNN) Predict(x [][]float64) ([]float64, error) {
	if !k.fitted {
		return nil, fmt.Errorf("%s: predict before fit", k.Name())
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = k.predictOne(row)
	}
	return out, nil
}

type neighbor struct {
	index int
	dist  float64
}

func (k *KNN) predictOne(row []float64) float64 {
	neighbors := make([]neighbor, len(k.TrainX))
	for i, train := range k.TrainX {
		sum := 0.0
		for j := range row {
			d := row[j] - train[j]
			sum += d * d
		}
		neighbors[i] = neighbor{index: i, dist: math.Sqrt(sum)}
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].index < neighbors[b].index
	})

	kk := k.K
	if kk > len(neighbors) {
		kk = len(neighbors)
	}
	sum := 0.0
	for _, n := range neighbors[:kk] {
		sum += k.TrainY[n.index]
	}
	return sum / float64(kk)
}

// Importances: instance-based models expose no contribution scores
func (k *KNN) Importances() ([]float64, bool) { return nil, false }

func (k *KNN) Params() (json.RawMessage, error) {
	return json.Marshal(k)
}

func (k *KNN) LoadParams(raw json.RawMessage) error {
	if err := json.Unmarshal(raw, k); err != nil {
		return err
	}
	k.fitted = true
	return nil
}
