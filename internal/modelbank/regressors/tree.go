package regressors

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a serialized regression tree. Feature == -1 marks
// a leaf; Left/Right index into the flat node array.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// cart is a fitted regression tree stored as a flat node array, which keeps
// it JSON-serializable and cheap to traverse.
type cart struct {
	Nodes          []treeNode `json:"nodes"`
	ImportanceSums []float64  `json:"importance_sums"` // impurity decrease per feature
}

func (t *cart) predictOne(row []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// treeOptions control how a tree is grown. mtry == 0 considers every
// feature at each split; randomThreshold switches from exhaustive best-split
// search to a single random cut per feature (extra-trees style).
type treeOptions struct {
	maxDepth        int
	minLeaf         int
	mtry            int
	randomThreshold bool
	rng             *rand.Rand
}

// growTree builds a variance-reduction regression tree over the sample rows
func growTree(ctx context.Context, x [][]float64, y []float64, sample []int, opts treeOptions) (*cart, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("empty sample")
	}
	p := len(x[0])
	t := &cart{ImportanceSums: make([]float64, p)}
	if err := t.grow(ctx, x, y, sample, 0, opts); err != nil {
		return nil, err
	}
	return t, nil
}

// grow appends a subtree for the sample and returns via t.Nodes; the root of
// the subtree is the node appended first.
func (t *cart) grow(ctx context.Context, x [][]float64, y []float64, sample []int, depth int, opts treeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mean, sse := meanSSE(y, sample)
	nodeIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: -1, Value: mean})

	if depth >= opts.maxDepth || len(sample) < 2*opts.minLeaf || sse == 0 {
		return nil
	}

	feat, threshold, gain, ok := t.bestSplit(x, y, sample, sse, opts)
	if !ok {
		return nil
	}

	var left, right []int
	for _, i := range sample {
		if x[i][feat] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < opts.minLeaf || len(right) < opts.minLeaf {
		return nil
	}

	t.ImportanceSums[feat] += gain

	t.Nodes[nodeIdx].Feature = feat
	t.Nodes[nodeIdx].Threshold = threshold
	t.Nodes[nodeIdx].Left = len(t.Nodes)
	if err := t.grow(ctx, x, y, left, depth+1, opts); err != nil {
		return err
	}
	t.Nodes[nodeIdx].Right = len(t.Nodes)
	return t.grow(ctx, x, y, right, depth+1, opts)
}

// bestSplit scans candidate features for the split with the largest SSE
// reduction. With randomThreshold it evaluates one uniform random cut per
// feature instead of every boundary.
func (t *cart) bestSplit(x [][]float64, y []float64, sample []int, parentSSE float64, opts treeOptions) (int, float64, float64, bool) {
	p := len(x[0])
	features := candidateFeatures(p, opts)

	bestGain := 0.0
	bestFeat := -1
	bestThreshold := 0.0

	for _, j := range features {
		if opts.randomThreshold {
			lo, hi := featureRange(x, sample, j)
			if lo == hi {
				continue
			}
			threshold := lo + opts.rng.Float64()*(hi-lo)
			if gain, ok := splitGain(x, y, sample, j, threshold, parentSSE, opts.minLeaf); ok && gain > bestGain {
				bestGain, bestFeat, bestThreshold = gain, j, threshold
			}
			continue
		}

		idx := append([]int(nil), sample...)
		sort.Slice(idx, func(a, b int) bool { return x[idx[a]][j] < x[idx[b]][j] })

		// prefix sums over the sorted order let every cutpoint be scored in O(1)
		n := len(idx)
		sumL, sqL := 0.0, 0.0
		sumT, sqT := 0.0, 0.0
		for _, i := range idx {
			sumT += y[i]
			sqT += y[i] * y[i]
		}
		for k := 0; k < n-1; k++ {
			v := y[idx[k]]
			sumL += v
			sqL += v * v
			if x[idx[k]][j] == x[idx[k+1]][j] {
				continue // no boundary between equal values
			}
			nL := float64(k + 1)
			nR := float64(n - k - 1)
			if int(nL) < opts.minLeaf || int(nR) < opts.minLeaf {
				continue
			}
			sseL := sqL - sumL*sumL/nL
			sumR := sumT - sumL
			sseR := (sqT - sqL) - sumR*sumR/nR
			gain := parentSSE - sseL - sseR
			if gain > bestGain {
				bestGain = gain
				bestFeat = j
				bestThreshold = (x[idx[k]][j] + x[idx[k+1]][j]) / 2
			}
		}
	}

	if bestFeat < 0 || bestGain <= 0 {
		return 0, 0, 0, false
	}
	return bestFeat, bestThreshold, bestGain, true
}

func candidateFeatures(p int, opts treeOptions) []int {
	if opts.mtry <= 0 || opts.mtry >= p {
		features := make([]int, p)
		for j := range features {
			features[j] = j
		}
		return features
	}
	perm := opts.rng.Perm(p)
	return perm[:opts.mtry]
}

func featureRange(x [][]float64, sample []int, j int) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range sample {
		if x[i][j] < lo {
			lo = x[i][j]
		}
		if x[i][j] > hi {
			hi = x[i][j]
		}
	}
	return lo, hi
}

func splitGain(x [][]float64, y []float64, sample []int, j int, threshold, parentSSE float64, minLeaf int) (float64, bool) {
	var left, right []int
	for _, i := range sample {
		if x[i][j] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return 0, false
	}
	_, sseL := meanSSE(y, left)
	_, sseR := meanSSE(y, right)
	return parentSSE - sseL - sseR, true
}

func meanSSE(y []float64, sample []int) (float64, float64) {
	sum := 0.0
	for _, i := range sample {
		sum += y[i]
	}
	mean := sum / float64(len(sample))
	sse := 0.0
	for _, i := range sample {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

func normalizeImportances(sums []float64) ([]float64, bool) {
	total := 0.0
	for _, v := range sums {
		total += v
	}
	if total <= 0 {
		return nil, false
	}
	out := make([]float64, len(sums))
	for j, v := range sums {
		out[j] = v / total
	}
	return out, true
}

// DecisionTree is a single CART regression tree
type DecisionTree struct {
	MaxDepth int   `json:"max_depth"`
	MinLeaf  int   `json:"min_leaf"`
	Tree     *cart `json:"tree,omitempty"`
}

// NewDecisionTree creates a tree regressor; max_depth 5, min_leaf 2
func NewDecisionTree(h map[string]float64) *DecisionTree {
	return &DecisionTree{
		MaxDepth: int(hp(h, "max_depth", 5)),
		MinLeaf:  int(hp(h, "min_leaf", 2)),
	}
}

func (d *DecisionTree) Name() string { return NameDecisionTree }

func (d *DecisionTree) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d targets", len(x), len(y))
	}
	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = i
	}
	tree, err := growTree(ctx, x, y, sample, treeOptions{
		maxDepth: d.MaxDepth,
		minLeaf:  d.MinLeaf,
	})
	if err != nil {
		return err
	}
	d.Tree = tree
	return nil
}

func (d *DecisionTree) Predict(x [][]float64) ([]float64, error) {
	if d.Tree == nil {
		return nil, fmt.Errorf("%s: predict before fit", d.Name())
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = d.Tree.predictOne(row)
	}
	return out, nil
}

func (d *DecisionTree) Importances() ([]float64, bool) {
	if d.Tree == nil {
		return nil, false
	}
	return normalizeImportances(d.Tree.ImportanceSums)
}

func (d *DecisionTree) Params() (json.RawMessage, error) { return json.Marshal(d) }

func (d *DecisionTree) LoadParams(raw json.RawMessage) error {
	return json.Unmarshal(raw, d)
}
