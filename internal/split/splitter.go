package split

import (
	"fmt"

	"stabcast/domain/core"
	"stabcast/domain/feature"
	"stabcast/domain/split"
	"stabcast/internal"
)

// Splitter assigns every engineered record to exactly one partition by its
// year. The plan is validated before any assignment; overlapping ranges are
// a fatal configuration error surfaced before training begins.
type Splitter struct {
	plan split.Plan
	log  *internal.Logger
}

// NewSplitter validates the plan and returns a splitter bound to it
func NewSplitter(plan split.Plan) (*Splitter, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{plan: plan, log: internal.DefaultLogger}, nil
}

// Partition labels each matrix row. Rows outside every range are dropped and
// counted; every surviving row maps to exactly one partition.
func (s *Splitter) Partition(m *feature.Matrix) *split.Result {
	result := &split.Result{
		Labels: make(map[string]split.Label, m.NumRows()),
		Counts: map[split.Label]int{split.Train: 0, split.Validation: 0, split.Test: 0},
	}

	for i := 0; i < m.NumRows(); i++ {
		label, ok := s.plan.Assign(m.Years[i])
		if !ok {
			result.Dropped++
			continue
		}
		result.Labels[m.RowKeys[i]] = label
		result.Counts[label]++
	}

	s.log.Info("split: train=%d validation=%d test=%d dropped=%d",
		result.Counts[split.Train], result.Counts[split.Validation],
		result.Counts[split.Test], result.Dropped)
	return result
}

// Subset returns the submatrix for one partition, preserving row order.
// The returned matrix is an independent copy; mutating it cannot leak
// across partitions.
func (s *Splitter) Subset(m *feature.Matrix, result *split.Result, label split.Label) *feature.Matrix {
	var idx []int
	for i := 0; i < m.NumRows(); i++ {
		if result.Labels[m.RowKeys[i]] == label {
			idx = append(idx, i)
		}
	}
	return m.SelectRows(idx)
}

// VerifyChronology confirms no training row is as late as any test row. A
// violation means future information reached the training partition.
func VerifyChronology(train, test *feature.Matrix) error {
	if train.NumRows() == 0 || test.NumRows() == 0 {
		return nil
	}
	maxTrain := train.Years[0]
	for _, y := range train.Years {
		if y.After(maxTrain) {
			maxTrain = y
		}
	}
	minTest := test.Years[0]
	for _, y := range test.Years {
		if y.Before(minTest) {
			minTest = y
		}
	}
	if !maxTrain.Before(minTest) {
		return fmt.Errorf("%w: train reaches %s, test starts %s", core.ErrFutureData, maxTrain, minTest)
	}
	return nil
}
