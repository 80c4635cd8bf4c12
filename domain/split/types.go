package split

import (
	"stabcast/domain/core"
)

// Label names a partition of the engineered table
type Label string

const (
	Train      Label = "train"
	Validation Label = "validation"
	Test       Label = "test"
)

// Labels returns all partition labels in chronological order
func Labels() []Label {
	return []Label{Train, Validation, Test}
}

// Plan holds the three inclusive year ranges. Train precedes validation
// precedes test; ranges never overlap. This ordering is the anti-leakage
// guarantee: the model never sees future-partition years while fitting or
// selecting hyperparameters.
type Plan struct {
	TrainYears      core.YearRange `json:"train_years"`
	ValidationYears core.YearRange `json:"validation_years"`
	TestYears       core.YearRange `json:"test_years"`
}

// Validate checks well-formedness, chronological ordering and non-overlap
func (p Plan) Validate() error {
	for name, r := range map[string]core.YearRange{
		"train_years":      p.TrainYears,
		"validation_years": p.ValidationYears,
		"test_years":       p.TestYears,
	} {
		if !r.Valid() {
			return core.NewConfigurationError(name, "end year precedes start year")
		}
	}
	if p.TrainYears.Overlaps(p.ValidationYears) ||
		p.TrainYears.Overlaps(p.TestYears) ||
		p.ValidationYears.Overlaps(p.TestYears) {
		return core.ErrSplitOverlap
	}
	if !(p.TrainYears.End < p.ValidationYears.Start && p.ValidationYears.End < p.TestYears.Start) {
		return core.ErrSplitOrdering
	}
	return nil
}

// Assign returns the partition for a record year; ok is false when the year
// falls outside every range (such records are dropped and counted).
func (p Plan) Assign(y core.Year) (Label, bool) {
	switch {
	case p.TrainYears.Contains(y):
		return Train, true
	case p.ValidationYears.Contains(y):
		return Validation, true
	case p.TestYears.Contains(y):
		return Test, true
	}
	return "", false
}

// Result is the outcome of partitioning a feature matrix
type Result struct {
	Labels  map[string]Label `json:"labels"` // row key -> partition
	Counts  map[Label]int    `json:"counts"`
	Dropped int              `json:"dropped"` // rows outside all ranges
}
