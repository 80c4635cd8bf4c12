package evaluate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RSquared is the coefficient of determination, 1 - SS_res/SS_tot. A model
// no better than predicting the mean scores 0; worse scores go negative.
// A degenerate target (zero variance) returns 0 so rankings stay finite.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	mean := stat.Mean(actual, nil)

	ssRes, ssTot := 0.0, 0.0
	for i := range actual {
		r := actual[i] - predicted[i]
		d := actual[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAE is the mean absolute error
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}
