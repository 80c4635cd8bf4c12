package preprocess

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// RobustScaler centers on the median and scales by the interquartile range,
// limiting sensitivity to extreme economic outliers such as hyperinflation
// years. Like the imputer, Fit accepts train rows only and Transform reuses
// the frozen statistics everywhere else.
type RobustScaler struct {
	Centers []float64 `json:"centers"` // per-column medians
	Scales  []float64 `json:"scales"`  // per-column IQRs, 1 where degenerate
}

// NewRobustScaler creates an unfitted scaler
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{}
}

// Fit computes medians and IQRs per column, skipping NaN cells
func (s *RobustScaler) Fit(train [][]float64) error {
	if len(train) == 0 {
		return fmt.Errorf("scaler fit requires at least one train row")
	}
	cols := len(train[0])
	s.Centers = make([]float64, cols)
	s.Scales = make([]float64, cols)

	for j := 0; j < cols; j++ {
		var observed []float64
		for _, row := range train {
			if !math.IsNaN(row[j]) {
				observed = append(observed, row[j])
			}
		}
		if len(observed) == 0 {
			s.Centers[j] = 0
			s.Scales[j] = 1
			continue
		}

		med, err := stats.Median(observed)
		if err != nil {
			return err
		}
		q1, err := stats.Percentile(observed, 25)
		if err != nil {
			q1 = med
		}
		q3, err := stats.Percentile(observed, 75)
		if err != nil {
			q3 = med
		}

		s.Centers[j] = med
		iqr := q3 - q1
		if iqr <= 0 {
			iqr = 1 // constant column, leave values centered only
		}
		s.Scales[j] = iqr
	}
	return nil
}

// Transform returns a scaled copy; NaN cells pass through unchanged
func (s *RobustScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				scaled[j] = v
				continue
			}
			scaled[j] = (v - s.Centers[j]) / s.Scales[j]
		}
		out[i] = scaled
	}
	return out
}
