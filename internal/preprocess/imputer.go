package preprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// KNNImputer fills missing feature cells from the nearest train-set rows.
// Fit stores the train rows as the only donor pool; Transform may then be
// applied to any partition without ever updating that pool. This is the
// structural guarantee that no validation or test row influences imputation.
type KNNImputer struct {
	K       int         `json:"k"`
	Donors  [][]float64 `json:"donors"`
	Medians []float64   `json:"medians"` // train column medians, fallback donor
}

// NewKNNImputer creates an unfitted imputer
func NewKNNImputer(k int) *KNNImputer {
	return &KNNImputer{K: k}
}

// Fit captures the donor pool and per-column medians from train rows only
func (im *KNNImputer) Fit(train [][]float64) error {
	if len(train) == 0 {
		return fmt.Errorf("imputer fit requires at least one train row")
	}
	cols := len(train[0])

	im.Donors = make([][]float64, len(train))
	for i, row := range train {
		donor := make([]float64, len(row))
		copy(donor, row)
		im.Donors[i] = donor
	}

	im.Medians = make([]float64, cols)
	for j := 0; j < cols; j++ {
		var observed []float64
		for _, row := range train {
			if !math.IsNaN(row[j]) {
				observed = append(observed, row[j])
			}
		}
		if len(observed) == 0 {
			im.Medians[j] = 0
			continue
		}
		med, err := stats.Median(observed)
		if err != nil {
			return err
		}
		im.Medians[j] = med
	}
	return nil
}

// Transform returns a copy of x with every NaN cell filled. The receiver is
// never modified, so one fitted imputer serves all partitions.
func (im *KNNImputer) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		filled := make([]float64, len(row))
		copy(filled, row)
		for j, v := range filled {
			if math.IsNaN(v) {
				filled[j] = im.impute(row, j)
			}
		}
		out[i] = filled
	}
	return out
}

type donorDistance struct {
	index int
	dist  float64
}

// impute fills one missing cell from the K nearest donors that observed the
// column, falling back to the train median when no usable donor exists.
func (im *KNNImputer) impute(row []float64, col int) float64 {
	var candidates []donorDistance
	for idx, donor := range im.Donors {
		if math.IsNaN(donor[col]) {
			continue
		}
		d, ok := maskedDistance(row, donor)
		if !ok {
			continue
		}
		candidates = append(candidates, donorDistance{index: idx, dist: d})
	}
	if len(candidates) == 0 {
		return im.Medians[col]
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].index < candidates[j].index
	})

	k := im.K
	if k > len(candidates) {
		k = len(candidates)
	}
	sum := 0.0
	for _, c := range candidates[:k] {
		sum += im.Donors[c.index][col]
	}
	return sum / float64(k)
}

// maskedDistance is Euclidean distance over dimensions observed in both
// rows, normalized by the shared dimension count so sparser rows are not
// artificially close. ok is false when the rows share no dimension.
func maskedDistance(a, b []float64) (float64, bool) {
	sum := 0.0
	shared := 0
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		diff := a[j] - b[j]
		sum += diff * diff
		shared++
	}
	if shared == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(shared)), true
}
