package model

import (
	"encoding/json"
	"time"

	"stabcast/domain/core"
)

// TrainedModel is an algorithm identifier plus its fitted parameters plus
// the preprocessing transform it was trained against. The Params and
// Preprocess payloads are JSON so the envelope persists and reloads without
// knowing algorithm internals; the model bank's registry reconstructs the
// concrete regressor from Algorithm + Params.
type TrainedModel struct {
	ID        core.ModelID `json:"id"`
	RunID     core.RunID   `json:"run_id"`
	Algorithm string       `json:"algorithm"`

	// Winning hyperparameters from grid search
	Hyperparams map[string]float64 `json:"hyperparams,omitempty"`

	Params     json.RawMessage `json:"params"`
	Preprocess json.RawMessage `json:"preprocess"`

	// Fingerprint of the train matrix the model was fit on
	TrainFingerprint core.MatrixHash `json:"train_fingerprint"`

	TrainedAt time.Time `json:"trained_at"`
}

// Metrics are goodness-of-fit scores on one partition
type Metrics struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
}

// Evaluation holds one model's scores across all partitions.
// OverfitGap = train R2 - test R2.
type Evaluation struct {
	Algorithm  string  `json:"algorithm"`
	Train      Metrics `json:"train"`
	Validation Metrics `json:"validation"`
	Test       Metrics `json:"test"`
	OverfitGap float64 `json:"overfit_gap"`
}

// FeatureImportance is one feature's relative contribution score.
// Scores for a model sum to 1.0.
type FeatureImportance struct {
	Feature core.FeatureKey `json:"feature"`
	Score   float64         `json:"score"`
}

// ExclusionKind tags what kind of unit was excluded from the run
type ExclusionKind string

const (
	ExcludedCountry ExclusionKind = "country"
	ExcludedModel   ExclusionKind = "model"
)

// Exclusion records one unit dropped from the run and why. The report always
// enumerates these so a reader can see what the results do not cover.
type Exclusion struct {
	Kind   ExclusionKind `json:"kind"`
	Unit   string        `json:"unit"`
	Reason string        `json:"reason"`
}

// EvaluationReport is the immutable output artifact of one pipeline run
type EvaluationReport struct {
	RunID             core.RunID      `json:"run_id"`
	CreatedAt         time.Time       `json:"created_at"`
	ConfigFingerprint core.ConfigHash `json:"config_fingerprint"`

	Models  []Evaluation `json:"models"`
	Ranking []string     `json:"ranking"` // algorithm names, best first

	TopModel             string              `json:"top_model"`
	ImportancesAvailable bool                `json:"importances_available"`
	Importances          []FeatureImportance `json:"importances,omitempty"`

	Exclusions []Exclusion `json:"exclusions"`

	// Partition row counts for audit
	PartitionCounts map[string]int `json:"partition_counts"`
}

// EvaluationFor returns the evaluation entry for an algorithm, nil if absent
func (r *EvaluationReport) EvaluationFor(algorithm string) *Evaluation {
	for i := range r.Models {
		if r.Models[i].Algorithm == algorithm {
			return &r.Models[i]
		}
	}
	return nil
}
