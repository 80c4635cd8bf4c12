package ports

import (
	"context"

	"stabcast/domain/core"
	"stabcast/domain/model"
)

// ArtifactStore persists the outputs of a pipeline run in a re-loadable
// form: the evaluation report plus trained models. Implementations:
// filesystem JSON (default) and postgres.
type ArtifactStore interface {
	SaveReport(ctx context.Context, report *model.EvaluationReport) error
	LoadReport(ctx context.Context, runID core.RunID) (*model.EvaluationReport, error)

	SaveModel(ctx context.Context, m *model.TrainedModel) error
	LoadModel(ctx context.Context, runID core.RunID, algorithm string) (*model.TrainedModel, error)
}
