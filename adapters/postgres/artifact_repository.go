// Package postgres stores run artifacts in PostgreSQL for shared
// deployments where multiple analysts read the same run history.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"stabcast/domain/core"
	"stabcast/domain/model"
	"stabcast/internal/errors"
)

// Connect opens and pings a PostgreSQL connection
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// ArtifactRepository implements ports.ArtifactStore over two tables keyed by
// run ID. Payloads are stored as JSONB so the schema never chases the
// artifact shape.
type ArtifactRepository struct {
	db *sqlx.DB
}

func NewArtifactRepository(db *sqlx.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// EnsureSchema creates the artifact tables if they do not exist
func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_reports (
			run_id     TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			payload    JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS trained_models (
			run_id     TEXT NOT NULL,
			algorithm  TEXT NOT NULL,
			trained_at TIMESTAMPTZ NOT NULL,
			payload    JSONB NOT NULL,
			PRIMARY KEY (run_id, algorithm)
		);
	`)
	if err != nil {
		return errors.DatabaseError("failed to create artifact tables", err)
	}
	return nil
}

func (r *ArtifactRepository) SaveReport(ctx context.Context, report *model.EvaluationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.ArtifactError("failed to serialize report", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO evaluation_reports (run_id, created_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO NOTHING
	`, report.RunID.String(), report.CreatedAt, payload)
	if err != nil {
		return errors.DatabaseError("failed to save report", err)
	}
	return nil
}

func (r *ArtifactRepository) LoadReport(ctx context.Context, runID core.RunID) (*model.EvaluationReport, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload FROM evaluation_reports WHERE run_id = $1
	`, runID.String())
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: report %s", core.ErrArtifactNotFound, runID)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load report", err)
	}

	var report model.EvaluationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, errors.ArtifactError("failed to parse report payload", err)
	}
	return &report, nil
}

func (r *ArtifactRepository) SaveModel(ctx context.Context, m *model.TrainedModel) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.ArtifactError("failed to serialize model", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trained_models (run_id, algorithm, trained_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, algorithm) DO NOTHING
	`, m.RunID.String(), m.Algorithm, m.TrainedAt, payload)
	if err != nil {
		return errors.DatabaseError("failed to save model", err)
	}
	return nil
}

func (r *ArtifactRepository) LoadModel(ctx context.Context, runID core.RunID, algorithm string) (*model.TrainedModel, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload FROM trained_models WHERE run_id = $1 AND algorithm = $2
	`, runID.String(), algorithm)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: model %s/%s", core.ErrArtifactNotFound, runID, algorithm)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load model", err)
	}

	var m model.TrainedModel
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, errors.ArtifactError("failed to parse model payload", err)
	}
	return &m, nil
}
