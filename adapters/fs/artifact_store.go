// Package fs persists run artifacts as JSON files under a run directory.
// This is the default ArtifactStore; postgres is the alternative for shared
// deployments.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stabcast/domain/core"
	"stabcast/domain/model"
	"stabcast/internal/errors"
)

const (
	reportFile  = "report.json"
	modelSuffix = ".model.json"
)

// ArtifactStore writes one directory per run:
//
//	<root>/<run_id>/report.json
//	<root>/<run_id>/<algorithm>.model.json
type ArtifactStore struct {
	root string
}

func NewArtifactStore(root string) (*ArtifactStore, error) {
	if root == "" {
		return nil, errors.ConfigInvalid("artifact directory not set")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.ArtifactError("failed to create artifact directory", err)
	}
	return &ArtifactStore{root: root}, nil
}

func (s *ArtifactStore) runDir(runID core.RunID) string {
	return filepath.Join(s.root, runID.String())
}

// SaveReport writes the evaluation report. Reports are immutable; a rerun
// gets a new run ID and directory rather than overwriting history.
func (s *ArtifactStore) SaveReport(ctx context.Context, report *model.EvaluationReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeJSON(s.runDir(report.RunID), reportFile, report)
}

func (s *ArtifactStore) LoadReport(ctx context.Context, runID core.RunID) (*model.EvaluationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var report model.EvaluationReport
	if err := s.readJSON(filepath.Join(s.runDir(runID), reportFile), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ArtifactStore) SaveModel(ctx context.Context, m *model.TrainedModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeJSON(s.runDir(m.RunID), m.Algorithm+modelSuffix, m)
}

func (s *ArtifactStore) LoadModel(ctx context.Context, runID core.RunID, algorithm string) (*model.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var m model.TrainedModel
	if err := s.readJSON(filepath.Join(s.runDir(runID), algorithm+modelSuffix), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ArtifactStore) writeJSON(dir, name string, v interface{}) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.ArtifactError("failed to create run directory", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.ArtifactError("failed to serialize artifact", err)
	}
	// write-then-rename keeps readers from seeing partial artifacts
	tmp := filepath.Join(dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.ArtifactError("failed to write artifact", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return errors.ArtifactError("failed to finalize artifact", err)
	}
	return nil
}

func (s *ArtifactStore) readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrArtifactNotFound, path)
		}
		return errors.ArtifactError("failed to read artifact", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.ArtifactError("failed to parse artifact", err)
	}
	return nil
}
