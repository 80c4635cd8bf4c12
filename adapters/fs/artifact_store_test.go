package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stabcast/domain/core"
	"stabcast/domain/model"
)

func sampleReport(runID core.RunID) *model.EvaluationReport {
	return &model.EvaluationReport{
		RunID:             runID,
		CreatedAt:         time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		ConfigFingerprint: core.ConfigHash("abc123"),
		Models: []model.Evaluation{
			{Algorithm: "ols", Test: model.Metrics{R2: 0.8, MAE: 0.1}},
		},
		Ranking:  []string{"ols"},
		TopModel: "ols",
		PartitionCounts: map[string]int{
			"train": 10, "validation": 4, "test": 3,
		},
	}
}

func TestReportRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()
	runID := core.RunID("run-abc")

	if err := store.SaveReport(ctx, sampleReport(runID)); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	loaded, err := store.LoadReport(ctx, runID)
	if err != nil {
		t.Fatalf("LoadReport failed: %v", err)
	}
	if loaded.TopModel != "ols" || loaded.ConfigFingerprint != "abc123" {
		t.Errorf("report fields lost in round trip: %+v", loaded)
	}
	if loaded.Models[0].Test.R2 != 0.8 {
		t.Errorf("metrics lost in round trip: %+v", loaded.Models[0])
	}
}

func TestModelRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	m := &model.TrainedModel{
		ID:          core.ModelID(core.NewID()),
		RunID:       core.RunID("run-xyz"),
		Algorithm:   "ridge",
		Hyperparams: map[string]float64{"alpha": 0.1},
		Params:      json.RawMessage(`{"alpha":0.1,"intercept":1.5,"coef":[2,-1]}`),
		Preprocess:  json.RawMessage(`{}`),
		TrainedAt:   time.Now().UTC(),
	}
	if err := store.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	loaded, err := store.LoadModel(ctx, "run-xyz", "ridge")
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if loaded.Algorithm != "ridge" || loaded.Hyperparams["alpha"] != 0.1 {
		t.Errorf("model envelope lost in round trip: %+v", loaded)
	}
	if string(loaded.Params) == "" {
		t.Error("params payload lost")
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.LoadReport(ctx, "no-such-run"); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
	if _, err := store.LoadModel(ctx, "no-such-run", "ols"); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestNoPartialArtifacts(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()
	runID := core.RunID("run-tmp")

	if err := store.SaveReport(ctx, sampleReport(runID)); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, runID.String()))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
