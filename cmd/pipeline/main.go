package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stabcast/adapters/excel"
	"stabcast/adapters/fs"
	"stabcast/adapters/postgres"
	"stabcast/app"
	"stabcast/internal"
	"stabcast/internal/config"
	"stabcast/internal/errors"
	"stabcast/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("pipeline failed [%s]: %v", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *internal.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pipelineCfg, err := config.LoadPipelineConfig(cfg.Paths.PipelineFile)
	if err != nil {
		return err
	}

	artifacts, err := buildArtifactStore(ctx, cfg)
	if err != nil {
		return err
	}

	source := excel.NewPanelReader(cfg.Paths.PanelFile, logger)

	service, err := app.NewPipelineService(pipelineCfg, source, artifacts, logger)
	if err != nil {
		return err
	}

	report, err := service.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s complete\n", report.RunID)
	fmt.Printf("top model: %s\n", report.TopModel)
	for i, name := range report.Ranking {
		ev := report.EvaluationFor(name)
		fmt.Printf("  %2d. %-18s test r2=%+.4f mae=%.4f overfit gap=%+.4f\n",
			i+1, name, ev.Test.R2, ev.Test.MAE, ev.OverfitGap)
	}
	if len(report.Exclusions) > 0 {
		fmt.Printf("exclusions: %d (see report artifact)\n", len(report.Exclusions))
	}
	return nil
}

// buildArtifactStore prefers postgres when DATABASE_URL is set, otherwise
// the filesystem store under ARTIFACT_DIR.
func buildArtifactStore(ctx context.Context, cfg *config.Config) (ports.ArtifactStore, error) {
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewArtifactRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return fs.NewArtifactStore(cfg.Paths.ArtifactDir)
}
