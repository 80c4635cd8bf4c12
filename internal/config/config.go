package config

import (
	"os"

	"stabcast/internal/errors"
)

// Config represents process-level configuration loaded from the environment.
// Analytical parameters live in PipelineConfig (TOML), not here.
type Config struct {
	Paths    PathConfig
	Database DatabaseConfig
	LogLevel string
}

// PathConfig holds file system paths
type PathConfig struct {
	PanelFile    string // input panel (.xlsx or .csv)
	PipelineFile string // TOML pipeline configuration, optional
	ArtifactDir  string // filesystem artifact store root
}

// DatabaseConfig holds optional postgres artifact-store settings
type DatabaseConfig struct {
	URL     string // empty = filesystem artifacts only
	SSLMode string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Paths: PathConfig{
			PanelFile:    os.Getenv("PANEL_FILE"),
			PipelineFile: getEnvOrDefault("PIPELINE_CONFIG", ""),
			ArtifactDir:  getEnvOrDefault("ARTIFACT_DIR", "artifacts"),
		},
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if config.Paths.PanelFile == "" {
		return nil, errors.ConfigInvalid("PANEL_FILE is required")
	}
	if config.Paths.ArtifactDir == "" {
		return nil, errors.ConfigInvalid("ARTIFACT_DIR cannot be empty")
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
