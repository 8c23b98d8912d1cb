package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testCreds = `{"type":"service_account","project_id":"f3-test"}`

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_URL", "postgres://localhost/regions")
	t.Setenv("BIGQUERY_CREDS", testCreds)
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Seed.RegionBatchSize != 1000 {
		t.Errorf("Expected region batch size 1000, got %d", cfg.Seed.RegionBatchSize)
	}
	if cfg.Seed.WorkoutUpsertConcurrency != 8 {
		t.Errorf("Expected upsert concurrency 8, got %d", cfg.Seed.WorkoutUpsertConcurrency)
	}
	if cfg.Seed.EntityFreshWindow != 48*time.Hour {
		t.Errorf("Expected entity window 48h, got %s", cfg.Seed.EntityFreshWindow)
	}
	if cfg.Seed.DailyGuardWindow != 20*time.Hour {
		t.Errorf("Expected guard window 20h, got %s", cfg.Seed.DailyGuardWindow)
	}
	if cfg.Warehouse.Dataset != "f3_data_warehouse" || cfg.Warehouse.Location != "US" {
		t.Errorf("Unexpected warehouse defaults: %+v", cfg.Warehouse)
	}

	projectID, err := cfg.Warehouse.ProjectID()
	if err != nil || projectID != "f3-test" {
		t.Errorf("Expected project f3-test, got %q (%v)", projectID, err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WORKOUT_SEED_BATCH_SIZE", "250")
	t.Setenv("WORKOUT_SEED_MAX_BATCHES", "3")
	t.Setenv("SEED_FORCE", "true")
	t.Setenv("DAILY_GUARD_WINDOW", "90m")
	t.Setenv("CRON_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Seed.WorkoutBatchSize != 250 {
		t.Errorf("Expected 250, got %d", cfg.Seed.WorkoutBatchSize)
	}
	if cfg.Seed.WorkoutMaxBatches != 3 {
		t.Errorf("Expected 3, got %d", cfg.Seed.WorkoutMaxBatches)
	}
	if !cfg.Seed.Force {
		t.Error("Expected force to be set")
	}
	if cfg.Seed.DailyGuardWindow != 90*time.Minute {
		t.Errorf("Expected 90m, got %s", cfg.Seed.DailyGuardWindow)
	}
	if err := cfg.RequireCronSecret(); err != nil {
		t.Errorf("Expected cron secret to be accepted, got %v", err)
	}
}

func TestLoad_MalformedBatchSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("WORKOUT_SEED_BATCH_SIZE", tt.value)

			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/regions")
	t.Setenv("BIGQUERY_CREDS", "")

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig for missing creds, got %v", err)
	}

	t.Setenv("BIGQUERY_CREDS", `{"type":"service_account"}`)
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig for creds without project_id, got %v", err)
	}
}

func TestLoad_PostgresWarehouseRequiresURL(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/regions")
	t.Setenv("WAREHOUSE_DRIVER", "postgres")

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}

	t.Setenv("F3_DATA_WAREHOUSE_URL", "postgres://localhost/warehouse")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Warehouse.PostgresURL != "postgres://localhost/warehouse" {
		t.Errorf("Unexpected warehouse url %q", cfg.Warehouse.PostgresURL)
	}
}

func TestLoad_YAMLFileBelowEnv(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "seed:\n  region_batch_size: 42\n  workout_batch_size: 7\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("WORKOUT_SEED_BATCH_SIZE", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Seed.RegionBatchSize != 42 {
		t.Errorf("Expected file value 42, got %d", cfg.Seed.RegionBatchSize)
	}
	if cfg.Seed.WorkoutBatchSize != 9 {
		t.Errorf("Expected env value 9 to win, got %d", cfg.Seed.WorkoutBatchSize)
	}
}

func TestRequireCronSecret_Blank(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.CronSecret = "   "
	if err := cfg.RequireCronSecret(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
}
