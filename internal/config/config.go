package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"f3-nation/regionsync/internal/constants"
)

// ErrInvalidConfig is returned for any configuration that cannot be loaded or
// fails validation. Nothing is connected or mutated before it is returned.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigPathEnvVar names an optional YAML file layered between defaults and env
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	AppEnv    string          `koanf:"app_env" validate:"required"`
	HTTP      HTTPConfig      `koanf:"http"`
	Serving   ServingConfig   `koanf:"serving"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Seed      SeedConfig      `koanf:"seed"`
	Slack     SlackConfig     `koanf:"slack"`
	Redis     RedisConfig     `koanf:"redis"`
}

type HTTPConfig struct {
	Addr             string        `koanf:"addr" validate:"required"`
	CronSecret       string        `koanf:"cron_secret"`
	ScheduleInterval time.Duration `koanf:"schedule_interval" validate:"min=0"`
}

type ServingConfig struct {
	Driver string `koanf:"driver" validate:"oneof=postgres sqlite"`
	URL    string `koanf:"url" validate:"required"`
}

type WarehouseConfig struct {
	Driver      string `koanf:"driver" validate:"oneof=bigquery postgres"`
	Credentials string `koanf:"credentials" validate:"required_if=Driver bigquery"`
	Dataset     string `koanf:"dataset" validate:"required_if=Driver bigquery"`
	Location    string `koanf:"location"`
	PostgresURL string `koanf:"postgres_url" validate:"required_if=Driver postgres"`
}

type SeedConfig struct {
	RegionBatchSize          int           `koanf:"region_batch_size" validate:"min=1"`
	WorkoutBatchSize         int           `koanf:"workout_batch_size" validate:"min=1"`
	WorkoutMaxBatches        int           `koanf:"workout_max_batches" validate:"min=0"`
	WorkoutUpdatedAfter      string        `koanf:"workout_updated_after"`
	WorkoutAfterCursor       string        `koanf:"workout_after_cursor"`
	WorkoutUpsertConcurrency int           `koanf:"workout_upsert_concurrency" validate:"min=1"`
	Force                    bool          `koanf:"force"`
	EntityFreshWindow        time.Duration `koanf:"entity_fresh_window" validate:"gt=0"`
	DailyGuardWindow         time.Duration `koanf:"daily_guard_window" validate:"gt=0"`
	RunTimeout               time.Duration `koanf:"run_timeout" validate:"gt=0"`
}

type SlackConfig struct {
	BotToken  string `koanf:"bot_token"`
	ChannelID string `koanf:"channel_id"`
	APIURL    string `koanf:"api_url" validate:"required"`
}

type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
}

// Enabled reports whether a Redis host was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// ProjectID extracts project_id from the service-account JSON
func (w WarehouseConfig) ProjectID() (string, error) {
	var creds struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(w.Credentials), &creds); err != nil {
		return "", fmt.Errorf("%w: BIGQUERY_CREDS is not valid JSON: %v", ErrInvalidConfig, err)
	}
	if creds.ProjectID == "" {
		return "", fmt.Errorf("%w: BIGQUERY_CREDS has no project_id", ErrInvalidConfig)
	}
	return creds.ProjectID, nil
}

func defaultConfig() *Config {
	return &Config{
		AppEnv: "development",
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Serving: ServingConfig{
			Driver: "postgres",
		},
		Warehouse: WarehouseConfig{
			Driver:   "bigquery",
			Dataset:  constants.DefaultBigQueryDataset,
			Location: constants.DefaultBigQueryLocation,
		},
		Seed: SeedConfig{
			RegionBatchSize:          constants.DefaultRegionBatchSize,
			WorkoutBatchSize:         constants.DefaultWorkoutBatchSize,
			WorkoutUpsertConcurrency: constants.DefaultUpsertConcurrency,
			EntityFreshWindow:        constants.DefaultEntityFreshWindow,
			DailyGuardWindow:         constants.DefaultDailyGuardWindow,
			RunTimeout:               constants.DefaultRunTimeout,
		},
		Slack: SlackConfig{
			APIURL: "https://slack.com/api",
		},
		Redis: RedisConfig{
			Port: "6379",
		},
	}
}

// envKeys maps the deployment's environment variable names onto config paths
var envKeys = map[string]string{
	"APP_ENV":                         "app_env",
	"HTTP_ADDR":                       "http.addr",
	"CRON_SECRET":                     "http.cron_secret",
	"INGEST_SCHEDULE_INTERVAL":        "http.schedule_interval",
	"SERVING_DB_DRIVER":               "serving.driver",
	"POSTGRES_URL":                    "serving.url",
	"WAREHOUSE_DRIVER":                "warehouse.driver",
	"BIGQUERY_CREDS":                  "warehouse.credentials",
	"BIGQUERY_DATASET":                "warehouse.dataset",
	"BIGQUERY_LOCATION":               "warehouse.location",
	"F3_DATA_WAREHOUSE_URL":           "warehouse.postgres_url",
	"REGION_SEED_BATCH_SIZE":          "seed.region_batch_size",
	"WORKOUT_SEED_BATCH_SIZE":         "seed.workout_batch_size",
	"WORKOUT_SEED_MAX_BATCHES":        "seed.workout_max_batches",
	"WORKOUT_SEED_UPDATED_AFTER":      "seed.workout_updated_after",
	"WORKOUT_SEED_AFTER_CURSOR":       "seed.workout_after_cursor",
	"WORKOUT_SEED_UPSERT_CONCURRENCY": "seed.workout_upsert_concurrency",
	"SEED_FORCE":                      "seed.force",
	"ENTITY_FRESH_WINDOW":             "seed.entity_fresh_window",
	"DAILY_GUARD_WINDOW":              "seed.daily_guard_window",
	"RUN_TIMEOUT":                     "seed.run_timeout",
	"SLACK_BOT_AUTH_TOKEN":            "slack.bot_token",
	"SLACK_CHANNEL_ID":                "slack.channel_id",
	"SLACK_API_URL":                   "slack.api_url",
	"REDIS_HOST":                      "redis.host",
	"REDIS_PORT":                      "redis.port",
	"REDIS_PASSWORD":                  "redis.password",
}

func envTransformFunc(key string) string {
	return envKeys[key]
}

// Load builds the configuration from struct defaults, an optional YAML file
// at $CONFIG_PATH and the environment, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: failed to load defaults: %v", ErrInvalidConfig, err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to load config file %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("%w: failed to load environment variables: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Warehouse.Driver == "bigquery" {
		if _, err := c.Warehouse.ProjectID(); err != nil {
			return err
		}
	}
	return nil
}

// RequireCronSecret is the extra check for the HTTP host, which must not
// expose the trigger without a shared secret.
func (c *Config) RequireCronSecret() error {
	if strings.TrimSpace(c.HTTP.CronSecret) == "" {
		return fmt.Errorf("%w: CRON_SECRET is required", ErrInvalidConfig)
	}
	return nil
}
