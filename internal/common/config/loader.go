// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like MATCHING_MAX_POOL_SIZE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "matching-server"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8085
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.IndexCands == "" {
		cfg.Database.Elasticsearch.IndexCands = "candidates"
	}
	if cfg.Database.Elasticsearch.IndexJobs == "" {
		cfg.Database.Elasticsearch.IndexJobs = "jobs"
	}

	if cfg.Matching.Weights.Sum() == 0 {
		cfg.Matching.Weights = WeightsConfig{
			Skills:       0.40,
			Experience:   0.25,
			Compensation: 0.20,
			Location:     0.15,
		}
	}
	if cfg.Matching.Scoring.ExperiencePenaltyPerTier == 0 {
		cfg.Matching.Scoring.ExperiencePenaltyPerTier = 25
	}
	if cfg.Matching.Scoring.NeutralScore == 0 {
		cfg.Matching.Scoring.NeutralScore = 70
	}
	if cfg.Matching.Scoring.LocationMismatchScore == 0 {
		cfg.Matching.Scoring.LocationMismatchScore = 40
	}
	if cfg.Matching.MaxPoolSize == 0 {
		cfg.Matching.MaxPoolSize = 5000
	}
	if cfg.Matching.MaxPageSize == 0 {
		cfg.Matching.MaxPageSize = 100
	}
	if cfg.Matching.DefaultPageSize == 0 {
		cfg.Matching.DefaultPageSize = 20
	}
	if cfg.Matching.StatsTopN == 0 {
		cfg.Matching.StatsTopN = 10
	}
	if cfg.Matching.Cache.Capacity == 0 {
		cfg.Matching.Cache.Capacity = 100000
	}
	if cfg.Matching.Cache.TTL == 0 {
		cfg.Matching.Cache.TTL = 600000 // 10 minutes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if math.Abs(cfg.Matching.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("matching weights must sum to 1, got %v", cfg.Matching.Weights.Sum())
	}
	if cfg.Matching.DefaultPageSize > cfg.Matching.MaxPageSize {
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d",
			cfg.Matching.DefaultPageSize, cfg.Matching.MaxPageSize)
	}
	if cfg.Matching.MaxPoolSize < 1 {
		return fmt.Errorf("max_pool_size must be positive")
	}
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	return nil
}
