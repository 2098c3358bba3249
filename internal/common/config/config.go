// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	IndexCands string   `mapstructure:"candidates_index"`
	IndexJobs  string   `mapstructure:"jobs_index"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Matching Engine Configuration ---

// MatchingConfig holds every tunable of the engine. It is read once at
// startup and injected into the components; nothing mutates it afterwards so
// that tiering and stats stay comparable across all calls.
type MatchingConfig struct {
	Weights         WeightsConfig `mapstructure:"weights"`
	Scoring         ScoringConfig `mapstructure:"scoring"`
	MaxPoolSize     int           `mapstructure:"max_pool_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	Workers         int           `mapstructure:"workers"` // 0 means GOMAXPROCS
	StatsTopN       int           `mapstructure:"stats_top_n"`
	Cache           CacheConfig   `mapstructure:"cache"`
}

// WeightsConfig holds the sub-score weights; they must sum to 1.
type WeightsConfig struct {
	Skills       float64 `mapstructure:"skills"`
	Experience   float64 `mapstructure:"experience"`
	Compensation float64 `mapstructure:"compensation"`
	Location     float64 `mapstructure:"location"`
}

// Sum returns the total of all weights.
func (w WeightsConfig) Sum() float64 {
	return w.Skills + w.Experience + w.Compensation + w.Location
}

type ScoringConfig struct {
	ExperiencePenaltyPerTier int `mapstructure:"experience_penalty_per_tier"`
	NeutralScore             int `mapstructure:"neutral_score"`
	LocationMismatchScore    int `mapstructure:"location_mismatch_score"`
}

type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
	TTL      int `mapstructure:"ttl"` // milliseconds
}

// GetTTL returns the cache time-to-live as a duration.
func (c CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
