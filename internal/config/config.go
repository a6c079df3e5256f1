// Package config defines the configuration structures for OpinionGraph.  No
// I/O lives here; loading is in loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// CORSOrigins enables cross-origin access for the listed origins.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Neo4jConfig holds graph store connection parameters.  When Enabled is false
// extraction runs entirely in memory.
type Neo4jConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	BatchSize             int           `mapstructure:"batch_size"`
}

// RedisConfig holds report cache parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the extraction job queue parameters.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	GroupID         string   `mapstructure:"group_id"`
	SubmitTopic     string   `mapstructure:"submit_topic"`
	ResultTopic     string   `mapstructure:"result_topic"`
	DeadLetterTopic string   `mapstructure:"dead_letter_topic"`
	MaxRetries      int      `mapstructure:"max_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// MinIOConfig holds object storage parameters for corpora and reports.
type MinIOConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Region       string `mapstructure:"region"`
	CorpusBucket string `mapstructure:"corpus_bucket"`
	ReportBucket string `mapstructure:"report_bucket"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// TaggerConfig selects the part-of-speech tagger.
type TaggerConfig struct {
	Kind string `mapstructure:"kind"` // "readable" | "prose"
}

// WorkerConfig holds background extraction worker parameters.
type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// ExtractionConfig holds the opinion extraction tunables.
type ExtractionConfig struct {
	// Profile selects the default start threshold: "strict" (5) or "lenient" (15).
	Profile string `mapstructure:"profile"`

	// AverageStartPositionThreshold overrides the profile threshold when set.
	// Zero is a usable threshold: only words always seen first qualify.
	AverageStartPositionThreshold *float64 `mapstructure:"average_start_position_threshold"`

	MaximumPositionGap int `mapstructure:"maximum_position_gap"`
	MinPathLength      int `mapstructure:"min_path_length"`
	MaxPathLength      int `mapstructure:"max_path_length"`

	// MatchWorkers bounds the matcher fan-out; 0 means GOMAXPROCS.
	MatchWorkers int `mapstructure:"match_workers"`

	// MaxCandidates caps the candidate paths of one run.  A search that
	// matches more fails with ErrCodeCandidateLimit instead of exhausting
	// memory.  Request max_length overrides are clamped to MaxPathLength.
	MaxCandidates int `mapstructure:"max_candidates"`

	// PersistGraph writes the built graph to Neo4j when it is enabled.
	PersistGraph bool `mapstructure:"persist_graph"`

	// QueryStore runs the path search in Neo4j instead of in memory.
	QueryStore bool `mapstructure:"query_store"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tagger     TaggerConfig     `mapstructure:"tagger"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
}

// StartThreshold resolves the effective average start position threshold.
func (e ExtractionConfig) StartThreshold() float64 {
	if e.AverageStartPositionThreshold != nil {
		return *e.AverageStartPositionThreshold
	}
	return ProfileThreshold(e.Profile)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Neo4j.Enabled && c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required when neo4j is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}
	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
	}

	switch c.Tagger.Kind {
	case "readable", "prose":
	default:
		return fmt.Errorf("config: tagger.kind %q is invalid; expected readable|prose", c.Tagger.Kind)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	if err := c.Extraction.validate(); err != nil {
		return err
	}
	if c.Extraction.QueryStore && !c.Neo4j.Enabled {
		return fmt.Errorf("config: extraction.query_store requires neo4j.enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}

func (e ExtractionConfig) validate() error {
	if _, ok := profileThresholds[e.Profile]; !ok {
		return fmt.Errorf("config: extraction.profile %q is invalid; expected strict|lenient", e.Profile)
	}
	if e.StartThreshold() < 0 {
		return fmt.Errorf("config: extraction.average_start_position_threshold must be ≥ 0")
	}
	if e.MaximumPositionGap < 1 {
		return fmt.Errorf("config: extraction.maximum_position_gap must be ≥ 1, got %d", e.MaximumPositionGap)
	}
	if e.MinPathLength < 1 {
		return fmt.Errorf("config: extraction.min_path_length must be ≥ 1, got %d", e.MinPathLength)
	}
	if e.MaxPathLength < e.MinPathLength {
		return fmt.Errorf("config: extraction.max_path_length %d is below min_path_length %d",
			e.MaxPathLength, e.MinPathLength)
	}
	if e.MatchWorkers < 0 {
		return fmt.Errorf("config: extraction.match_workers must be ≥ 0, got %d", e.MatchWorkers)
	}
	if e.MaxCandidates < 1 {
		return fmt.Errorf("config: extraction.max_candidates must be ≥ 1, got %d", e.MaxCandidates)
	}
	return nil
}

//Personal.AI order the ending
