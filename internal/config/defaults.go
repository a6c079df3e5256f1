package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultNeo4jURI       = "bolt://localhost:7687"
	DefaultNeo4jDatabase  = "neo4j"
	DefaultNeo4jBatchSize = 500

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "opiniongraph:"
	DefaultRedisTTL       = time.Hour

	DefaultKafkaBroker     = "localhost:9092"
	DefaultKafkaGroupID    = "opiniongraph-worker"
	DefaultSubmitTopic     = "opinion.corpus.submitted"
	DefaultResultTopic     = "opinion.phrases.ranked"
	DefaultDeadLetterTopic = "opinion.dead_letter"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultCorpusBucket  = "opinion-corpora"
	DefaultReportBucket  = "opinion-reports"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "opiniongraph"
	DefaultMetricsPath      = "/metrics"

	DefaultTaggerKind = "readable"

	DefaultWorkerConcurrency = 4

	ProfileStrict  = "strict"
	ProfileLenient = "lenient"

	DefaultMaximumPositionGap = 3
	DefaultMinPathLength      = 2
	DefaultMaxPathLength      = 10
	DefaultMaxCandidates      = 10000
)

var profileThresholds = map[string]float64{
	ProfileStrict:  5,
	ProfileLenient: 15,
}

// ProfileThreshold returns the start threshold of a named profile, or the
// strict threshold for an unknown name.
func ProfileThreshold(profile string) float64 {
	if t, ok := profileThresholds[profile]; ok {
		return t
	}
	return profileThresholds[ProfileStrict]
}

// NewDefaultConfig returns a Config with every default applied and all
// external services disabled.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg.  Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 4 << 20
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 30 * time.Second
	}
	if cfg.Neo4j.BatchSize == 0 {
		cfg.Neo4j.BatchSize = DefaultNeo4jBatchSize
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.SubmitTopic == "" {
		cfg.Kafka.SubmitTopic = DefaultSubmitTopic
	}
	if cfg.Kafka.ResultTopic == "" {
		cfg.Kafka.ResultTopic = DefaultResultTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultDeadLetterTopic
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.CorpusBucket == "" {
		cfg.MinIO.CorpusBucket = DefaultCorpusBucket
	}
	if cfg.MinIO.ReportBucket == "" {
		cfg.MinIO.ReportBucket = DefaultReportBucket
	}

	// ── Log / Metrics / Tagger / Worker ──────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Tagger.Kind == "" {
		cfg.Tagger.Kind = DefaultTaggerKind
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 500 * time.Millisecond
	}

	// ── Extraction ────────────────────────────────────────────────────────────
	if cfg.Extraction.Profile == "" {
		cfg.Extraction.Profile = ProfileStrict
	}
	if cfg.Extraction.MaximumPositionGap == 0 {
		cfg.Extraction.MaximumPositionGap = DefaultMaximumPositionGap
	}
	if cfg.Extraction.MinPathLength == 0 {
		cfg.Extraction.MinPathLength = DefaultMinPathLength
	}
	if cfg.Extraction.MaxPathLength == 0 {
		cfg.Extraction.MaxPathLength = DefaultMaxPathLength
	}
	if cfg.Extraction.MaxCandidates == 0 {
		cfg.Extraction.MaxCandidates = DefaultMaxCandidates
	}
}

//Personal.AI order the ending
