// Package config defines the configuration structures for patent2rag. No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// PipelineConfig tunes the conversion core.
type PipelineConfig struct {
	TargetTokens        int   `mapstructure:"target_tokens"`
	OverlapTokens       int   `mapstructure:"overlap_tokens"`
	MinChunkTokens      int   `mapstructure:"min_chunk_tokens"`
	CitationMinScore    int   `mapstructure:"citation_min_score"`
	CitationDivisor     int   `mapstructure:"citation_divisor"`
	CitationSnippetRune int   `mapstructure:"citation_snippet_runes"`
	MaxFileBytes        int64 `mapstructure:"max_file_bytes"`
}

// OCRConfig configures the external OCR engine.
type OCRConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	TesseractPath string        `mapstructure:"tesseract_path"`
	PdftoppmPath  string        `mapstructure:"pdftoppm_path"`
	Languages     string        `mapstructure:"languages"`
	DPI           int           `mapstructure:"dpi"`
	PageTimeout   time.Duration `mapstructure:"page_timeout"`
}

// BatchConfig configures the directory batch driver.
type BatchConfig struct {
	Workers    int      `mapstructure:"workers"`
	Pretty     bool     `mapstructure:"pretty"`
	Extensions []string `mapstructure:"extensions"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimitRPS bounds /api/v1 requests per client; 0 disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// GRPCConfig holds gRPC server tunables.
type GRPCConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	MaxRecvMsgSize int    `mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `mapstructure:"max_send_msg_size"`
	Reflection     bool   `mapstructure:"reflection"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// MinIOConfig holds object-storage parameters. An empty Endpoint disables
// the artifact sink.
type MinIOConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	SourceBucket string `mapstructure:"source_bucket"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Region       string `mapstructure:"region"`
}

// KafkaConfig holds Kafka parameters. No brokers disables the worker and the
// chunk-event sink.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	GroupID         string   `mapstructure:"group_id"`
	RequestTopic    string   `mapstructure:"request_topic"`
	ChunkTopic      string   `mapstructure:"chunk_topic"`
	DeadLetterTopic string   `mapstructure:"dead_letter_topic"`
	BatchSize       int      `mapstructure:"batch_size"`
	StartOffset     string   `mapstructure:"start_offset"` // "earliest" | "latest"
}

// OpenSearchConfig holds OpenSearch parameters. No addresses disables the
// chunk index sink.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// RedisConfig holds Redis parameters. An empty Addr disables the conversion
// cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// PostgresConfig holds PostgreSQL parameters. An empty Host disables the
// relational sink.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// Neo4jConfig holds Neo4j parameters. An empty URI disables the claim graph
// sink.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// WorkerConfig holds ingest-worker execution parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Server     ServerConfig     `mapstructure:"server"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Sink switches
// ─────────────────────────────────────────────────────────────────────────────

func (c *Config) MinIOEnabled() bool      { return c.MinIO.Endpoint != "" }
func (c *Config) KafkaEnabled() bool      { return len(c.Kafka.Brokers) > 0 }
func (c *Config) OpenSearchEnabled() bool { return len(c.OpenSearch.Addresses) > 0 }
func (c *Config) RedisEnabled() bool      { return c.Redis.Addr != "" }
func (c *Config) PostgresEnabled() bool   { return c.Postgres.Host != "" }
func (c *Config) Neo4jEnabled() bool      { return c.Neo4j.URI != "" }

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config. It
// returns the first error encountered.
func (c *Config) Validate() error {
	// Pipeline
	if c.Pipeline.TargetTokens < 1 {
		return fmt.Errorf("config: pipeline.target_tokens must be ≥ 1, got %d", c.Pipeline.TargetTokens)
	}
	if c.Pipeline.OverlapTokens < 0 {
		return fmt.Errorf("config: pipeline.overlap_tokens must be ≥ 0, got %d", c.Pipeline.OverlapTokens)
	}
	if c.Pipeline.MinChunkTokens < 1 {
		return fmt.Errorf("config: pipeline.min_chunk_tokens must be ≥ 1, got %d", c.Pipeline.MinChunkTokens)
	}
	if c.Pipeline.CitationDivisor < 1 {
		return fmt.Errorf("config: pipeline.citation_divisor must be ≥ 1, got %d", c.Pipeline.CitationDivisor)
	}

	// Servers
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("config: grpc.port %d is out of range [1, 65535]", c.GRPC.Port)
	}

	// Batch / worker
	if c.Batch.Workers < 1 {
		return fmt.Errorf("config: batch.workers must be ≥ 1, got %d", c.Batch.Workers)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Sinks
	if c.MinIOEnabled() && c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required when minio.endpoint is set")
	}
	if c.KafkaEnabled() && c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required when kafka.brokers is set")
	}
	if c.PostgresEnabled() && c.Postgres.DBName == "" {
		return fmt.Errorf("config: postgres.db_name is required when postgres.host is set")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Log
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

//Personal.AI order the ending
