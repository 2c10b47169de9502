package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultTargetTokens        = 600
	DefaultOverlapTokens       = 80
	DefaultMinChunkTokens      = 15
	DefaultCitationMinScore    = 5
	DefaultCitationDivisor     = 10
	DefaultCitationSnippetRune = 200
	DefaultMaxFileBytes        = 64 << 20

	DefaultOCRLanguages = "kor+jpn+chi_sim+eng"
	DefaultOCRDPI       = 300

	DefaultBatchWorkers = 4

	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultGRPCPort   = 9090

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "patent2rag"

	DefaultKafkaGroupID         = "patent2rag-worker"
	DefaultKafkaRequestTopic    = "patent2rag.ingest.requests"
	DefaultKafkaChunkTopic      = "patent2rag.chunks"
	DefaultKafkaDeadLetterTopic = "patent2rag.ingest.dlq"

	DefaultOpenSearchIndex = "patent-chunks"
	DefaultRedisKeyPrefix  = "patent2rag:"

	DefaultWorkerConcurrency = 4
)

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged so explicit configuration always wins.
// Sink endpoints have no defaults; they stay disabled unless configured.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.TargetTokens == 0 {
		cfg.Pipeline.TargetTokens = DefaultTargetTokens
	}
	if cfg.Pipeline.OverlapTokens == 0 {
		cfg.Pipeline.OverlapTokens = DefaultOverlapTokens
	}
	if cfg.Pipeline.MinChunkTokens == 0 {
		cfg.Pipeline.MinChunkTokens = DefaultMinChunkTokens
	}
	if cfg.Pipeline.CitationMinScore == 0 {
		cfg.Pipeline.CitationMinScore = DefaultCitationMinScore
	}
	if cfg.Pipeline.CitationDivisor == 0 {
		cfg.Pipeline.CitationDivisor = DefaultCitationDivisor
	}
	if cfg.Pipeline.CitationSnippetRune == 0 {
		cfg.Pipeline.CitationSnippetRune = DefaultCitationSnippetRune
	}
	if cfg.Pipeline.MaxFileBytes == 0 {
		cfg.Pipeline.MaxFileBytes = DefaultMaxFileBytes
	}

	// ── OCR ───────────────────────────────────────────────────────────────────
	if cfg.OCR.TesseractPath == "" {
		cfg.OCR.TesseractPath = "tesseract"
	}
	if cfg.OCR.PdftoppmPath == "" {
		cfg.OCR.PdftoppmPath = "pdftoppm"
	}
	if cfg.OCR.Languages == "" {
		cfg.OCR.Languages = DefaultOCRLanguages
	}
	if cfg.OCR.DPI == 0 {
		cfg.OCR.DPI = DefaultOCRDPI
	}
	if cfg.OCR.PageTimeout == 0 {
		cfg.OCR.PageTimeout = 2 * time.Minute
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}
	if len(cfg.Batch.Extensions) == 0 {
		cfg.Batch.Extensions = []string{".pdf", ".html", ".htm"}
	}

	// ── Servers ───────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 60 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 5 * time.Minute
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.GRPC.Host == "" {
		cfg.GRPC.Host = DefaultServerHost
	}
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}
	if cfg.GRPC.MaxRecvMsgSize == 0 {
		cfg.GRPC.MaxRecvMsgSize = int(DefaultMaxFileBytes)
	}
	if cfg.GRPC.MaxSendMsgSize == 0 {
		cfg.GRPC.MaxSendMsgSize = int(DefaultMaxFileBytes)
	}

	// ── Log / metrics ─────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultKafkaRequestTopic
	}
	if cfg.Kafka.ChunkTopic == "" {
		cfg.Kafka.ChunkTopic = DefaultKafkaChunkTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDeadLetterTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.StartOffset == "" {
		cfg.Kafka.StartOffset = "earliest"
	}

	// ── OpenSearch / Redis ────────────────────────────────────────────────────
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 24 * time.Hour
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	// ── Postgres / Neo4j ──────────────────────────────────────────────────────
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = 10
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 10 * time.Second
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = time.Second
	}
	if cfg.Worker.HandlerTimeout == 0 {
		cfg.Worker.HandlerTimeout = 5 * time.Minute
	}
}

// Default returns a Config holding only defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.OCR.Enabled = true
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
