package cli

import (
	"context"
	"sync/atomic"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/application/ingest"
	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/neo4j"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/postgres"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/redis"
	"github.com/turtacn/patent2rag/internal/infrastructure/extraction/ocr"
	"github.com/turtacn/patent2rag/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/internal/infrastructure/search/opensearch"
	"github.com/turtacn/patent2rag/internal/infrastructure/storage/minio"
	"github.com/turtacn/patent2rag/internal/intelligence/citation"
	"github.com/turtacn/patent2rag/internal/interfaces/http/handlers"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// defaultsConverter applies the configured chunk sizes ahead of per-call
// options. The defaults can be swapped while requests are in flight.
type defaultsConverter struct {
	*conversion.Service
	defaults atomic.Pointer[[]conversion.Option]
}

func newDefaultsConverter(svc *conversion.Service, p config.PipelineConfig) *defaultsConverter {
	c := &defaultsConverter{Service: svc}
	c.SetPipeline(p)
	return c
}

// SetPipeline replaces the default chunk sizes.
func (c *defaultsConverter) SetPipeline(p config.PipelineConfig) {
	opts := []conversion.Option{
		conversion.WithTargetTokens(p.TargetTokens),
		conversion.WithOverlapTokens(p.OverlapTokens),
	}
	c.defaults.Store(&opts)
}

func (c *defaultsConverter) Convert(ctx context.Context, data []byte, fileName string, opts ...conversion.Option) (*patent.Document, []patent.Chunk, error) {
	defaults := *c.defaults.Load()
	all := make([]conversion.Option, 0, len(defaults)+len(opts))
	all = append(append(all, defaults...), opts...)
	return c.Service.Convert(ctx, data, fileName, all...)
}

// conversionConfig maps the pipeline section onto the service tunables.
func conversionConfig(cfg *config.Config) conversion.Config {
	c := conversion.DefaultConfig()
	c.MinChunkTokens = cfg.Pipeline.MinChunkTokens
	c.Citation = citation.Config{
		MinScore:     cfg.Pipeline.CitationMinScore,
		Divisor:      cfg.Pipeline.CitationDivisor,
		SnippetRunes: cfg.Pipeline.CitationSnippetRune,
	}
	c.MaxFileBytes = cfg.Pipeline.MaxFileBytes
	c.CacheTTL = cfg.Redis.CacheTTL
	return c
}

// newConverter builds the conversion service. metrics and cache may be nil.
func newConverter(cfg *config.Config, log logging.Logger, metrics *prometheus.Metrics, cache conversion.Cache) *defaultsConverter {
	opts := []conversion.ServiceOption{conversion.WithLogger(log)}
	if metrics != nil {
		opts = append(opts, conversion.WithMetrics(metrics))
	}
	if cache != nil {
		opts = append(opts, conversion.WithCache(cache))
	}
	if cfg.OCR.Enabled {
		engine := ocr.New(ocr.Config{
			Enabled:       true,
			TesseractPath: cfg.OCR.TesseractPath,
			PdftoppmPath:  cfg.OCR.PdftoppmPath,
			Languages:     cfg.OCR.Languages,
			DPI:           cfg.OCR.DPI,
			PageTimeout:   cfg.OCR.PageTimeout,
		}, ocr.WithLogger(log))
		if a := engine.Probe(); !a.Available() {
			log.Warn("OCR engine unavailable, scanned documents fall back to the text layer",
				logging.String("status", string(a.Status)), logging.String("reason", a.Reason))
		}
		opts = append(opts, conversion.WithOCR(engine))
	}
	return newDefaultsConverter(conversion.NewService(conversionConfig(cfg), opts...), cfg.Pipeline)
}

// app holds the long-lived components shared by serve and worker. Every
// sink whose endpoint is configured is connected at startup.
type app struct {
	cfg       *config.Config
	logger    logging.Logger
	collector prometheus.MetricsCollector
	metrics   *prometheus.Metrics
	converter *defaultsConverter
	redis     *redis.Client
	producer  *kafka.Producer
	artifacts *minio.ArtifactStore
	sinks     []ingest.Sink
	checkers  []handlers.HealthChecker
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log logging.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		a.collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return nil, err
		}
		a.metrics = prometheus.NewMetrics(a.collector)
	}

	var cache conversion.Cache
	if cfg.RedisEnabled() {
		if a.redis, err = redis.NewClient(cfg.Redis, log); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.redis.Close)
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "redis", Fn: a.redis.Ping})
		cache = redis.NewRedisCache(a.redis, log,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.CacheTTL))
	}
	a.converter = newConverter(cfg, log, a.metrics, cache)

	if err := a.connectSinks(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// connectSinks opens every configured sink in a fixed order.
func (a *app) connectSinks(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	if cfg.MinIOEnabled() {
		client, err := minio.NewMinIOClient(cfg.MinIO, log)
		if err != nil {
			return err
		}
		if err := client.EnsureBucket(ctx, cfg.MinIO.Bucket); err != nil {
			return err
		}
		a.artifacts = minio.NewArtifactStore(client, log, cfg.Batch.Pretty)
		a.sinks = append(a.sinks, a.artifacts)
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "minio", Fn: client.HealthCheck})
	}

	if cfg.OpenSearchEnabled() {
		client, err := opensearch.NewClient(opensearch.ClientConfigFrom(cfg.OpenSearch), log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		indexer := opensearch.NewChunkIndexer(client, opensearch.IndexerConfig{
			Index:         cfg.OpenSearch.Index,
			BulkBatchSize: cfg.OpenSearch.BulkBatchSize,
		}, log)
		if err := indexer.EnsureIndex(ctx); err != nil {
			return err
		}
		a.sinks = append(a.sinks, indexer)
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "opensearch", Fn: client.Ping})
	}

	if cfg.PostgresEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.sinks = append(a.sinks, postgres.NewDocumentRepository(pool, log))
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "postgres", Fn: pool.Ping})
	}

	if cfg.Neo4jEnabled() {
		driver, err := neo4j.NewDriver(cfg.Neo4j, log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, driver.Close)
		graph := neo4j.NewClaimGraph(driver, log)
		if err := graph.EnsureSchema(ctx); err != nil {
			return err
		}
		a.sinks = append(a.sinks, graph)
		a.checkers = append(a.checkers, handlers.CheckFunc{Component: "neo4j", Fn: driver.HealthCheck})
	}

	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), log)
		if err != nil {
			return err
		}
		a.producer = producer
		a.closers = append(a.closers, producer.Close)
		a.sinks = append(a.sinks, kafka.NewChunkPublisher(producer, cfg.Kafka.ChunkTopic, cfg.Kafka.BatchSize, log))
	}

	names := make([]string, 0, len(a.sinks))
	for _, s := range a.sinks {
		names = append(names, s.Name())
	}
	log.Info("Sinks configured", logging.Strings("sinks", names))
	return nil
}

// publisher fans out to the configured sinks, or is nil when none are.
func (a *app) publisher() *ingest.Publisher {
	if len(a.sinks) == 0 {
		return nil
	}
	return ingest.NewPublisher(a.sinks,
		ingest.WithPublisherLogger(a.logger),
		ingest.WithPublisherMetrics(a.metrics))
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close component", logging.Err(err))
		}
	}
	a.closers = nil
}

//Personal.AI order the ending
