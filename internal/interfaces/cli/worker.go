package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent2rag/internal/application/ingest"
	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/redis"
	"github.com/turtacn/patent2rag/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/patent2rag/internal/interfaces/http"
	"github.com/turtacn/patent2rag/internal/interfaces/http/handlers"
	"github.com/turtacn/patent2rag/pkg/errors"
)

type workerOptions struct {
	createTopics bool
	probePort    int
}

// NewWorkerCmd creates the worker command.
func NewWorkerCmd() *cobra.Command {
	opts := &workerOptions{}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume ingest requests from Kafka",
		Long: "Consume {request_id, bucket, object_key, file_name, target_tokens,\n" +
			"overlap_tokens} requests from the request topic, fetch each object from\n" +
			"MinIO, convert it and publish the result to every configured sink. Failed\n" +
			"requests are retried with backoff, then sent to the dead-letter topic.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), cliCtx, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.createTopics, "create-topics", false, "create the request, chunk and dead-letter topics if missing")
	f.IntVar(&opts.probePort, "probe-port", 0, "serve /healthz, /readyz and /metrics on this port (0 disables)")
	return cmd
}

// checkWorkerConfig reports what the worker cannot run without.
func checkWorkerConfig(cfg *config.Config) error {
	if !cfg.KafkaEnabled() {
		return errors.New(errors.ErrCodeValidation, "worker requires kafka.brokers")
	}
	if !cfg.MinIOEnabled() {
		return errors.New(errors.ErrCodeValidation, "worker requires minio.endpoint to fetch source objects")
	}
	return nil
}

func runWorker(ctx context.Context, cliCtx *CLIContext, opts *workerOptions) error {
	cfg, log := cliCtx.Config, cliCtx.Logger
	if err := checkWorkerConfig(cfg); err != nil {
		return err
	}

	if opts.createTopics {
		tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, log)
		if err != nil {
			return err
		}
		err = tm.EnsureTopics(ctx, kafka.IngestTopics(cfg.Kafka.RequestTopic, cfg.Kafka.ChunkTopic, cfg.Kafka.DeadLetterTopic))
		_ = tm.Close()
		if err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFrom(cfg.Kafka, cfg.Worker), log,
		kafka.WithDeadLetter(a.producer),
		kafka.WithConsumerMetrics(a.metrics))
	if err != nil {
		return err
	}
	defer consumer.Close()

	publisher := a.publisher()
	if publisher == nil {
		return errors.New(errors.ErrCodeValidation, "worker has no sinks to publish to")
	}

	workerOpts := []ingest.WorkerOption{ingest.WithWorkerLogger(log)}
	if a.redis != nil {
		leaseTTL := 2 * cfg.Worker.HandlerTimeout
		if leaseTTL <= 0 {
			leaseTTL = 10 * time.Minute
		}
		workerOpts = append(workerOpts, ingest.WithLeases(ingest.RedisLeases(redis.NewLeaser(a.redis, cfg.Redis.KeyPrefix, leaseTTL))))
	}
	worker := ingest.NewWorker(a.artifacts, a.converter, publisher,
		ingest.WorkerConfig{MaxFileBytes: cfg.Pipeline.MaxFileBytes}, workerOpts...)

	g, gctx := errgroup.WithContext(ctx)
	if opts.probePort > 0 {
		probeCfg := cfg.Server
		probeCfg.Port = opts.probePort
		probe := httpserver.NewServer(probeCfg, httpserver.NewRouter(httpserver.RouterConfig{
			HealthHandler:    handlers.NewHealthHandler(Version, a.checkers...),
			Logger:           log,
			Metrics:          a.metrics,
			MetricsCollector: a.collector,
		}), log)
		g.Go(probe.Start)
		g.Go(func() error {
			<-gctx.Done()
			return probe.Shutdown(context.WithoutCancel(gctx))
		})
	}

	log.Info("Starting ingest worker",
		logging.String("topic", cfg.Kafka.RequestTopic),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Strings("sinks", publisher.Sinks()))
	g.Go(func() error { return worker.Run(gctx, consumer) })
	return g.Wait()
}

//Personal.AI order the ending
