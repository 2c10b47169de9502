package ingest

import (
	"context"
	"path"
	"time"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/redis"
	"github.com/turtacn/patent2rag/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Source fetches the raw bytes of a stored document.
type Source interface {
	Fetch(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, error)
}

// Converter runs the conversion pipeline.
type Converter interface {
	Convert(ctx context.Context, data []byte, fileName string, opts ...conversion.Option) (*patent.Document, []patent.Chunk, error)
}

// LeaseFunc takes an exclusive lease on name. ok is false when someone else
// holds it; release must be called once the work is done.
type LeaseFunc func(ctx context.Context, name string) (release func(context.Context) error, ok bool, err error)

// RedisLeases adapts a redis Leaser.
func RedisLeases(l *redis.Leaser) LeaseFunc {
	return func(ctx context.Context, name string) (func(context.Context) error, bool, error) {
		lease, ok, err := l.Acquire(ctx, name)
		if err != nil || !ok {
			return nil, ok, err
		}
		return lease.Release, true, nil
	}
}

// WorkerConfig tunes request handling.
type WorkerConfig struct {
	// MaxFileBytes rejects larger source objects before download. 0 disables the check.
	MaxFileBytes int64
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the logger.
func WithWorkerLogger(l logging.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logging.OrNop(l) }
}

// WithLeases deduplicates concurrent deliveries of the same object.
func WithLeases(fn LeaseFunc) WorkerOption {
	return func(w *Worker) { w.lease = fn }
}

// Worker handles ingest requests: fetch, convert, publish.
type Worker struct {
	source    Source
	converter Converter
	publisher *Publisher
	lease     LeaseFunc
	cfg       WorkerConfig
	logger    logging.Logger
}

// NewWorker builds a Worker.
func NewWorker(source Source, converter Converter, publisher *Publisher, cfg WorkerConfig, opts ...WorkerOption) *Worker {
	w := &Worker{
		source:    source,
		converter: converter,
		publisher: publisher,
		cfg:       cfg,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, consumer *kafka.Consumer) error {
	return consumer.Run(ctx, w.Handle)
}

// Handle processes one ingest request message. Malformed requests, missing
// objects and unreadable documents are permanent failures; fetch and sink
// errors are left to the consumer's retry policy.
func (w *Worker) Handle(ctx context.Context, msg *kafka.Message) error {
	req, err := kafka.DecodeIngestRequest(msg.Value)
	if err != nil {
		return kafka.Permanent(err)
	}
	log := w.logger.With(
		logging.String("request_id", req.RequestID),
		logging.String("object_key", req.ObjectKey),
		logging.String(logging.FieldFileName, req.FileName))

	if w.lease != nil {
		release, ok, err := w.lease(ctx, path.Join(req.Bucket, req.ObjectKey))
		if err != nil {
			return err
		}
		if !ok {
			log.Info("Request already in progress elsewhere, skipping")
			return nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Failed to release lease", logging.Err(err))
			}
		}()
	}

	start := time.Now()
	doc, chunks, err := w.Process(ctx, req)
	if err != nil {
		log.Warn("Ingest request failed", logging.Err(err))
		return err
	}
	logging.LogOperationDuration(log, "ingest", start,
		logging.String(logging.FieldDocID, doc.DocID),
		logging.Int("chunks", len(chunks)))
	return nil
}

// Process fetches, converts and publishes one request.
func (w *Worker) Process(ctx context.Context, req *kafka.IngestRequest) (*patent.Document, []patent.Chunk, error) {
	data, err := w.source.Fetch(ctx, req.Bucket, req.ObjectKey, w.cfg.MaxFileBytes)
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodePayloadTooLarge) {
			return nil, nil, kafka.Permanent(err)
		}
		return nil, nil, err
	}

	doc, chunks, err := w.converter.Convert(ctx, data, req.FileName, requestOptions(req)...)
	if err != nil {
		// Conversion is deterministic over the same bytes.
		return nil, nil, kafka.Permanent(err)
	}

	if err := w.publisher.Publish(ctx, doc, chunks); err != nil {
		return nil, nil, err
	}
	return doc, chunks, nil
}

func requestOptions(req *kafka.IngestRequest) []conversion.Option {
	var opts []conversion.Option
	if req.TargetTokens > 0 {
		opts = append(opts, conversion.WithTargetTokens(req.TargetTokens))
	}
	if req.OverlapTokens > 0 {
		opts = append(opts, conversion.WithOverlapTokens(req.OverlapTokens))
	}
	return opts
}

//Personal.AI order the ending
