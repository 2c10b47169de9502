package kafka

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/semaphore"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// Handler processes one message. Returning an error triggers a retry unless
// the error is marked Permanent.
type Handler func(ctx context.Context, msg *Message) error

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return stderrors.As(err, &p)
}

// Publisher is the dead-letter side of the consumer.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	StartOffset    string
	Concurrency    int
	HandlerTimeout time.Duration
	Retry          RetryConfig
}

// ConsumerConfigFrom maps the application config sections.
func ConsumerConfigFrom(k config.KafkaConfig, w config.WorkerConfig) ConsumerConfig {
	return ConsumerConfig{
		Brokers:        k.Brokers,
		GroupID:        k.GroupID,
		Topic:          k.RequestTopic,
		StartOffset:    k.StartOffset,
		Concurrency:    w.Concurrency,
		HandlerTimeout: w.HandlerTimeout,
		Retry: RetryConfig{
			MaxRetries:      w.MaxRetries,
			RetryBackoff:    w.RetryBackoff,
			DeadLetterTopic: k.DeadLetterTopic,
		},
	}
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter routes exhausted messages to p.
func WithDeadLetter(p Publisher) ConsumerOption {
	return func(c *Consumer) { c.deadLetter = p }
}

// WithConsumerMetrics records message outcomes on m.
func WithConsumerMetrics(m *prometheus.Metrics) ConsumerOption {
	return func(c *Consumer) { c.metrics = m }
}

// Consumer reads a topic as part of a consumer group and dispatches messages
// to a handler with bounded concurrency. Offsets are committed per partition
// only once every earlier message of that partition has finished.
type Consumer struct {
	reader     ReaderInterface
	config     ConsumerConfig
	logger     logging.Logger
	deadLetter Publisher
	metrics    *prometheus.Metrics
	handler    Handler

	running atomic.Bool
	tracker *offsetTracker
}

// NewConsumer creates a Consumer backed by a kafka-go group reader.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	readerCfg := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		Topic:             cfg.Topic,
		MinBytes:          1,
		MaxBytes:          10 * 1024 * 1024,
		MaxWait:           time.Second,
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		StartOffset:       kafka.FirstOffset,
		Dialer:            &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	if cfg.StartOffset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}
	return NewConsumerWithReader(kafka.NewReader(readerCfg), cfg, logger, opts...), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger, opts ...ConsumerOption) *Consumer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Retry.RetryBackoff <= 0 {
		cfg.Retry.RetryBackoff = time.Second
	}
	if cfg.Retry.MaxRetryBackoff <= 0 {
		cfg.Retry.MaxRetryBackoff = 30 * time.Second
	}
	c := &Consumer{
		reader:  r,
		config:  cfg,
		logger:  logging.OrNop(logger),
		tracker: newOffsetTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled, then waits for in-flight handlers.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)
	c.handler = handler

	sem := semaphore.NewWeighted(int64(c.config.Concurrency))
	var wg sync.WaitGroup
	defer wg.Wait()

	c.logger.Info("Kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.String("topic", c.config.Topic),
		logging.Int("concurrency", c.config.Concurrency))

	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			sem.Release(1)
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		c.tracker.fetched(m)
		wg.Add(1)
		go func(m kafka.Message) {
			defer wg.Done()
			defer sem.Release(1)
			prometheus.TrackActive(c.metrics, 1)
			defer prometheus.TrackActive(c.metrics, -1)

			// Handlers finish on a detached context so shutdown does not turn
			// in-flight work into dead letters.
			c.process(context.WithoutCancel(ctx), fromKafkaMessage(m))
			if commit, ok := c.tracker.done(m); ok {
				if err := c.reader.CommitMessages(context.WithoutCancel(ctx), commit); err != nil {
					c.logger.Error("CommitMessages failed", logging.Err(err))
				}
			}
		}(m)
	}
}

// process runs the handler with retries; exhausted or permanent failures go
// to the dead-letter topic. It never blocks consumer progress.
func (c *Consumer) process(ctx context.Context, msg *Message) {
	backoff := c.config.Retry.RetryBackoff
	var err error
	for attempt := 0; ; attempt++ {
		err = c.handle(ctx, msg)
		if err == nil {
			prometheus.RecordMessage(c.metrics, "processed")
			return
		}
		if IsPermanent(err) || attempt >= c.config.Retry.MaxRetries {
			break
		}
		prometheus.RecordRetry(c.metrics)
		c.logger.Warn("Handler failed, retrying",
			logging.Int64("offset", msg.Offset),
			logging.Int("attempt", attempt+1),
			logging.Err(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.config.Retry.MaxRetryBackoff {
			backoff = c.config.Retry.MaxRetryBackoff
		}
	}

	c.logger.Error("Message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Bool("permanent", IsPermanent(err)),
		logging.Err(err))

	if c.deadLetter == nil || c.config.Retry.DeadLetterTopic == "" {
		prometheus.RecordMessage(c.metrics, "dropped")
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error_message"] = err.Error()
	dl := &Message{Topic: c.config.Retry.DeadLetterTopic, Key: msg.Key, Value: msg.Value, Headers: headers}
	if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
		c.logger.Error("Failed to send to dead letter topic", logging.Err(dlErr))
		prometheus.RecordMessage(c.metrics, "dropped")
		return
	}
	prometheus.RecordMessage(c.metrics, "dead_lettered")
}

func (c *Consumer) handle(ctx context.Context, msg *Message) error {
	if c.config.HandlerTimeout <= 0 {
		return c.handler(ctx, msg)
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.HandlerTimeout)
	defer cancel()
	return c.handler(ctx, msg)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	c.logger.Info("Kafka consumer closed")
	return c.reader.Close()
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "GroupID required")
	}
	if cfg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if cfg.StartOffset != "" && cfg.StartOffset != "earliest" && cfg.StartOffset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid StartOffset")
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "MaxRetries must be >= 0")
	}
	return nil
}

// offsetTracker finds, per partition, the highest offset below which every
// fetched message has completed.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionState
}

type partitionState struct {
	pending []int64
	done    map[int64]kafka.Message
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionState)}
}

func (t *offsetTracker) fetched(m kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ps, ok := t.partitions[m.Partition]
	if !ok {
		ps = &partitionState{done: make(map[int64]kafka.Message)}
		t.partitions[m.Partition] = ps
	}
	ps.pending = append(ps.pending, m.Offset)
	if n := len(ps.pending); n > 1 && ps.pending[n-2] > m.Offset {
		sort.Slice(ps.pending, func(i, j int) bool { return ps.pending[i] < ps.pending[j] })
	}
}

// done marks m complete and returns the message to commit, if the committable
// watermark advanced.
func (t *offsetTracker) done(m kafka.Message) (kafka.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ps, ok := t.partitions[m.Partition]
	if !ok {
		return kafka.Message{}, false
	}
	ps.done[m.Offset] = m
	var last kafka.Message
	advanced := false
	for len(ps.pending) > 0 {
		head, ok := ps.done[ps.pending[0]]
		if !ok {
			break
		}
		delete(ps.done, ps.pending[0])
		ps.pending = ps.pending[1:]
		last, advanced = head, true
	}
	return last, advanced
}

//Personal.AI order the ending
