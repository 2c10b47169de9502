// Package ingest delivers converted documents to the configured sinks and
// drives conversions requested over Kafka.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Sink receives one converted document with its chunks. Writes must be
// idempotent per doc_id: a redelivered request rewrites the same record.
type Sink interface {
	Name() string
	Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error
}

func (f SinkFunc) Name() string { return f.SinkName }

func (f SinkFunc) Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	return f.Fn(ctx, doc, chunks)
}

// SinkError reports the sinks that failed during one Publish.
type SinkError struct {
	Failed map[string]error
}

func (e *SinkError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %v", name, e.Failed[name])
	}
	return "sink write failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes every sink error to errors.Is / errors.As.
func (e *SinkError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		out = append(out, err)
	}
	return out
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger.
func WithPublisherLogger(l logging.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logging.OrNop(l) }
}

// WithPublisherMetrics records per-sink write outcomes.
func WithPublisherMetrics(m *prometheus.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// WithSinkTimeout bounds each sink write.
func WithSinkTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) { p.timeout = d }
}

// Publisher fans a document out to every sink concurrently. A failing sink
// does not stop the others.
type Publisher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logging.Logger
	metrics *prometheus.Metrics
}

// NewPublisher builds a Publisher over sinks. Nil sinks are ignored.
func NewPublisher(sinks []Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{logger: logging.NewNopLogger()}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sinks lists the configured sink names in order.
func (p *Publisher) Sinks() []string {
	names := make([]string, len(p.sinks))
	for i, s := range p.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish writes doc and chunks to every sink. The returned error wraps a
// *SinkError naming each failed sink.
func (p *Publisher) Publish(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	if doc == nil {
		return errors.New(errors.ErrCodeValidation, "document is required")
	}
	if len(p.sinks) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		failed = map[string]error{}
		g      errgroup.Group
	)
	for _, s := range p.sinks {
		s := s
		g.Go(func() error {
			if err := p.write(ctx, s, doc, chunks); err != nil {
				mu.Lock()
				failed[s.Name()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return errors.Wrap(&SinkError{Failed: failed}, sinkErrorCode(failed), "publish failed")
	}
	p.logger.Info("Document published",
		logging.String(logging.FieldDocID, doc.DocID),
		logging.Int("chunks", len(chunks)),
		logging.Strings("sinks", p.Sinks()))
	return nil
}

func (p *Publisher) write(ctx context.Context, s Sink, doc *patent.Document, chunks []patent.Chunk) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	err := s.Write(ctx, doc, chunks)
	prometheus.RecordSinkWrite(p.metrics, s.Name(), time.Since(start), err)
	if err != nil {
		p.logger.Error("Sink write failed",
			logging.String("sink", s.Name()),
			logging.String(logging.FieldDocID, doc.DocID),
			logging.Err(err))
	}
	return err
}

// sinkErrorCode keeps the code of a single failure, otherwise falls back to
// the generic storage code.
func sinkErrorCode(failed map[string]error) errors.ErrorCode {
	if len(failed) == 1 {
		for _, err := range failed {
			if code := errors.GetCode(err); code != errors.CodeUnknown {
				return code
			}
		}
	}
	return errors.ErrCodeStorageError
}

//Personal.AI order the ending
