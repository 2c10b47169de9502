package kafka

import (
	"context"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// ChunkPublisher emits one chunk.created event per chunk and a closing
// document.ingested event. All events of a document share the doc_id key so
// they land on one partition in order.
type ChunkPublisher struct {
	producer  BatchPublisher
	topic     string
	batchSize int
	logger    logging.Logger
}

// BatchPublisher is the producer side used by ChunkPublisher.
type BatchPublisher interface {
	Publisher
	PublishBatch(ctx context.Context, msgs []*Message) error
}

// NewChunkPublisher creates a ChunkPublisher writing to topic.
func NewChunkPublisher(producer BatchPublisher, topic string, batchSize int, logger logging.Logger) *ChunkPublisher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ChunkPublisher{producer: producer, topic: topic, batchSize: batchSize, logger: logging.OrNop(logger)}
}

// Name identifies the sink.
func (p *ChunkPublisher) Name() string { return "kafka" }

// Write publishes the events of one document.
func (p *ChunkPublisher) Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	key := doc.DocID
	msgs := make([]*Message, 0, len(chunks)+1)
	for i := range chunks {
		env, err := NewEventEnvelope(EventChunkCreated, ChunkEventPayload{
			DocID:      doc.DocID,
			DocumentID: doc.ExternalID(),
			FileName:   doc.FileName,
			Index:      i,
			Total:      len(chunks),
			Chunk:      chunks[i],
		})
		if err != nil {
			return err
		}
		msg, err := env.ToMessage(p.topic, key)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	summary := DocumentEventPayload{
		DocID:      doc.DocID,
		DocumentID: doc.ExternalID(),
		FileName:   doc.FileName,
		Chunks:     len(chunks),
		Claims:     doc.NumClaims,
		Metadata:   doc.Metadata,
	}
	if doc.Acquisition != nil {
		summary.Acquisition = string(doc.Acquisition.Method)
	}
	env, err := NewEventEnvelope(EventDocumentIngested, summary)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic, key)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)

	for start := 0; start < len(msgs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		if err := p.producer.PublishBatch(ctx, msgs[start:end]); err != nil {
			return err
		}
	}

	p.logger.Debug("Chunk events published",
		logging.String("doc_id", doc.DocID),
		logging.Int("events", len(msgs)))
	return nil
}

//Personal.AI order the ending
