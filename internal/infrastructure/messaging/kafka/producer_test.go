package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/config"
	apperrors "github.com/turtacn/patent2rag/pkg/errors"
)

type mockWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    int
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducer(w *mockWriter) *Producer {
	return NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
}

func TestValidateProducerConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.True(t, apperrors.IsValidation(ValidateProducerConfig(ProducerConfig{})))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}))
}

func TestProducerConfigFrom(t *testing.T) {
	t.Parallel()
	cfg := ProducerConfigFrom(config.KafkaConfig{Brokers: []string{"k:9092"}, BatchSize: 50})
	assert.Equal(t, []string{"k:9092"}, cfg.Brokers)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "all", cfg.Acks)
}

func TestProducer_Publish(t *testing.T) {
	t.Parallel()
	w := &mockWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &Message{
		Topic:   "patent2rag.chunks",
		Key:     []byte("doc-1"),
		Value:   []byte(`{"a":1}`),
		Headers: map[string]string{"event_type": EventChunkCreated},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, "patent2rag.chunks", w.written[0].Topic)
	assert.Equal(t, []byte("doc-1"), w.written[0].Key)
	assert.False(t, w.written[0].Time.IsZero())
	require.Len(t, w.written[0].Headers, 1)
	assert.Equal(t, "event_type", w.written[0].Headers[0].Key)
	assert.Equal(t, int64(1), p.Sent())
}

func TestProducer_PublishValidation(t *testing.T) {
	t.Parallel()
	w := &mockWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &Message{Value: []byte("x")})
	assert.True(t, apperrors.IsValidation(err))

	big := make([]byte, 2*1024*1024)
	err = p.Publish(context.Background(), &Message{Topic: "t", Value: big})
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, w.written)
}

func TestProducer_PublishWriteError(t *testing.T) {
	t.Parallel()
	w := &mockWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("broker down")
	}}
	p := newTestProducer(w)

	err := p.PublishBatch(context.Background(), []*Message{{Topic: "t", Value: []byte("1")}, {Topic: "t", Value: []byte("2")}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePublishError))
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, int64(2), p.Failed())
}

func TestProducer_Closed(t *testing.T) {
	t.Parallel()
	w := &mockWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	err := p.Publish(context.Background(), &Message{Topic: "t", Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestProducer_EmptyBatch(t *testing.T) {
	t.Parallel()
	w := &mockWriter{}
	assert.NoError(t, newTestProducer(w).PublishBatch(context.Background(), nil))
}

//Personal.AI order the ending
