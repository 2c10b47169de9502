package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

type recordingPublisher struct {
	batches [][]*Message
	err     error
}

func (r *recordingPublisher) Publish(ctx context.Context, msg *Message) error {
	return r.PublishBatch(ctx, []*Message{msg})
}

func (r *recordingPublisher) PublishBatch(_ context.Context, msgs []*Message) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, msgs)
	return nil
}

func TestChunkPublisher_Write(t *testing.T) {
	t.Parallel()
	rec := &recordingPublisher{}
	p := NewChunkPublisher(rec, "chunks", 2, nil)
	assert.Equal(t, "kafka", p.Name())

	doc := &patent.Document{
		DocID:       "abc",
		FileName:    "a.pdf",
		NumClaims:   2,
		Metadata:    patent.Metadata{PublicationNumber: "US 2024/0123456 A1"},
		Acquisition: &patent.Acquisition{Method: patent.MethodText},
	}
	chunks := []patent.Chunk{{ChunkID: "c0", Text: "one"}, {ChunkID: "c1", Text: "two"}, {ChunkID: "c2", Text: "three"}}
	require.NoError(t, p.Write(context.Background(), doc, chunks))

	require.Len(t, rec.batches, 2)
	var all []*Message
	for _, b := range rec.batches {
		all = append(all, b...)
	}
	require.Len(t, all, 4)
	for _, m := range all {
		assert.Equal(t, "chunks", m.Topic)
		assert.Equal(t, []byte("abc"), m.Key)
	}

	env, err := MessageToEventEnvelope(all[1])
	require.NoError(t, err)
	assert.Equal(t, EventChunkCreated, env.EventType)
	var ce ChunkEventPayload
	require.NoError(t, env.DecodePayload(&ce))
	assert.Equal(t, 1, ce.Index)
	assert.Equal(t, 3, ce.Total)
	assert.Equal(t, "c1", ce.Chunk.ChunkID)
	assert.Equal(t, "US 2024/0123456 A1", ce.DocumentID)

	env, err = MessageToEventEnvelope(all[3])
	require.NoError(t, err)
	assert.Equal(t, EventDocumentIngested, env.EventType)
	var de DocumentEventPayload
	require.NoError(t, env.DecodePayload(&de))
	assert.Equal(t, 3, de.Chunks)
	assert.Equal(t, "text", de.Acquisition)
}

func TestChunkPublisher_WriteError(t *testing.T) {
	t.Parallel()
	rec := &recordingPublisher{err: errors.New("down")}
	p := NewChunkPublisher(rec, "chunks", 0, nil)
	err := p.Write(context.Background(), &patent.Document{DocID: "x"}, nil)
	assert.EqualError(t, err, "down")
}

//Personal.AI order the ending
