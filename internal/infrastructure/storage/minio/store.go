package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")

const (
	documentContentType = "application/json"
	chunksContentType   = "application/x-ndjson"
)

// ArtifactStore writes conversion artifacts and reads ingest sources.
type ArtifactStore struct {
	client *MinIOClient
	logger logging.Logger
	pretty bool
	// open is replaced in tests; *minio.Object cannot be built without a server.
	open func(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// NewArtifactStore builds a store on client. pretty selects indented
// document JSON.
func NewArtifactStore(client *MinIOClient, log logging.Logger, pretty bool) *ArtifactStore {
	s := &ArtifactStore{client: client, logger: logging.OrNop(log), pretty: pretty}
	s.open = func(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
		return client.GetClient().GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	}
	return s
}

// DocumentKey is the object key of a document record.
func DocumentKey(docID string) string { return path.Join("docs", docID+".patent.json") }

// ChunksKey is the object key of a document's chunk stream.
func ChunksKey(docID string) string { return path.Join("chunks", docID+".chunks.jsonl") }

func (s *ArtifactStore) Name() string { return "minio" }

// Write stores the document record and its chunk stream.
func (s *ArtifactStore) Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	data, err := patent.MarshalDocument(doc, s.pretty)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal document")
	}
	if err := s.put(ctx, DocumentKey(doc.DocID), data, documentContentType, doc); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := patent.WriteChunksJSONL(&buf, chunks); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode chunks")
	}
	return s.put(ctx, ChunksKey(doc.DocID), buf.Bytes(), chunksContentType, doc)
}

func (s *ArtifactStore) put(ctx context.Context, key string, data []byte, contentType string, doc *patent.Document) error {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"doc-id":    doc.DocID,
			"file-name": doc.FileName,
		},
	}
	start := time.Now()
	_, err := s.client.GetClient().PutObject(ctx, s.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "upload %s", key)
	}
	s.logger.Debug("Uploaded artifact",
		logging.String("key", key), logging.Int("bytes", len(data)), logging.Duration("took", time.Since(start)))
	return nil
}

// Fetch reads a source object. maxBytes > 0 rejects larger objects before
// downloading them.
func (s *ArtifactStore) Fetch(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, error) {
	if bucket == "" {
		bucket = s.client.SourceBucket()
	}
	info, err := s.client.GetClient().StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound.WithDetail(bucket + "/" + key)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "stat %s/%s", bucket, key)
	}
	if maxBytes > 0 && info.Size > maxBytes {
		return nil, errors.Newf(errors.ErrCodePayloadTooLarge, "object %s/%s has %d bytes, limit %d", bucket, key, info.Size, maxBytes)
	}

	rc, err := s.open(ctx, bucket, key)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "get %s/%s", bucket, key)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorageError, "read %s/%s", bucket, key)
	}
	return data, nil
}

// Delete removes a document's artifacts.
func (s *ArtifactStore) Delete(ctx context.Context, docID string) error {
	for _, key := range []string{DocumentKey(docID), ChunksKey(docID)} {
		if err := s.client.GetClient().RemoveObject(ctx, s.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
			return errors.Wrapf(err, errors.ErrCodeStorageError, "remove %s", key)
		}
	}
	return nil
}

//Personal.AI order the ending
