package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// DefaultIndex is used when no index name is configured.
const DefaultIndex = "patent-chunks"

var (
	ErrIndexCreationFailed = errors.New(errors.ErrCodeIndexError, "index creation failed")
	ErrBulkFailed          = errors.New(errors.ErrCodeIndexError, "bulk index failed")
)

// IndexerConfig holds configuration for the ChunkIndexer.
type IndexerConfig struct {
	Index         string
	BulkBatchSize int
	RefreshPolicy string
}

// ChunkIndexer writes retrieval chunks into an OpenSearch index keyed by
// chunk id, so re-ingesting a document overwrites its previous chunks.
type ChunkIndexer struct {
	client *Client
	config IndexerConfig
	logger logging.Logger
}

// NewChunkIndexer creates a new ChunkIndexer.
func NewChunkIndexer(client *Client, cfg IndexerConfig, logger logging.Logger) *ChunkIndexer {
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}
	return &ChunkIndexer{client: client, config: cfg, logger: logging.OrNop(logger)}
}

// Name identifies the sink.
func (i *ChunkIndexer) Name() string { return "opensearch" }

// Index returns the target index name.
func (i *ChunkIndexer) Index() string { return i.config.Index }

// EnsureIndex creates the chunk index when it does not exist.
func (i *ChunkIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(ChunkIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: i.config.Index,
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexError, "failed to create index request")
	}
	defer resp.Body.Close()

	// A concurrent creator wins the race; that is fine.
	if resp.StatusCode == 400 {
		if reason := errorReason(resp.Body); strings.Contains(reason, "resource_already_exists") {
			return nil
		}
		return ErrIndexCreationFailed
	}
	if resp.IsError() {
		return i.handleErrorResponse(resp, ErrIndexCreationFailed)
	}

	i.logger.Info("Index created", logging.String("index", i.config.Index))
	return nil
}

// IndexExists checks if the chunk index exists.
func (i *ChunkIndexer) IndexExists(ctx context.Context) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{i.config.Index}}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeIndexError, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, i.handleErrorResponse(resp, errors.New(errors.ErrCodeIndexError, "check index existence failed"))
}

// chunkSource is the indexed form of a chunk: the chunk record plus the
// document fields a retriever filters on.
type chunkSource struct {
	patent.Chunk
	FileName          string              `json:"file_name"`
	PublicationNumber string              `json:"publication_number,omitempty"`
	Jurisdiction      patent.Jurisdiction `json:"jurisdiction,omitempty"`
	IPCCodes          []string            `json:"ipc_codes,omitempty"`
}

// Write bulk-indexes chunks in batches. Any rejected item fails the write.
func (i *ChunkIndexer) Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batchSize := i.config.BulkBatchSize
	var failed []string
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		body, err := i.bulkBody(doc, chunks[start:end])
		if err != nil {
			return err
		}
		batchFailed, err := i.sendBulk(ctx, body)
		if err != nil {
			return err
		}
		failed = append(failed, batchFailed...)
	}

	if len(failed) > 0 {
		i.logger.Error("Bulk index had rejected items",
			logging.String("doc_id", doc.DocID),
			logging.Int("failed", len(failed)))
		return ErrBulkFailed.WithDetail(strings.Join(failed, "; "))
	}

	i.logger.Debug("Chunks indexed",
		logging.String("doc_id", doc.DocID),
		logging.Int("chunks", len(chunks)))
	return nil
}

func (i *ChunkIndexer) bulkBody(doc *patent.Document, chunks []patent.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, c := range chunks {
		action := map[string]map[string]string{
			"index": {"_index": i.config.Index, "_id": c.ChunkID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
		src := chunkSource{
			Chunk:             c,
			FileName:          doc.FileName,
			PublicationNumber: doc.Metadata.PublicationNumber,
			Jurisdiction:      doc.Metadata.Jurisdiction,
			IPCCodes:          doc.Metadata.IPCCodes,
		}
		if err := enc.Encode(src); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode chunk")
		}
	}
	return buf.Bytes(), nil
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

// sendBulk posts one NDJSON batch and returns the rejected items.
func (i *ChunkIndexer) sendBulk(ctx context.Context, body []byte) ([]string, error) {
	req := opensearchapi.BulkRequest{
		Body:    bytes.NewReader(body),
		Refresh: i.config.RefreshPolicy,
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeIndexError, "bulk request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, i.handleErrorResponse(resp, ErrBulkFailed)
	}

	var parsed bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}
	if !parsed.Errors {
		return nil, nil
	}

	var failed []string
	for _, item := range parsed.Items {
		for _, v := range item {
			if v.Status >= 200 && v.Status < 300 {
				continue
			}
			reason := fmt.Sprintf("status %d", v.Status)
			if v.Error != nil {
				reason = v.Error.Type + ": " + v.Error.Reason
			}
			failed = append(failed, v.ID+" "+reason)
		}
	}
	return failed, nil
}

// DeleteDocument removes every chunk of docID.
func (i *ChunkIndexer) DeleteDocument(ctx context.Context, docID string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"doc_id": docID},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal delete query")
	}

	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{i.config.Index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexError, "delete by query request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return i.handleErrorResponse(resp, errors.New(errors.ErrCodeIndexError, "delete by query failed"))
	}
	return nil
}

func (i *ChunkIndexer) handleErrorResponse(resp *opensearchapi.Response, defaultErr *errors.AppError) error {
	if reason := errorReason(resp.Body); reason != "" {
		return defaultErr.WithDetail(reason)
	}
	return defaultErr.WithDetail(fmt.Sprintf("status %d", resp.StatusCode))
}

func errorReason(body io.Reader) string {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(body)
	if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Error.Type == "" {
		return ""
	}
	return errResp.Error.Type + ": " + errResp.Error.Reason
}

// ChunkIndexMapping is the index definition for retrieval chunks.
func ChunkIndexMapping() map[string]interface{} {
	keyword := map[string]interface{}{"type": "keyword"}
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"chunk_id":           keyword,
				"doc_id":             keyword,
				"DocumentId":         keyword,
				"file_name":          keyword,
				"publication_number": keyword,
				"jurisdiction":       keyword,
				"ipc_codes":          keyword,
				"section_type":       keyword,
				"lang":               keyword,
				"claim_nums":         map[string]interface{}{"type": "integer"},
				"tokens_est":         map[string]interface{}{"type": "integer"},
				"weight":             map[string]interface{}{"type": "float"},
				"citation_page":      map[string]interface{}{"type": "integer"},
				"page_range":         map[string]interface{}{"type": "integer"},
				"text":               map[string]interface{}{"type": "text"},
				"Context":            map[string]interface{}{"type": "text", "index": false},
				"tags": map[string]interface{}{
					"properties": map[string]interface{}{
						"units":      keyword,
						"parameters": keyword,
						"role":       keyword,
					},
				},
				"norm_numbers": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"name":  keyword,
						"value": map[string]interface{}{"type": "double"},
						"unit":  keyword,
					},
				},
			},
		},
	}
}

//Personal.AI order the ending
