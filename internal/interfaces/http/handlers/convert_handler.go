package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// FileNameHeader names the uploaded document for raw-body requests.
const FileNameHeader = "X-File-Name"

// Converter runs the conversion pipeline.
type Converter interface {
	Convert(ctx context.Context, data []byte, fileName string, opts ...conversion.Option) (*patent.Document, []patent.Chunk, error)
}

// Publisher forwards a converted document to the configured sinks.
type Publisher interface {
	Publish(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error
}

// ConvertHandler serves document conversion.
type ConvertHandler struct {
	converter Converter
	publisher Publisher
	maxBytes  int64
	logger    logging.Logger
}

// NewConvertHandler creates a ConvertHandler. publisher may be nil, in which
// case ?publish=true is rejected. maxBytes <= 0 disables the upload limit.
func NewConvertHandler(converter Converter, publisher Publisher, maxBytes int64, logger logging.Logger) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		publisher: publisher,
		maxBytes:  maxBytes,
		logger:    logging.OrNop(logger),
	}
}

// Convert handles POST /api/v1/convert and responds with {document, chunks}.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	doc, chunks, ok := h.convert(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, conversion.Result{Document: doc, Chunks: chunks}, queryBool(r, "pretty"))
}

// ConvertJSONL handles POST /api/v1/convert/jsonl and streams the chunks as
// JSON Lines. The document id is returned in X-Doc-ID.
func (h *ConvertHandler) ConvertJSONL(w http.ResponseWriter, r *http.Request) {
	doc, chunks, ok := h.convert(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("X-Doc-ID", doc.DocID)
	w.WriteHeader(http.StatusOK)
	if err := patent.WriteChunksJSONL(w, chunks); err != nil {
		h.logger.Warn("Failed to stream chunks", logging.String(logging.FieldDocID, doc.DocID), logging.Err(err))
	}
}

func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request) (*patent.Document, []patent.Chunk, bool) {
	opts, err := conversionOptions(r)
	if err != nil {
		writeAppError(w, err)
		return nil, nil, false
	}
	publish := queryBool(r, "publish")
	if publish && h.publisher == nil {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "no sinks are configured"))
		return nil, nil, false
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	data, fileName, err := readUpload(r)
	if err != nil {
		writeAppError(w, err)
		return nil, nil, false
	}

	doc, chunks, err := h.converter.Convert(r.Context(), data, fileName, opts...)
	if err != nil {
		writeAppError(w, err)
		return nil, nil, false
	}

	if publish {
		if err := h.publisher.Publish(r.Context(), doc, chunks); err != nil {
			writeAppError(w, err)
			return nil, nil, false
		}
	}
	return doc, chunks, true
}

func conversionOptions(r *http.Request) ([]conversion.Option, error) {
	var opts []conversion.Option
	target, ok, err := queryInt(r, "target_tokens")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, conversion.WithTargetTokens(target))
	}
	overlap, ok, err := queryInt(r, "overlap_tokens")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, conversion.WithOverlapTokens(overlap))
	}
	return opts, nil
}

// readUpload returns the document bytes and file name from a multipart
// "file" field or from the raw body named by X-File-Name.
func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				return nil, "", errors.New(errors.ErrCodePayloadTooLarge, "upload exceeds size limit")
			}
			return nil, "", errors.Wrap(err, errors.ErrCodeBadRequest, "multipart field \"file\" is required")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read upload")
		}
		return data, filepath.Base(header.Filename), nil
	}

	fileName := r.Header.Get(FileNameHeader)
	if fileName == "" {
		return nil, "", errors.New(errors.ErrCodeBadRequest, FileNameHeader+" header is required for raw uploads")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			return nil, "", errors.New(errors.ErrCodePayloadTooLarge, "upload exceeds size limit")
		}
		return nil, "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read body")
	}
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrCodeBadRequest, "request body is empty")
	}
	return data, filepath.Base(fileName), nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

//Personal.AI order the ending
