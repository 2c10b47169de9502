// Package conversion runs the patent normalisation and chunking pipeline:
// acquire page text, clean it, segment it, parse claims, chunk, extract
// metadata, attribute citation pages and assemble the document record.
package conversion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/patent2rag/internal/infrastructure/extraction"
	"github.com/turtacn/patent2rag/internal/infrastructure/extraction/pdftext"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/internal/intelligence/chunker"
	"github.com/turtacn/patent2rag/internal/intelligence/citation"
	"github.com/turtacn/patent2rag/internal/intelligence/claims"
	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/internal/intelligence/metadata"
	"github.com/turtacn/patent2rag/internal/intelligence/segmenter"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const (
	DefaultTargetTokens  = 600
	DefaultOverlapTokens = 80

	cacheName = "conversion"
)

// Result is the cached outcome of one conversion.
type Result struct {
	Document *patent.Document `json:"document"`
	Chunks   []patent.Chunk   `json:"chunks"`
}

// Cache stores conversion results keyed by content hash. Get returns an
// error on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Options are the per-call chunking parameters.
type Options struct {
	TargetTokens  int
	OverlapTokens int
}

// Option adjusts per-call Options.
type Option func(*Options)

// WithTargetTokens sets the chunk target size.
func WithTargetTokens(n int) Option {
	return func(o *Options) { o.TargetTokens = n }
}

// WithOverlapTokens sets the overlap between window slices.
func WithOverlapTokens(n int) Option {
	return func(o *Options) { o.OverlapTokens = n }
}

// Config holds the service-level tunables.
type Config struct {
	MinChunkTokens int
	Citation       citation.Config
	Density        extraction.DensityConfig
	MaxFileBytes   int64
	CacheTTL       time.Duration
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MinChunkTokens: chunker.DefaultConfig().MinTokens,
		Citation:       citation.DefaultConfig(),
		Density:        extraction.DefaultDensityConfig(),
	}
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPDFReader replaces the PDF text extractor.
func WithPDFReader(r PDFReader) ServiceOption {
	return func(s *Service) { s.pdf = r }
}

// WithPDFProber replaces the PDF structure probe.
func WithPDFProber(p PDFProber) ServiceOption {
	return func(s *Service) { s.probe = p }
}

// WithOCR attaches an OCR engine for sparse text layers.
func WithOCR(e OCREngine) ServiceOption {
	return func(s *Service) { s.ocr = e }
}

// WithCache attaches a result cache.
func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches metric vectors.
func WithMetrics(m *prometheus.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// WithMetadata replaces the metadata extraction service.
func WithMetadata(m *metadata.Service) ServiceOption {
	return func(s *Service) { s.meta = m }
}

// Service converts patent documents. It is safe for concurrent use.
type Service struct {
	cfg      Config
	pdf      PDFReader
	probe    PDFProber
	ocr      OCREngine
	cache    Cache
	metrics  *prometheus.Metrics
	logger   logging.Logger
	meta     *metadata.Service
	cite     *citation.Annotator
	density  extraction.DensityConfig
	maxBytes int64
}

// NewService builds a Service. Without options it reads PDFs with the default
// layout, has no OCR engine and no cache.
func NewService(cfg Config, opts ...ServiceOption) *Service {
	if cfg.MinChunkTokens <= 0 {
		cfg.MinChunkTokens = chunker.DefaultConfig().MinTokens
	}
	if cfg.Density == (extraction.DensityConfig{}) {
		cfg.Density = extraction.DefaultDensityConfig()
	}
	s := &Service{
		cfg:      cfg,
		pdf:      pdftext.New(pdftext.DefaultLayout()),
		probe:    pdftext.Probe,
		logger:   logging.NewNopLogger(),
		meta:     metadata.New(),
		cite:     citation.New(cfg.Citation),
		density:  cfg.Density,
		maxBytes: cfg.MaxFileBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func resolveOptions(opts []Option) (Options, error) {
	o := Options{TargetTokens: DefaultTargetTokens, OverlapTokens: DefaultOverlapTokens}
	for _, opt := range opts {
		opt(&o)
	}
	if o.TargetTokens < 1 {
		return o, errors.Newf(errors.ErrCodeInvalidOptions, "target tokens must be positive, got %d", o.TargetTokens)
	}
	if o.OverlapTokens < 0 {
		return o, errors.Newf(errors.ErrCodeInvalidOptions, "overlap tokens must not be negative, got %d", o.OverlapTokens)
	}
	return o, nil
}

// Convert runs the full pipeline over one document. Only acquisition
// failure (and invalid options) yields an error; everything downstream
// degrades to empty results.
func (s *Service) Convert(ctx context.Context, data []byte, fileName string, opts ...Option) (*patent.Document, []patent.Chunk, error) {
	start := time.Now()
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	log := s.logger.With(logging.String(logging.FieldFileName, fileName))

	key := CacheKey(data, fileName, o)
	if r, ok := s.cached(ctx, key, log); ok {
		return r.Document, r.Chunks, nil
	}

	acq, err := s.acquire(ctx, data, fileName)
	if err != nil {
		format := string(extraction.DetectFormat(data, fileName))
		prometheus.RecordConversion(s.metrics, format, err, time.Since(start), 0, 0)
		log.Warn("acquisition failed", logging.Err(err))
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return nil, nil, err
		}
		return nil, nil, errors.Wrap(err, errors.ErrCodeAcquisitionFailed, "cannot read document")
	}

	doc, chunks := s.run(acq.pages, fileName, o)
	info := acq.info
	doc.Acquisition = &info

	if s.metrics != nil {
		s.metrics.AcquisitionsTotal.WithLabelValues(string(info.Method)).Inc()
	}
	prometheus.RecordConversion(s.metrics, string(acq.format), nil, time.Since(start), len(doc.Claims), len(chunks))
	logging.LogOperationDuration(log, "convert", start,
		logging.String(logging.FieldDocID, doc.DocID),
		logging.String("method", string(info.Method)),
		logging.Int("pages", info.Pages),
		logging.Int("sections", doc.NumSections),
		logging.Int("claims", doc.NumClaims),
		logging.Int("chunks", len(chunks)),
	)

	s.store(ctx, key, &Result{Document: doc, Chunks: chunks}, log)
	return doc, chunks, nil
}

// ConvertText runs the pipeline over already-acquired page text.
func (s *Service) ConvertText(pages []string, fileName string, opts ...Option) (*patent.Document, []patent.Chunk, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	doc, chunks := s.run(pages, fileName, o)
	return doc, chunks, nil
}

func (s *Service) run(pages []string, fileName string, o Options) (*patent.Document, []patent.Chunk) {
	cleaned := common.CleanText(strings.Join(pages, "\n"))
	sections := segmenter.Split(cleaned)

	var parsed []patent.Claim
	if cs, ok := segmenter.FirstOfType(sections, patent.SectionClaims); ok {
		parsed = claims.Parse(cs.Text)
	} else {
		parsed = []patent.Claim{}
	}

	builder := chunker.New(chunker.Config{
		TargetTokens:  o.TargetTokens,
		OverlapTokens: o.OverlapTokens,
		MinTokens:     s.cfg.MinChunkTokens,
	})
	chunks := builder.Build(sections, parsed)
	meta := s.meta.Extract(cleaned)

	doc := Assemble(fileName, cleaned, sections, parsed, meta, chunks)
	res := s.cite.Annotate(chunks, pages, doc.DocID, meta.PublicationNumber)
	if s.metrics != nil {
		s.metrics.CitationAttribution.WithLabelValues("attributed").Add(float64(res.Attributed))
		s.metrics.CitationAttribution.WithLabelValues("unattributed").Add(float64(res.Unattributed))
	}
	return doc, chunks
}

// CacheKey identifies a conversion by content, file name and options.
func CacheKey(data []byte, fileName string, o Options) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(fileName))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(o.TargetTokens) + "/" + strconv.Itoa(o.OverlapTokens)))
	return "convert:" + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) cached(ctx context.Context, key string, log logging.Logger) (*Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	var r Result
	if err := s.cache.Get(ctx, key, &r); err != nil {
		if !errors.IsNotFound(err) {
			log.Warn("conversion cache read failed", logging.Err(err))
		}
		prometheus.RecordCacheAccess(s.metrics, cacheName, false)
		return nil, false
	}
	if r.Document == nil {
		prometheus.RecordCacheAccess(s.metrics, cacheName, false)
		return nil, false
	}
	prometheus.RecordCacheAccess(s.metrics, cacheName, true)
	log.Debug("conversion cache hit", logging.String(logging.FieldDocID, r.Document.DocID))
	return &r, true
}

func (s *Service) store(ctx context.Context, key string, r *Result, log logging.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, r, s.cfg.CacheTTL); err != nil {
		log.Warn("conversion cache write failed", logging.Err(err))
	}
}

//Personal.AI order the ending
