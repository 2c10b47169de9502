package conversion

import (
	"context"
	"strings"

	"github.com/turtacn/patent2rag/internal/infrastructure/extraction"
	"github.com/turtacn/patent2rag/internal/infrastructure/extraction/htmltext"
	"github.com/turtacn/patent2rag/internal/infrastructure/extraction/ocr"
	"github.com/turtacn/patent2rag/internal/infrastructure/extraction/pdftext"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// PDFReader yields per-page text from PDF bytes.
type PDFReader interface {
	Pages(data []byte) ([]string, error)
	Words(data []byte) ([]string, error)
}

// PDFProber reports the structure of a PDF without decoding text.
type PDFProber func(data []byte) (pdftext.Info, error)

// OCREngine recognises text in rendered pages. Probe must not fail; it
// reports availability instead.
type OCREngine interface {
	Probe() ocr.Availability
	Recognize(ctx context.Context, data []byte) ([]string, error)
}

// acquired is the outcome of text acquisition.
type acquired struct {
	pages  []string
	format extraction.Format
	info   patent.Acquisition
}

// acquire turns bytes into page texts. Only an unopenable or unsupported
// document is an error; every fallback failure degrades to the best text
// already obtained.
func (s *Service) acquire(ctx context.Context, data []byte, fileName string) (*acquired, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "empty document")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, errors.Newf(errors.ErrCodePayloadTooLarge, "document exceeds %d bytes", s.maxBytes)
	}

	format := extraction.DetectFormat(data, fileName)
	switch format {
	case extraction.FormatPDF:
		return s.acquirePDF(ctx, data)
	case extraction.FormatHTML:
		doc, err := htmltext.Extract(data)
		if err != nil {
			return nil, err
		}
		return single(format, patent.MethodHTML, doc.Text), nil
	case extraction.FormatText:
		return single(format, patent.MethodPlain, string(data)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported document format (%s)", extraction.DetectMIME(data))
	}
}

func single(format extraction.Format, method patent.AcquisitionMethod, text string) *acquired {
	return &acquired{
		pages:  []string{text},
		format: format,
		info:   patent.Acquisition{Method: method, Pages: 1, Chars: common.RuneLen(strings.TrimSpace(text))},
	}
}

func (s *Service) acquirePDF(ctx context.Context, data []byte) (*acquired, error) {
	pages, err := s.pdf.Pages(data)
	if err != nil {
		return nil, err
	}
	a := &acquired{pages: pages, format: extraction.FormatPDF, info: patent.Acquisition{Method: patent.MethodText}}
	density := extraction.Assess(pages, s.density)

	if density.LooksScanned {
		if words, err := s.pdf.Words(data); err != nil {
			s.logger.Warn("word reconstruction failed", logging.Err(err))
		} else if wd := extraction.Assess(words, s.density); wd.TotalChars > density.TotalChars {
			a.pages, a.info.Method, density = words, patent.MethodWords, wd
		}
	}

	if density.LooksScanned {
		s.tryOCR(ctx, data, a, density)
	}

	a.info.Pages = len(a.pages)
	a.info.Chars = extraction.Assess(a.pages, s.density).TotalChars
	return a, nil
}

// tryOCR replaces a's pages with OCR output when the engine is available and
// recognises more text than the extractor did.
func (s *Service) tryOCR(ctx context.Context, data []byte, a *acquired, density extraction.Density) {
	av := ocr.Availability{Status: ocr.StatusDisabled, Reason: "no ocr engine configured"}
	if s.ocr != nil {
		av = s.ocr.Probe()
	}
	a.info.OCRStatus, a.info.OCRReason = string(av.Status), av.Reason
	if s.metrics != nil {
		v := 0.0
		if av.Available() {
			v = 1
		}
		s.metrics.OCRAvailability.WithLabelValues().Set(v)
	}
	if !av.Available() {
		s.logger.Info("sparse text layer, ocr not available",
			logging.String("ocr_status", string(av.Status)), logging.String("reason", av.Reason))
		return
	}

	if s.probe != nil {
		if info, err := s.probe(data); err == nil && !info.HasImages {
			a.info.OCRReason = "no page images"
			s.logger.Debug("sparse text layer without images, skipping ocr", logging.Int("pages", info.PageCount))
			return
		}
	}

	pages, err := s.ocr.Recognize(ctx, data)
	if err != nil {
		a.info.OCRReason = err.Error()
		s.logger.Warn("ocr failed, keeping extracted text", logging.Err(err))
		return
	}
	if od := extraction.Assess(pages, s.density); od.TotalChars > density.TotalChars {
		a.pages, a.info.Method = pages, patent.MethodOCR
	}
}

//Personal.AI order the ending
