// Package extraction turns raw document bytes into per-page text. The PDF,
// OCR and HTML collaborators live in sub-packages; this package holds format
// detection and the text-density heuristic that decides when a PDF is likely
// scanned.
package extraction

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
)

// Format is a supported input format.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// DetectMIME sniffs the MIME type of data, using the standard library first
// and the broader mimetype detector when that is inconclusive.
func DetectMIME(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(data)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(data).String()
}

// DetectFormat classifies a document by content, falling back to the file
// extension when the content is ambiguous.
func DetectFormat(data []byte, fileName string) Format {
	if bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return FormatPDF
	}
	mt := DetectMIME(data)
	switch {
	case strings.HasPrefix(mt, "application/pdf"):
		return FormatPDF
	case strings.HasPrefix(mt, "text/html"), strings.HasPrefix(mt, "application/xhtml"):
		return FormatHTML
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".txt", ".text":
		return FormatText
	}
	if strings.HasPrefix(mt, "text/plain") {
		return FormatText
	}
	return FormatUnknown
}

// DensityConfig holds the scanned-document thresholds.
type DensityConfig struct {
	MinAvgCharsPerPage int     // Average characters per page below which text is sparse.
	NearEmptyChars     int     // A page with fewer characters counts as near-empty.
	MaxNearEmptyRatio  float64 // Sparse when more than this share of pages is near-empty.
	MinTotalChars      int     // Sparse when the whole document has fewer characters.
}

// DefaultDensityConfig returns the standard thresholds.
func DefaultDensityConfig() DensityConfig {
	return DensityConfig{
		MinAvgCharsPerPage: 200,
		NearEmptyChars:     20,
		MaxNearEmptyRatio:  2.0 / 3.0,
		MinTotalChars:      400,
	}
}

// Density summarises how much text the pages carry.
type Density struct {
	Pages        int
	TotalChars   int
	AvgPerPage   float64
	NearEmpty    int
	LooksScanned bool
}

// Assess measures pages against cfg. Characters are counted after trimming
// whitespace.
func Assess(pages []string, cfg DensityConfig) Density {
	d := Density{Pages: len(pages)}
	for _, p := range pages {
		n := common.RuneLen(strings.TrimSpace(p))
		d.TotalChars += n
		if n < cfg.NearEmptyChars {
			d.NearEmpty++
		}
	}
	if d.Pages == 0 {
		d.LooksScanned = true
		return d
	}
	d.AvgPerPage = float64(d.TotalChars) / float64(d.Pages)
	d.LooksScanned = d.AvgPerPage < float64(cfg.MinAvgCharsPerPage) ||
		float64(d.NearEmpty) > cfg.MaxNearEmptyRatio*float64(d.Pages) ||
		d.TotalChars < cfg.MinTotalChars
	return d
}

//Personal.AI order the ending
