// Package pdftext reads per-page text out of PDF bytes.
//
// Page text comes from ledongthuc/pdf. When a page's plain-text stream is
// unusable, Words rebuilds it from positioned glyph runs. Probe uses pdfcpu to
// count pages and detect embedded images without decoding text.
package pdftext

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/turtacn/patent2rag/pkg/errors"
)

// Layout tunes word-position reconstruction, in PDF user-space points.
type Layout struct {
	RowTolerance float64 // Glyph runs whose baselines differ by less share a line.
	SpaceGap     float64 // A horizontal gap wider than this inserts a space.
}

// DefaultLayout returns tolerances suited to typical patent typesetting.
func DefaultLayout() Layout {
	return Layout{RowTolerance: 2.5, SpaceGap: 1.5}
}

// Extractor reads PDF bytes. The zero value uses DefaultLayout.
type Extractor struct {
	Layout Layout
}

// New returns an Extractor with the given layout.
func New(layout Layout) *Extractor {
	return &Extractor{Layout: layout}
}

func open(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "empty document")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAcquisitionFailed, "open pdf")
	}
	return r, nil
}

// Pages returns the plain text of every page, in order. A page whose text
// cannot be decoded yields "" rather than failing the document; only a PDF
// that cannot be opened at all is an error.
func (e *Extractor) Pages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, errors.Newf(errors.ErrCodeAcquisitionFailed, "malformed pdf: %v", r)
		}
	}()

	r, err := open(data)
	if err != nil {
		return nil, err
	}
	n := r.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = plainText(r.Page(i))
	}
	return pages, nil
}

func plainText(p pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if p.V.IsNull() {
		return ""
	}
	t, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}

// Words rebuilds every page from positioned glyph runs: runs are grouped
// into lines by baseline, lines ordered top to bottom and runs left to right,
// with a space inserted wherever the horizontal gap exceeds SpaceGap.
func (e *Extractor) Words(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, errors.Newf(errors.ErrCodeAcquisitionFailed, "malformed pdf: %v", r)
		}
	}()

	r, err := open(data)
	if err != nil {
		return nil, err
	}
	layout := e.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	n := r.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = layout.reconstruct(pageRuns(r.Page(i)))
	}
	return pages, nil
}

// Run is one positioned glyph run.
type Run struct {
	X, Y, W float64
	S       string
}

func pageRuns(p pdf.Page) (runs []Run) {
	defer func() {
		if recover() != nil {
			runs = nil
		}
	}()
	if p.V.IsNull() {
		return nil
	}
	for _, t := range p.Content().Text {
		if strings.TrimSpace(t.S) == "" && t.S != " " {
			continue
		}
		runs = append(runs, Run{X: t.X, Y: t.Y, W: t.W, S: t.S})
	}
	return runs
}

// reconstruct lays runs out as lines of text.
func (l Layout) reconstruct(runs []Run) string {
	if len(runs) == 0 {
		return ""
	}
	sorted := make([]Run, len(runs))
	copy(sorted, runs)
	// Higher Y is higher on the page. Rows are grouped and ordered by X below.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]Run
	for _, r := range sorted {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].Y-r.Y) < l.RowTolerance {
			rows[n-1] = append(rows[n-1], r)
			continue
		}
		rows = append(rows, []Run{r})
	}

	var b strings.Builder
	for i, row := range rows {
		sort.SliceStable(row, func(a, c int) bool { return row[a].X < row[c].X })
		if i > 0 {
			b.WriteByte('\n')
		}
		var line strings.Builder
		for j, r := range row {
			if j > 0 {
				prev := row[j-1]
				if r.X-(prev.X+prev.W) > l.SpaceGap && !strings.HasSuffix(line.String(), " ") && !strings.HasPrefix(r.S, " ") {
					line.WriteByte(' ')
				}
			}
			line.WriteString(r.S)
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
	}
	return b.String()
}

// Info is the structural summary of a PDF.
type Info struct {
	PageCount int
	HasImages bool
}

// Probe validates the PDF with pdfcpu and reports its page count and whether
// any page carries image XObjects.
func Probe(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, errors.Wrap(err, errors.ErrCodeAcquisitionFailed, "pdfcpu read")
	}
	info.PageCount = ctx.PageCount
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if len(pdfcpulib.ImageObjNrs(ctx, pageNr)) > 0 {
			info.HasImages = true
			break
		}
	}
	return info, nil
}

//Personal.AI order the ending
