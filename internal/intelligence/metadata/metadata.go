// Package metadata extracts sparse bibliographic metadata from the cleaned
// text of a patent document.
//
// One Extractor exists per jurisdiction. Extract runs them in a fixed
// priority order (WO, US, JP, CN, EP, KR) and merges their output field by
// field: the first extractor to produce a non-empty value for a field wins. A
// label-agnostic fallback then fills fields that are still missing, and the
// jurisdiction is finally re-derived from the publication number prefix when
// that prefix is unambiguous.
package metadata

import (
	"regexp"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/internal/intelligence/segmenter"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Extractor pulls the fields one jurisdiction's front page carries.
type Extractor interface {
	Jurisdiction() patent.Jurisdiction
	Extract(text string) patent.Metadata
}

// mastheadRunes caps the front-page window detection and gated rules see.
const mastheadRunes = 3000

// masthead returns the front page: the text before the first section header,
// at most mastheadRunes long. A text that opens with a header falls back to
// its leading window. Office names and publication numbers cited in the body
// stay out of it.
func masthead(text string) string {
	end := len(text)
	offset := 0
	for _, ln := range strings.SplitAfter(text, "\n") {
		if _, ok := segmenter.Classify(ln); ok {
			end = offset
			break
		}
		offset += len(ln)
	}
	head := text[:end]
	if strings.TrimSpace(head) == "" {
		head = text
	}
	return runeWindow(head, 0, mastheadRunes)
}

// latinTitle captures a "(54)" title line that does not open with a CJK label
// such as "발명의 명칭" or "【発明の名称】".
const latinTitle = `([^\s\p{Han}\p{Hangul}\p{Hiragana}\p{Katakana}【][^\n]*)`

// tableExtractor is an Extractor driven by regex tables.
//
// labeled rules carry language-specific label words and run on every text.
// gated rules rely on masthead codes or number shapes alone. They run on the
// masthead only, and only when one of the detect patterns matches there, so a
// "(54)" line in a Korean document is never read as an English title and an
// EP number cited in the background never becomes the publication number.
type tableExtractor struct {
	jurisdiction patent.Jurisdiction
	detect       []*regexp.Regexp
	labeled      []rule
	gated        []rule
}

func (e *tableExtractor) Jurisdiction() patent.Jurisdiction { return e.jurisdiction }

func (e *tableExtractor) detected(text string) bool {
	for _, re := range e.detect {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (e *tableExtractor) Extract(text string) patent.Metadata {
	var m patent.Metadata
	head := masthead(text)
	detected := e.detected(head)
	if detected {
		m.Jurisdiction = e.jurisdiction
	}
	apply(&m, text, e.labeled)
	if detected {
		apply(&m, head, e.gated)
	}
	return m
}

// DefaultOrder returns the merge priority: WO, US, JP, CN, EP, KR.
func DefaultOrder() []Extractor {
	return []Extractor{
		newWOExtractor(),
		newUSExtractor(),
		newJPExtractor(),
		newCNExtractor(),
		newEPExtractor(),
		newKRExtractor(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Option configures a Service.
type Option func(*Service)

// WithExtractors replaces the merge order.
func WithExtractors(extractors ...Extractor) Option {
	return func(s *Service) {
		s.extractors = extractors
	}
}

// WithoutFallback disables the label-agnostic fallback pass.
func WithoutFallback() Option {
	return func(s *Service) {
		s.fallback = false
	}
}

// Service merges extractor output. It holds no per-document state and is
// safe for concurrent use.
type Service struct {
	extractors []Extractor
	fallback   bool
}

// New returns a Service using DefaultOrder unless overridden.
func New(opts ...Option) *Service {
	s := &Service{extractors: DefaultOrder(), fallback: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract merges every extractor's fields in priority order, fills gaps from
// the fallback patterns, re-derives the jurisdiction and prunes empties.
func (s *Service) Extract(text string) patent.Metadata {
	text = common.FoldWidth(text)

	var merged patent.Metadata
	for _, e := range s.extractors {
		fill(&merged, e.Extract(text))
	}
	if s.fallback {
		apply(&merged, text, fallbackRules)
	}
	if j, ok := JurisdictionFromNumber(merged.PublicationNumber); ok {
		merged.Jurisdiction = j
	}
	prune(&merged)
	return merged
}

var defaultService = New()

// Extract runs the default Service.
func Extract(text string) patent.Metadata {
	return defaultService.Extract(text)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fallback
// ─────────────────────────────────────────────────────────────────────────────

var fallbackRules = []rule{
	{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\b(?:PUB\s*NO\.?|publication\s*number)[:\s]*([A-Z]{2}\d+[A-Z]?\d*)`)},
	{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\b(?:application\s*number|app\s*no\.?|appl\.?\s*no\.?)[:\s]*([A-Z]{2}\d+[A-Z]?\d*)`)},
	{field: fieldIPCCodes, kind: kindCodes, re: regexp.MustCompile(`(?i)\bIPC\b[:\s]*([A-Z0-9/;\s,]+)`)},
	{field: fieldCPCCodes, kind: kindCodes, re: regexp.MustCompile(`(?i)\bCPC\b[:\s]*([A-Z0-9/;\s,]+)`)},
}

// ─────────────────────────────────────────────────────────────────────────────
// Jurisdiction from number
// ─────────────────────────────────────────────────────────────────────────────

var (
	rePrefixKR = regexp.MustCompile(`^(?:KR|10-\d{4}|10-\d{7}|20-\d{4})`)
	rePrefixJP = regexp.MustCompile(`^(?:JP|特開|特表|特許|特公|実開)`)
	rePrefixCN = regexp.MustCompile(`^CN\d`)
	rePrefixUS = regexp.MustCompile(`^US\d`)
	rePrefixEP = regexp.MustCompile(`^EP\d`)
	rePrefixWO = regexp.MustCompile(`^WO\d`)
)

// JurisdictionFromNumber identifies the jurisdiction a publication number
// belongs to from its prefix. Whitespace is ignored.
func JurisdictionFromNumber(number string) (patent.Jurisdiction, bool) {
	n := strings.ToUpper(strings.Join(strings.Fields(number), ""))
	if n == "" {
		return "", false
	}
	switch {
	case rePrefixWO.MatchString(n):
		return patent.JurisdictionWO, true
	case rePrefixEP.MatchString(n):
		return patent.JurisdictionEP, true
	case rePrefixUS.MatchString(n):
		return patent.JurisdictionUS, true
	case rePrefixJP.MatchString(n):
		return patent.JurisdictionJP, true
	case rePrefixCN.MatchString(n):
		return patent.JurisdictionCN, true
	case rePrefixKR.MatchString(n):
		return patent.JurisdictionKR, true
	}
	return "", false
}

//Personal.AI order the ending
