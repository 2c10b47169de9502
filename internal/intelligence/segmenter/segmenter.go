// Package segmenter splits cleaned patent text into typed sections using a
// multilingual table of header patterns (English, Korean, Japanese, Chinese,
// German and French).
package segmenter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// MaxHeaderRunes bounds the length of a line that may act as a header.
const MaxHeaderRunes = 80

// ============================================================================
// Header rule table
// ============================================================================

// headerRules is evaluated top to bottom; the first matching rule wins. More
// specific headings ("description of the related art", "brief description of
// the drawings", "zusammenfassung der erfindung") precede the generic ones they
// would otherwise be swallowed by.
var headerRules = []struct {
	Type     patent.SectionType
	Patterns []string
}{
	{patent.SectionDrawings, []string{
		`^(?:brief )?description of (?:the )?(?:drawings?|figures?)$`,
		`^도면의\s*간단한\s*설명$`,
		`^図面の簡単な説明$`,
		`^附图说明$`,
		`^kurze beschreibung der (?:zeichnungen|figuren)$`,
		`^brève description des (?:dessins|figures)$`,
	}},
	{patent.SectionBackground, []string{
		`^background(?: of the (?:invention|disclosure))?(?: art)?$`,
		`^(?:technical )?field(?: of the (?:invention|disclosure))?$`,
		`^(?:description of )?(?:the )?related art$`,
		`^prior art$`,
		`^기술\s*분야$`,
		`^배경\s*기술$`,
		`^발명의\s*배경$`,
		`^技術分野$`,
		`^背景技術$`,
		`^技术领域$`,
		`^背景技术$`,
		`^technisches gebiet$`,
		`^stand der technik$`,
		`^hintergrund(?: der erfindung)?$`,
		`^domaine (?:technique|de l'invention)$`,
		`^(?:arrière-plan|contexte)(?: de l'invention)?$`,
		`^état de la technique(?: antérieure)?$`,
	}},
	{patent.SectionSummary, []string{
		`^(?:brief )?summary(?: of the (?:invention|disclosure))?$`,
		`^발명의\s*(?:내용|요약)$`,
		`^해결하(?:려는|고자\s*하는)\s*과제$`,
		`^과제(?:의)?\s*해결\s*수단$`,
		`^発明の概要$`,
		`^発明が解決しようとする課題$`,
		`^課題を解決するための手段$`,
		`^发明内容$`,
		`^zusammenfassung der erfindung$`,
		`^darstellung der erfindung$`,
		`^résumé de l'invention$`,
		`^exposé de l'invention$`,
	}},
	{patent.SectionAbstract, []string{
		`^abstract(?: of the disclosure)?$`,
		`^요약(?:서)?$`,
		`^(?:書類名)?要約(?:書)?$`,
		`^(?:说明书)?摘要$`,
		`^zusammenfassung$`,
		`^abrégé$`,
		`^résumé$`,
	}},
	{patent.SectionClaims, []string{
		`^claims?$`,
		`^what is claimed is$`,
		`^(?:we|i) claim$`,
		`^the invention claimed is$`,
		`^(?:특허\s*)?청구\s*(?:의\s*)?범위$`,
		`^(?:書類名)?特許請求の範囲$`,
		`^权利要求书?$`,
		`^權利要求書?$`,
		`^(?:patent)?ansprüche$`,
		`^revendications$`,
	}},
	{patent.SectionDescription, []string{
		`^(?:detailed )?description(?: of (?:the )?(?:invention|(?:the )?(?:preferred )?embodiments?))?$`,
		`^specification$`,
		`^mode for carrying out the invention$`,
		`^명세서$`,
		`^발명의\s*(?:상세한\s*)?설명$`,
		`^발명을\s*실시하기\s*위한\s*(?:구체적인\s*내용|형태)$`,
		`^(?:書類名)?明細書$`,
		`^発明の詳細な説明$`,
		`^発明を実施するための(?:最良の)?形態$`,
		`^说明书$`,
		`^具体实施方式$`,
		`^(?:ausführliche )?beschreibung$`,
		`^description(?: détaillée)?$`,
	}},
}

type rule struct {
	typ patent.SectionType
	re  *regexp.Regexp
}

var compiledRules = compileRules()

func compileRules() []rule {
	var out []rule
	for _, group := range headerRules {
		for _, p := range group.Patterns {
			out = append(out, rule{typ: group.Type, re: regexp.MustCompile(p)})
		}
	}
	return out
}

var (
	reMastheadCode = regexp.MustCompile(`^\(\d{2}\)\s*`)
	reEnumeration  = regexp.MustCompile(`^(?:\d{1,2}|[ivx]{1,4}|[a-h])[.)]\s+`)
	reInnerSpace   = regexp.MustCompile(`\s+`)

	bracketStripper = strings.NewReplacer(
		"【", "", "】", "", "[", "", "]", "", "〔", "", "〕", "", "<", "", ">", "",
	)
)

// headerKey reduces a line to the form the header patterns are written
// against: lower-cased, without masthead codes, brackets, list numbering or a
// trailing colon.
func headerKey(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = reMastheadCode.ReplaceAllString(s, "")
	s = bracketStripper.Replace(s)
	s = reEnumeration.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ":：.。 \t")
	s = reInnerSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Classify reports the section type announced by line, if any.
func Classify(line string) (patent.SectionType, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxHeaderRunes {
		return "", false
	}
	key := headerKey(trimmed)
	if key == "" {
		return "", false
	}
	for _, r := range compiledRules {
		if r.re.MatchString(key) {
			return r.typ, true
		}
	}
	return "", false
}

// ============================================================================
// Split
// ============================================================================

type accumulator struct {
	typ   patent.SectionType
	title string
	lines []string
}

func (a *accumulator) flush(out []patent.Section) []patent.Section {
	text := strings.TrimSpace(strings.Join(a.lines, "\n"))
	if text == "" {
		return out
	}
	return append(out, patent.Section{Type: a.typ, Title: a.title, Text: text})
}

// Split scans cleaned text line by line. A header line closes the current
// section and opens a new one titled by that line; every other line is appended
// verbatim. Sections with no text are dropped. When no header matches, the
// whole text comes back as a single UNKNOWN section.
func Split(cleaned string) []patent.Section {
	sections := make([]patent.Section, 0)
	if strings.TrimSpace(cleaned) == "" {
		return sections
	}

	cur := &accumulator{typ: patent.SectionUnknown}
	for _, ln := range strings.Split(cleaned, "\n") {
		if typ, ok := Classify(ln); ok {
			sections = cur.flush(sections)
			cur = &accumulator{typ: typ, title: strings.TrimSpace(ln)}
			continue
		}
		cur.lines = append(cur.lines, ln)
	}
	return cur.flush(sections)
}

// FirstOfType returns the first section of type t.
func FirstOfType(sections []patent.Section, t patent.SectionType) (patent.Section, bool) {
	for _, s := range sections {
		if s.Type == t {
			return s, true
		}
	}
	return patent.Section{}, false
}

//Personal.AI order the ending
