package metadata

import (
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// field names a Metadata attribute a rule can populate.
type field int

const (
	fieldPublicationNumber field = iota
	fieldApplicationNumber
	fieldRegistrationNumber
	fieldPriorityNumber
	fieldTitle
	fieldAssignee
	fieldInventors
	fieldIPCCodes
	fieldCPCCodes
	fieldPublicationDate
	fieldApplicationDate
	fieldRegistrationDate
	fieldPriorityDate
)

// valueKind selects how a captured value is normalised.
type valueKind int

const (
	kindText     valueKind = iota // trimmed free text
	kindNumber                    // identifier, whitespace collapsed
	kindDate                      // any supported date form, stored as ISO
	kindParty                     // applicant or assignee name
	kindNames                     // inventor list
	kindNamesCJK                  // inventor list where single spaces also separate names
	kindNamesUS                   // "Name, City, ST (US); Name, ..." inventor list
	kindCodes                     // classification codes within the captured group
	kindCodeBlock                 // codes after the match, up to codeBlockRunes or the next INID code
)

// codeBlockRunes bounds the window scanned for codes after a (51)/(52) marker.
const codeBlockRunes = 600

// rule extracts one field. Rules are tried in table order and the first
// non-empty value per field wins. When all is set every match contributes
// (used for repeated 【氏名】 entries).
type rule struct {
	field field
	kind  valueKind
	re    *regexp.Regexp
	all   bool
}

// ─────────────────────────────────────────────────────────────────────────────
// Value cleanup
// ─────────────────────────────────────────────────────────────────────────────

var (
	reCode          = regexp.MustCompile(`\b([A-H][0-9]{2}[A-Z])\s?([0-9]{1,4}/[0-9]{1,6})\b`)
	reMastheadCode  = regexp.MustCompile(`\(\d{2}\)`)
	reParenthetical = regexp.MustCompile(`\([^()]*\)|（[^（）]*）|【[^【】]*】|\[[^\[\]]*\]`)
	reSpaces        = regexp.MustCompile(`[ \t\x{3000}]+`)
	reNameSplit     = regexp.MustCompile(`[,、，;；]|\s{2,}`)
	reApplicantID   = regexp.MustCompile(`^\d{6,}\s*`)
)

// cutAtMasthead drops everything from the first "(NN)" masthead code on, so a
// value captured from a crowded masthead line does not swallow the next field.
func cutAtMasthead(s string) string {
	if loc := reMastheadCode.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func cleanText(s string) string {
	return strings.Trim(collapseSpaces(cutAtMasthead(s)), " :;,")
}

func cleanNumber(s string) string {
	return strings.Trim(collapseSpaces(cutAtMasthead(s)), " :;,.")
}

// cleanParty removes parentheticals, stray masthead codes, applicant ID
// numbers and classification fragments from a person or organisation name.
func cleanParty(s string) string {
	s = cutAtMasthead(s)
	s = reParenthetical.ReplaceAllString(s, " ")
	s = reCode.ReplaceAllString(s, " ")
	s = reApplicantID.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.Trim(collapseSpaces(s), " :;,.")
}

// splitNames splits an inventor list, cleans each name and removes
// duplicates while keeping first occurrence order.
func splitNames(raw string, kind valueKind) []string {
	raw = cutAtMasthead(raw)
	var parts []string
	switch kind {
	case kindNamesUS:
		for _, entry := range strings.Split(raw, ";") {
			name, _, _ := strings.Cut(entry, ",")
			parts = append(parts, name)
		}
	case kindNamesCJK:
		for _, p := range reNameSplit.Split(raw, -1) {
			parts = append(parts, strings.Fields(p)...)
		}
	default:
		parts = reNameSplit.Split(raw, -1)
	}
	return dedupeNames(parts)
}

func dedupeNames(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := cleanParty(p)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// findCodes returns the sorted set of classification codes in s, canonicalised
// to "C21D 8/12".
func findCodes(s string) []string {
	set := make(map[string]struct{})
	for _, m := range reCode.FindAllStringSubmatch(s, -1) {
		set[m[1]+" "+m[2]] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// runeWindow returns up to n runes of s starting at byte offset from.
func runeWindow(s string, from, n int) string {
	rest := s[from:]
	if common.RuneLen(rest) <= n {
		return rest
	}
	return string([]rune(rest)[:n])
}

// ─────────────────────────────────────────────────────────────────────────────
// Field access
// ─────────────────────────────────────────────────────────────────────────────

func isSet(m *patent.Metadata, f field) bool {
	switch f {
	case fieldPublicationNumber:
		return m.PublicationNumber != ""
	case fieldApplicationNumber:
		return m.ApplicationNumber != ""
	case fieldRegistrationNumber:
		return m.RegistrationNumber != ""
	case fieldPriorityNumber:
		return m.PriorityNumber != ""
	case fieldTitle:
		return m.Title != ""
	case fieldAssignee:
		return m.Assignee != ""
	case fieldInventors:
		return len(m.Inventors) > 0
	case fieldIPCCodes:
		return len(m.IPCCodes) > 0
	case fieldCPCCodes:
		return len(m.CPCCodes) > 0
	case fieldPublicationDate:
		return m.PublicationDate != ""
	case fieldApplicationDate:
		return m.ApplicationDate != ""
	case fieldRegistrationDate:
		return m.RegistrationDate != ""
	case fieldPriorityDate:
		return m.PriorityDate != ""
	}
	return false
}

func setString(m *patent.Metadata, f field, v string) {
	switch f {
	case fieldPublicationNumber:
		m.PublicationNumber = v
	case fieldApplicationNumber:
		m.ApplicationNumber = v
	case fieldRegistrationNumber:
		m.RegistrationNumber = v
	case fieldPriorityNumber:
		m.PriorityNumber = v
	case fieldTitle:
		m.Title = v
	case fieldAssignee:
		m.Assignee = v
	case fieldPublicationDate:
		m.PublicationDate = v
	case fieldApplicationDate:
		m.ApplicationDate = v
	case fieldRegistrationDate:
		m.RegistrationDate = v
	case fieldPriorityDate:
		m.PriorityDate = v
	}
}

func setList(m *patent.Metadata, f field, v []string) {
	switch f {
	case fieldInventors:
		m.Inventors = v
	case fieldIPCCodes:
		m.IPCCodes = v
	case fieldCPCCodes:
		m.CPCCodes = v
	}
}

// fill copies every field of src that is unset in dst. Jurisdiction follows
// the same first-non-empty rule.
func fill(dst *patent.Metadata, src patent.Metadata) {
	if dst.PublicationNumber == "" {
		dst.PublicationNumber = src.PublicationNumber
	}
	if dst.ApplicationNumber == "" {
		dst.ApplicationNumber = src.ApplicationNumber
	}
	if dst.RegistrationNumber == "" {
		dst.RegistrationNumber = src.RegistrationNumber
	}
	if dst.PriorityNumber == "" {
		dst.PriorityNumber = src.PriorityNumber
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Assignee == "" {
		dst.Assignee = src.Assignee
	}
	if len(dst.Inventors) == 0 {
		dst.Inventors = src.Inventors
	}
	if len(dst.IPCCodes) == 0 {
		dst.IPCCodes = src.IPCCodes
	}
	if len(dst.CPCCodes) == 0 {
		dst.CPCCodes = src.CPCCodes
	}
	if dst.PublicationDate == "" {
		dst.PublicationDate = src.PublicationDate
	}
	if dst.ApplicationDate == "" {
		dst.ApplicationDate = src.ApplicationDate
	}
	if dst.RegistrationDate == "" {
		dst.RegistrationDate = src.RegistrationDate
	}
	if dst.PriorityDate == "" {
		dst.PriorityDate = src.PriorityDate
	}
	if dst.Jurisdiction == "" {
		dst.Jurisdiction = src.Jurisdiction
	}
}

// prune drops empty list values so they never serialise.
func prune(m *patent.Metadata) {
	if len(m.Inventors) == 0 {
		m.Inventors = nil
	}
	if len(m.IPCCodes) == 0 {
		m.IPCCodes = nil
	}
	if len(m.CPCCodes) == 0 {
		m.CPCCodes = nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rule evaluation
// ─────────────────────────────────────────────────────────────────────────────

// apply runs rules over text into m, skipping fields that are already set.
func apply(m *patent.Metadata, text string, rules []rule) {
	for _, r := range rules {
		if isSet(m, r.field) {
			continue
		}
		if r.all {
			var names []string
			for _, sm := range r.re.FindAllStringSubmatch(text, -1) {
				names = append(names, sm[1])
			}
			if len(names) > 0 {
				if v := dedupeNames(names); len(v) > 0 {
					setList(m, r.field, v)
				}
			}
			continue
		}
		loc := r.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		raw := ""
		if len(loc) >= 4 && loc[2] >= 0 {
			raw = text[loc[2]:loc[3]]
		}
		switch r.kind {
		case kindText:
			if v := cleanText(raw); v != "" {
				setString(m, r.field, v)
			}
		case kindNumber:
			if v := cleanNumber(raw); v != "" {
				setString(m, r.field, v)
			}
		case kindDate:
			if v, ok := NormalizeDate(cutAtMasthead(raw)); ok {
				setString(m, r.field, v)
			}
		case kindParty:
			if v := cleanParty(raw); v != "" {
				setString(m, r.field, v)
			}
		case kindNames, kindNamesCJK, kindNamesUS:
			if v := splitNames(raw, r.kind); len(v) > 0 {
				setList(m, r.field, v)
			}
		case kindCodes:
			if v := findCodes(raw); len(v) > 0 {
				setList(m, r.field, v)
			}
		case kindCodeBlock:
			if v := findCodes(cutAtMasthead(runeWindow(text, loc[1], codeBlockRunes))); len(v) > 0 {
				setList(m, r.field, v)
			}
		}
	}
}

//Personal.AI order the ending
