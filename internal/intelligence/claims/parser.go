// Package claims extracts numbered claims from the text of a CLAIMS section
// and detects the claims each one refers back to.
package claims

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// maxRangeSpan bounds the expansion of "claims 1 to N" style ranges.
const maxRangeSpan = 100

// ============================================================================
// Claim start patterns
// ============================================================================

// numberKind tells how the captured claim number is written.
type numberKind int

const (
	arabicNumber numberKind = iota
	chineseNumber
)

type startPattern struct {
	name string
	re   *regexp.Regexp
	kind numberKind
}

// startPatterns are tried in order. Language-specific forms come before the
// loose generic "N." rule, which would otherwise capture the digits of
// "청구항 1" or "【請求項1】".
var startPatterns = []startPattern{
	{"ja-bracket", regexp.MustCompile(`^\s*[【\[]\s*請求項\s*([0-9０-９]+)\s*[】\]]\s*`), arabicNumber},
	{"ja", regexp.MustCompile(`^\s*請求項\s*([0-9０-９]+)\s*[.．:：]\s*`), arabicNumber},
	{"ko", regexp.MustCompile(`^\s*청구항\s*([0-9０-９]+)(?:\s*[.．)）:：]\s*|\s+|$)`), arabicNumber},
	{"zh", regexp.MustCompile(`^\s*权利要求\s*([0-9０-９]+)\s*[.．、:：]\s*`), arabicNumber},
	{"zh-numeral", regexp.MustCompile(`^\s*([一二三四五六七八九十]+)\s*[、.．]\s*`), chineseNumber},
	{"cjk-punct", regexp.MustCompile(`^\s*([0-9０-９]+)\s*[、．]\s*`), arabicNumber},
	{"de", regexp.MustCompile(`(?i)^\s*anspruch\s+([0-9]+)\s*[.:)]\s*`), arabicNumber},
	{"fr", regexp.MustCompile(`(?i)^\s*revendication\s+([0-9]+)\s*[.:)]\s*`), arabicNumber},
	{"generic", regexp.MustCompile(`(?i)^\s*(?:claim\s*)?([0-9]+)\s*[.)](?:\s+|$)`), arabicNumber},
}

// inlineStart finds claim markers that unambiguously open a new claim even in
// the middle of a line: bracketed Japanese numbers and Korean "청구항 N." after
// a sentence boundary.
var inlineStart = regexp.MustCompile(`[【\[]\s*請求項\s*[0-9０-９]+\s*[】\]]|[.。]\s+청구항\s*[0-9０-９]+\s*[.．]`)

// matchStart reports the claim number and the remainder of line when line opens
// a claim.
func matchStart(line string) (int, string, bool) {
	for _, p := range startPatterns {
		m := p.re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		raw := line[m[2]:m[3]]
		var (
			num int
			ok  bool
		)
		switch p.kind {
		case chineseNumber:
			num, ok = parseChineseNumeral(raw)
		default:
			var err error
			num, err = strconv.Atoi(common.ToASCIIDigits(raw))
			ok = err == nil
		}
		if !ok || num <= 0 {
			continue
		}
		return num, strings.TrimSpace(line[m[1]:]), true
	}
	return 0, "", false
}

// splitInline breaks lines at inline claim markers so each claim begins on its
// own line.
func splitInline(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		for {
			locs := inlineStart.FindAllStringIndex(ln, -1)
			cut := -1
			for _, loc := range locs {
				start := loc[0]
				if ln[start] == '.' || strings.HasPrefix(ln[start:], "。") {
					// Keep the sentence terminator with the preceding claim.
					start += len(string([]rune(ln[start:])[0]))
				}
				if strings.TrimSpace(ln[:start]) != "" {
					cut = start
					break
				}
			}
			if cut < 0 {
				break
			}
			out = append(out, ln[:cut])
			ln = strings.TrimLeft(ln[cut:], " \t")
		}
		out = append(out, ln)
	}
	return out
}

// ============================================================================
// Parse
// ============================================================================

// Parse extracts claims in the order encountered. A start line whose number
// was already used is treated as continuation text so numbers stay unique.
// Lines before the first claim are ignored. Empty input yields an empty list.
func Parse(text string) []patent.Claim {
	result := make([]patent.Claim, 0)
	if strings.TrimSpace(text) == "" {
		return result
	}

	type open struct {
		num   int
		lines []string
	}
	var cur *open
	seen := make(map[int]bool)

	seal := func() {
		if cur == nil {
			return
		}
		result = append(result, patent.Claim{
			Num:  cur.num,
			Text: strings.TrimSpace(strings.Join(cur.lines, "\n")),
		})
	}

	for _, ln := range splitInline(text) {
		if num, rest, ok := matchStart(ln); ok && !seen[num] {
			seal()
			seen[num] = true
			cur = &open{num: num, lines: []string{rest}}
			continue
		}
		if cur != nil {
			cur.lines = append(cur.lines, strings.TrimSpace(ln))
		}
	}
	seal()

	for i := range result {
		result[i].Dependencies = DependenciesOf(result[i].Text, result[i].Num)
	}
	return result
}

// Independent returns the claims that reference no other claim.
func Independent(claims []patent.Claim) []patent.Claim {
	out := make([]patent.Claim, 0, len(claims))
	for _, c := range claims {
		if c.IsIndependent() {
			out = append(out, c)
		}
	}
	return out
}

//Personal.AI order the ending
