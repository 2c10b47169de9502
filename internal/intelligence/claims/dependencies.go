package claims

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
)

// ============================================================================
// Reference patterns
// ============================================================================

var (
	// English: "claim 1", "claims 1 to 3", "claims 1, 2 or 5", "any one of claims 1-4".
	// "claim1" without a space is accepted.
	reDependencyEN = regexp.MustCompile(`(?i)\bclaims?\s*(\d+(?:\s*(?:,|and|or|to|through|-|–)\s*(?:claims?\s*)?\d+)*)`)

	// Korean KIPO form: "청구항 1에 있어서", "청구항 1 내지 3", "청구항 1 또는 2".
	reDependencyKOClaim = regexp.MustCompile(`청구항\s*([0-9０-９]+(?:\s*(?:내지|~|～|-|,|및|또는)\s*(?:청구항\s*)?[0-9０-９]+)*)`)

	// Korean: "제1항", "제 3 항". Ranges are handled by reDependencyKORange.
	reDependencyKO      = regexp.MustCompile(`제\s*([0-9０-９]+)\s*항`)
	reDependencyKORange = regexp.MustCompile(`제\s*([0-9０-９]+)\s*항\s*(?:내지|~|～|-)\s*(?:제\s*)?([0-9０-９]+)\s*항`)

	// Japanese: "請求項1", "請求項1～3", "請求項1又は2".
	reDependencyJP = regexp.MustCompile(`請求項\s*([0-9０-９]+(?:\s*(?:～|〜|~|-|－|乃至|ないし|から|または|又は|及び|若しくは|、|,|，)\s*(?:請求項)?\s*[0-9０-９]+)*)`)

	// "第N項" (JP) and "第N项" (ZH).
	reDependencyOrdinal = regexp.MustCompile(`第\s*([0-9０-９]+)\s*[項项]`)

	// Chinese: "权利要求1", "权利要求1-3", "权利要求1或2".
	reDependencyCN = regexp.MustCompile(`权利要求\s*([0-9０-９]+(?:\s*(?:、|,|，|和|或|至|到|-|~|～)\s*(?:权利要求)?\s*[0-9０-９]+)*)`)

	// German: "Anspruch 1", "Ansprüche 1 bis 3".
	reDependencyDE = regexp.MustCompile(`(?i)\banspr(?:u|ü)che?n?\s+(\d+(?:\s*(?:,|und|oder|bis|-)\s*\d+)*)`)

	// French: "revendication 1", "revendications 1 à 3".
	reDependencyFR = regexp.MustCompile(`(?i)\brevendications?\s+(\d+(?:\s*(?:,|et|ou|à|-)\s*\d+)*)`)
)

var listPatterns = []*regexp.Regexp{
	reDependencyEN, reDependencyKOClaim, reDependencyJP, reDependencyCN, reDependencyDE, reDependencyFR,
}

// listSeparators rewrites the connective words of every language into "," or
// "-" so a captured list parses uniformly.
var listSeparators = strings.NewReplacer(
	"claims", "", "claim", "", "請求項", "", "权利要求", "", "청구항", "", "내지", "-", "및", ",", "또는", ",",
	"through", "-", " to ", "-", "–", "-", "～", "-", "〜", "-", "~", "-", "－", "-",
	"乃至", "-", "ないし", "-", "から", "-", "至", "-", "到", "-", "bis", "-", "à", "-",
	"and", ",", " or ", ",", "または", ",", "又は", ",", "及び", ",", "若しくは", ",",
	"、", ",", "，", ",", "和", ",", "或", ",", "und", ",", "oder", ",", " et ", ",", " ou ", ",",
)

var reDigits = regexp.MustCompile(`\d+`)

// parseClaimNumberList expands "1, 3-5 or 7" into [1 3 4 5 7].
func parseClaimNumberList(s string) []int {
	s = listSeparators.Replace(" " + strings.ToLower(common.ToASCIIDigits(s)) + " ")
	var nums []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := reDigits.FindAllString(part, -1)
			if len(bounds) == 2 {
				lo, _ := strconv.Atoi(bounds[0])
				hi, _ := strconv.Atoi(bounds[1])
				nums = append(nums, expandRange(lo, hi)...)
				continue
			}
		}
		for _, d := range reDigits.FindAllString(part, -1) {
			if n, err := strconv.Atoi(d); err == nil {
				nums = append(nums, n)
			}
		}
	}
	return nums
}

func expandRange(lo, hi int) []int {
	if lo > hi || hi-lo > maxRangeSpan {
		return []int{lo, hi}
	}
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// ============================================================================
// DependenciesOf
// ============================================================================

// DependenciesOf returns the sorted, deduplicated claim numbers referenced in
// text, excluding self. The result is never nil.
func DependenciesOf(text string, self int) []int {
	set := make(map[int]struct{})
	add := func(nums ...int) {
		for _, n := range nums {
			if n > 0 && n != self {
				set[n] = struct{}{}
			}
		}
	}

	for _, re := range listPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			add(parseClaimNumberList(m[1])...)
		}
	}
	for _, m := range reDependencyKORange.FindAllStringSubmatch(text, -1) {
		lo, _ := strconv.Atoi(common.ToASCIIDigits(m[1]))
		hi, _ := strconv.Atoi(common.ToASCIIDigits(m[2]))
		add(expandRange(lo, hi)...)
	}
	for _, re := range []*regexp.Regexp{reDependencyKO, reDependencyOrdinal} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n, err := strconv.Atoi(common.ToASCIIDigits(m[1])); err == nil {
				add(n)
			}
		}
	}

	deps := make([]int, 0, len(set))
	for n := range set {
		deps = append(deps, n)
	}
	sort.Ints(deps)
	return deps
}

// ============================================================================
// Chinese numerals
// ============================================================================

var chineseDigits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseChineseNumeral converts numerals up to 九十九.
func parseChineseNumeral(s string) (int, bool) {
	runes := []rune(s)
	switch len(runes) {
	case 0:
		return 0, false
	case 1:
		if runes[0] == '十' {
			return 10, true
		}
		d, ok := chineseDigits[runes[0]]
		return d, ok
	}

	idx := -1
	for i, r := range runes {
		if r == '十' {
			if idx >= 0 {
				return 0, false
			}
			idx = i
		}
	}
	if idx < 0 || idx > 1 || len(runes)-idx > 2 {
		return 0, false
	}
	tens := 1
	if idx == 1 {
		d, ok := chineseDigits[runes[0]]
		if !ok {
			return 0, false
		}
		tens = d
	}
	ones := 0
	if idx+1 < len(runes) {
		d, ok := chineseDigits[runes[idx+1]]
		if !ok {
			return 0, false
		}
		ones = d
	}
	return tens*10 + ones, true
}

//Personal.AI order the ending
