package chunker

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// elementSymbols is the curated set of alloying and impurity elements that
// show up in steel and alloy claims.
var elementSymbols = map[string]bool{
	"C": true, "Si": true, "Mn": true, "P": true, "S": true, "Al": true, "N": true,
	"Cu": true, "Sn": true, "Sb": true, "Cr": true, "Ni": true, "Mo": true, "Nb": true,
	"Ti": true, "V": true, "B": true, "Bi": true, "Se": true, "Fe": true, "Mg": true,
	"Zr": true, "Ca": true, "O": true, "Co": true, "Zn": true, "Te": true,
}

var reSymbolCandidate = regexp.MustCompile(`[A-Z][a-z]?`)

// keyword maps surface forms in EN/JA/ZH/KO to one canonical tag.
type keyword struct {
	tag   string
	forms []string
}

var processKeywords = []keyword{
	{"hot_rolling", []string{"hot rolling", "hot-rolling", "hot rolled", "hot-rolled", "熱間圧延", "热轧", "열간압연", "열간 압연"}},
	{"cold_rolling", []string{"cold rolling", "cold-rolling", "cold rolled", "cold-rolled", "冷間圧延", "冷轧", "냉간압연", "냉간 압연"}},
	{"annealing", []string{"anneal", "焼鈍", "焼なまし", "退火", "소둔", "어닐링"}},
	{"decarburization", []string{"decarburiz", "decarburis", "脱炭", "脱碳", "탈탄"}},
	{"nitriding", []string{"nitrid", "窒化", "渗氮", "질화"}},
	{"secondary_recrystallization", []string{"secondary recrystalliz", "二次再結晶", "二次再结晶", "2차 재결정", "이차 재결정"}},
	{"primary_recrystallization", []string{"primary recrystalliz", "一次再結晶", "一次再结晶", "1차 재결정", "일차 재결정"}},
	{"grain_size", []string{"grain size", "grain diameter", "結晶粒径", "晶粒尺寸", "晶粒度", "결정립 크기", "결정립경", "결정립"}},
	{"texture", []string{"texture", "goss", "集合組織", "织构", "집합조직"}},
	{"inhibitor", []string{"inhibitor", "インヒビター", "抑制剂", "인히비터", "억제제"}},
	{"coating", []string{"coating", "被膜", "皮膜", "涂层", "피막", "코팅"}},
	{"pickling", []string{"pickling", "酸洗", "산세"}},
	{"slab_reheating", []string{"slab reheating", "slab heating", "スラブ加熱", "板坯加热", "슬라브 재가열", "슬라브 가열"}},
	{"heat_treatment", []string{"heat treatment", "heat-treat", "熱処理", "热处理", "열처리"}},
	{"precipitate", []string{"precipitat", "析出", "석출"}},
}

// roleVocab drives InferRole. Entries are matched case-insensitively.
var (
	effectVocab = []string{
		"core loss", "iron loss", "magnetic flux density", "flux density", "permeability",
		"magnetostriction", "magnetic propert", "w17/50", "w15/50", "w10/400",
		"鉄損", "磁束密度", "磁気特性", "铁损", "磁感", "磁性能", "철손", "자속밀도", "자기적 특성", "자성",
	}
	processVocab = []string{
		"rolling", "anneal", "heat treatment", "heat-treat", "quench", "temper", "pickling",
		"圧延", "焼鈍", "熱処理", "轧制", "退火", "热处理", "압연", "소둔", "열처리",
	}
	measurementVocab = []string{
		"measured", "measurement", "spectroscop", "x-ray", "epstein", "single sheet tester",
		"測定", "测定", "测量", "측정",
	}
	reInstrument = regexp.MustCompile(`\b(?:SEM|TEM|EBSD|XRD|XRF|ICP|GDS|EPMA)\b`)
)

// ExtractTags collects the units present in numbers, the element symbols and
// process keywords found in text, and the inferred role.
func ExtractTags(text string, numbers []patent.NormNumber) patent.Tags {
	units := make([]string, 0, len(numbers))
	seenUnit := make(map[string]bool)
	for _, n := range numbers {
		if !seenUnit[n.Unit] {
			seenUnit[n.Unit] = true
			units = append(units, n.Unit)
		}
	}
	sort.Strings(units)

	params := make(map[string]bool)
	for _, sym := range elementsIn(text) {
		params[sym] = true
	}
	lower := strings.ToLower(text)
	for _, kw := range processKeywords {
		for _, f := range kw.forms {
			if strings.Contains(lower, f) {
				params[kw.tag] = true
				break
			}
		}
	}
	parameters := make([]string, 0, len(params))
	for p := range params {
		parameters = append(parameters, p)
	}
	sort.Strings(parameters)

	return patent.Tags{Units: units, Parameters: parameters, Role: InferRole(text)}
}

// elementsIn returns element symbols that stand alone in text. A symbol must
// not touch a letter on either side nor follow a degree sign.
func elementsIn(text string) []string {
	var out []string
	for _, loc := range reSymbolCandidate.FindAllStringIndex(text, -1) {
		sym := text[loc[0]:loc[1]]
		if !elementSymbols[sym] {
			continue
		}
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
			if unicode.IsLetter(prev) || prev == '°' || prev == '/' || prev == '-' {
				continue
			}
		}
		rest := text[loc[1]:]
		if next, _ := utf8.DecodeRuneInString(rest); rest != "" && unicode.IsLetter(next) {
			continue
		}
		if len(sym) == 1 && !singleLetterContext(rest) {
			continue
		}
		out = append(out, sym)
	}
	return out
}

// singleLetterContext reports whether the text after a one-letter symbol reads
// like a composition entry: "C: 0.05%", "N (0.008%)" or "S 0.002%". "B8" and
// "P2019-012345" are rejected.
func singleLetterContext(rest string) bool {
	if rest == "" {
		return false
	}
	if strings.HasPrefix(rest, "：") {
		return true
	}
	switch rest[0] {
	case ':', '(':
		return true
	case ' ', '\t':
		tail := strings.TrimLeft(rest, " \t")
		return tail != "" && strings.ContainsAny(tail[:1], ":(0123456789")
	}
	return false
}

// InferRole applies EFFECT > PROCESS > MEASUREMENT > CONFIG precedence.
func InferRole(text string) patent.Role {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, effectVocab):
		return patent.RoleEffect
	case containsAny(lower, processVocab):
		return patent.RoleProcess
	case containsAny(lower, measurementVocab) || reInstrument.MatchString(text):
		return patent.RoleMeasurement
	default:
		return patent.RoleConfig
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
