package chunker

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// magnitude accepts thousands separators: "1,150" and "1150" alike.
const magnitude = `(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`

const num = `(` + magnitude + `)`

// rangeSep joins the two ends of a range: "850~900", "850-900", "850 to 900".
const rangeSep = `\s*(?:~|-|–|to|〜)\s*`

// rangeEnd is the upper end of a range. A minus after the separator belongs
// to the value: "-40 to -20".
const rangeEnd = `(-?` + magnitude + `)`

// measure describes one family of measurements. Families are scanned in
// table order and each match is masked before the next family runs, so
// "°C/s" is never read again as "°C".
type measure struct {
	name  string
	unit  string
	scale float64
	re    *regexp.Regexp
	// valueGroups are the submatch indexes that hold values.
	valueGroups []int
}

// rangeOrSingle builds a pattern matching "a~b UNIT" or "a UNIT".
func rangeOrSingle(unit string) *regexp.Regexp {
	return regexp.MustCompile(num + `(?:\s*(?:` + unit + `))?` + `(?:` + rangeSep + rangeEnd + `)?\s*(?:` + unit + `)`)
}

var measures = []measure{
	{name: "thermal_conductivity", unit: "W/(m·K)", scale: 1,
		re: rangeOrSingle(`W\s*/\s*\(?\s*m\s*[·•.*]?\s*K\s*\)?`), valueGroups: []int{1, 2}},
	{name: "core_loss", unit: "W/kg", scale: 1,
		re:          regexp.MustCompile(`W\s*\d{1,2}\s*/\s*\d{2,3}\s*(?:[:=≤<]|of|is|was)?\s*` + num + `(?:\s*W\s*/\s*kg)?`),
		valueGroups: []int{1}},
	{name: "core_loss", unit: "W/kg", scale: 1, re: rangeOrSingle(`W\s*/\s*kg`), valueGroups: []int{1, 2}},
	{name: "cooling_rate", unit: "°C/s", scale: 1, re: rangeOrSingle(`(?:°\s*C|K)\s*/\s*(?:sec|s)\b`), valueGroups: []int{1, 2}},
	{name: "temperature", unit: "°C", scale: 1, re: rangeOrSingle(`°\s*C`), valueGroups: []int{1, 2}},
	{name: "percentage", unit: "%", scale: 1, re: rangeOrSingle(`(?:wt|mass|at|vol)?\s*%|重量%|質量%|质量%`), valueGroups: []int{1, 2}},
	{name: "length", unit: "μm", scale: 1, re: rangeOrSingle(`(?:μm|um)\b`), valueGroups: []int{1, 2}},
	{name: "length", unit: "μm", scale: 1000, re: rangeOrSingle(`mm\b`), valueGroups: []int{1, 2}},
	{name: "length", unit: "μm", scale: 0.001, re: rangeOrSingle(`nm\b`), valueGroups: []int{1, 2}},
	{name: "pressure", unit: "MPa", scale: 1, re: rangeOrSingle(`MPa\b`), valueGroups: []int{1, 2}},
	{name: "pressure", unit: "MPa", scale: 1000, re: rangeOrSingle(`GPa\b`), valueGroups: []int{1, 2}},
	{name: "force", unit: "kN", scale: 1, re: rangeOrSingle(`kN\b`), valueGroups: []int{1, 2}},
}

// numberNormalizer maps the remaining dash and tilde variants to ASCII after
// width folding and NFKC.
var numberNormalizer = strings.NewReplacer("〜", "~", "∼", "~", "－", "-", "−", "-", "—", "-", "℃", "°C", "µ", "μ")

// NormalizeForNumbers applies the folding used before measurement scanning.
func NormalizeForNumbers(text string) string {
	return numberNormalizer.Replace(common.NFKC(common.FoldWidth(text)))
}

type located struct {
	pos int
	n   patent.NormNumber
}

// ExtractNumbers returns the measurements found in text, in text order.
// Ranges contribute both endpoints. The result is never nil.
func ExtractNumbers(text string) []patent.NormNumber {
	work := []byte(NormalizeForNumbers(text))
	var found []located

	for _, m := range measures {
		for _, loc := range m.re.FindAllSubmatchIndex(work, -1) {
			for _, g := range m.valueGroups {
				if 2*g+1 >= len(loc) || loc[2*g] < 0 {
					continue
				}
				v, err := strconv.ParseFloat(strings.ReplaceAll(string(work[loc[2*g]:loc[2*g+1]]), ",", ""), 64)
				if err != nil {
					continue
				}
				if g == m.valueGroups[0] && signed(work, loc[2*g]) {
					v = -v
				}
				found = append(found, located{
					pos: loc[2*g],
					n:   patent.NormNumber{Name: m.name, Value: round(v * m.scale), Unit: m.unit},
				})
			}
			for i := loc[0]; i < loc[1]; i++ {
				work[i] = ' '
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	out := make([]patent.NormNumber, 0, len(found))
	for _, f := range found {
		out = append(out, f.n)
	}
	return out
}

// signed reports whether the value starting at pos carries a leading minus.
// The minus must open a token ("at -20°C", "(-20°C)"); after a digit or a
// letter it is a separator or a hyphenated word.
func signed(work []byte, pos int) bool {
	if pos == 0 || work[pos-1] != '-' {
		return false
	}
	if pos == 1 {
		return true
	}
	switch work[pos-2] {
	case ' ', '\t', '\n', '(', '[', ':', '=', '~':
		return true
	}
	return false
}

// round trims float noise introduced by unit scaling.
func round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		return v
	}
	return r
}

//Personal.AI order the ending
