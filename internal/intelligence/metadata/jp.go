package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// jpLabel matches a JPO field label written either as "(NN)label" on the
// printed gazette or as "【label】" in the electronic filing format.
func jpLabel(code, label string) string {
	return `(?:\(` + code + `\)\s*` + label + `|【` + label + `】)\s*:?\s*`
}

func newJPExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionJP,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`日本国特許庁`),
			regexp.MustCompile(`\(19\)[^\n]{0,20}日本国`),
			regexp.MustCompile(`【発行国】\s*日本国`),
			regexp.MustCompile(`\(19\)[^\n]{0,40}\(JP\)`),
		},
		labeled: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(jpLabel("11", `(?:特許出願公開番号|公開番号|公表番号)`) + `(特(?:開|表)\s*(?:平|昭)?\s*\d{2,4}\s*-\s*\d+)`)},
			{field: fieldRegistrationNumber, kind: kindNumber, re: regexp.MustCompile(jpLabel("11", `特許番号`) + `(特許\s*第?\s*\d+\s*号?)`)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(jpLabel("43", `(?:公開日|公表日)`) + `([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(jpLabel("24", `登録日`) + `([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(jpLabel("45", `発行日`) + `([^\n]+)`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(jpLabel("21", `出願番号`) + `(特願\s*\d{4}\s*-\s*\d+|[^\n(]+)`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(jpLabel("22", `出願日`) + `([^\n]+)`)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(jpLabel("31", `優先権主張番号`) + `([^\n(]+)`)},
			{field: fieldPriorityDate, kind: kindDate, re: regexp.MustCompile(jpLabel("32", `優先日`) + `([^\n]+)`)},
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(jpLabel("54", `発明の名称`) + `([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`【出願人】[\s\S]{0,80}?【氏名又は名称】\s*([^\n【]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`\((?:71|73)\)\s*(?:出願人|特許権者)\s*:?\s*(?:\d{9}\s*)?([^\n]+)`)},
			{field: fieldInventors, kind: kindNames, re: regexp.MustCompile(`【氏名】\s*([^\n【]+)`), all: true},
			{field: fieldInventors, kind: kindNames, re: regexp.MustCompile(`\(72\)\s*発明者\s*:?\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`(?:\(51\)\s*(?:Int\.?\s*Cl\.?|国際特許分類)|【国際特許分類】)`)},
		},
		gated: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`(特開\s*\d{4}\s*-\s*\d{4,})`)},
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(JP\s*\d{4}\s*-?\s*\d{6}\s*A)\b`)},
		},
	}
}

//Personal.AI order the ending
