package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func newCNExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionCN,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`国家知识产权局`),
			regexp.MustCompile(`\(19\)[^\n]{0,40}中华人民共和国`),
			regexp.MustCompile(`\(19\)[^\n]{0,40}\(CN\)`),
		},
		labeled: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\((?:10|11)\)\s*(?:申请公布号|公开号)\s*:?\s*(CN\s*\d{9}(?:\.\d)?\s*[A-Z]\d?)`)},
			{field: fieldRegistrationNumber, kind: kindNumber, re: regexp.MustCompile(`\((?:10|11)\)\s*(?:授权公告号|公告号)\s*:?\s*(CN\s*\d{9}(?:\.\d)?\s*[A-Z]\d?)`)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`\(43\)\s*(?:申请公布日|公开日)\s*:?\s*([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(`\(45\)\s*(?:授权公告日|公告日)\s*:?\s*([^\n]+)`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`\(21\)\s*申请号\s*:?\s*((?:CN)?\s*\d{8,13}\.?[0-9X]?)`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(`\(22\)\s*申请日\s*:?\s*([^\n]+)`)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(`\(30\)\s*优先权数据\s*:?\s*([A-Z]{0,2}[0-9][0-9\-/,.]{3,}[0-9])`)},
			{field: fieldPriorityDate, kind: kindDate, re: regexp.MustCompile(`\(30\)\s*优先权数据\s*:?\s*([^\n]+)`)},
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(`\(54\)\s*(?:发明名称|实用新型名称)\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`\(71\)\s*申请人\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`\(73\)\s*专利权人\s*:?\s*([^\n]+)`)},
			{field: fieldInventors, kind: kindNamesCJK, re: regexp.MustCompile(`\(72\)\s*发明人\s*:?\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`\(51\)\s*(?:Int\.?\s*Cl\.?)?`)},
		},
		gated: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(CN\s*\d{9}\s*A)\b`)},
			{field: fieldRegistrationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(CN\s*\d{9}\s*[BU])\b`)},
		},
	}
}

//Personal.AI order the ending
