package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// KIPO front pages label every field in Hangul after its INID code. Requiring
// both keeps "(87) 국제공개번호" and body text such as "본 발명자들은" out.
func newKRExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionKR,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`대한민국\s*특허청`),
			regexp.MustCompile(`\(19\)\s*대한민국`),
			regexp.MustCompile(`\(19\)[^\n]{0,40}\(KR\)`),
			regexp.MustCompile(`\(KR\)\s*\(\d{2}\)`),
		},
		labeled: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\(11\)\s*공개번호\s*:?\s*(\d{2}-\d{4}-\d{5,}|\d{2,4}-\d{5,})`)},
			{field: fieldRegistrationNumber, kind: kindNumber, re: regexp.MustCompile(`\(11\)\s*등록번호\s*:?\s*(\d{2}-\d{4}-\d{5,}|\d{2}-\d{5,})`)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`\(43\)\s*공개일자\s*:?\s*([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(`\(24\)\s*등록일자\s*:?\s*([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(`\(45\)\s*공고일자\s*:?\s*([^\n]+)`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`\(21\)\s*출원번호\s*:?\s*(\d{2}-\d{4}-\d{5,}|\d{2,4}-\d{5,})`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(`\(22\)\s*출원일자\s*:?\s*([^\n]+)`)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(`\(30\)\s*우선권주장\s*:?\s*([A-Z]{0,2}[0-9][0-9\-/,.]{3,}[0-9])`)},
			{field: fieldPriorityDate, kind: kindDate, re: regexp.MustCompile(`\(30\)\s*우선권주장\s*:?\s*([^\n]+)`)},
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(`\(54\)\s*발명의\s*명칭\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`\(71\)\s*출원인\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`\(73\)\s*특허권자\s*:?\s*([^\n]+)`)},
			{field: fieldInventors, kind: kindNames, re: regexp.MustCompile(`\(72\)\s*발명자\s*:?\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`\(51\)`)},
			{field: fieldCPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`\(52\)`)},
		},
	}
}

//Personal.AI order the ending
