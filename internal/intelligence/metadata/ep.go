package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func newEPExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionEP,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`(?i)European\s+Patent\s+Office`),
			regexp.MustCompile(`Europäisches\s+Patentamt`),
			regexp.MustCompile(`Office\s+européen\s+des\s+brevets`),
			regexp.MustCompile(`(?i)European\s+Patent\s+Application`),
		},
		labeled: []rule{
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\(21\)\s*Application\s+number\s*:?\s*(\d{8}\.\d)`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(22\)\s*Date\s+of\s+filing\s*:?\s*([^\n]+)`)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(43\)\s*Date\s+of\s+publication\s*:?\s*([^\n]+)`)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(45\)\s*Date\s+of\s+publication\s+and\s+mention\s+of\s+the\s+grant[^:\n]*:?\s*([^\n]+)`)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\(30\)\s*Priority\s*:?\s*([A-Z]{0,2}[0-9][0-9\-/,.]{3,}[0-9])`)},
			{field: fieldPriorityDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(30\)\s*Priority\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`(?i)\(71\)\s*Applicant\s*s?\s*:?\s*([^\n]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`(?i)\(73\)\s*Proprietor\s*s?\s*:?\s*([^\n]+)`)},
			{field: fieldInventors, kind: kindNamesUS, re: regexp.MustCompile(`(?i)\(72\)\s*Inventors?\s*:?\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`(?i)\(51\)\s*Int\.?\s*Cl\.?`)},
		},
		gated: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\(11\)\s*(EP\s*\d\s*\d{3}\s*\d{3}\s*[AB]\d)`)},
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(EP\s*\d\s*\d{3}\s*\d{3}\s*[AB]\d)\b`)},
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(`\(54\)\s*` + latinTitle)},
		},
	}
}

//Personal.AI order the ending
