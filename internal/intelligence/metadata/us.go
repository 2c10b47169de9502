package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const usDate = `(` + monthNames + `\.?\s+\d{1,2},?\s+\d{4})`

func newUSExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionUS,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`(?i)United\s+States\s+Patent`),
			regexp.MustCompile(`(?i)Patent\s+Application\s+Publication`),
			regexp.MustCompile(`\(19\)\s*United\s+States`),
			regexp.MustCompile(`\(12\)\s*United\s+States`),
		},
		labeled: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)Pub\.?\s*No\.?\s*:?\s*(US\s*\d{4}\s*/\s*\d{7}\s*A\d)`)},
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)Patent\s*No\.?\s*:?\s*(US\s*(?:\d{1,2},\d{3},\d{3}|\d{7,8})\s*B\d)`)},
			{field: fieldRegistrationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)Patent\s*No\.?\s*:?\s*(US\s*(?:\d{1,2},\d{3},\d{3}|\d{7,8})\s*B\d)`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)Appl\.?\s*No\.?\s*:?\s*(\d{2}/\d{3},\d{3})`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\bFiled\s*:?\s*` + usDate)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)Pub\.?\s*Date\s*:?\s*` + usDate)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)Date\s+of\s+Patent\s*:?\s*` + usDate)},
			{field: fieldRegistrationDate, kind: kindDate, re: regexp.MustCompile(`(?i)Date\s+of\s+Patent\s*:?\s*` + usDate)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`(?i)\bAssignee\s*:\s*([^\n;]+)`)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`(?i)\bApplicants?\s*:\s*([^\n;]+)`)},
			{field: fieldInventors, kind: kindNamesUS, re: regexp.MustCompile(`(?i)\bInventors?\s*:\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`(?i)\bInt\.?\s*Cl\.?`)},
			{field: fieldCPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`(?:\bU\.S\.\s*Cl\.|\bCPC\b)`)},
		},
		gated: []rule{
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(`\(54\)\s*` + latinTitle)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)Foreign\s+Application\s+Priority\s+Data[\s\S]{0,80}?(\d{2}-\d{4}-\d{5,}|[A-Z]{0,2}\d{4,}[\d.]*)`)},
		},
	}
}

//Personal.AI order the ending
