package metadata

import (
	"regexp"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// WO detection deliberately ignores a bare "PCT": national-phase documents
// of every office cite their PCT application and must not be read as WO.
func newWOExtractor() Extractor {
	return &tableExtractor{
		jurisdiction: patent.JurisdictionWO,
		detect: []*regexp.Regexp{
			regexp.MustCompile(`(?i)World\s+Intellectual\s+Property\s+Organization`),
			regexp.MustCompile(`(?i)International\s+Bureau`),
			regexp.MustCompile(`(?i)\(12\)\s*International\s+Application\s+Published\s+under\s+the\s+Patent\s+Cooperation\s+Treaty`),
		},
		labeled: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\(10\)\s*International\s+Publication\s+Number\s*:?\s*(WO\s*\d{4}\s*/\s*\d{6}\s*A\d)`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\(21\)\s*International\s+Application\s+Number\s*:?\s*(PCT\s*/\s*[A-Z]{2}\d{4}\s*/\s*\d{6})`)},
			{field: fieldApplicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(22\)\s*International\s+Filing\s+Date\s*:?\s*([^\n]+)`)},
			{field: fieldPublicationDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(43\)\s*International\s+Publication\s+Date\s*:?\s*([^\n]+)`)},
			{field: fieldPriorityNumber, kind: kindNumber, re: regexp.MustCompile(`(?i)\(30\)\s*Priority\s+Data\s*:?\s*([A-Z]{0,2}[0-9][0-9\-/,.]{3,}[0-9])`)},
			{field: fieldPriorityDate, kind: kindDate, re: regexp.MustCompile(`(?i)\(30\)\s*Priority\s+Data\s*:?\s*([^\n]+)`)},
			{field: fieldIPCCodes, kind: kindCodeBlock, re: regexp.MustCompile(`(?i)\(51\)\s*International\s+Patent\s+Classification\s*:?`)},
		},
		gated: []rule{
			{field: fieldPublicationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(WO\s*\d{4}\s*/\s*\d{6}\s*A\d)\b`)},
			{field: fieldApplicationNumber, kind: kindNumber, re: regexp.MustCompile(`\b(PCT\s*/\s*[A-Z]{2}\d{4}\s*/\s*\d{6})\b`)},
			{field: fieldTitle, kind: kindText, re: regexp.MustCompile(`\(54\)\s*(?:Title(?:\s+of\s+the\s+Invention)?\s*:?\s*)?` + latinTitle)},
			{field: fieldAssignee, kind: kindParty, re: regexp.MustCompile(`(?i)\(71\)\s*Applicants?\s*:?\s*([^\n;]+)`)},
			{field: fieldInventors, kind: kindNamesUS, re: regexp.MustCompile(`(?i)\(72\)\s*Inventors?\s*:?\s*([^\n]+)`)},
		},
	}
}

//Personal.AI order the ending
