package conversion

import (
	"strconv"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// DocID derives the stable document identifier from the file name and the
// code-point length of the cleaned text.
func DocID(fileName, cleaned string) string {
	return common.MD5Hex(fileName + strconv.Itoa(common.RuneLen(cleaned)))
}

// SectionsIndex lists, in first-seen order, the first and last chunk
// position of every section type present in chunks.
func SectionsIndex(chunks []patent.Chunk) []patent.SectionRange {
	out := make([]patent.SectionRange, 0)
	pos := make(map[patent.SectionType]int)
	for i, c := range chunks {
		j, ok := pos[c.SectionType]
		if !ok {
			pos[c.SectionType] = len(out)
			out = append(out, patent.SectionRange{SectionType: c.SectionType, Start: i, End: i})
			continue
		}
		if i < out[j].Start {
			out[j].Start = i
		}
		if i > out[j].End {
			out[j].End = i
		}
	}
	return out
}

// Assemble builds the document record. Chunks are only read.
func Assemble(fileName, cleaned string, sections []patent.Section, claims []patent.Claim, meta patent.Metadata, chunks []patent.Chunk) *patent.Document {
	if sections == nil {
		sections = []patent.Section{}
	}
	if claims == nil {
		claims = []patent.Claim{}
	}
	return &patent.Document{
		DocID:       DocID(fileName, cleaned),
		FileName:    fileName,
		NumSections: len(sections),
		NumClaims:   len(claims),
		Metadata:    meta,
		Structure: patent.Structure{
			SectionsIndex: SectionsIndex(chunks),
			ClaimsCount:   len(claims),
		},
		Sections: sections,
		Claims:   claims,
	}
}

//Personal.AI order the ending
