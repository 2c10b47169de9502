// Package chunker turns segmented sections and parsed claims into bounded,
// annotated retrieval chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Config controls chunk sizing. All sizes are estimated tokens.
type Config struct {
	TargetTokens  int // Target chunk size.
	OverlapTokens int // Overlap between consecutive window slices.
	MinTokens     int // Floor for section paragraphs and slices; ABSTRACT is exempt.
}

// DefaultConfig returns the conversion defaults.
func DefaultConfig() Config {
	return Config{
		TargetTokens:  600,
		OverlapTokens: 80,
		MinTokens:     15,
	}
}

// claimSlack is the factor by which a claim may exceed TargetTokens before it
// is windowed.
const claimSlack = 1.5

// Builder builds chunks. The zero value is not usable; use New.
type Builder struct {
	cfg Config
}

// New returns a Builder. Non-positive TargetTokens and MinTokens fall back to
// the defaults; a negative overlap is treated as zero.
func New(cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.TargetTokens <= 0 {
		cfg.TargetTokens = def.TargetTokens
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = def.MinTokens
	}
	return &Builder{cfg: cfg}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build emits claim chunks first, in claim order, then section chunks in
// section order. CLAIMS and UNKNOWN sections produce no section chunks.
// Every chunk is annotated with id, token estimate, language, weight,
// normalised numbers and tags; document-level fields are left for the
// citation pass.
func (b *Builder) Build(sections []patent.Section, claims []patent.Claim) []patent.Chunk {
	chunks := make([]patent.Chunk, 0, len(claims)+len(sections))

	claimLimit := int(float64(b.cfg.TargetTokens) * claimSlack)
	for _, c := range claims {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		if common.EstimateTokens(text) <= claimLimit {
			chunks = append(chunks, rawChunk(text, patent.SectionClaims, c.Num))
			continue
		}
		for _, part := range SlidingWindow(text, b.cfg.TargetTokens, b.cfg.OverlapTokens) {
			chunks = append(chunks, rawChunk(part, patent.SectionClaims, c.Num))
		}
	}

	for _, s := range sections {
		if s.Type == patent.SectionClaims || s.Type == patent.SectionUnknown {
			continue
		}
		exempt := s.Type == patent.SectionAbstract
		for _, p := range Paragraphs(s.Text) {
			if common.EstimateTokens(p) <= b.cfg.TargetTokens {
				if exempt || common.EstimateTokens(p) >= b.cfg.MinTokens {
					chunks = append(chunks, rawChunk(p, s.Type))
				}
				continue
			}
			for _, part := range SlidingWindow(p, b.cfg.TargetTokens, b.cfg.OverlapTokens) {
				if exempt || common.EstimateTokens(part) >= b.cfg.MinTokens {
					chunks = append(chunks, rawChunk(part, s.Type))
				}
			}
		}
	}

	for i := range chunks {
		annotate(&chunks[i], i)
	}
	return chunks
}

func rawChunk(text string, t patent.SectionType, claimNums ...int) patent.Chunk {
	nums := make([]int, 0, len(claimNums))
	nums = append(nums, claimNums...)
	return patent.Chunk{Text: text, SectionType: t, ClaimNums: nums}
}

// annotate fills the per-chunk derived fields.
func annotate(c *patent.Chunk, index int) {
	c.ChunkID = ChunkID(index, c.Text)
	c.TokensEst = common.EstimateTokens(c.Text)
	c.Lang = DetectLanguage(c.Text)
	c.Weight = WeightFor(c.SectionType)
	c.NormNumbers = ExtractNumbers(c.Text)
	c.Tags = ExtractTags(c.Text, c.NormNumbers)
}

// ChunkID is "c" + six-digit index + "_" + the first 16 hex digits of the
// MD5 of text.
func ChunkID(index int, text string) string {
	return fmt.Sprintf("c%06d_%s", index, common.MD5Hex(text)[:16])
}

// WeightFor returns the ranking weight of a section type.
func WeightFor(t patent.SectionType) float64 {
	switch t {
	case patent.SectionClaims:
		return 1.3
	case patent.SectionAbstract:
		return 1.15
	case patent.SectionBackground:
		return 0.95
	default:
		return 1.0
	}
}

//Personal.AI order the ending
