// Package citation attributes each chunk to the source page it most likely
// came from, by lexical overlap between the chunk's opening text and the page
// texts.
package citation

import (
	"regexp"
	"strings"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Config tunes the page matcher. A match is accepted when the best page
// shares at least max(MinScore, snippetTokens/Divisor) distinct tokens with
// the snippet.
type Config struct {
	MinScore     int
	Divisor      int
	SnippetRunes int
}

// DefaultConfig returns the standard matcher settings.
func DefaultConfig() Config {
	return Config{MinScore: 5, Divisor: 10, SnippetRunes: 200}
}

// Annotator back-fills page attribution and document identifiers on chunks.
type Annotator struct {
	cfg Config
}

// New returns an Annotator; non-positive settings take their defaults.
func New(cfg Config) *Annotator {
	def := DefaultConfig()
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.Divisor <= 0 {
		cfg.Divisor = def.Divisor
	}
	if cfg.SnippetRunes <= 0 {
		cfg.SnippetRunes = def.SnippetRunes
	}
	return &Annotator{cfg: cfg}
}

// reToken matches runs of letters (CJK included) and digits.
var reToken = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenize returns the set of lower-cased tokens of at least two characters.
func Tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range reToken.FindAllString(strings.ToLower(s), -1) {
		if len([]rune(tok)) >= 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

// Result reports how many chunks received a page.
type Result struct {
	Attributed   int
	Unattributed int
	Skipped      int
}

// Annotate sets DocID, DocumentID and Context on every chunk, and page
// attribution on chunks that have no page range yet. DocumentID prefers
// publicationNumber when it is non-empty. Pages are 1-indexed; ties resolve
// to the earliest page.
func (a *Annotator) Annotate(chunks []patent.Chunk, pages []string, docID, publicationNumber string) Result {
	pageTokens := make([]map[string]struct{}, len(pages))
	for i, p := range pages {
		pageTokens[i] = Tokenize(p)
	}

	externalID := docID
	if publicationNumber != "" {
		externalID = publicationNumber
	}

	var res Result
	for i := range chunks {
		c := &chunks[i]
		c.DocID = docID
		c.DocumentID = externalID
		c.Context = c.Text

		if c.PageRange != nil {
			res.Skipped++
			continue
		}
		page, ok := a.bestPage(c.Text, pageTokens)
		if !ok {
			res.Unattributed++
			continue
		}
		p := page
		c.CitationPage = &p
		c.PageRange = &patent.PageRange{page, page}
		res.Attributed++
	}
	return res
}

// bestPage returns the 1-indexed page whose tokens overlap the snippet most,
// provided the overlap clears the acceptance threshold.
func (a *Annotator) bestPage(text string, pageTokens []map[string]struct{}) (int, bool) {
	if len(pageTokens) == 0 {
		return 0, false
	}
	snippet := text
	if r := []rune(text); len(r) > a.cfg.SnippetRunes {
		snippet = string(r[:a.cfg.SnippetRunes])
	}
	tokens := Tokenize(snippet)
	if len(tokens) == 0 {
		return 0, false
	}

	best, bestScore := 0, -1
	for i, pt := range pageTokens {
		if score := overlap(tokens, pt); score > bestScore {
			best, bestScore = i, score
		}
	}

	threshold := len(tokens) / a.cfg.Divisor
	if threshold < a.cfg.MinScore {
		threshold = a.cfg.MinScore
	}
	if bestScore < threshold {
		return 0, false
	}
	return best + 1, true
}

//Personal.AI order the ending
