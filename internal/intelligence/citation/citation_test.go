package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

var pages = []string{
	"Front page masthead with bibliographic data and filing dates only",
	"The grain oriented electrical steel sheet has a forsterite coating and low core loss after annealing",
	"Brief description of drawings figure one shows the rolling mill arrangement",
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	toks := Tokenize("A Steel-sheet, 3% Si 방향성 전기강판 方向性電磁鋼板")
	assert.Contains(t, toks, "steel")
	assert.Contains(t, toks, "sheet")
	assert.Contains(t, toks, "si")
	assert.Contains(t, toks, "방향성")
	assert.Contains(t, toks, "方向性電磁鋼板")
	assert.NotContains(t, toks, "a")
	assert.NotContains(t, toks, "3")
}

func TestAnnotate_AttributesBestPage(t *testing.T) {
	t.Parallel()
	chunks := []patent.Chunk{{Text: "A grain oriented electrical steel sheet having a forsterite coating with low core loss."}}

	res := New(DefaultConfig()).Annotate(chunks, pages, "doc1", "")
	require.Equal(t, 1, res.Attributed)
	require.NotNil(t, chunks[0].CitationPage)
	assert.Equal(t, 2, *chunks[0].CitationPage)
	assert.Equal(t, patent.PageRange{2, 2}, *chunks[0].PageRange)
}

func TestAnnotate_BelowThresholdLeavesUnset(t *testing.T) {
	t.Parallel()
	chunks := []patent.Chunk{{Text: "steel sheet coating"}}

	res := New(DefaultConfig()).Annotate(chunks, pages, "doc1", "")
	assert.Equal(t, 1, res.Unattributed)
	assert.Nil(t, chunks[0].CitationPage)
	assert.Nil(t, chunks[0].PageRange)
}

func TestAnnotate_ConfigurableThreshold(t *testing.T) {
	t.Parallel()
	chunks := []patent.Chunk{{Text: "steel sheet coating"}}

	New(Config{MinScore: 3}).Annotate(chunks, pages, "doc1", "")
	require.NotNil(t, chunks[0].CitationPage)
	assert.Equal(t, 2, *chunks[0].CitationPage)
}

func TestAnnotate_IdentifiersAndContext(t *testing.T) {
	t.Parallel()
	chunks := []patent.Chunk{{Text: "one"}, {Text: "two"}}

	New(DefaultConfig()).Annotate(chunks, nil, "abc123", "KR10-2024-0012345")
	for _, c := range chunks {
		assert.Equal(t, "abc123", c.DocID)
		assert.Equal(t, "KR10-2024-0012345", c.DocumentID)
		assert.Equal(t, c.Text, c.Context)
	}

	New(DefaultConfig()).Annotate(chunks, nil, "abc123", "")
	assert.Equal(t, "abc123", chunks[0].DocumentID)
}

func TestAnnotate_ExistingRangeKept(t *testing.T) {
	t.Parallel()
	pr := patent.PageRange{3, 4}
	chunks := []patent.Chunk{{Text: pages[1], PageRange: &pr}}

	res := New(DefaultConfig()).Annotate(chunks, pages, "d", "")
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, patent.PageRange{3, 4}, *chunks[0].PageRange)
	assert.Nil(t, chunks[0].CitationPage)
}

func TestAnnotate_TieKeepsEarliestPage(t *testing.T) {
	t.Parallel()
	same := "alpha beta gamma delta epsilon zeta"
	chunks := []patent.Chunk{{Text: same}}

	New(DefaultConfig()).Annotate(chunks, []string{same, same}, "d", "")
	require.NotNil(t, chunks[0].CitationPage)
	assert.Equal(t, 1, *chunks[0].CitationPage)
}

//Personal.AI order the ending
