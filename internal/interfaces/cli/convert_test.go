package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func TestConvertCmd_Stdout(t *testing.T) {
	t.Parallel()
	src := writeSample(t, t.TempDir(), "KR1020230001234.txt", samplePatentText)

	out, _, err := execute(t, "convert", src, "--pretty")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"document\": {"), out)
	assert.Contains(t, out, "다공성 기재", "non-ASCII must stay unescaped")

	var result conversion.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "KR1020230001234.txt", result.Document.FileName)
	assert.Equal(t, 2, result.Document.NumClaims)
	assert.NotEmpty(t, result.Chunks)
}

func TestConvertCmd_JSONL(t *testing.T) {
	t.Parallel()
	src := writeSample(t, t.TempDir(), "KR1020230001234.txt", samplePatentText)

	out, _, err := execute(t, "convert", src, "--jsonl", "--target-tokens", "50", "--overlap-tokens", "5")
	require.NoError(t, err)

	chunks, err := patent.ReadChunksJSONL(strings.NewReader(out))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, c.ChunkID)
		assert.NotEmpty(t, c.DocID)
	}
}

func TestConvertCmd_OutDir(t *testing.T) {
	t.Parallel()
	src := writeSample(t, t.TempDir(), "KR1020230001234.txt", samplePatentText)
	outDir := t.TempDir()

	out, _, err := execute(t, "convert", src, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "KR1020230001234.txt (2 claims")

	data, err := os.ReadFile(filepath.Join(outDir, "docs", "KR1020230001234.patent.json"))
	require.NoError(t, err)
	doc, err := patent.UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.NumClaims)

	f, err := os.Open(filepath.Join(outDir, "chunks", "KR1020230001234"+ChunkFileSuffix))
	require.NoError(t, err)
	defer f.Close()
	chunks, err := patent.ReadChunksJSONL(f)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestConvertCmd_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	empty := writeSample(t, dir, "empty.txt", "")

	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"convert"}},
		{"missing file", []string{"convert", filepath.Join(dir, "nope.pdf")}},
		{"empty document", []string{"convert", empty}},
		{"jsonl with out", []string{"convert", empty, "--jsonl", "--out", dir}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestChunkOptions(t *testing.T) {
	t.Parallel()
	apply := func(opts []conversion.Option) conversion.Options {
		var o conversion.Options
		for _, opt := range opts {
			opt(&o)
		}
		return o
	}
	assert.Empty(t, chunkOptions(0, 0))
	assert.Equal(t, conversion.Options{TargetTokens: 300, OverlapTokens: 20}, apply(chunkOptions(300, 20)))
}

//Personal.AI order the ending
