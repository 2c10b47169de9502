package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func sampleClaimDoc() *patent.Document {
	return &patent.Document{
		DocID:     "d41d8cd98f00b204",
		FileName:  "KR1020230001234.pdf",
		NumClaims: 3,
		Metadata: patent.Metadata{
			PublicationNumber: "KR10-2023-0001234",
			Jurisdiction:      patent.JurisdictionKR,
			Title:             "Battery separator",
			IPCCodes:          []string{"H01M 50/403"},
		},
		Claims: []patent.Claim{
			{Num: 1, Text: "A separator comprising a porous film."},
			{Num: 2, Text: "The separator of claim 1, wherein ...", Dependencies: []int{1}},
			{Num: 3, Text: "The separator of claim 1 or 2, wherein ...", Dependencies: []int{1, 2}},
		},
	}
}

func TestClaimGraph_Write(t *testing.T) {
	t.Parallel()
	tx := &recordingTx{}
	d, _, _ := newTestDriver(tx)
	g := NewClaimGraph(d, logging.NewNopLogger())

	assert.Equal(t, "neo4j", g.Name())
	require.NoError(t, g.Write(context.Background(), sampleClaimDoc(), nil))

	require.Equal(t, []string{cypherUpsertDocument, cypherDropClaims, cypherCreateClaims, cypherLinkDependencies}, tx.cyphers)

	docParams := tx.params[0]
	assert.Equal(t, "KR10-2023-0001234", docParams["publication_number"])
	assert.Equal(t, "KR", docParams["jurisdiction"])
	assert.Equal(t, int64(3), docParams["num_claims"])
	assert.Equal(t, []any{"H01M 50/403"}, docParams["ipc_codes"])

	claims := tx.params[2]["claims"].([]any)
	require.Len(t, claims, 3)
	assert.Equal(t, map[string]any{"num": int64(1), "text": "A separator comprising a porous film.", "independent": true}, claims[0])
	assert.Equal(t, false, claims[2].(map[string]any)["independent"])

	assert.Equal(t, []any{
		map[string]any{"from": int64(2), "to": int64(1)},
		map[string]any{"from": int64(3), "to": int64(1)},
		map[string]any{"from": int64(3), "to": int64(2)},
	}, tx.params[3]["edges"])
}

func TestClaimGraph_WriteWithoutClaims(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		claims  []patent.Claim
		cyphers []string
	}{
		{
			name:    "no claims",
			cyphers: []string{cypherUpsertDocument, cypherDropClaims},
		},
		{
			name:    "independent only",
			claims:  []patent.Claim{{Num: 1, Text: "A method."}},
			cyphers: []string{cypherUpsertDocument, cypherDropClaims, cypherCreateClaims},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tx := &recordingTx{}
			d, _, _ := newTestDriver(tx)
			doc := sampleClaimDoc()
			doc.Claims = tt.claims

			require.NoError(t, NewClaimGraph(d, nil).Write(context.Background(), doc, nil))
			assert.Equal(t, tt.cyphers, tx.cyphers)
		})
	}
}

func TestClaimGraph_WriteFailure(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDriver(&recordingTx{err: errors.New("connection reset")})

	err := NewClaimGraph(d, nil).Write(context.Background(), sampleClaimDoc(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGraphError))
}

func TestClaimGraph_EnsureSchema(t *testing.T) {
	t.Parallel()
	tx := &recordingTx{}
	d, _, _ := newTestDriver(tx)

	require.NoError(t, NewClaimGraph(d, nil).EnsureSchema(context.Background()))
	assert.Equal(t, schemaStatements, tx.cyphers)
}

func TestClaimGraph_Ancestors(t *testing.T) {
	t.Parallel()
	tx := &recordingTx{results: []*sliceResult{numRecords(1, 2)}}
	d, _, _ := newTestDriver(tx)

	nums, err := NewClaimGraph(d, nil).Ancestors(context.Background(), "doc", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, nums)
	assert.Equal(t, map[string]any{"doc_id": "doc", "num": int64(3)}, tx.params[0])
}

func TestClaimGraph_IndependentClaimsEmpty(t *testing.T) {
	t.Parallel()
	d, _, _ := newTestDriver(&recordingTx{results: []*sliceResult{numRecords()}})

	nums, err := NewClaimGraph(d, nil).IndependentClaims(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, []int{}, nums)
}

//Personal.AI order the ending
