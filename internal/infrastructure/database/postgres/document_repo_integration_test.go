//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/postgres"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// startPostgres launches a PostgreSQL 16 container, migrates it and returns
// a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "patent2rag_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "patent2rag_test",
	}
	require.NoError(t, postgres.RunMigrations(postgres.DSN(cfg), ""))

	version, dirty, err := postgres.MigrationStatus(postgres.DSN(cfg), "")
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	pool, err := postgres.NewPool(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func sampleDocument(n int) (*patent.Document, []patent.Chunk) {
	page := 1
	doc := &patent.Document{
		DocID:       "0123456789abcdef0123456789abcdef",
		FileName:    "kr.pdf",
		NumSections: 2,
		NumClaims:   1,
		Metadata: patent.Metadata{
			PublicationNumber: "10-2024-0012345",
			Jurisdiction:      patent.JurisdictionKR,
			IPCCodes:          []string{"C21D 8/12"},
		},
		Structure: patent.Structure{ClaimsCount: 1, SectionsIndex: []patent.SectionRange{}},
		Sections:  []patent.Section{{Type: patent.SectionClaims, Title: "청구범위", Text: "1. 강판."}},
		Claims:    []patent.Claim{{Num: 1, Text: "강판.", Dependencies: []int{}}},
		Acquisition: &patent.Acquisition{Method: patent.MethodText, Pages: 3, Chars: 1200},
	}
	chunks := make([]patent.Chunk, n)
	for i := range chunks {
		chunks[i] = patent.Chunk{
			ChunkID:      fmt.Sprintf("c%06d_%016x", i, i),
			Text:         fmt.Sprintf("chunk %d 850~900°C", i),
			SectionType:  patent.SectionClaims,
			ClaimNums:    []int{1},
			TokensEst:    4,
			Lang:         "ko",
			Weight:       1.3,
			NormNumbers:  []patent.NormNumber{{Name: "temperature", Value: 850, Unit: "°C"}},
			Tags:         patent.Tags{Units: []string{"°C"}, Parameters: []string{}, Role: patent.RoleProcess},
			DocID:        doc.DocID,
			CitationPage: &page,
		}
	}
	return doc, chunks
}

func TestDocumentRepository_WriteAndRead(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewDocumentRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	doc, chunks := sampleDocument(3)
	require.NoError(t, repo.Write(ctx, doc, chunks))

	got, err := repo.GetDocument(ctx, doc.DocID)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata, got.Metadata)
	assert.Equal(t, doc.Claims, got.Claims)
	assert.Equal(t, doc.Sections, got.Sections)
	require.NotNil(t, got.Acquisition)
	assert.Equal(t, 3, got.Acquisition.Pages)

	stored, err := repo.ListChunks(ctx, doc.DocID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, chunks[0].ChunkID, stored[0].ChunkID)
	assert.Equal(t, chunks[2].Text, stored[2].Text)
	assert.Equal(t, 1.3, stored[0].Weight)
	assert.Equal(t, []int{1}, stored[0].ClaimNums)
	assert.Equal(t, 1, *stored[0].CitationPage)
	assert.Equal(t, "10-2024-0012345", stored[0].DocumentID)
	assert.Equal(t, patent.RoleProcess, stored[0].Tags.Role)
}

func TestDocumentRepository_RewriteReplacesChunks(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewDocumentRepository(pool, nil)
	ctx := context.Background()

	doc, chunks := sampleDocument(5)
	require.NoError(t, repo.Write(ctx, doc, chunks))

	doc, chunks = sampleDocument(2)
	doc.FileName = "renamed.pdf"
	require.NoError(t, repo.Write(ctx, doc, chunks))

	got, err := repo.GetDocument(ctx, doc.DocID)
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.FileName)

	stored, err := repo.ListChunks(ctx, doc.DocID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestDocumentRepository_Delete(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewDocumentRepository(pool, nil)
	ctx := context.Background()

	doc, chunks := sampleDocument(2)
	require.NoError(t, repo.Write(ctx, doc, chunks))
	require.NoError(t, repo.DeleteDocument(ctx, doc.DocID))

	_, err := repo.GetDocument(ctx, doc.DocID)
	assert.True(t, errors.IsNotFound(err))
	stored, err := repo.ListChunks(ctx, doc.DocID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	assert.True(t, errors.IsNotFound(repo.DeleteDocument(ctx, doc.DocID)))
}

//Personal.AI order the ending
