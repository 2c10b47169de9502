package postgres

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.PostgresConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  config.PostgresConfig{Host: "localhost", User: "postgres", Password: "pw", DBName: "patent2rag"},
			want: "postgres://postgres:pw@localhost:5432/patent2rag?sslmode=disable",
		},
		{
			name: "escaped password and ssl",
			cfg:  config.PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "pass!word", DBName: "p", SSLMode: "require"},
			want: "postgres://u:pass%21word@db:5433/p?sslmode=require",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DSN(tt.cfg))
		})
	}
}

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (f *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		require.NoError(t, WithTransaction(ctx, b, func(pgx.Tx, context.Context) error { return nil }))
		assert.True(t, b.tx.committed)
		assert.False(t, b.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		err := WithTransaction(ctx, b, func(pgx.Tx, context.Context) error { return errors.New("nope") })
		assert.EqualError(t, err, "nope")
		assert.False(t, b.tx.committed)
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{}}
		assert.Panics(t, func() {
			_ = WithTransaction(ctx, b, func(pgx.Tx, context.Context) error { panic("boom") })
		})
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("commit failure", func(t *testing.T) {
		b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization")}}
		err := WithTransaction(ctx, b, func(pgx.Tx, context.Context) error { return nil })
		require.Error(t, err)
		assert.True(t, b.tx.rolledBack)
	})

	t.Run("begin failure", func(t *testing.T) {
		b := &fakeBeginner{err: errors.New("pool closed")}
		err := WithTransaction(ctx, b, func(pgx.Tx, context.Context) error { return nil })
		assert.Contains(t, err.Error(), "pool closed")
	})
}

func TestEmbeddedMigrations_Paired(t *testing.T) {
	t.Parallel()
	names, err := fs.Glob(embeddedMigrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups[strings.TrimSuffix(n, ".up.sql")] = true
		case strings.HasSuffix(n, ".down.sql"):
			downs[strings.TrimSuffix(n, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %s", n)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestDocumentArgs(t *testing.T) {
	t.Parallel()
	doc := &patent.Document{
		DocID:    "abc",
		FileName: "a.pdf",
		Metadata: patent.Metadata{Jurisdiction: patent.JurisdictionJP},
	}
	args, err := documentArgs(doc)
	require.NoError(t, err)
	require.Len(t, args, 11)
	assert.Nil(t, args[2], "empty publication number is NULL")
	assert.Equal(t, "JP", *(args[3].(*string)))
	assert.JSONEq(t, `[]`, string(args[8].([]byte)))
	assert.JSONEq(t, `[]`, string(args[9].([]byte)))
	assert.Nil(t, args[10])
}

func TestChunkRows(t *testing.T) {
	t.Parallel()
	page := 2
	chunks := []patent.Chunk{
		{ChunkID: "c0", SectionType: patent.SectionClaims, Text: "x", TokensEst: 1, Lang: "en", Weight: 1.3, ClaimNums: []int{1, 2}, CitationPage: &page},
		{ChunkID: "c1", SectionType: patent.SectionDescription, Text: "y", PageRange: &patent.PageRange{3, 4}},
	}
	rows, err := chunkRows("abc", chunks)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(chunkColumns))

	assert.Equal(t, "abc", rows[0][0])
	assert.Equal(t, int32(0), rows[0][2])
	assert.Equal(t, "CLAIMS", rows[0][3])
	assert.Equal(t, []int32{1, 2}, rows[0][8])
	assert.Equal(t, int32(2), *(rows[0][9].(*int32)))
	assert.Nil(t, rows[0][10].(*int32))
	assert.JSONEq(t, `[]`, string(rows[0][13].([]byte)))

	assert.Equal(t, int32(1), rows[1][2])
	assert.Nil(t, rows[1][9].(*int32))
	assert.Equal(t, int32(3), *(rows[1][10].(*int32)))
	assert.Equal(t, int32(4), *(rows[1][11].(*int32)))
}

//Personal.AI order the ending
