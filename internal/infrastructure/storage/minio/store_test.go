package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/config"
	pkgerrors "github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func newTestStore(t *testing.T) (*ArtifactStore, *MockMinIOAPI) {
	t.Helper()
	api := new(MockMinIOAPI)
	t.Cleanup(func() { api.AssertExpectations(t) })
	client := NewMinIOClientWithAPI(api, config.MinIOConfig{Bucket: "artifacts", SourceBucket: "inbox"}, nil)
	return NewArtifactStore(client, nil, false), api
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "docs/abc.patent.json", DocumentKey("abc"))
	assert.Equal(t, "chunks/abc.chunks.jsonl", ChunksKey("abc"))
}

func TestArtifactStore_Write(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	doc := &patent.Document{DocID: "abc", FileName: "kr.pdf", Sections: []patent.Section{}, Claims: []patent.Claim{}}
	chunks := []patent.Chunk{{Text: "청구항", ChunkID: "c000000_x", DocID: "abc"}}

	withMeta := mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.UserMetadata["doc-id"] == "abc" && o.UserMetadata["file-name"] == "kr.pdf"
	})
	api.On("PutObject", mock.Anything, "artifacts", "docs/abc.patent.json",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, `"doc_id":"abc"`) }),
		mock.Anything, withMeta).Return(minio.UploadInfo{}, nil)
	api.On("PutObject", mock.Anything, "artifacts", "chunks/abc.chunks.jsonl",
		mock.MatchedBy(func(body string) bool {
			return strings.HasSuffix(body, "\n") && strings.Contains(body, `"text":"청구항"`)
		}),
		mock.Anything, withMeta).Return(minio.UploadInfo{}, nil)

	require.NoError(t, store.Write(context.Background(), doc, chunks))
	assert.Equal(t, "minio", store.Name())
}

func TestArtifactStore_WriteError(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	api.On("PutObject", mock.Anything, "artifacts", "docs/abc.patent.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))

	err := store.Write(context.Background(), &patent.Document{DocID: "abc"}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

func TestArtifactStore_Fetch(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	store.open = func(_ context.Context, bucket, key string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(bucket + "/" + key)), nil
	}
	api.On("StatObject", mock.Anything, "inbox", "a.pdf", mock.Anything).Return(minio.ObjectInfo{Size: 8}, nil)

	data, err := store.Fetch(context.Background(), "", "a.pdf", 100)
	require.NoError(t, err)
	assert.Equal(t, "inbox/a.pdf", string(data))
}

func TestArtifactStore_FetchTooLarge(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	api.On("StatObject", mock.Anything, "b", "big.pdf", mock.Anything).Return(minio.ObjectInfo{Size: 1 << 30}, nil)

	_, err := store.Fetch(context.Background(), "b", "big.pdf", 1<<20)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodePayloadTooLarge))
}

func TestArtifactStore_FetchMissing(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	api.On("StatObject", mock.Anything, "b", "gone.pdf", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := store.Fetch(context.Background(), "b", "gone.pdf", 0)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestArtifactStore_Delete(t *testing.T) {
	t.Parallel()
	store, api := newTestStore(t)
	api.On("RemoveObject", mock.Anything, "artifacts", "docs/abc.patent.json", mock.Anything).Return(nil)
	api.On("RemoveObject", mock.Anything, "artifacts", "chunks/abc.chunks.jsonl", mock.Anything).Return(nil)

	assert.NoError(t, store.Delete(context.Background(), "abc"))
}

//Personal.AI order the ending
