package minio

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/patent2rag/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, bucketName, objectName, string(data), objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// GetObject is not exercised: *minio.Object cannot be built without a server.
func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return nil, args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

type ClientTestSuite struct {
	suite.Suite
	api    *MockMinIOAPI
	client *MinIOClient
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = NewMinIOClientWithAPI(s.api, config.MinIOConfig{Bucket: "artifacts"}, logging.NewNopLogger())
}

func (s *ClientTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestDefaults() {
	c := NewMinIOClientWithAPI(s.api, config.MinIOConfig{}, nil)
	s.Equal("patent2rag-artifacts", c.Bucket())
	s.Equal("patent2rag-artifacts", c.SourceBucket())
	s.Equal("artifacts", s.client.SourceBucket())
}

func (s *ClientTestSuite) TestEnsureBucket_Exists() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(true, nil)
	s.NoError(s.client.EnsureBucket(context.Background(), "artifacts"))
}

func (s *ClientTestSuite) TestEnsureBucket_Creates() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "artifacts", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	s.NoError(s.client.EnsureBucket(context.Background(), "artifacts"))
}

func (s *ClientTestSuite) TestEnsureBucket_Error() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(false, errors.New("dial tcp"))
	err := s.client.EnsureBucket(context.Background(), "artifacts")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("BucketExists", mock.Anything, "artifacts").Return(false, nil).Once()
	err := s.client.HealthCheck(context.Background())
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))

	s.api.On("BucketExists", mock.Anything, "artifacts").Return(true, nil).Once()
	s.NoError(s.client.HealthCheck(context.Background()))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
