package minio

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/testutil"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]minio.BucketInfo)
	return b, args.Error(1)
}

func (m *MockAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *MockAPI) SetBucketLifecycle(ctx context.Context, bucket string, cfg *lifecycle.Configuration) error {
	return m.Called(ctx, bucket, cfg).Error(0)
}

func (m *MockAPI) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, bucket, key, string(data), size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockAPI) ReadObject(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(minio.ObjectInfo), args.Error(2)
}

func (m *MockAPI) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return m.Called(ctx, bucket, opts).Get(0).(<-chan minio.ObjectInfo)
}

type ClientTestSuite struct {
	suite.Suite
	api    *MockAPI
	logger *testutil.MockLogger
	client *Client
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockAPI)
	s.logger = testutil.NewMockLogger()
	s.client = newClient(s.api, config.MinIOConfig{Region: "us-east-1"}, s.logger)
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TestDefaults() {
	s.Equal(config.DefaultCorpusBucket, s.client.CorpusBucket())
	s.Equal(config.DefaultReportBucket, s.client.ReportBucket())
	s.Equal("minio", s.client.Name())
}

func (s *ClientTestSuite) TestEnsureBuckets_CreatesMissing() {
	s.api.On("BucketExists", s.ctx, "opinion-corpora").Return(true, nil)
	s.api.On("BucketExists", s.ctx, "opinion-reports").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "opinion-reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

	s.Require().NoError(s.client.EnsureBuckets(s.ctx))
	s.api.AssertNumberOfCalls(s.T(), "MakeBucket", 1)
	s.True(s.logger.HasMessage("info", "created bucket"))
}

func (s *ClientTestSuite) TestEnsureBuckets_Failure() {
	s.api.On("BucketExists", s.ctx, "opinion-corpora").Return(false, stderrors.New("denied"))

	err := s.client.EnsureBuckets(s.ctx)
	s.True(errors.IsCode(err, errors.ErrCodeStorage))
}

func (s *ClientTestSuite) TestSetupLifecycleRules_FailureOnlyWarns() {
	s.api.On("SetBucketLifecycle", s.ctx, "opinion-reports", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == ReportRetentionDays
	})).Return(stderrors.New("not implemented"))

	s.client.SetupLifecycleRules(s.ctx)
	s.True(s.logger.HasMessage("warn", "failed to set report lifecycle"))
}

func (s *ClientTestSuite) TestCheck() {
	s.api.On("ListBuckets", s.ctx).Return([]minio.BucketInfo{{Name: "opinion-corpora"}}, nil).Once()
	s.NoError(s.client.Check(s.ctx))

	s.api.On("ListBuckets", s.ctx).Return(nil, stderrors.New("refused")).Once()
	s.True(errors.IsCode(s.client.Check(s.ctx), errors.ErrCodeServiceUnavailable))
}

func (s *ClientTestSuite) TestClosed() {
	s.Require().NoError(s.client.Close())
	_, err := s.client.API()
	s.Equal(ErrClientClosed, err)
	s.Equal(ErrClientClosed, s.client.Check(s.ctx))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), config.MinIOConfig{Endpoint: ""}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorage))
}

//Personal.AI order the ending
