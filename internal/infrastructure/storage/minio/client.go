package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// ReportRetentionDays is the expiry applied to archived reports.
const ReportRetentionDays = 90

var ErrClientClosed = errors.New(errors.ErrCodeStorage, "minio client is closed")

// API is the subset of object storage operations OpinionGraph uses.
type API interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucket string, cfg *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	// ReadObject opens key for reading.  A missing object surfaces here, not
	// on the first Read.
	ReadObject(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// sdkAPI adapts *minio.Client to API.
type sdkAPI struct {
	*minio.Client
}

func (a sdkAPI) ReadObject(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	obj, err := a.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, minio.ObjectInfo{}, err
	}
	return obj, info, nil
}

// Client owns the MinIO connection and the corpus and report buckets.
type Client struct {
	api    API
	cfg    config.MinIOConfig
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to cfg.Endpoint, verifies access and ensures both
// buckets exist.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to create minio client")
	}

	c := newClient(sdkAPI{mc}, cfg, log)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Check(ctx); err != nil {
		return nil, err
	}
	if err := c.EnsureBuckets(ctx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(ctx)

	c.logger.Info("minio client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClient(api API, cfg config.MinIOConfig, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.CorpusBucket == "" {
		cfg.CorpusBucket = config.DefaultCorpusBucket
	}
	if cfg.ReportBucket == "" {
		cfg.ReportBucket = config.DefaultReportBucket
	}
	return &Client{api: api, cfg: cfg, logger: log}
}

// EnsureBuckets creates the corpus and report buckets when missing.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{c.cfg.CorpusBucket, c.cfg.ReportBucket} {
		exists, err := c.api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorage, "failed to check bucket").WithDetail("bucket=" + bucket)
		}
		if exists {
			continue
		}
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorage, "failed to create bucket").WithDetail("bucket=" + bucket)
		}
		c.logger.Info("created bucket", logging.String("bucket", bucket))
	}
	return nil
}

// SetupLifecycleRules expires archived reports.  Failure is logged only;
// some S3 gateways do not support lifecycle configuration.
func (c *Client) SetupLifecycleRules(ctx context.Context) {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:         "report-expiry",
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(ReportRetentionDays)},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.cfg.ReportBucket, lc); err != nil {
		c.logger.Warn("failed to set report lifecycle", logging.String("bucket", c.cfg.ReportBucket), logging.Err(err))
	}
}

func (c *Client) CorpusBucket() string { return c.cfg.CorpusBucket }
func (c *Client) ReportBucket() string { return c.cfg.ReportBucket }

// API returns the underlying object API, or ErrClientClosed.
func (c *Client) API() (API, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	return c.api, nil
}

// Name implements the health checker contract.
func (c *Client) Name() string { return "minio" }

// Check lists buckets to verify credentials and reachability.
func (c *Client) Check(ctx context.Context) error {
	api, err := c.API()
	if err != nil {
		return err
	}
	if _, err := api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	return nil
}

// Close marks the client closed.  minio-go holds no long-lived connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

//Personal.AI order the ending
