package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/nlp"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeStorage, "upload failed")
	ErrDownloadFailed = errors.New(errors.ErrCodeStorage, "download failed")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// UploadResult describes a stored object.
type UploadResult struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ObjectInfo is a listed corpus object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// CorpusRepository stores corpora (one readable tagged sentence per line)
// and archived extraction reports.
type CorpusRepository struct {
	client *Client
	logger logging.Logger
}

func NewCorpusRepository(client *Client, log logging.Logger) *CorpusRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CorpusRepository{client: client, logger: log}
}

// LoadCorpus reads bucket/key and returns its non-blank lines, trimmed.
// Lines starting with '#' are comments.  An empty bucket means the corpus
// bucket.
func (r *CorpusRepository) LoadCorpus(ctx context.Context, bucket, key string) ([]string, error) {
	if key == "" {
		return nil, ErrInvalidRequest.WithDetail("key is required")
	}
	if bucket == "" {
		bucket = r.client.CorpusBucket()
	}
	api, err := r.client.API()
	if err != nil {
		return nil, err
	}

	body, info, err := api.ReadObject(ctx, bucket, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithDetail(bucket + "/" + key)
		}
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(bucket + "/" + key)
	}
	defer body.Close()

	sentences, err := nlp.ReadCorpus(body)
	if err != nil {
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(bucket + "/" + key)
	}

	r.logger.Debug("corpus loaded",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.Int("sentences", len(sentences)))
	return sentences, nil
}

// PutCorpus stores sentences as a newline-separated object in the corpus bucket.
func (r *CorpusRepository) PutCorpus(ctx context.Context, key string, sentences []string) (*UploadResult, error) {
	var buf bytes.Buffer
	for _, s := range sentences {
		buf.WriteString(s)
		buf.WriteByte('\n')
	}
	return r.put(ctx, r.client.CorpusBucket(), key, buf.Bytes(), "text/plain; charset=utf-8", nil)
}

// SaveReport archives report as JSON under key in the report bucket.
func (r *CorpusRepository) SaveReport(ctx context.Context, key string, report interface{}, meta map[string]string) (*UploadResult, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal report")
	}
	return r.put(ctx, r.client.ReportBucket(), key, data, "application/json", meta)
}

// LoadReport decodes the archived report at key into dest.
func (r *CorpusRepository) LoadReport(ctx context.Context, key string, dest interface{}) error {
	api, err := r.client.API()
	if err != nil {
		return err
	}
	bucket := r.client.ReportBucket()
	body, _, err := api.ReadObject(ctx, bucket, key)
	if err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound.WithDetail(bucket + "/" + key)
		}
		return ErrDownloadFailed.WithCause(err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode report")
	}
	return nil
}

// ListCorpora lists corpus objects under prefix.
func (r *CorpusRepository) ListCorpora(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	api, err := r.client.API()
	if err != nil {
		return nil, err
	}
	var out []ObjectInfo
	for obj := range api.ListObjects(ctx, r.client.CorpusBucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorage, "failed to list corpora")
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

func (r *CorpusRepository) put(ctx context.Context, bucket, key string, data []byte, contentType string, meta map[string]string) (*UploadResult, error) {
	if key == "" {
		return nil, ErrInvalidRequest.WithDetail("key is required")
	}
	api, err := r.client.API()
	if err != nil {
		return nil, err
	}
	info, err := api.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, ErrUploadFailed.WithCause(err).WithDetail(bucket + "/" + key)
	}
	r.logger.Info("object stored", logging.String("bucket", bucket), logging.String("key", key), logging.Int("size", len(data)))
	return &UploadResult{Bucket: bucket, Key: key, ETag: info.ETag, Size: int64(len(data)), UploadedAt: time.Now().UTC()}, nil
}

// ReportKey is the object key of a run's archived report.
func ReportKey(jobID, runID string) string {
	if jobID == "" {
		jobID = "adhoc"
	}
	return path.Join("reports", jobID, runID+".json")
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

//Personal.AI order the ending
