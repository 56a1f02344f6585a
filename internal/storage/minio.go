package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cloudbucket/internal/config"
)

// minioPartSize bounds memory used per in-flight upload of unknown length.
const minioPartSize = 16 << 20

// MinIO implements Storage using an S3-compatible backend (MinIO, AWS S3, etc.).
// The managed root is a key prefix inside one bucket.
// It is safe for concurrent use by multiple goroutines.
type MinIO struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ Storage = (*MinIO)(nil)

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", ErrStorageInit)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: minio credentials are required", ErrStorageInit)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: minio bucket is required", ErrStorageInit)
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create minio client: %v", ErrStorageInit, err)
	}

	ms, err := newMinIO(cli, cfg.Bucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: check bucket existence: %v", ErrStorageInit, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: create bucket: %v", ErrStorageInit, err)
		}
	}

	return ms, nil
}

func newMinIO(cli *minio.Client, bucket, prefix string) (*MinIO, error) {
	p := strings.Trim(prefix, "/")
	if p != "" {
		clean, err := CleanName(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid prefix %q", ErrStorageInit, prefix)
		}
		p = clean
	}
	return &MinIO{client: cli, bucket: bucket, prefix: p}, nil
}

// Put uploads an object using streaming I/O only (no local disk).
// The length is always treated as unknown so that the caller's reader decides
// where the stream ends.
func (m *MinIO) Put(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	clean, err := CleanName(name)
	if err != nil {
		return ObjectInfo{}, err
	}
	key := m.objectKey(clean)

	info, err := m.client.PutObject(ctx, m.bucket, key, contextReader{ctx: ctx, r: r}, -1, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
		PartSize:     minioPartSize,
	})
	if err != nil {
		return ObjectInfo{}, classifyMinIOError(err, "put")
	}
	return ObjectInfo{
		Path:         key,
		Size:         info.Size,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // MinIO PutObjectInfo doesn't return LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Get downloads an object content as a ReadCloser along with basic info.
func (m *MinIO) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := m.checkKey(key); err != nil {
		return nil, ObjectInfo{}, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, classifyMinIOError(err, "get")
	}
	// Fetch stat to populate info; avoid reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, classifyMinIOError(err, "stat")
	}
	info := ObjectInfo{
		Path:         key,
		Size:         st.Size,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
	return obj, info, nil
}

func (m *MinIO) objectKey(clean string) string {
	if m.prefix == "" {
		return clean
	}
	return path.Join(m.prefix, clean)
}

// checkKey rejects keys that are not canonical or fall outside the prefix.
func (m *MinIO) checkKey(key string) error {
	if key == "" || path.Clean(key) != key || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: key is not canonical", ErrUnsafePath)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: parent reference", ErrUnsafePath)
		}
	}
	if m.prefix != "" && !strings.HasPrefix(key, m.prefix+"/") {
		return fmt.Errorf("%w: key outside prefix", ErrUnsafePath)
	}
	return nil
}

// classifyMinIOError converts backend errors to package sentinels.
func classifyMinIOError(err error, operation string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s operation: %w", operation, err)
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return ErrNotFound
	}
	return fmt.Errorf("%s operation failed: %w", operation, err)
}
