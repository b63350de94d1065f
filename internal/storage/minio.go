package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"accidentapi/internal/config"
)

// Streams of unknown length are uploaded in parts of this size.
const unknownSizePartSize = 16 << 20

// minioStorage keeps evidence in an S3-compatible bucket (MinIO, AWS S3, etc.).
// Object URLs are presigned unless a public base URL fronts the bucket.
type minioStorage struct {
	client     *minio.Client
	bucket     string
	presign    time.Duration
	publicBase string
}

// NewMinIO connects to the bucket in cfg.MinIO and creates it when missing.
func NewMinIO(cfg config.StorageConfig) (Storage, error) {
	mc := cfg.MinIO
	switch {
	case mc.Endpoint == "":
		return nil, fmt.Errorf("minio endpoint is required")
	case mc.AccessKey == "" || mc.SecretKey == "":
		return nil, fmt.Errorf("minio credentials are required")
	case mc.Bucket == "":
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{
		client:  cli,
		bucket:  mc.Bucket,
		presign: cfg.PresignExpiry,
	}
	if ms.presign <= 0 {
		ms.presign = time.Hour
	}
	if isAbsoluteURL(cfg.PublicBaseURL) {
		ms.publicBase = cfg.PublicBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return ms, nil
}

func (m *minioStorage) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	return nil
}

// Put streams r into the bucket. The original filename, when given in the
// metadata, becomes an inline Content-Disposition so browsers show evidence.
func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:        opt.ContentType,
		ContentDisposition: contentDisposition(opt.Metadata[MetaOriginalFilename]),
		UserMetadata:       opt.Metadata,
	}
	size := opt.Size
	if size < 0 {
		size = -1
		putOpts.PartSize = unknownSizePartSize
	}

	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, putOpts)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("minio put %s: %w", key, err)
	}
	return ObjectInfo{
		Key:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opt.ContentType,
		// PutObject does not report a modification time.
		LastModified: time.Now().UTC(),
		Metadata:     opt.Metadata,
	}, nil
}

func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, minioError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key without reading the body.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, minioError(err)
	}
	return obj, ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}, nil
}

// Delete removes the object. S3 treats a missing key as success.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete %s: %w", key, err)
	}
	return nil
}

func (m *minioStorage) URL(ctx context.Context, key string) (string, error) {
	if m.publicBase != "" {
		return joinURL(m.publicBase, key), nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.presign, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func minioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrObjectNotFound
	}
	return err
}

func contentDisposition(filename string) string {
	if filename == "" {
		return ""
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": filename})
}
