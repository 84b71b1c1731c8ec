package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectAPI is the subset of the minio client used by ObjectStore
type ObjectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// ObjectStoreConfig holds connection settings for an S3 compatible store
type ObjectStoreConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Object          string
	UseSSL          bool
}

// ObjectStore persists the dataset as a single object. A PUT replaces the object
// as a whole, so readers never observe a partial artifact.
type ObjectStore struct {
	api    ObjectAPI
	bucket string
	object string
	codec  Codec
	logger *zap.Logger

	// read defaults to readObject; tests replace it.
	read func(ctx context.Context) ([]byte, error)
}

// NewMinIOClient connects to the configured endpoint
func NewMinIOClient(cfg ObjectStoreConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// NewObjectStore creates an object-store backed repository
func NewObjectStore(api ObjectAPI, bucket, object string, codec Codec, logger *zap.Logger) *ObjectStore {
	s := &ObjectStore{
		api:    api,
		bucket: bucket,
		object: object,
		codec:  codec,
		logger: logger,
	}
	s.read = s.readObject
	return s
}

// Load fetches and decodes the object
func (s *ObjectStore) Load(ctx context.Context) (*Dataset, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return s.codec.Decode(data)
}

// Save uploads the encoded dataset
func (s *ObjectStore) Save(ctx context.Context, d *Dataset) error {
	data, err := s.codec.Encode(d)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	info, err := s.api.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: s.codec.ContentType(),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, s.object, err)
	}

	s.logger.Debug("Dataset uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", s.object),
		zap.String("etag", info.ETag),
	)
	return nil
}

func (s *ObjectStore) readObject(ctx context.Context) ([]byte, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(err)
	}
	return data, nil
}

func (s *ObjectStore) mapError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("get %s/%s: %w", s.bucket, s.object, err)
}
