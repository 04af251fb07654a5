package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used for signatures.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3SignatureStore keeps signatures as objects under a key prefix.
type S3SignatureStore struct {
	client S3API
	bucket string
	prefix string
}

// NewS3SignatureStore builds a store from the default AWS credential chain.
func NewS3SignatureStore(ctx context.Context, bucket, prefix, region string) (*S3SignatureStore, error) {
	if bucket == "" {
		return nil, errors.New("s3 signature store: bucket is required")
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewS3SignatureStoreWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3SignatureStoreWithClient wraps an existing client.
func NewS3SignatureStoreWithClient(client S3API, bucket, prefix string) *S3SignatureStore {
	return &S3SignatureStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3SignatureStore) key(file string) string {
	if s.prefix == "" {
		return file
	}
	return path.Join(s.prefix, file)
}

func isMissingObject(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (s *S3SignatureStore) Lookup(ctx context.Context, name string) ([]byte, error) {
	base, err := SignatureKey(name)
	if err != nil {
		return nil, ErrSignatureNotFound
	}
	for _, ext := range SignatureExtensions {
		key := s.key(base + ext)
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if isMissingObject(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get s3 object (bucket %s, key %s): %w", s.bucket, key, err)
		}
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read s3 object %s: %w", key, err)
		}
		return data, nil
	}
	return nil, ErrSignatureNotFound
}

func (s *S3SignatureStore) Has(ctx context.Context, name string) (bool, error) {
	base, err := SignatureKey(name)
	if err != nil {
		return false, nil
	}
	for _, ext := range SignatureExtensions {
		key := s.key(base + ext)
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if isMissingObject(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("head s3 object (bucket %s, key %s): %w", s.bucket, key, err)
		}
		return true, nil
	}
	return false, nil
}

func (s *S3SignatureStore) Save(ctx context.Context, name string, png []byte) (string, error) {
	base, err := SignatureKey(name)
	if err != nil {
		return "", err
	}
	file := base + ".png"
	key := s.key(file)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3 (bucket %s, key %s): %w", s.bucket, key, err)
	}
	return file, nil
}
