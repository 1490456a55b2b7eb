package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Objects above this size are sent as a multipart upload
const multipartThreshold = 12 << 20

type BucketOptions struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// Custom S3 API endpoint, empty for AWS itself
	Endpoint string
	// Needed by most self-hosted S3 implementations
	PathStyle bool
}

// Bucket mirrors media files to an S3 compatible bucket
type Bucket struct {
	C      *s3.Client
	Bucket *string
}

// NewBucket connects to the bucket and makes sure it exists
func NewBucket(ctx context.Context, o BucketOptions) (*Bucket, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}

		so.Region = o.Region
		so.UsePathStyle = o.PathStyle
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", o.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &Bucket{
		C:      client,
		Bucket: bucket,
	}, nil
}

// NewR2 connects to a Cloudflare R2 bucket, which speaks the S3 API
func NewR2(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket string) (*Bucket, error) {
	return NewBucket(ctx, BucketOptions{
		Region:    "auto",
		AccessKey: accessKeyID,
		SecretKey: secretAccessKey,
		Bucket:    bucket,
		Endpoint:  fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
	})
}

// Put uploads body under key. Large objects go through the multipart
// uploader, the rest through a single PutObject call.
func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        b.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	if size > multipartThreshold {
		u := manager.NewUploader(b.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		if _, err := u.Upload(ctx, input); err != nil {
			return fmt.Errorf("failed to upload %s to bucket, %w", key, err)
		}

		return nil
	}

	if _, err := b.C.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put %s into bucket, %w", key, err)
	}

	return nil
}
