package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ledgerdrive/internal/netx"
)

// cidMetadataKey is the object metadata key IPFS pinning gateways with an
// S3 API use to publish the CID of a stored object.
const cidMetadataKey = "cid"

// S3Config addresses an S3-compatible IPFS pinning bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ObjectAPI is the part of *s3.Client the uploader needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds a path-style S3 client with static credentials.
func NewS3Client(ctx context.Context, c S3Config) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// S3Uploader stores content as objects keyed by their locally computed CID.
type S3Uploader struct {
	api    ObjectAPI
	bucket string
}

func NewS3Uploader(api ObjectAPI, bucket string) *S3Uploader {
	return &S3Uploader{api: api, bucket: bucket}
}

// Upload puts data and returns the CID the gateway published for it, or the
// locally computed CID when the gateway publishes none.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error) {
	local, err := ComputeCID(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	report(onProgress, 0)

	body := netx.NewProgressReader(bytes.NewReader(data), int64(len(data)), onProgress)
	_, err = u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(local),
		Body:          body,
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object: %w", ErrTransport, err)
	}

	id := local
	head, err := u.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(local),
	})
	if err != nil {
		return "", fmt.Errorf("%w: head object: %w", ErrTransport, err)
	}
	if remote := head.Metadata[cidMetadataKey]; remote != "" {
		if !ValidCID(remote) {
			return "", fmt.Errorf("%w: invalid cid %q", ErrTransport, remote)
		}
		id = remote
	}

	report(onProgress, 1)
	return id, nil
}

var _ Uploader = (*S3Uploader)(nil)
