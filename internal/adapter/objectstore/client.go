// Package objectstore uploads, lists and deletes audio objects in an
// S3-compatible bucket (Cloudflare R2 in production).
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// MaxDeleteBatch is the DeleteObjects limit of the S3 API.
const MaxDeleteBatch = 1000

// ErrNotConfigured is returned by New when the storage configuration is incomplete.
var ErrNotConfigured = fmt.Errorf("object store: %w", domain.ErrStorageNotConfigured)

// s3API is the subset of *s3.Client used by Client.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Client is a bucket-scoped object store client.
type Client struct {
	api           s3API
	bucket        string
	publicBaseURL string
	chunkSize     int
}

// New builds a client for the configured bucket. chunkSize bounds DeleteKeys
// batches and is clamped to 1..MaxDeleteBatch.
func New(ctx context.Context, cfg config.StorageConfig, chunkSize int) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.EndpointURL()
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		// R2 and MinIO reject the default CRC checksums on some operations.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return newClient(api, cfg.Bucket, cfg.PublicBaseURL, chunkSize), nil
}

func newClient(api s3API, bucket, publicBaseURL string, chunkSize int) *Client {
	if chunkSize <= 0 || chunkSize > MaxDeleteBatch {
		chunkSize = MaxDeleteBatch
	}
	return &Client{
		api:           api,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		chunkSize:     chunkSize,
	}
}

// Upload streams the local file at path to key.
func (c *Client) Upload(ctx context.Context, key, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every key under prefix, following continuation tokens.
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if k := aws.ToString(obj.Key); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

// DeleteKeys deletes keys in batches and returns how many were deleted.
// Per-key failures reported by the store are joined into the returned error;
// the remaining batches are still attempted.
func (c *Client) DeleteKeys(ctx context.Context, keys []string) (int, error) {
	var (
		deleted int
		errs    []error
	)
	for start := 0; start < len(keys); start += c.chunkSize {
		end := min(start+c.chunkSize, len(keys))
		chunk := keys[start:end]

		ids := make([]types.ObjectIdentifier, 0, len(chunk))
		for _, k := range chunk {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("delete objects [%d:%d]: %w", start, end, err)
		}

		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("delete %s: %s: %s",
				aws.ToString(e.Key), aws.ToString(e.Code), aws.ToString(e.Message)))
		}
		deleted += len(chunk) - len(out.Errors)
	}
	return deleted, errors.Join(errs...)
}

// PublicURL returns the public URL of key.
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}
