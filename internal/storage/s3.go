package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	envConfig "github.com/voclabs/call-insights/internal/config"
)

// S3API is the slice of the S3 client the store depends on.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client fetches call audio from an S3-compatible object store (MinIO in
// development) into local temporary files.
type Client struct {
	api    S3API
	bucket string
	log    *zap.Logger
}

// NewClient builds the store client. The MinIO endpoint override uses static
// credentials and path-style addressing, mirroring how local development
// brokers are wired elsewhere in the platform.
func NewClient(ctx context.Context, storageConfig envConfig.Storage, log *zap.Logger) (*Client, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(storageConfig.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(storageConfig.AccessKey, storageConfig.SecretKey, "")),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	scheme := "http"
	if storageConfig.UseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, storageConfig.Endpoint)

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Info("Object store client created",
		zap.String("endpoint", endpoint),
		zap.String("bucket", storageConfig.Bucket))

	return &Client{
		api:    api,
		bucket: storageConfig.Bucket,
		log:    log,
	}, nil
}

// NewClientWithAPI wires an existing API implementation; used by tests.
func NewClientWithAPI(api S3API, bucket string, log *zap.Logger) *Client {
	return &Client{api: api, bucket: bucket, log: log}
}

// Fetch downloads the object behind the locator to a temporary file and
// returns its path. The caller owns the file and removes it when done.
func (c *Client) Fetch(ctx context.Context, locator string) (string, error) {
	key := c.objectKey(locator)

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp("", "audio_*"+path.Ext(key))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	c.log.Info("Audio file downloaded",
		zap.String("key", key),
		zap.String("path", tmp.Name()))

	return tmp.Name(), nil
}

// HealthCheck reports whether the bucket is reachable.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		c.log.Warn("Object store health check failed",
			zap.String("bucket", c.bucket),
			zap.Error(err))
		return false
	}
	return true
}

// objectKey extracts the object key from a locator that is either a bare key
// or a full URL like http://minio:9000/calls/2024/12/call-id.wav.
func (c *Client) objectKey(locator string) string {
	if !strings.HasPrefix(locator, "http") {
		return locator
	}

	parsed, err := url.Parse(locator)
	if err != nil {
		return locator
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	key = strings.TrimPrefix(key, c.bucket+"/")
	return key
}
