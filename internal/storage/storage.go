// Package storage wraps the S3-compatible object store that holds CVs, reports and generated artifacts.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Bucket names
const (
	BucketCVs        = "cvs"
	BucketQualified  = "qualified-candidats"
	BucketRapports   = "rapports-stage"
	DefaultRegion    = "us-east-1"
	defaultPublicURL = "http://localhost:9000"
)

// Buckets lists every bucket the service writes to.
var Buckets = []string{BucketCVs, BucketQualified, BucketRapports}

// Config holds the object-store connection settings.
type Config struct {
	Endpoint  string // host:port used by the service
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	PublicURL string // base of the URLs handed to browsers
}

// Client is a MinIO client plus the public base URL for stored objects.
type Client struct {
	mc        *minio.Client
	publicURL string
	region    string
}

// New creates a client. No network call is made until the first request.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	return &Client{
		mc:        mc,
		publicURL: strings.TrimRight(publicURL, "/"),
		region:    region,
	}, nil
}

// Put uploads body under bucket/key in a single request.
func (c *Client) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	_, err := c.mc.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the deterministic browser URL of an object.
func (c *Client) PublicURL(bucket, key string) string {
	return PublicURL(c.publicURL, bucket, key)
}

// Ping checks credentials and reachability by listing buckets.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.mc.ListBuckets(ctx); err != nil {
		return fmt.Errorf("failed to reach object store: %w", err)
	}
	return nil
}

// PublicURL joins endpoint, bucket and key as {endpoint}/{bucket}/{key}, escaping the key.
func PublicURL(endpoint, bucket, key string) string {
	return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + url.PathEscape(key)
}
