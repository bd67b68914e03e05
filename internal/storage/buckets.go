package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
)

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// PublicReadPolicy returns the anonymous GetObject policy applied to every bucket.
func PublicReadPolicy(bucket string) (string, error) {
	policy := bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
		}},
	}
	data, err := json.Marshal(policy)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy: %w", err)
	}
	return string(data), nil
}

// EnsureBuckets creates missing buckets and (re)applies the public-read policy, in parallel.
func (c *Client) EnsureBuckets(ctx context.Context, buckets []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, bucket := range buckets {
		g.Go(func() error {
			return c.ensureBucket(gctx, bucket, logger)
		})
	}
	return g.Wait()
}

func (c *Client) ensureBucket(ctx context.Context, bucket string, logger *slog.Logger) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}

	if !exists {
		if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		logger.Info("bucket created", slog.String("bucket", bucket))
	}

	policy, err := PublicReadPolicy(bucket)
	if err != nil {
		return err
	}
	if err := c.mc.SetBucketPolicy(ctx, bucket, policy); err != nil {
		return fmt.Errorf("failed to set policy on %s: %w", bucket, err)
	}
	logger.Info("bucket policy ensured", slog.String("bucket", bucket), slog.Bool("created", !exists))
	return nil
}
