package config

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 client used to read registry overrides.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// RegistryStore reads an ingredient registry table kept in S3, so the table
// can be updated without a redeploy.
type RegistryStore struct {
	Client     ObjectGetter
	BucketName string
	Key        string
}

// NewRegistryStore initializes the S3 client from the default AWS credential chain.
func NewRegistryStore(ctx context.Context, cfg *Config) (*RegistryStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &RegistryStore{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.RegistryBucket,
		Key:        cfg.RegistryKey,
	}, nil
}

// Fetch downloads the registry YAML.
func (s *RegistryStore) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get registry s3://%s/%s: %w", s.BucketName, s.Key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry body: %w", err)
	}
	return data, nil
}
